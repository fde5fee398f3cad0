package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/tamru/sequence-services/internal/comm"
	"github.com/tamru/sequence-services/internal/socketsvc/broker"
)

type Ws struct {
	connMap sync.Map // socketId -> *websocket.Conn
	roomMap sync.Map // socketId -> room code
	Broker  *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// handle socket message from web clients: every game command is stamped
// with the socket id and forwarded to the game service as-is.
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "create_room", "join_room", "toggle_team_mode", "start_game",
		"play_card", "exchange_dead_card", "leave_room":
		s.forward(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

func (s *Ws) forward(socketId string, msg *comm.WSMessage) {
	msg.SocketId = socketId

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return
	}

	if err := s.Broker.Publish(comm.SubjectCommand, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", comm.SubjectCommand, err)
	}
}

// HandleDisconnect tears the connection down and tells the game service,
// which treats it as an immediate leave.
func (s *Ws) HandleDisconnect(socketId string) {
	s.connMap.Delete(socketId)
	s.roomMap.Delete(socketId)

	msg := &comm.WSMessage{Type: "disconnect", SocketId: socketId}
	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal disconnect message: %v", err)
		return
	}
	if err := s.Broker.Publish(comm.SubjectCommand, bytes); err != nil {
		log.Errorf("Failed to publish disconnect for socket %s: %v", socketId, err)
	}
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (s *Ws) StoreRoom(socketId string, roomCode string) {
	s.roomMap.Store(socketId, roomCode)
}

func (s *Ws) RemoveRoom(socketId string) {
	s.roomMap.Delete(socketId)
}

func (s *Ws) GetRoomSockets(roomCode string) ([]string, bool) {
	var sockets []string
	found := false

	s.roomMap.Range(func(key, value interface{}) bool {
		if value.(string) == roomCode {
			sockets = append(sockets, key.(string))
			found = true
		}
		return true // continue iterating
	})

	return sockets, found
}
