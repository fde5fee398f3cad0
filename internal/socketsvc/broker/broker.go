package broker

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
	"github.com/tamru/sequence-services/internal/comm"
)

// Broker delivers game service events to websocket clients. Delivery
// functions are injected by the ws package so the broker never owns the
// connection maps.
type Broker struct {
	Conn           *nats.Conn
	GetConnection  func(string) (*websocket.Conn, bool)
	GetRoomSockets func(string) ([]string, bool)
	StoreRoom      func(socketId, roomCode string)
	RemoveRoom     func(socketId string)
}

func NewBroker(conn *nats.Conn,
	fncGetConnection func(string) (*websocket.Conn, bool),
	fncGetRoomSockets func(string) ([]string, bool),
	fncStoreRoom func(socketId, roomCode string),
	fncRemoveRoom func(socketId string)) *Broker {
	return &Broker{
		Conn:           conn,
		GetConnection:  fncGetConnection,
		GetRoomSockets: fncGetRoomSockets,
		StoreRoom:      fncStoreRoom,
		RemoveRoom:     fncRemoveRoom,
	}
}

// consume events published by the game service
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// publish commands to the game service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// handleMessages receives events from the game service and fans them out
// according to the event scope.
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	err := json.Unmarshal(msgNats.Data, &message)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	// Track which room each socket belongs to so room-scoped events can
	// be fanned out without asking the game service.
	switch message.Type {
	case "room_created", "room_joined":
		if message.RoomCode != "" {
			b.StoreRoom(message.SocketId, message.RoomCode)
		}
	case "player_left":
		if message.SocketId != "" {
			b.RemoveRoom(message.SocketId)
		}
	}

	switch message.Scope {
	case comm.ScopeRoom:
		b.broadcast(message, "")
	case comm.ScopeRoomExceptSender:
		b.broadcast(message, message.SocketId)
	default:
		b.sendMessage(message, message.SocketId)
	}
}

func (b *Broker) broadcast(m *comm.WSMessage, skipSocketId string) {
	sockets, ok := b.GetRoomSockets(m.RoomCode)
	if !ok {
		return
	}
	for _, socketId := range sockets {
		if socketId == skipSocketId {
			continue
		}
		b.sendMessage(m, socketId)
	}
}

// send socket message to the web client
func (b *Broker) sendMessage(m *comm.WSMessage, socketId string) {
	if conn, ok := b.GetConnection(socketId); ok {
		if err := conn.WriteJSON(m); err != nil {
			log.Errorf("Error writing to socket %s: %s", socketId, err)
		}
	}
}
