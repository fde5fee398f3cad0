package broker

import (
	"encoding/json"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/tamru/sequence-services/internal/comm"
)

// fakeRooms stands in for the ws package's socket -> room map.
type fakeRooms struct {
	rooms map[string]string
}

func newTestBroker() (*Broker, *fakeRooms) {
	f := &fakeRooms{rooms: make(map[string]string)}
	b := &Broker{
		GetConnection: func(string) (*websocket.Conn, bool) { return nil, false },
		GetRoomSockets: func(code string) ([]string, bool) {
			var sockets []string
			for s, c := range f.rooms {
				if c == code {
					sockets = append(sockets, s)
				}
			}
			return sockets, len(sockets) > 0
		},
		StoreRoom:  func(socketId, roomCode string) { f.rooms[socketId] = roomCode },
		RemoveRoom: func(socketId string) { delete(f.rooms, socketId) },
	}
	return b, f
}

func eventMsg(t *testing.T, msgType, scope, roomCode, socketId string) *nats.Msg {
	t.Helper()
	raw, err := json.Marshal(&comm.WSMessage{
		Type:     msgType,
		Data:     json.RawMessage(`{}`),
		SocketId: socketId,
		RoomCode: roomCode,
		Scope:    scope,
	})
	require.NoError(t, err)
	return &nats.Msg{Data: raw}
}

func TestMembershipTracking(t *testing.T) {
	b, f := newTestBroker()

	b.handleMessages(eventMsg(t, "room_created", comm.ScopeSocket, "ABC123", "s1"))
	require.Equal(t, "ABC123", f.rooms["s1"])

	b.handleMessages(eventMsg(t, "room_joined", comm.ScopeSocket, "ABC123", "s2"))
	require.Equal(t, "ABC123", f.rooms["s2"])

	b.handleMessages(eventMsg(t, "player_left", comm.ScopeRoom, "ABC123", "s2"))
	require.NotContains(t, f.rooms, "s2")
	require.Contains(t, f.rooms, "s1")
}

func TestLastLeaverMappingCleared(t *testing.T) {
	b, f := newTestBroker()

	b.handleMessages(eventMsg(t, "room_created", comm.ScopeSocket, "ABC123", "s1"))
	require.Len(t, f.rooms, 1)

	// When the room is destroyed the game service addresses player_left to
	// the leaver alone; the mapping must still be dropped so a reissued
	// room code cannot reach this socket.
	b.handleMessages(eventMsg(t, "player_left", comm.ScopeSocket, "ABC123", "s1"))
	require.Empty(t, f.rooms)
}

func TestEventsWithoutMembershipLeaveMapUntouched(t *testing.T) {
	b, f := newTestBroker()

	b.handleMessages(eventMsg(t, "room_created", comm.ScopeSocket, "ABC123", "s1"))
	b.handleMessages(eventMsg(t, "game_updated", comm.ScopeRoom, "ABC123", ""))
	b.handleMessages(eventMsg(t, "error", comm.ScopeSocket, "", "s1"))

	require.Equal(t, map[string]string{"s1": "ABC123"}, f.rooms)
}
