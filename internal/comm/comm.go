package comm

import (
	"encoding/json"

	"github.com/tamru/sequence-services/internal/gamesvc/game"
	"github.com/tamru/sequence-services/internal/gamesvc/room"
)

// NATS subjects joining the socket gateway and the game service.
const (
	SubjectCommand = "room.command"
	SubjectEvents  = "room.events"
)

// Delivery scopes for outbound events.
const (
	ScopeSocket           = "socket"
	ScopeRoom             = "room"
	ScopeRoomExceptSender = "room_except_sender"
)

// WSMessage is the envelope every command and event travels in, both on
// the websocket and over NATS. The gateway stamps SocketId on the way
// in; the game service stamps RoomCode and Scope on the way out.
type WSMessage struct {
	Type     string          `json:"type"` // e.g. "play_card", "game_updated"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid,omitempty"`
	RoomCode string          `json:"roomcode,omitempty"`
	Scope    string          `json:"scope,omitempty"`
}

type RoomCreatedData struct {
	RoomCode string       `json:"roomCode"`
	Player   *room.Player `json:"player"`
}

type RoomJoinedData struct {
	RoomCode string         `json:"roomCode"`
	Player   *room.Player   `json:"player"`
	Players  []*room.Player `json:"players"`
}

type PlayersUpdatedData struct {
	Players []*room.Player `json:"players"`
}

type GameSettingsData struct {
	TeamMode bool           `json:"teamMode"`
	Players  []*room.Player `json:"players"`
}

type PlayerLeftData struct {
	PlayerId   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// GameStartedData is composed per recipient: the hand is private.
type GameStartedData struct {
	Board            *game.Board    `json:"board"`
	Players          []*room.Player `json:"players"`
	CurrentTurnIndex int            `json:"currentTurnIndex"`
	Hand             []game.Card    `json:"hand"`
	TeamMode         bool           `json:"teamMode"`
}

type GameUpdatedData struct {
	Board            *game.Board     `json:"board"`
	CurrentTurnIndex int             `json:"currentTurnIndex"`
	Sequences        []game.Sequence `json:"sequences"`
	Winner           *game.Winner    `json:"winner"`
}

// HandUpdatedData is only ever sent to the hand's owner.
type HandUpdatedData struct {
	Hand      []game.Card `json:"hand"`
	DeadCards []game.Card `json:"deadCards,omitempty"`
}

type GameAbortedData struct {
	Message string `json:"message"`
}

type ErrorData struct {
	Message string `json:"message"`
}
