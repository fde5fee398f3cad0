package broker

import (
	"encoding/json"
	"errors"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
	"github.com/tamru/sequence-services/internal/comm"
	"github.com/tamru/sequence-services/internal/gamesvc/game"
	"github.com/tamru/sequence-services/internal/gamesvc/room"
)

// Broker is the session coordinator: it turns inbound socket commands
// into registry / engine calls and publishes the resulting events. All
// commands arrive on one NATS subscription whose handler runs
// sequentially, so room state is never touched by two commands at once.
type Broker struct {
	Conn     *nats.Conn
	Registry *room.Registry
}

func NewBroker(nc *nats.Conn, registry *room.Registry) *Broker {
	return &Broker{
		Conn:     nc,
		Registry: registry,
	}
}

// SubscribeCommands consumes commands forwarded by the socket gateway.
func (b *Broker) SubscribeCommands(topic string) (*nats.Subscription, error) {
	return b.Conn.Subscribe(topic, b.handleMessage)
}

// handles message coming from socket gateway
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	msg := &comm.WSMessage{}
	err := json.Unmarshal(msgNat.Data, &msg)
	if err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	switch msg.Type {
	case "create_room":
		var request struct {
			PlayerName string `json:"playerName"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding create_room: %s", err)
			return
		}
		if request.PlayerName == "" {
			b.sendError(msg.SocketId, "Player name is required")
			return
		}

		r, p := b.Registry.Create(request.PlayerName, msg.SocketId)
		b.publishToSocket(msg.SocketId, r.Code, "room_created", comm.RoomCreatedData{
			RoomCode: r.Code,
			Player:   p,
		})
	case "join_room":
		var request struct {
			PlayerName string `json:"playerName"`
			RoomCode   string `json:"roomCode"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding join_room: %s", err)
			return
		}

		r, p, err := b.Registry.Join(request.RoomCode, request.PlayerName, msg.SocketId)
		if err != nil {
			b.sendError(msg.SocketId, errorMessage(err))
			return
		}
		b.publishToSocket(msg.SocketId, r.Code, "room_joined", comm.RoomJoinedData{
			RoomCode: r.Code,
			Player:   p,
			Players:  r.Players,
		})
		b.publishToRoomExceptSender(msg.SocketId, r.Code, "players_updated", comm.PlayersUpdatedData{
			Players: r.Players,
		})
	case "toggle_team_mode":
		var request struct {
			RoomCode string `json:"roomCode"`
			TeamMode bool   `json:"teamMode"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding toggle_team_mode: %s", err)
			return
		}

		r, err := b.Registry.ToggleTeamMode(request.RoomCode, msg.SocketId, request.TeamMode)
		if err != nil {
			b.sendError(msg.SocketId, errorMessage(err))
			return
		}
		b.publishToRoom(r.Code, "game_settings_updated", comm.GameSettingsData{
			TeamMode: r.TeamMode,
			Players:  r.Players,
		})
	case "start_game":
		var request struct {
			RoomCode string `json:"roomCode"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding start_game: %s", err)
			return
		}

		r, err := b.Registry.Start(request.RoomCode, msg.SocketId)
		if err != nil {
			b.sendError(msg.SocketId, errorMessage(err))
			return
		}

		// Hands are private, so every member gets their own payload.
		for _, p := range r.Players {
			b.publishToSocket(p.SocketID, r.Code, "game_started", comm.GameStartedData{
				Board:            r.Game.Board(),
				Players:          r.Players,
				CurrentTurnIndex: r.Game.Turn(),
				Hand:             r.Game.Hand(p.ID),
				TeamMode:         r.TeamMode,
			})
		}
	case "play_card":
		var request struct {
			RoomCode string    `json:"roomCode"`
			Card     game.Card `json:"card"`
			Row      int       `json:"row"`
			Col      int       `json:"col"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding play_card: %s", err)
			return
		}

		r, p, err := b.playerInGame(request.RoomCode, msg.SocketId)
		if err != nil {
			b.sendError(msg.SocketId, errorMessage(err))
			return
		}

		_, err = r.Game.Play(p.ID, request.Card, request.Row, request.Col)
		if err != nil {
			b.sendError(msg.SocketId, errorMessage(err))
			return
		}

		b.publishGameUpdate(r)
		b.publishToSocket(p.SocketID, r.Code, "hand_updated", comm.HandUpdatedData{
			Hand:      r.Game.Hand(p.ID),
			DeadCards: r.Game.DeadCards(p.ID),
		})
	case "exchange_dead_card":
		var request struct {
			RoomCode string    `json:"roomCode"`
			Card     game.Card `json:"card"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding exchange_dead_card: %s", err)
			return
		}

		r, p, err := b.playerInGame(request.RoomCode, msg.SocketId)
		if err != nil {
			b.sendError(msg.SocketId, errorMessage(err))
			return
		}

		if _, err := r.Game.ExchangeDeadCard(p.ID, request.Card); err != nil {
			b.sendError(msg.SocketId, errorMessage(err))
			return
		}
		b.publishToSocket(p.SocketID, r.Code, "hand_updated", comm.HandUpdatedData{
			Hand:      r.Game.Hand(p.ID),
			DeadCards: r.Game.DeadCards(p.ID),
		})
	case "leave_room":
		var request struct {
			RoomCode string `json:"roomCode"`
		}
		if err := json.Unmarshal(msg.Data, &request); err != nil {
			log.Errorf("Error decoding leave_room: %s", err)
			return
		}
		b.handleLeave(request.RoomCode, msg.SocketId)
	case "disconnect":
		// Synthesized by the gateway when a websocket drops. Modeled as
		// an immediate leave, never as interruption of a mutation.
		r, _, ok := b.Registry.FindBySocket(msg.SocketId)
		if !ok {
			return
		}
		b.handleLeave(r.Code, msg.SocketId)
	default:
		log.Warnf("unknown command received: %s", msg.Type)
	}
}

func (b *Broker) handleLeave(code, socketID string) {
	res, err := b.Registry.Leave(code, socketID)
	if err != nil {
		b.sendError(socketID, errorMessage(err))
		return
	}
	if res.Destroyed {
		// Nobody is left to notify, but the gateway still has to drop the
		// leaver's room mapping or a reissued code would leak broadcasts
		// to this socket.
		b.publishToSocket(res.Player.SocketID, code, "player_left", comm.PlayerLeftData{
			PlayerId:   res.Player.ID,
			PlayerName: res.Player.Name,
		})
		return
	}

	// The leaver's socket id rides along so the gateway can drop its
	// room membership before the fan-out.
	b.publish("player_left", comm.PlayerLeftData{
		PlayerId:   res.Player.ID,
		PlayerName: res.Player.Name,
	}, comm.ScopeRoom, code, res.Player.SocketID)
	if res.NewAdmin != nil || (res.Room.TeamMode && !res.Room.Started) {
		b.publishToRoom(code, "players_updated", comm.PlayersUpdatedData{
			Players: res.Room.Players,
		})
	}

	if res.Abandoned {
		b.publishToRoom(code, "game_aborted", comm.GameAbortedData{
			Message: "Not enough players left, game abandoned",
		})
		return
	}
	if res.Room.Started && res.Room.Game.State() == game.StateInProgress {
		// Turn order may have shifted past the departed seat.
		b.publishGameUpdate(res.Room)
	}
}

// playerInGame resolves the acting player and checks a game is running.
func (b *Broker) playerInGame(code, socketID string) (*room.Room, *room.Player, error) {
	r, err := b.Registry.Get(code)
	if err != nil {
		return nil, nil, err
	}
	p := r.PlayerBySocket(socketID)
	if p == nil {
		return nil, nil, room.ErrRoomNotFound
	}
	if !r.Started || r.Game == nil {
		return nil, nil, errors.New("game has not started yet")
	}
	return r, p, nil
}

func (b *Broker) publishGameUpdate(r *room.Room) {
	b.publishToRoom(r.Code, "game_updated", comm.GameUpdatedData{
		Board:            r.Game.Board(),
		CurrentTurnIndex: r.Game.Turn(),
		Sequences:        r.Game.Sequences(),
		Winner:           r.Game.Winner(),
	})
}

func (b *Broker) publishToSocket(socketID, roomCode, msgType string, data interface{}) {
	b.publish(msgType, data, comm.ScopeSocket, roomCode, socketID)
}

func (b *Broker) publishToRoom(roomCode, msgType string, data interface{}) {
	b.publish(msgType, data, comm.ScopeRoom, roomCode, "")
}

func (b *Broker) publishToRoomExceptSender(socketID, roomCode, msgType string, data interface{}) {
	b.publish(msgType, data, comm.ScopeRoomExceptSender, roomCode, socketID)
}

// errors are rejections to the sender only, never broadcast
func (b *Broker) sendError(socketID, message string) {
	b.publish("error", comm.ErrorData{Message: message}, comm.ScopeSocket, "", socketID)
}

func (b *Broker) publish(msgType string, data interface{}, scope, roomCode, socketID string) {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Errorf("unable to marshal %s payload: %s", msgType, err)
		return
	}

	msg := &comm.WSMessage{
		Type:     msgType,
		Data:     raw,
		SocketId: socketID,
		RoomCode: roomCode,
		Scope:    scope,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	if err := b.Conn.Publish(comm.SubjectEvents, payload); err != nil {
		log.Errorf("Error publishing to topic %s: %s", comm.SubjectEvents, err)
	}
}

// errorMessage maps engine and registry failures to the caller-visible
// rejection text.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, room.ErrRoomFull):
		return "Room is full (max 12 players)"
	case errors.Is(err, room.ErrUnauthorized):
		return "Only the room admin can do that"
	case errors.Is(err, game.ErrGameAlreadyStarted):
		return "Game already started"
	case errors.Is(err, game.ErrGameAlreadyFinished):
		return "Game already finished"
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return "Need at least 2 players to start"
	case errors.Is(err, game.ErrNotYourTurn):
		return "Not your turn"
	case errors.Is(err, game.ErrCardNotInHand):
		return "Card not in hand"
	default:
		return err.Error()
	}
}
