package room

import (
	"math/rand"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/tamru/sequence-services/internal/gamesvc/game"
)

const codeLength = 6

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Registry owns every live room. Rooms exist from the creator's first
// command until the last member leaves; nothing survives a restart.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	rng   *rand.Rand
}

func NewRegistry(rng *rand.Rand) *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		rng:   rng,
	}
}

// LeaveResult describes the fallout of one player leaving.
type LeaveResult struct {
	Player    *Player
	Room      *Room   // nil once the room is destroyed
	NewAdmin  *Player // set when admin rights moved
	Destroyed bool
	Abandoned bool // game ended with no winner (fewer than 2 players left)
}

// Create opens a fresh room with the caller as admin.
func (reg *Registry) Create(playerName, socketID string) (*Room, *Player) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code := reg.newCode()
	p := &Player{
		ID:       uuid.New().String(),
		Name:     playerName,
		Color:    colors[0],
		IsAdmin:  true,
		SocketID: socketID,
	}
	r := &Room{
		Code:    code,
		Players: []*Player{p},
	}
	reg.rooms[code] = r

	log.Infof("room %s created by %s", code, playerName)
	return r, p
}

// Join admits a player into a waiting room.
func (reg *Registry) Join(code, playerName, socketID string) (*Room, *Player, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[code]
	if !ok {
		return nil, nil, ErrRoomNotFound
	}
	if r.Started {
		return nil, nil, game.ErrGameAlreadyStarted
	}
	if len(r.Players) >= MaxPlayers {
		return nil, nil, ErrRoomFull
	}

	p := &Player{
		ID:       uuid.New().String(),
		Name:     playerName,
		Color:    colors[len(r.Players)%len(colors)],
		SocketID: socketID,
	}
	r.Players = append(r.Players, p)
	if r.TeamMode {
		r.assignTeams()
	}

	log.Infof("player %s joined room %s (%d/%d)", playerName, code, len(r.Players), MaxPlayers)
	return r, p, nil
}

func (reg *Registry) Get(code string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// FindBySocket locates the room a connection belongs to, for synthesized
// leave commands on disconnect.
func (reg *Registry) FindBySocket(socketID string) (*Room, *Player, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, r := range reg.rooms {
		if p := r.PlayerBySocket(socketID); p != nil {
			return r, p, true
		}
	}
	return nil, nil, false
}

// ToggleTeamMode flips team play before the game starts. Admin only.
func (reg *Registry) ToggleTeamMode(code, socketID string, enabled bool) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	caller := r.PlayerBySocket(socketID)
	if caller == nil || !caller.IsAdmin {
		return nil, ErrUnauthorized
	}
	if r.Started {
		return nil, game.ErrGameAlreadyStarted
	}

	r.TeamMode = enabled
	if enabled {
		r.assignTeams()
	} else {
		r.clearTeams()
	}
	return r, nil
}

// Start deals the game. Admin only, at least two players.
func (reg *Registry) Start(code, socketID string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	caller := r.PlayerBySocket(socketID)
	if caller == nil || !caller.IsAdmin {
		return nil, ErrUnauthorized
	}
	if r.Started {
		return nil, game.ErrGameAlreadyStarted
	}

	g, err := game.NewGame(r.Seats(), r.TeamMode, reg.rng)
	if err != nil {
		return nil, err
	}
	r.Game = g
	r.Started = true

	log.Infof("room %s started with %d players (team mode: %v)", code, len(r.Players), r.TeamMode)
	return r, nil
}

// Leave removes the player behind the socket from their room, promoting
// a new admin or destroying the room as needed. Mid-game the engine
// keeps running with the remaining seats.
func (reg *Registry) Leave(code, socketID string) (*LeaveResult, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	p := r.PlayerBySocket(socketID)
	if p == nil {
		return nil, ErrRoomNotFound
	}

	res := &LeaveResult{Player: p, Room: r}

	for i, member := range r.Players {
		if member == p {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			break
		}
	}

	if r.Started && r.Game != nil {
		res.Abandoned = r.Game.RemoveSeat(p.ID)
	}

	if len(r.Players) == 0 {
		delete(reg.rooms, code)
		res.Room = nil
		res.Destroyed = true
		log.Infof("room %s destroyed", code)
		return res, nil
	}

	if p.IsAdmin {
		r.Players[0].IsAdmin = true
		res.NewAdmin = r.Players[0]
	}
	if r.TeamMode && !r.Started {
		r.assignTeams()
	}

	log.Infof("player %s left room %s", p.Name, code)
	return res, nil
}

// Count reports live rooms, for the health endpoint.
func (reg *Registry) Count() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

func (reg *Registry) newCode() string {
	for {
		b := make([]byte, codeLength)
		for i := range b {
			b[i] = codeAlphabet[reg.rng.Intn(len(codeAlphabet))]
		}
		code := string(b)
		if _, taken := reg.rooms[code]; !taken {
			return code
		}
	}
}
