package room

import (
	"errors"

	"github.com/tamru/sequence-services/internal/gamesvc/game"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrUnauthorized = errors.New("only the room admin can do that")
)

// MaxPlayers caps a room at twelve seats.
const MaxPlayers = 12

// MaxTeams caps team mode at three teams.
const MaxTeams = 3

// colors is the fixed palette, assigned in join order.
var colors = []string{"red", "blue", "green", "yellow", "purple", "orange"}

// teamColors pairs the shades of each team; the first shade is the
// team's participant token in sequence detection.
var teamColors = [][]string{
	{"red", "green"},
	{"blue", "yellow"},
	{"purple", "orange"},
}

// Player is one roster entry. The socket id stays server-side.
type Player struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	IsAdmin  bool   `json:"isAdmin"`
	Team     *int   `json:"team"`
	SocketID string `json:"-"`
}

// Room is a lobby and, once started, the holder of its single game.
// Join order is preserved because it becomes turn order.
type Room struct {
	Code     string
	Players  []*Player
	TeamMode bool
	Started  bool
	Game     *game.Game
}

// PlayerBySocket finds the member attached to the given connection.
func (r *Room) PlayerBySocket(socketID string) *Player {
	for _, p := range r.Players {
		if p.SocketID == socketID {
			return p
		}
	}
	return nil
}

// Seats freezes the roster into engine turn order.
func (r *Room) Seats() []game.Seat {
	seats := make([]game.Seat, 0, len(r.Players))
	for _, p := range r.Players {
		seats = append(seats, game.Seat{
			PlayerID: p.ID,
			Name:     p.Name,
			Color:    p.Color,
			Team:     p.Team,
		})
	}
	return seats
}

// assignTeams splits the roster round-robin into min(3, ceil(n/2)) teams
// and recolors everyone from the team palettes.
func (r *Room) assignTeams() {
	n := (len(r.Players) + 1) / 2
	if n < 2 {
		n = 2
	}
	if n > MaxTeams {
		n = MaxTeams
	}

	within := make([]int, n)
	for i, p := range r.Players {
		team := i % n
		p.Team = &team
		p.Color = teamColors[team][within[team]%len(teamColors[team])]
		within[team]++
	}
}

// clearTeams restores individual colors in join order.
func (r *Room) clearTeams() {
	for i, p := range r.Players {
		p.Team = nil
		p.Color = colors[i%len(colors)]
	}
}
