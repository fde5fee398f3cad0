package game

import (
	"fmt"
	"math/rand"
)

// State is the turn engine lifecycle. A finished or aborted game accepts
// no further plays; the room itself lives until its players leave.
type State string

const (
	StateAwaitingStart State = "awaiting_start"
	StateInProgress    State = "in_progress"
	StateFinished      State = "finished"
	StateAborted       State = "aborted"
)

// Seat is one player's slot in turn order, frozen at deal time.
type Seat struct {
	PlayerID string
	Name     string
	Color    string
	Team     *int
}

// Winner identifies the participant that reached two sequences.
type Winner struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Team       *int   `json:"team"`
	TeamMode   bool   `json:"teamMode"`
}

// WinSequences is how many recorded sequences a participant needs.
const WinSequences = 2

// handSizes maps player count to dealt hand size (standard rule table;
// counts between brackets take the next-lower bracket).
var handSizes = map[int]int{2: 7, 3: 6, 4: 6, 5: 6, 6: 5, 7: 5, 8: 4, 9: 4, 10: 3, 11: 3, 12: 3}

func handSizeFor(players int) int {
	if n, ok := handSizes[players]; ok {
		return n
	}
	return 3
}

// Game is the authoritative state of one started room. It is mutated by
// exactly one goroutine (the room command dispatcher), never shared.
type Game struct {
	board     *Board
	deck      *Deck
	seats     []Seat
	hands     map[string][]Card
	turn      int
	sequences []Sequence
	locked    map[Coord]struct{} // cells of recorded sequences, frozen
	winner    *Winner
	state     State
	teamMode  bool
	exchanged bool // dead-card exchange already used this turn

	participant map[string]string // chip color -> participant token
}

// NewGame deals a fresh game for the seated players. Seat order is turn
// order. Under team mode every seat must carry a team index; the team's
// participant token is the color of its earliest seat.
func NewGame(seats []Seat, teamMode bool, rng *rand.Rand) (*Game, error) {
	if len(seats) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	g := &Game{
		board:       NewBoard(),
		deck:        NewDeck(rng),
		seats:       append([]Seat(nil), seats...),
		hands:       make(map[string][]Card, len(seats)),
		locked:      make(map[Coord]struct{}),
		state:       StateInProgress,
		teamMode:    teamMode,
		participant: make(map[string]string, len(seats)),
	}

	teamLead := make(map[int]string)
	for _, s := range g.seats {
		if teamMode && s.Team != nil {
			lead, ok := teamLead[*s.Team]
			if !ok {
				lead = s.Color
				teamLead[*s.Team] = lead
			}
			g.participant[s.Color] = lead
		} else {
			g.participant[s.Color] = s.Color
		}
	}

	size := handSizeFor(len(g.seats))
	for _, s := range g.seats {
		hand := make([]Card, 0, size)
		for i := 0; i < size; i++ {
			c, ok := g.deck.Draw()
			if !ok {
				return nil, fmt.Errorf("deal of %d cards failed: %w", size, ErrDeckExhausted)
			}
			hand = append(hand, c)
		}
		g.hands[s.PlayerID] = hand
	}

	return g, nil
}

func (g *Game) State() State          { return g.state }
func (g *Game) Board() *Board         { return g.board }
func (g *Game) Deck() *Deck           { return g.deck }
func (g *Game) Turn() int             { return g.turn }
func (g *Game) Winner() *Winner       { return g.winner }
func (g *Game) TeamMode() bool        { return g.teamMode }
func (g *Game) Seats() []Seat         { return append([]Seat(nil), g.seats...) }
func (g *Game) Sequences() []Sequence { return append([]Sequence(nil), g.sequences...) }

func (g *Game) participantOf(chip string) string {
	if p, ok := g.participant[chip]; ok {
		return p
	}
	return chip
}

// Hand returns a copy of the player's private hand.
func (g *Game) Hand(playerID string) []Card {
	return append([]Card(nil), g.hands[playerID]...)
}

// DeadCards lists the cards in the player's hand with no playable cell
// left. The holder may exchange one per turn without losing the turn.
func (g *Game) DeadCards(playerID string) []Card {
	var dead []Card
	for _, c := range g.hands[playerID] {
		if g.board.IsCardDead(c) {
			dead = append(dead, c)
		}
	}
	return dead
}

// PlayResult reports what a successful play did to the board.
type PlayResult struct {
	Placed       bool
	Removed      bool
	NewSequences []Sequence
	Winner       *Winner
}

// Play validates and applies one card at (row,col) for the player.
// Rejections leave all state untouched.
func (g *Game) Play(playerID string, card Card, row, col int) (*PlayResult, error) {
	if g.state == StateFinished || g.state == StateAborted {
		return nil, ErrGameAlreadyFinished
	}
	current := g.seats[g.turn]
	if current.PlayerID != playerID {
		return nil, ErrNotYourTurn
	}
	idx := g.handIndex(playerID, card)
	if idx < 0 {
		return nil, ErrCardNotInHand
	}

	res := &PlayResult{}
	switch {
	case card.IsOneEyedJack():
		if err := g.removeOpponentChip(current, row, col); err != nil {
			return nil, err
		}
		res.Removed = true
	case card.IsTwoEyedJack():
		if err := g.board.PlaceChip(row, col, current.Color, card, true); err != nil {
			return nil, err
		}
		res.Placed = true
	default:
		if err := g.board.PlaceChip(row, col, current.Color, card, false); err != nil {
			return nil, err
		}
		res.Placed = true
	}

	g.removeFromHand(playerID, idx)
	g.deck.Discard(card)

	if res.Placed {
		found := DetectNewAt(g.board, g.sequences, g.participantOf, row, col)
		g.recordSequences(found)
		res.NewSequences = found

		participant := g.participantOf(current.Color)
		if g.sequenceCount(participant) >= WinSequences {
			g.state = StateFinished
			g.winner = &Winner{
				PlayerID:   current.PlayerID,
				PlayerName: current.Name,
				Team:       current.Team,
				TeamMode:   g.teamMode,
			}
			res.Winner = g.winner
			return res, nil
		}
	}

	if c, ok := g.deck.Draw(); ok {
		g.hands[playerID] = append(g.hands[playerID], c)
	}
	g.advanceTurn()
	return res, nil
}

func (g *Game) removeOpponentChip(current Seat, row, col int) error {
	cell, err := g.board.Cell(row, col)
	if err != nil {
		return err
	}
	if cell.Chip != "" && g.participantOf(cell.Chip) == g.participantOf(current.Color) {
		return fmt.Errorf("cannot remove your own or a teammate's chip: %w", ErrIllegalMove)
	}
	if _, locked := g.locked[Coord{Row: row, Col: col}]; locked {
		return fmt.Errorf("chip belongs to a completed sequence: %w", ErrIllegalMove)
	}
	_, err = g.board.RemoveChip(row, col)
	return err
}

// ExchangeDeadCard swaps one dead card for a fresh draw. Allowed only for
// the player whose turn it is, at most once per turn, and it does not
// consume the turn's placement.
func (g *Game) ExchangeDeadCard(playerID string, card Card) (Card, error) {
	if g.state == StateFinished || g.state == StateAborted {
		return "", ErrGameAlreadyFinished
	}
	if g.seats[g.turn].PlayerID != playerID {
		return "", ErrNotYourTurn
	}
	if g.exchanged {
		return "", fmt.Errorf("dead card already exchanged this turn: %w", ErrIllegalMove)
	}
	idx := g.handIndex(playerID, card)
	if idx < 0 {
		return "", ErrCardNotInHand
	}
	if !g.board.IsCardDead(card) {
		return "", fmt.Errorf("card %s is still playable: %w", card, ErrIllegalMove)
	}

	g.removeFromHand(playerID, idx)
	g.deck.Discard(card)
	g.exchanged = true

	replacement, ok := g.deck.Draw()
	if !ok {
		return "", nil
	}
	g.hands[playerID] = append(g.hands[playerID], replacement)
	return replacement, nil
}

// RemoveSeat takes a departed player out of rotation. Their hand goes to
// the discard pile and their chips stay on the board. Returns true when
// fewer than two players remain and the game is abandoned (no winner).
func (g *Game) RemoveSeat(playerID string) bool {
	idx := -1
	for i, s := range g.seats {
		if s.PlayerID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	for _, c := range g.hands[playerID] {
		g.deck.Discard(c)
	}
	delete(g.hands, playerID)
	g.seats = append(g.seats[:idx], g.seats[idx+1:]...)

	if idx < g.turn {
		g.turn--
	}
	if len(g.seats) > 0 {
		g.turn %= len(g.seats)
	} else {
		g.turn = 0
	}

	if g.state == StateInProgress && len(g.seats) < 2 {
		g.state = StateAborted
		return true
	}
	return false
}

// recordSequences books newly detected sequences and freezes their cells
// against one-eyed jack removal.
func (g *Game) recordSequences(found []Sequence) {
	for _, s := range found {
		g.sequences = append(g.sequences, s)
		for _, c := range s.Cells {
			g.locked[c] = struct{}{}
		}
	}
}

func (g *Game) advanceTurn() {
	g.turn = (g.turn + 1) % len(g.seats)
	g.exchanged = false
}

func (g *Game) sequenceCount(participant string) int {
	n := 0
	for _, s := range g.sequences {
		if s.Color == participant {
			n++
		}
	}
	return n
}

func (g *Game) handIndex(playerID string, card Card) int {
	for i, c := range g.hands[playerID] {
		if c == card {
			return i
		}
	}
	return -1
}

func (g *Game) removeFromHand(playerID string, idx int) {
	hand := g.hands[playerID]
	g.hands[playerID] = append(hand[:idx], hand[idx+1:]...)
}
