package game

import (
	"encoding/json"
	"fmt"
)

// BoardSize is the fixed 10x10 grid of the printed game board.
const BoardSize = 10

const cornerToken = "*"

// boardLayout is the printed card on every cell, taken from the physical
// board. Every non-jack card appears exactly twice; the four extreme
// cells are wild corners. Jacks are never printed on the board.
var boardLayout = [BoardSize][BoardSize]string{
	{"*", "2♠", "3♠", "4♠", "5♠", "6♠", "7♠", "8♠", "9♠", "*"},
	{"6♣", "5♣", "4♣", "3♣", "2♣", "A♥", "K♥", "Q♥", "10♥", "10♠"},
	{"7♣", "A♠", "2♦", "3♦", "4♦", "5♦", "6♦", "7♦", "9♥", "Q♠"},
	{"8♣", "K♠", "6♣", "5♣", "4♣", "3♣", "2♣", "8♦", "8♥", "K♠"},
	{"9♣", "Q♠", "7♣", "6♥", "5♥", "4♥", "A♥", "9♦", "7♥", "A♠"},
	{"10♣", "10♠", "8♣", "7♥", "2♥", "3♥", "K♥", "10♦", "6♥", "2♦"},
	{"Q♣", "9♠", "9♣", "8♥", "9♥", "10♥", "Q♥", "Q♦", "5♥", "3♦"},
	{"K♣", "8♠", "10♣", "Q♣", "K♣", "A♣", "A♦", "K♦", "4♥", "4♦"},
	{"A♣", "7♠", "6♠", "5♠", "4♠", "3♠", "2♠", "2♥", "3♥", "5♦"},
	{"*", "A♦", "K♦", "Q♦", "10♦", "9♦", "8♦", "7♦", "6♦", "*"},
}

// Coord addresses a board cell.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Cell is one board position: the printed card never changes after
// construction, only the chip mutates.
type Cell struct {
	Card     Card   `json:"card"`
	Chip     string `json:"chip,omitempty"`
	IsCorner bool   `json:"isCorner"`
}

// Board tracks chip occupancy over the fixed layout. Corners count as
// occupied by every participant and are never placeable or removable.
type Board struct {
	cells [BoardSize][BoardSize]Cell
}

func NewBoard() *Board {
	b := &Board{}
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			b.cells[r][c] = Cell{
				Card:     Card(boardLayout[r][c]),
				IsCorner: boardLayout[r][c] == cornerToken,
			}
		}
	}
	return b
}

// MarshalJSON emits the raw 10x10 grid, the shape web clients render.
func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.cells)
}

func inBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

func (b *Board) Cell(row, col int) (Cell, error) {
	if !inBounds(row, col) {
		return Cell{}, fmt.Errorf("cell (%d,%d) is off the board: %w", row, col, ErrIllegalMove)
	}
	return b.cells[row][col], nil
}

// PlaceChip puts a chip for color on the cell. A wild placement (two-eyed
// jack) skips the printed-card match but not the occupancy rules.
func (b *Board) PlaceChip(row, col int, color string, card Card, wild bool) error {
	if !inBounds(row, col) {
		return fmt.Errorf("cell (%d,%d) is off the board: %w", row, col, ErrIllegalMove)
	}
	cell := &b.cells[row][col]
	if cell.IsCorner {
		return fmt.Errorf("corners are wild and never placeable: %w", ErrIllegalMove)
	}
	if cell.Chip != "" {
		return fmt.Errorf("cell (%d,%d) is already occupied: %w", row, col, ErrIllegalMove)
	}
	if !wild && cell.Card != card {
		return fmt.Errorf("card %s does not match board cell %s: %w", card, cell.Card, ErrIllegalMove)
	}
	cell.Chip = color
	return nil
}

// RemoveChip clears the cell and returns the removed chip color.
// Ownership and sequence-membership checks belong to the engine.
func (b *Board) RemoveChip(row, col int) (string, error) {
	if !inBounds(row, col) {
		return "", fmt.Errorf("cell (%d,%d) is off the board: %w", row, col, ErrIllegalMove)
	}
	cell := &b.cells[row][col]
	if cell.IsCorner {
		return "", fmt.Errorf("corner chips cannot be removed: %w", ErrIllegalMove)
	}
	if cell.Chip == "" {
		return "", fmt.Errorf("cell (%d,%d) holds no chip: %w", row, col, ErrIllegalMove)
	}
	chip := cell.Chip
	cell.Chip = ""
	return chip, nil
}

// printedCells returns the (at most two) cells printing the card.
func (b *Board) printedCells(card Card) []Coord {
	var out []Coord
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if b.cells[r][c].Card == card {
				out = append(out, Coord{Row: r, Col: c})
			}
		}
	}
	return out
}

// IsCardDead reports whether a non-jack card has no playable cell left,
// i.e. both board cells printing it already hold a chip.
func (b *Board) IsCardDead(card Card) bool {
	if card.IsJack() {
		return false
	}
	cells := b.printedCells(card)
	if len(cells) == 0 {
		return false
	}
	for _, pos := range cells {
		if b.cells[pos.Row][pos.Col].Chip == "" {
			return false
		}
	}
	return true
}
