package game

// SequenceLength is five aligned same-participant chips.
const SequenceLength = 5

// Sequence is a completed run of five cells. Color is the participant
// token (a player color, or the team's lead color under team mode).
// Recorded sequences are immutable: once appended they are never removed,
// and their cells are locked against one-eyed jack removal.
type Sequence struct {
	Color string                `json:"color"`
	Cells [SequenceLength]Coord `json:"cells"`
}

// Scan order is fixed so detection is deterministic and order-stable:
// east, south, south-east, north-east.
var directions = [4]Coord{
	{Row: 0, Col: 1},
	{Row: 1, Col: 0},
	{Row: 1, Col: 1},
	{Row: -1, Col: 1},
}

// cellsOf collects the board cells already used by recorded sequences of
// one participant.
func cellsOf(recorded []Sequence, participant string) map[Coord]struct{} {
	used := make(map[Coord]struct{})
	for _, s := range recorded {
		if s.Color != participant {
			continue
		}
		for _, c := range s.Cells {
			used[c] = struct{}{}
		}
	}
	return used
}

// windowFor checks whether the five cells starting at (row,col) along dir
// all belong to the participant (corners qualify for everyone). partOf
// maps a chip color to its participant token.
func windowFor(b *Board, partOf func(string) string, participant string, row, col int, dir Coord) ([SequenceLength]Coord, bool) {
	var cells [SequenceLength]Coord
	for i := 0; i < SequenceLength; i++ {
		r, c := row+i*dir.Row, col+i*dir.Col
		if !inBounds(r, c) {
			return cells, false
		}
		cell := b.cells[r][c]
		if !cell.IsCorner && (cell.Chip == "" || partOf(cell.Chip) != participant) {
			return cells, false
		}
		cells[i] = Coord{Row: r, Col: c}
	}
	return cells, true
}

// admit enforces the overlap rule: a new sequence may share at most one
// cell with the participant's already-counted sequences. A 9-chip line
// therefore yields exactly two sequences joined at the middle chip.
func admit(cells [SequenceLength]Coord, used map[Coord]struct{}) bool {
	shared := 0
	for _, c := range cells {
		if _, ok := used[c]; ok {
			shared++
			if shared > 1 {
				return false
			}
		}
	}
	return true
}

// DetectNewAt finds sequences formed through the just-placed chip at
// (row,col). Only windows containing that cell are scanned, so the cost
// after each placement stays constant.
func DetectNewAt(b *Board, recorded []Sequence, partOf func(string) string, row, col int) []Sequence {
	cell, err := b.Cell(row, col)
	if err != nil || cell.Chip == "" {
		return nil
	}
	participant := partOf(cell.Chip)
	used := cellsOf(recorded, participant)

	var found []Sequence
	for _, dir := range directions {
		// Earliest window start first keeps results order-stable.
		for k := SequenceLength - 1; k >= 0; k-- {
			start := Coord{Row: row - k*dir.Row, Col: col - k*dir.Col}
			cells, ok := windowFor(b, partOf, participant, start.Row, start.Col, dir)
			if !ok || !admit(cells, used) {
				continue
			}
			for _, c := range cells {
				used[c] = struct{}{}
			}
			found = append(found, Sequence{Color: participant, Cells: cells})
		}
	}
	return found
}

// windowParticipant finds the owner of the first chip inside the five
// cells starting at (row,col) along dir.
func windowParticipant(b *Board, partOf func(string) string, row, col int, dir Coord) (string, bool) {
	for i := 0; i < SequenceLength; i++ {
		r, c := row+i*dir.Row, col+i*dir.Col
		if !inBounds(r, c) {
			return "", false
		}
		cell := b.cells[r][c]
		if !cell.IsCorner && cell.Chip != "" {
			return partOf(cell.Chip), true
		}
	}
	return "", false
}

// DetectNew scans the whole board and returns every sequence not already
// recorded. Running it twice over a static board yields nothing the
// second time.
func DetectNew(b *Board, recorded []Sequence, partOf func(string) string) []Sequence {
	usedBy := make(map[string]map[Coord]struct{})

	var found []Sequence
	for _, dir := range directions {
		for row := 0; row < BoardSize; row++ {
			for col := 0; col < BoardSize; col++ {
				// The window may start on a wild corner, so the
				// participant is read from its first real chip.
				participant, ok := windowParticipant(b, partOf, row, col, dir)
				if !ok {
					continue
				}
				cells, ok := windowFor(b, partOf, participant, row, col, dir)
				if !ok {
					continue
				}
				used, ok := usedBy[participant]
				if !ok {
					used = cellsOf(recorded, participant)
					usedBy[participant] = used
				}
				if !admit(cells, used) {
					continue
				}
				for _, c := range cells {
					used[c] = struct{}{}
				}
				found = append(found, Sequence{Color: participant, Cells: cells})
			}
		}
	}
	return found
}
