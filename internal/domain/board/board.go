package board

import "fmt"

// Move is one accepted placement together with everything needed to take it
// back: the groups it removed and the ko point it left behind.
// A Move with an Empty player is the "no move" sentinel.
type Move struct {
	Player   Color   `json:"player" bson:"player"`
	Index    int     `json:"index" bson:"index"`
	Captured []Group `json:"captured,omitempty" bson:"captured,omitempty"`
	Ko       *Point  `json:"ko,omitempty" bson:"ko,omitempty"`
}

func (m Move) IsNone() bool {
	return m.Player == Empty
}

func (m Move) Point() Point {
	return PointFromIndex(m.Index)
}

func (m Move) CapturedStones() int {
	return countStones(m.Captured)
}

// Board is the stone grid plus the turn state. It performs no I/O and keeps no
// history: undoing requires the caller to supply the previous last move and ko.
type Board struct {
	grid     Grid
	turn     Color
	lastMove *Point
	ko       *Point
	ply      int
	captures [3]int
}

func New() *Board {
	return &Board{turn: Black}
}

// Play places a stone for the side to move.
func (b *Board) Play(p Point) (Move, error) {
	return b.PlayAs(p, b.turn)
}

// PlayAs places a stone of the given color. On success the captured groups are
// removed, ko/last move/ply are updated and the turn passes to color.Next().
// On failure the grid is left exactly as it was.
func (b *Board) PlayAs(p Point, color Color) (Move, error) {
	if color != Black && color != White {
		return Move{}, fmt.Errorf("%w: no color to play", ErrIllegalMove)
	}
	if !p.OnBoard() {
		return Move{}, fmt.Errorf("%w (%d,%d)", ErrOffBoard, p.X, p.Y)
	}
	idx := p.Index()
	if b.grid[idx] != Empty {
		return Move{}, fmt.Errorf("%w at %s", ErrOccupied, p)
	}

	b.grid[idx] = color
	captured, err := IsLegal(&b.grid, color, p, b.lastMove, b.ko)
	if err != nil {
		b.grid[idx] = Empty
		return Move{}, err
	}

	b.remove(captured)
	m := Move{
		Player:   color,
		Index:    idx,
		Captured: captured,
		Ko:       koAfter(&b.grid, p, captured),
	}
	b.captures[color] += m.CapturedStones()
	b.ko = clonePoint(m.Ko)
	b.lastMove = &p
	b.turn = color.Next()
	b.ply++
	return m, nil
}

// UndoLast takes back m, which must be the last move applied to the board.
// Captured stones go back as the opponent of the mover.
func (b *Board) UndoLast(m Move, prevLast, prevKo *Point) {
	b.grid[m.Index] = Empty
	restore := m.Player.Opponent()
	for _, g := range m.Captured {
		for _, s := range g.Stones {
			b.grid[s.Index()] = restore
		}
	}
	b.captures[m.Player] -= m.CapturedStones()
	b.turn = m.Player
	b.ply--
	b.lastMove = clonePoint(prevLast)
	b.ko = clonePoint(prevKo)
}

// Redo re-applies a move that was already validated when it was first played.
func (b *Board) Redo(m Move) {
	b.grid[m.Index] = m.Player
	b.remove(m.Captured)
	b.captures[m.Player] += m.CapturedStones()
	last := m.Point()
	b.lastMove = &last
	b.ko = clonePoint(m.Ko)
	b.turn = m.Player.Next()
	b.ply++
}

func (b *Board) remove(groups []Group) {
	for _, g := range groups {
		for _, s := range g.Stones {
			b.grid[s.Index()] = Empty
		}
	}
}

// Grid returns a copy of the current grid.
func (b *Board) Grid() Grid {
	return b.grid
}

func (b *Board) At(p Point) Color {
	return b.grid.At(p)
}

func (b *Board) Turn() Color {
	return b.turn
}

func (b *Board) LastMove() *Point {
	return clonePoint(b.lastMove)
}

func (b *Board) Ko() *Point {
	return clonePoint(b.ko)
}

func (b *Board) Ply() int {
	return b.ply
}

// Captures is the number of stones the given color has taken so far.
func (b *Board) Captures(c Color) int {
	if c != Black && c != White {
		return 0
	}
	return b.captures[c]
}

// Rows renders the grid row by row (y outer, x inner): '.' empty, 'X' black, 'O' white.
func (b *Board) Rows() []string {
	rows := make([]string, Size)
	line := make([]byte, Size)
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			switch b.grid[Point{X: x, Y: y}.Index()] {
			case Black:
				line[x] = 'X'
			case White:
				line[x] = 'O'
			default:
				line[x] = '.'
			}
		}
		rows[y] = string(line)
	}
	return rows
}
