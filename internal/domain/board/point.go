package board

import (
	"fmt"
	"strconv"
	"strings"
)

// Size is the side length of the goban. Cells is the number of intersections.
const (
	Size  = 19
	Cells = Size * Size
)

// Point is an intersection of the goban, both coordinates in [0, Size-1].
type Point struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
}

func NewPoint(x, y int) Point {
	return Point{X: x, Y: y}
}

// PointFromIndex is the inverse of Point.Index.
func PointFromIndex(i int) Point {
	return Point{X: i / Size, Y: i % Size}
}

func (p Point) Index() int {
	return p.X*Size + p.Y
}

func (p Point) OnBoard() bool {
	return p.X >= 0 && p.X < Size && p.Y >= 0 && p.Y < Size
}

// String renders the point the way engines print it: column letter without I, row from 1.
func (p Point) String() string {
	col := p.X
	if col > 7 {
		col++
	}
	return fmt.Sprintf("%c%d", 'A'+col, p.Y+1)
}

// ParsePoint reads the notation produced by String, case-insensitively.
func ParsePoint(s string) (Point, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 || s[0] < 'A' || s[0] > 'T' || s[0] == 'I' {
		return Point{}, fmt.Errorf("%w: bad coordinate %q", ErrOffBoard, s)
	}
	col := int(s[0] - 'A')
	if col > 8 {
		col--
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil {
		return Point{}, fmt.Errorf("%w: bad coordinate %q", ErrOffBoard, s)
	}
	p := Point{X: col, Y: row - 1}
	if !p.OnBoard() {
		return Point{}, fmt.Errorf("%w: %q", ErrOffBoard, s)
	}
	return p, nil
}

var offsets = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// neighbors appends the on-board orthogonal neighbours of p to dst.
func (p Point) neighbors(dst []Point) []Point {
	for _, d := range offsets {
		n := Point{X: p.X + d[0], Y: p.Y + d[1]}
		if n.OnBoard() {
			dst = append(dst, n)
		}
	}
	return dst
}

func clonePoint(p *Point) *Point {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Color of a stone. The zero value marks an empty intersection.
type Color uint8

const (
	Empty Color = iota
	Black
	White
)

// Next is the color that moves after c.
func (c Color) Next() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	}
	return Empty
}

// Opponent is an alias of Next kept for capture bookkeeping readability.
func (c Color) Opponent() Color {
	return c.Next()
}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	}
	return "empty"
}

// SGFIdent is the property identifier used for a move of this color.
func (c Color) SGFIdent() string {
	switch c {
	case Black:
		return "B"
	case White:
		return "W"
	}
	return ""
}

func (c Color) MarshalText() ([]byte, error) {
	if c == Empty {
		return []byte{}, nil
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "black", "b":
		*c = Black
	case "white", "w":
		*c = White
	case "", "empty":
		*c = Empty
	default:
		return fmt.Errorf("unknown color %q", text)
	}
	return nil
}
