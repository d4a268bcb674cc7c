package sgf

import "goban/internal/domain/board"

// GameTree представляет одно дерево в SGF (последовательность узлов + варианты)
type GameTree struct {
	Nodes      []Node      `json:"nodes" bson:"nodes"`                               // основная линия этого дерева
	Variations []*GameTree `json:"variations,omitempty" bson:"variations,omitempty"` // вариативные линии
}

// Node представляет один узел SGF (набор токенов: ходы B/W и прочие свойства)
type Node struct {
	Tokens []Token `json:"tokens" bson:"tokens"`
}

type TokenKind string

const (
	TokenMove     TokenKind = "move"
	TokenMetadata TokenKind = "metadata"
)

// Token is either a move with a 1-based (Col, Row) coordinate or an opaque
// metadata property (FF, SZ, PB, C, ...) carried through untouched.
type Token struct {
	Kind   TokenKind   `json:"kind" bson:"kind"`
	Color  board.Color `json:"color,omitempty" bson:"color,omitempty"`
	Col    int         `json:"col,omitempty" bson:"col,omitempty"`
	Row    int         `json:"row,omitempty" bson:"row,omitempty"`
	Ident  string      `json:"ident,omitempty" bson:"ident,omitempty"`
	Values []string    `json:"values,omitempty" bson:"values,omitempty"`
}

func MoveToken(c board.Color, col, row int) Token {
	return Token{Kind: TokenMove, Color: c, Col: col, Row: row}
}

func MetadataToken(ident string, values ...string) Token {
	return Token{Kind: TokenMetadata, Ident: ident, Values: values}
}

func (t Token) IsMove() bool {
	return t.Kind == TokenMove
}

// Point converts the 1-based coordinate of a move token to a board point.
func (t Token) Point() board.Point {
	return board.Point{X: t.Col - 1, Y: t.Row - 1}
}

// MoveNode is a node holding a single move.
func MoveNode(c board.Color, p board.Point) Node {
	return Node{Tokens: []Token{MoveToken(c, p.X+1, p.Y+1)}}
}

// HasMoves reports whether the node holds at least one move token.
func (n Node) HasMoves() bool {
	for _, t := range n.Tokens {
		if t.IsMove() {
			return true
		}
	}
	return false
}

// CountMoves counts the move tokens of the whole tree, variations included.
func (t *GameTree) CountMoves() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, node := range t.Nodes {
		for _, tok := range node.Tokens {
			if tok.IsMove() {
				n++
			}
		}
	}
	for _, v := range t.Variations {
		n += v.CountMoves()
	}
	return n
}
