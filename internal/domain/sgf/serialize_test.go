package sgf

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"goban/internal/domain/board"
)

func TestSerialize_MainLineWithVariations(t *testing.T) {
	tree := &GameTree{
		Nodes: []Node{{Tokens: []Token{MetadataToken("FF", "4"), MetadataToken("SZ", "19")}}},
		Variations: []*GameTree{{
			Nodes: []Node{MoveNode(board.Black, board.NewPoint(3, 3))},
			Variations: []*GameTree{
				{Nodes: []Node{MoveNode(board.White, board.NewPoint(15, 15))}},
				{Nodes: []Node{MoveNode(board.White, board.NewPoint(15, 3))}},
			},
		}},
	}

	assert.Equal(t, "(;FF[4]SZ[19](;B[dd](;W[pp])(;W[pd])))", Serialize(tree))
}

func TestSerialize_EscapesMetadata(t *testing.T) {
	tree := &GameTree{Nodes: []Node{{Tokens: []Token{MetadataToken("C", `a]b\c`), MetadataToken("AB", "aa", "bb")}}}}
	assert.Equal(t, `(;C[a\]b\\c]AB[aa][bb])`, Serialize(tree))
}

func TestSerialize_Nil(t *testing.T) {
	assert.Equal(t, "()", Serialize(nil))
}

func TestCountMoves(t *testing.T) {
	tree := &GameTree{
		Nodes: []Node{{Tokens: []Token{MetadataToken("GM", "1")}}, MoveNode(board.Black, board.NewPoint(0, 0))},
		Variations: []*GameTree{
			{Nodes: []Node{MoveNode(board.White, board.NewPoint(1, 1))}},
			{Nodes: []Node{MoveNode(board.White, board.NewPoint(2, 2)), MoveNode(board.Black, board.NewPoint(3, 3))}},
		},
	}
	assert.Equal(t, 4, tree.CountMoves())
	assert.True(t, tree.Nodes[1].HasMoves())
	assert.False(t, tree.Nodes[0].HasMoves())
}
