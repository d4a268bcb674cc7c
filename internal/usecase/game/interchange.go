package game

import (
	"errors"
	"fmt"

	"goban/internal/domain/board"
	"goban/internal/domain/history"
	"goban/internal/domain/sgf"
)

var ErrMalformedTree = errors.New("malformed game tree")

// Load rebuilds a session by replaying every move of the tree in document
// order. Each variation is replayed from the position its parent sequence
// reached and rewound before the next sibling, so siblings share their common
// ancestor. Non-move tokens of every node are kept verbatim, in document
// order, as root metadata.
//
// The returned session is positioned at the root with no branch preferences,
// so redo follows the first variation at every branch point. On error no
// session is returned.
func Load(tree *sgf.GameTree) (*Session, error) {
	s := NewSession()
	if tree == nil {
		return s, nil
	}
	if _, err := s.replay(tree, true); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTree, err)
	}
	s.Rewind()
	s.history.ClearPreferences()
	return s, nil
}

// replay plays the moves of tree and its variations and returns the number of
// plies it left on the board.
func (s *Session) replay(tree *sgf.GameTree, top bool) (int, error) {
	plies := 0
	for i, node := range tree.Nodes {
		if top && i == 0 && !node.HasMoves() {
			s.hasRoot = true
		}

		for _, tok := range node.Tokens {
			if !tok.IsMove() {
				s.metadata = append(s.metadata, tok)
				s.hasRoot = true
				continue
			}
			if tok.Color != board.Black && tok.Color != board.White {
				return plies, fmt.Errorf("node %d: move without color", i)
			}
			if _, err := s.play(tok.Point(), tok.Color); err != nil {
				return plies, fmt.Errorf("node %d: %s at (%d,%d): %w", i, tok.Color, tok.Col, tok.Row, err)
			}
			if !top && plies == 0 {
				s.sequenceStarts[s.history.Current()] = true
			}
			plies++
		}
	}

	for vi, v := range tree.Variations {
		if v == nil || len(v.Nodes) == 0 {
			return plies, fmt.Errorf("variation %d is empty", vi)
		}
		n, err := s.replay(v, false)
		if err != nil {
			return plies, err
		}
		for k := 0; k < n; k++ {
			s.Undo()
		}
	}
	return plies, nil
}

// Dump walks the move graph from the root and rebuilds the game tree. A chain
// of single continuations stays in one node sequence; a branch point opens one
// variation per child in creation order. Nodes that opened a variation in the
// loaded tree keep doing so.
func Dump(s *Session) *sgf.GameTree {
	tree := &sgf.GameTree{}
	if s.hasRoot {
		tree.Nodes = append(tree.Nodes, sgf.Node{Tokens: s.Metadata()})
	}
	s.emit(tree, history.RootID)
	return tree
}

func (s *Session) emit(tree *sgf.GameTree, id history.NodeID) {
	children := s.history.Children(id)
	for len(children) == 1 && !s.sequenceStarts[children[0]] {
		tree.Nodes = append(tree.Nodes, s.moveNode(children[0]))
		children = s.history.Children(children[0])
	}
	for _, child := range children {
		v := &sgf.GameTree{Nodes: []sgf.Node{s.moveNode(child)}}
		s.emit(v, child)
		tree.Variations = append(tree.Variations, v)
	}
}

func (s *Session) moveNode(id history.NodeID) sgf.Node {
	node, _ := s.history.Node(id)
	return sgf.MoveNode(node.Move.Player, node.Move.Point())
}
