package game

import (
	"errors"
	"fmt"
	"strings"

	"goban/internal/domain/board"
	"goban/internal/domain/history"
	"goban/internal/domain/sgf"
)

// Session is one open game: the board, its move graph and the root metadata of
// the game tree it came from. The two halves are only ever mutated together.
type Session struct {
	board    *board.Board
	history  *history.Graph
	metadata []sgf.Token
	hasRoot  bool
	// sequenceStarts marks nodes that opened a variation in the loaded tree,
	// so Dump can give the tree back the same nesting.
	sequenceStarts map[history.NodeID]bool
}

func NewSession() *Session {
	return &Session{
		board:          board.New(),
		history:        history.New(),
		sequenceStarts: make(map[history.NodeID]bool),
	}
}

// NewSessionWithMetadata starts an empty game whose root node carries the given
// properties.
func NewSessionWithMetadata(metadata []sgf.Token) *Session {
	s := NewSession()
	s.hasRoot = true
	s.metadata = append([]sgf.Token(nil), metadata...)
	return s
}

func (s *Session) Board() *board.Board {
	return s.board
}

func (s *Session) History() *history.Graph {
	return s.history
}

func (s *Session) Metadata() []sgf.Token {
	return append([]sgf.Token(nil), s.metadata...)
}

// Play walks into an existing branch when the current node already has a
// continuation at p, otherwise plays a new move and records it.
func (s *Session) Play(p board.Point) (board.Move, error) {
	if s.history.SelectVariation(p) {
		m, _ := s.Redo()
		return m, nil
	}
	return s.play(p, s.board.Turn())
}

func (s *Session) play(p board.Point, color board.Color) (board.Move, error) {
	prevLast, prevKo := s.board.LastMove(), s.board.Ko()
	m, err := s.board.PlayAs(p, color)
	if err != nil {
		return board.Move{}, err
	}
	if err := s.history.Push(m); err != nil {
		s.board.UndoLast(m, prevLast, prevKo)
		return board.Move{}, err
	}
	return m, nil
}

// Undo steps back one ply. It reports false at the start of the game.
func (s *Session) Undo() bool {
	res, ok := s.history.Pop()
	if !ok {
		return false
	}
	s.board.UndoLast(res.Popped, res.PreviousPoint(), res.PreviousKo())
	return true
}

// Redo replays the preferred continuation. It reports false at a leaf.
func (s *Session) Redo() (board.Move, bool) {
	m, ok := s.history.Advance()
	if !ok {
		return board.Move{}, false
	}
	s.board.Redo(m)
	return m, true
}

func (s *Session) SelectVariation(p board.Point) bool {
	return s.history.SelectVariation(p)
}

func (s *Session) PossibleNextPoints() []board.Point {
	return s.history.PossibleNextPoints()
}

// Rewind undoes every move back to the root.
func (s *Session) Rewind() {
	for s.Undo() {
	}
}

// Cursor lists the points played from the root to the current node.
func (s *Session) Cursor() []board.Point {
	path := s.history.PathToCurrent()
	points := make([]board.Point, 0, len(path))
	for _, id := range path {
		node, _ := s.history.Node(id)
		points = append(points, node.Move.Point())
	}
	return points
}

var ErrUnknownBranch = errors.New("no recorded continuation at this point")

// Seek rewinds and follows recorded continuations through points.
// On failure the session is left at the root.
func (s *Session) Seek(points []board.Point) error {
	s.Rewind()
	for i, p := range points {
		if !s.history.SelectVariation(p) {
			s.Rewind()
			return fmt.Errorf("%w: ply %d at %s", ErrUnknownBranch, i+1, p)
		}
		s.Redo()
	}
	return nil
}

// CommandKind is the closed set of inputs a session accepts.
type CommandKind string

const (
	CommandPlay            CommandKind = "play"
	CommandUndo            CommandKind = "undo"
	CommandRedo            CommandKind = "redo"
	CommandSelectVariation CommandKind = "select_variation"
)

var ErrUnknownCommand = errors.New("unknown command")

type Command struct {
	Kind  CommandKind  `json:"kind"`
	Point *board.Point `json:"point,omitempty"`
}

func PlayCommand(p board.Point) Command {
	return Command{Kind: CommandPlay, Point: &p}
}

func SelectVariationCommand(p board.Point) Command {
	return Command{Kind: CommandSelectVariation, Point: &p}
}

// ParseCommandKind accepts the command names case-insensitively.
func ParseCommandKind(s string) (CommandKind, error) {
	switch k := CommandKind(strings.ToLower(strings.TrimSpace(s))); k {
	case CommandPlay, CommandUndo, CommandRedo, CommandSelectVariation:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// Apply runs one command and reports whether the position changed.
// SelectVariation never changes the position, only the redo target, and fails
// with ErrUnknownBranch when there is no continuation at the point.
func (s *Session) Apply(cmd Command) (bool, error) {
	switch cmd.Kind {
	case CommandPlay:
		if cmd.Point == nil {
			return false, fmt.Errorf("%w: play without a point", ErrUnknownCommand)
		}
		if _, err := s.Play(*cmd.Point); err != nil {
			return false, err
		}
		return true, nil
	case CommandUndo:
		return s.Undo(), nil
	case CommandRedo:
		_, ok := s.Redo()
		return ok, nil
	case CommandSelectVariation:
		if cmd.Point == nil {
			return false, fmt.Errorf("%w: select_variation without a point", ErrUnknownCommand)
		}
		if !s.SelectVariation(*cmd.Point) {
			return false, fmt.Errorf("%w at %s", ErrUnknownBranch, *cmd.Point)
		}
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
}
