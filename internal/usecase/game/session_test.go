package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goban/internal/domain/board"
)

func pt(x, y int) board.Point { return board.NewPoint(x, y) }

type position struct {
	grid board.Grid
	turn board.Color
	last *board.Point
	ko   *board.Point
	ply  int
}

func snapshot(s *Session) position {
	b := s.Board()
	return position{grid: b.Grid(), turn: b.Turn(), last: b.LastMove(), ko: b.Ko(), ply: b.Ply()}
}

// replayPath rebuilds the grid from an empty board using the moves on the
// path from the root to the cursor.
func replayPath(t *testing.T, s *Session) board.Grid {
	t.Helper()
	b := board.New()
	for _, id := range s.History().PathToCurrent() {
		node, ok := s.History().Node(id)
		require.True(t, ok)
		_, err := b.PlayAs(node.Move.Point(), node.Move.Player)
		require.NoError(t, err)
	}
	return b.Grid()
}

// randomSession plays, undoes and redoes at random in a 7x7 corner so that
// captures and ko happen often.
func randomSession(t *testing.T, seed int64, steps int) *Session {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	s := NewSession()
	for i := 0; i < steps; i++ {
		switch r.Intn(10) {
		case 0, 1:
			s.Undo()
		case 2:
			s.Redo()
		default:
			_, _ = s.Play(pt(r.Intn(7), r.Intn(7)))
		}
	}
	return s
}

func TestSession_UndoRedoRoundTrip(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		r := rand.New(rand.NewSource(seed))
		s := NewSession()
		for i := 0; i < 150; i++ {
			if _, err := s.Play(pt(r.Intn(7), r.Intn(7))); err != nil {
				continue
			}
			before := snapshot(s)
			require.True(t, s.Undo())
			_, ok := s.Redo()
			require.True(t, ok)
			require.Equal(t, before, snapshot(s), "seed %d step %d", seed, i)
		}
	}
}

func TestSession_GridMatchesReplayedPath(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		s := randomSession(t, seed, 300)
		assert.Equal(t, replayPath(t, s), s.Board().Grid(), "seed %d", seed)
		assert.Equal(t, s.History().Depth(), s.Board().Ply())
	}
}

func TestSession_RejectedMoveLeavesEverythingUnchanged(t *testing.T) {
	s := NewSession()
	for _, p := range []board.Point{pt(0, 1), pt(5, 5), pt(1, 0)} {
		_, err := s.Play(p)
		require.NoError(t, err)
	}
	before := snapshot(s)
	nodes := s.History().Len()

	_, err := s.Play(pt(0, 0))
	assert.ErrorIs(t, err, board.ErrSuicide)
	assert.Equal(t, before, snapshot(s))
	assert.Equal(t, nodes, s.History().Len())
}

func TestSession_BranchCreation(t *testing.T) {
	s := NewSession()
	_, err := s.Play(pt(3, 3))
	require.NoError(t, err)
	_, err = s.Play(pt(15, 15))
	require.NoError(t, err)
	require.True(t, s.Undo())

	assert.Equal(t, []board.Point{pt(15, 15)}, s.PossibleNextPoints())

	_, err = s.Play(pt(15, 3))
	require.NoError(t, err)
	require.True(t, s.Undo())

	assert.Equal(t, []board.Point{pt(15, 15), pt(15, 3)}, s.PossibleNextPoints())
	m, ok := s.Redo()
	require.True(t, ok)
	assert.Equal(t, pt(15, 3), m.Point())
}

func TestSession_PlayOnExistingBranchWalksIntoIt(t *testing.T) {
	s := NewSession()
	_, err := s.Play(pt(3, 3))
	require.NoError(t, err)
	require.True(t, s.Undo())

	m, err := s.Play(pt(3, 3))
	require.NoError(t, err)
	assert.Equal(t, pt(3, 3), m.Point())
	assert.Equal(t, 2, s.History().Len(), "no duplicate node")
	assert.Equal(t, board.White, s.Board().Turn())
}

func TestSession_UndoAtRootAndRedoAtLeaf(t *testing.T) {
	s := NewSession()
	assert.False(t, s.Undo())
	_, ok := s.Redo()
	assert.False(t, ok)
}

func TestSession_ApplyCommands(t *testing.T) {
	s := NewSession()

	changed, err := s.Apply(PlayCommand(pt(3, 3)))
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.Apply(Command{Kind: CommandUndo})
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.Apply(Command{Kind: CommandUndo})
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = s.Apply(SelectVariationCommand(pt(3, 3)))
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = s.Apply(SelectVariationCommand(pt(9, 9)))
	assert.ErrorIs(t, err, ErrUnknownBranch)

	changed, err = s.Apply(Command{Kind: CommandRedo})
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = s.Apply(Command{Kind: CommandPlay})
	assert.ErrorIs(t, err, ErrUnknownCommand)
	_, err = s.Apply(Command{Kind: "pass"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestParseCommandKind(t *testing.T) {
	k, err := ParseCommandKind(" Undo ")
	require.NoError(t, err)
	assert.Equal(t, CommandUndo, k)

	_, err = ParseCommandKind("resign")
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestSession_CursorAndSeek(t *testing.T) {
	s := NewSession()
	for _, p := range []board.Point{pt(3, 3), pt(15, 15), pt(15, 3)} {
		_, err := s.Play(p)
		require.NoError(t, err)
	}
	cursor := s.Cursor()
	want := snapshot(s)
	assert.Equal(t, []board.Point{pt(3, 3), pt(15, 15), pt(15, 3)}, cursor)

	s.Rewind()
	assert.Equal(t, 0, s.Board().Ply())

	require.NoError(t, s.Seek(cursor))
	assert.Equal(t, want, snapshot(s))

	err := s.Seek([]board.Point{pt(3, 3), pt(0, 0)})
	assert.ErrorIs(t, err, ErrUnknownBranch)
	assert.Equal(t, 0, s.Board().Ply())
}
