package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pt(x, y int) Point { return Point{X: x, Y: y} }

// place puts stones of one color via PlayAs, failing the test on rejection.
func place(t *testing.T, b *Board, c Color, points ...Point) {
	t.Helper()
	for _, p := range points {
		_, err := b.PlayAs(p, c)
		require.NoError(t, err, "placing %s at %s", c, p)
	}
}

// koShape builds the classic ko around (6,6) and returns the board just before
// Black takes the white stone at (6,6) by playing (7,6).
//
//	. X O .
//	X O . O
//	. X O .
func koShape(t *testing.T) *Board {
	t.Helper()
	b := New()
	place(t, b, Black, pt(6, 5), pt(5, 6), pt(6, 7))
	place(t, b, White, pt(7, 5), pt(6, 6), pt(8, 6), pt(7, 7))
	return b
}

func TestPoint_IndexRoundTrip(t *testing.T) {
	for i := 0; i < Cells; i++ {
		assert.Equal(t, i, PointFromIndex(i).Index())
	}
	assert.Equal(t, 3*19+4, pt(3, 4).Index())
}

func TestPoint_StringSkipsI(t *testing.T) {
	assert.Equal(t, "A1", pt(0, 0).String())
	assert.Equal(t, "H9", pt(7, 8).String())
	assert.Equal(t, "J9", pt(8, 8).String())
	assert.Equal(t, "T19", pt(18, 18).String())
}

func TestParsePoint(t *testing.T) {
	for _, p := range []Point{pt(0, 0), pt(7, 3), pt(8, 3), pt(18, 18)} {
		got, err := ParsePoint(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	got, err := ParsePoint(" j10 ")
	require.NoError(t, err)
	assert.Equal(t, pt(8, 9), got)

	for _, s := range []string{"", "I3", "U1", "A0", "A20", "Dx"} {
		_, err := ParsePoint(s)
		assert.ErrorIs(t, err, ErrOffBoard, s)
	}
}

func TestColor_Next(t *testing.T) {
	assert.Equal(t, White, Black.Next())
	assert.Equal(t, Black, White.Next())
	assert.Equal(t, Empty, Empty.Next())
}

func TestColor_TextRoundTrip(t *testing.T) {
	var c Color
	require.NoError(t, c.UnmarshalText([]byte("W")))
	assert.Equal(t, White, c)
	require.NoError(t, c.UnmarshalText([]byte("black")))
	assert.Equal(t, Black, c)
	assert.Error(t, c.UnmarshalText([]byte("red")))

	text, err := White.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "white", string(text))
}

func TestPlay_FirstMove(t *testing.T) {
	b := New()
	m, err := b.Play(pt(3, 3))
	require.NoError(t, err)

	grid := b.Grid()
	assert.Equal(t, Black, grid[3*19+3])
	assert.Equal(t, White, b.Turn())
	require.NotNil(t, b.LastMove())
	assert.Equal(t, pt(3, 3), *b.LastMove())
	assert.Nil(t, b.Ko())
	assert.Equal(t, 1, b.Ply())
	assert.Equal(t, Move{Player: Black, Index: 3*19 + 3, Captured: nil}, m)
}

func TestPlay_ScenarioWithoutCaptures(t *testing.T) {
	b := New()
	for _, p := range []Point{pt(3, 3), pt(3, 4), pt(4, 3), pt(4, 4)} {
		m, err := b.Play(p)
		require.NoError(t, err)
		assert.Empty(t, m.Captured)
	}
	assert.Equal(t, Black, b.Turn())
	assert.Equal(t, 4, b.Ply())
}

func TestPlay_CapturesSurroundedStone(t *testing.T) {
	b := New()
	for _, p := range []Point{pt(3, 3), pt(3, 4), pt(2, 4), pt(10, 10), pt(4, 4), pt(10, 11)} {
		_, err := b.Play(p)
		require.NoError(t, err)
	}

	m, err := b.Play(pt(3, 5))
	require.NoError(t, err)
	require.Len(t, m.Captured, 1)
	assert.Equal(t, []Point{pt(3, 4)}, m.Captured[0].Stones)
	assert.Equal(t, White, m.Captured[0].Team)
	assert.Equal(t, Empty, b.At(pt(3, 4)))
	assert.Equal(t, 1, b.Captures(Black))
	// the capturing stone keeps four liberties, so no ko
	assert.Nil(t, b.Ko())
}

func TestPlay_OccupiedAndOffBoard(t *testing.T) {
	b := New()
	_, err := b.Play(pt(0, 0))
	require.NoError(t, err)

	_, err = b.Play(pt(0, 0))
	assert.ErrorIs(t, err, ErrOccupied)
	assert.ErrorIs(t, err, ErrIllegalMove)

	_, err = b.Play(pt(19, 0))
	assert.ErrorIs(t, err, ErrOffBoard)
	assert.Equal(t, White, b.Turn())
}

func TestPlay_SuicideRejectedAndGridUnchanged(t *testing.T) {
	b := New()
	place(t, b, Black, pt(0, 1), pt(1, 0))
	before := b.Grid()
	turn, ply := b.Turn(), b.Ply()

	_, err := b.PlayAs(pt(0, 0), White)
	assert.ErrorIs(t, err, ErrSuicide)
	assert.Equal(t, before, b.Grid())
	assert.Equal(t, turn, b.Turn())
	assert.Equal(t, ply, b.Ply())
}

func TestPlay_MultiStoneSuicideRejected(t *testing.T) {
	b := New()
	// white pair at (0,0)-(0,1) would have no liberty left after (0,1)
	place(t, b, Black, pt(1, 0), pt(1, 1), pt(0, 2))
	place(t, b, White, pt(0, 0))
	before := b.Grid()

	_, err := b.PlayAs(pt(0, 1), White)
	assert.ErrorIs(t, err, ErrSuicide)
	assert.Equal(t, before, b.Grid())
}

func TestPlay_CaptureBeatsSuicide(t *testing.T) {
	b := New()
	// white (0,0) in atari at (1,0); black (1,0) has no liberties until it captures
	place(t, b, White, pt(0, 0), pt(2, 0), pt(1, 1))
	place(t, b, Black, pt(0, 1))

	m, err := b.PlayAs(pt(1, 0), Black)
	require.NoError(t, err)
	assert.Equal(t, 1, m.CapturedStones())
	assert.Equal(t, Empty, b.At(pt(0, 0)))
	assert.Equal(t, Black, b.At(pt(1, 0)))
}

func TestKo_ImmediateRecaptureIllegal(t *testing.T) {
	b := koShape(t)

	m, err := b.PlayAs(pt(7, 6), Black)
	require.NoError(t, err)
	require.Equal(t, 1, m.CapturedStones())
	require.NotNil(t, b.Ko())
	assert.Equal(t, pt(6, 6), *b.Ko())
	assert.Equal(t, pt(6, 6), *m.Ko)

	before := b.Grid()
	_, err = b.Play(pt(6, 6))
	assert.ErrorIs(t, err, ErrKo)
	assert.Equal(t, before, b.Grid())
	assert.Equal(t, White, b.Turn())
	assert.Equal(t, pt(6, 6), *b.Ko())
}

func TestKo_RecaptureAfterInterveningMovesIsLegal(t *testing.T) {
	b := koShape(t)
	_, err := b.PlayAs(pt(7, 6), Black)
	require.NoError(t, err)

	_, err = b.Play(pt(15, 15)) // white ko threat elsewhere
	require.NoError(t, err)
	assert.Nil(t, b.Ko(), "ko is cleared by any subsequent move")
	_, err = b.Play(pt(15, 3)) // black answers elsewhere
	require.NoError(t, err)

	m, err := b.Play(pt(6, 6))
	require.NoError(t, err)
	assert.Equal(t, []Point{pt(7, 6)}, m.Captured[0].Stones)
	require.NotNil(t, b.Ko())
	assert.Equal(t, pt(7, 6), *b.Ko(), "the retake sets a ko for black in turn")
}

func TestKo_OtherReplyIsLegal(t *testing.T) {
	b := koShape(t)
	_, err := b.PlayAs(pt(7, 6), Black)
	require.NoError(t, err)

	_, err = b.Play(pt(0, 18))
	assert.NoError(t, err)
}

func TestKo_TwoStoneCaptureSetsNoKo(t *testing.T) {
	b := New()
	// black captures two white stones; a single-stone retake is not a ko
	place(t, b, White, pt(0, 0), pt(1, 0))
	place(t, b, Black, pt(0, 1), pt(1, 1))
	m, err := b.PlayAs(pt(2, 0), Black)
	require.NoError(t, err)
	assert.Equal(t, 2, m.CapturedStones())
	assert.Nil(t, b.Ko())
}

func TestUndoRedo_RestoresExactState(t *testing.T) {
	b := koShape(t)
	prevLast, prevKo := b.LastMove(), b.Ko()
	gridBefore, turnBefore, plyBefore := b.Grid(), b.Turn(), b.Ply()

	m, err := b.PlayAs(pt(7, 6), Black)
	require.NoError(t, err)
	gridAfter, koAfter, lastAfter := b.Grid(), b.Ko(), b.LastMove()

	b.UndoLast(m, prevLast, prevKo)
	assert.Equal(t, gridBefore, b.Grid())
	assert.Equal(t, turnBefore, b.Turn())
	assert.Equal(t, plyBefore, b.Ply())
	assert.Equal(t, prevLast, b.LastMove())
	assert.Equal(t, prevKo, b.Ko())
	assert.Equal(t, White, b.At(pt(6, 6)), "captured stone restored as the mover's opponent")
	assert.Equal(t, 0, b.Captures(Black))

	b.Redo(m)
	assert.Equal(t, gridAfter, b.Grid())
	assert.Equal(t, koAfter, b.Ko())
	assert.Equal(t, lastAfter, b.LastMove())
	assert.Equal(t, White, b.Turn())
	assert.Equal(t, 1, b.Captures(Black))
}

func TestRows(t *testing.T) {
	b := New()
	place(t, b, Black, pt(1, 0))
	place(t, b, White, pt(0, 2))
	rows := b.Rows()
	require.Len(t, rows, Size)
	assert.Equal(t, ".X.................", rows[0])
	assert.Equal(t, "O..................", rows[2])
}
