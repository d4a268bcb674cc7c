package board

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrSuicide     = fmt.Errorf("%w: suicide", ErrIllegalMove)
	ErrKo          = fmt.Errorf("%w: immediate ko recapture", ErrIllegalMove)
	ErrOccupied    = fmt.Errorf("%w: point is occupied", ErrIllegalMove)
	ErrOffBoard    = fmt.Errorf("%w: point is off the board", ErrIllegalMove)
)

// Classify runs the group analysis on a grid that already holds the tentative
// stone and returns every group left without liberties.
func Classify(grid *Grid, mover Color) (dead []Group, opponentDied, selfDied bool) {
	for _, g := range FindGroups(grid) {
		if g.Liberties > 0 {
			continue
		}
		if g.Team == mover {
			selfDied = true
		} else {
			opponentDied = true
		}
		dead = append(dead, g)
	}
	return dead, opponentDied, selfDied
}

// IsLegal decides whether the stone just placed at `at` stands, and returns the
// enemy groups it captures. Captures are resolved before the mover's own
// liberties are judged, so a stone that is at zero liberties only until it
// removes an enemy group is legal.
//
// lastMove and ko are the board state from before the tentative placement.
// Only simple ko is enforced: a longer cycle repeating the whole position is
// not detected.
func IsLegal(grid *Grid, mover Color, at Point, lastMove, ko *Point) ([]Group, error) {
	dead, opponentDied, selfDied := Classify(grid, mover)
	if !opponentDied {
		if selfDied {
			return nil, ErrSuicide
		}
		return nil, nil
	}

	captured := make([]Group, 0, len(dead))
	for _, g := range dead {
		if g.Team != mover {
			captured = append(captured, g)
		}
	}

	if ko != nil && *ko == at && lastMove != nil &&
		countStones(captured) == 1 && captured[0].Stones[0] == *lastMove {
		return nil, ErrKo
	}
	return captured, nil
}

// koAfter computes the ko point left by a move at `at` that removed captured,
// on the grid after removal. Ko exists when exactly one stone was taken and the
// capturing stone stands alone with that point as its only liberty, so the
// opponent retaking at once would recreate the previous position.
func koAfter(grid *Grid, at Point, captured []Group) *Point {
	if countStones(captured) != 1 {
		return nil
	}
	own, ok := GroupAt(grid, at)
	if !ok || len(own.Stones) != 1 || own.Liberties != 1 {
		return nil
	}
	ko := captured[0].Stones[0]
	return &ko
}
