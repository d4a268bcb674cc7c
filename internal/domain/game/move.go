package game

import (
	"fmt"

	"goban/internal/domain/board"
)

// Move addresses an intersection either by coordinates ("D4") or by point.
// @name Move
type Move struct {
	Coordinates string       `json:"coordinates,omitempty"`
	Point       *board.Point `json:"point,omitempty"`
}

// Resolve returns the point the move refers to. Coordinates win when both are set.
func (m Move) Resolve() (board.Point, error) {
	if m.Coordinates != "" {
		return board.ParsePoint(m.Coordinates)
	}
	if m.Point == nil {
		return board.Point{}, fmt.Errorf("move has neither coordinates nor point")
	}
	if !m.Point.OnBoard() {
		return board.Point{}, fmt.Errorf("%w: %v", board.ErrOffBoard, *m.Point)
	}
	return *m.Point, nil
}

// CommandMessage is one websocket frame from a client.
// @name CommandMessage
type CommandMessage struct {
	Kind string `json:"kind"`
	Move
}

// GameStateResponse is broadcast to every connection of a game after a command.
// @name GameStateResponse
type GameStateResponse struct {
	Kind  string     `json:"kind"`
	State *GameState `json:"state,omitempty"`
	Error string     `json:"error,omitempty"`
}
