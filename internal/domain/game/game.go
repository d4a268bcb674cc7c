package game

import (
	"time"

	"goban/internal/domain/board"
	"goban/internal/domain/sgf"
)

// Game is the stored record of a game. The tree is only filled in once the
// game is archived; while it is active the live tree sits in the snapshot store.
type Game struct {
	GameKey     string        `json:"game_key" bson:"game_key"` // уникальный ключ
	Status      string        `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	ArchivedAt  *time.Time    `json:"archived_at,omitempty" bson:"archived_at,omitempty"`
	BoardSize   int           `json:"board_size" bson:"board_size"`
	PlayerBlack string        `json:"player_black" bson:"player_black"`
	PlayerWhite string        `json:"player_white" bson:"player_white"`
	Komi        float64       `json:"komi" bson:"komi"`
	MoveCount   int           `json:"move_count" bson:"move_count"`
	Tree        *sgf.GameTree `json:"tree,omitempty" bson:"tree,omitempty"`
	Sgf         string        `json:"sgf,omitempty" bson:"sgf,omitempty"`
}

type CreateGameRequest struct {
	PlayerBlack string  `json:"player_black"`
	PlayerWhite string  `json:"player_white"`
	Komi        float64 `json:"komi"`
	Comment     string  `json:"comment"`
}

type ImportGameRequest struct {
	Tree *sgf.GameTree `json:"tree"`
}

type GameCreateResponse struct {
	GameKey string `json:"game_key"`
}

type GamesPage struct {
	Page  int    `json:"page"`
	Games []Game `json:"games"`
}

// Snapshot is what the hot store keeps for an active game: the whole tree and
// the path of points leading to the cursor.
type Snapshot struct {
	Tree   *sgf.GameTree `json:"tree"`
	Cursor []board.Point `json:"cursor"`
}

// GameState is the position at the cursor as clients see it.
type GameState struct {
	GameKey       string        `json:"game_key"`
	Rows          []string      `json:"rows"`
	Turn          board.Color   `json:"turn"`
	LastMove      *board.Point  `json:"last_move,omitempty"`
	Ko            *board.Point  `json:"ko,omitempty"`
	Ply           int           `json:"ply"`
	NextPoints    []board.Point `json:"next_points"`
	CapturesBlack int           `json:"captures_black"`
	CapturesWhite int           `json:"captures_white"`
	CanUndo       bool          `json:"can_undo"`
	CanRedo       bool          `json:"can_redo"`
}
