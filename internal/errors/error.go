package errors

import "errors"

var (
	ErrCreateGameFailed = errors.New("create game failed")
	ErrGameNotFound     = errors.New("game not found")
	ErrGameArchived     = errors.New("game is archived")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInternal         = errors.New("internal error")
)
