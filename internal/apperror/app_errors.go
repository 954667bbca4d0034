package apperror

import "errors"

var (
	ErrInvalidDifficulty = errors.New("invalid difficulty given (1-10)")
	ErrNotYourGame       = errors.New("this is not your game")
	ErrGameAlreadyOver   = errors.New("game is already over")
	ErrGameExpired       = errors.New("game expired")
	ErrIndexOutOfRange   = errors.New("cell index out of range")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrSessionNotFound   = errors.New("session not found")
	ErrGameAlreadyExists = errors.New("game already exists")
	ErrInternal          = errors.New("internal error")

	// ErrNoMoveAvailable means the opponent was asked to move on a full board.
	// It signals a programming defect and is never returned to end users as is.
	ErrNoMoveAvailable = errors.New("no move available")
)
