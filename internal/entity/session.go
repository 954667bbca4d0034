package entity

import (
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-bot/internal/apperror"
)

const (
	MinDifficulty Difficulty = 1
	MaxDifficulty Difficulty = 10
)

// Difficulty is the chance, in tenths, that the opponent plays its optimal move.
type Difficulty int

func NewDifficulty(value int) (Difficulty, error) {
	difficulty := Difficulty(value)
	if !difficulty.Valid() {
		return 0, fmt.Errorf("%w: got %d", apperror.ErrInvalidDifficulty, value)
	}

	return difficulty, nil
}

func (that Difficulty) Valid() bool {
	return that >= MinDifficulty && that <= MaxDifficulty
}

func (that Difficulty) OptimalProbability() float64 {
	return float64(that) / float64(MaxDifficulty)
}

type Status uint8

const (
	StatusAwaitingPlayerMove Status = iota
	StatusFinished
	StatusExpired
)

func (that Status) String() string {
	switch that {
	case StatusFinished:
		return "finished"
	case StatusExpired:
		return "expired"
	default:
		return "awaiting_player_move"
	}
}

func (that Status) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that Status) IsTerminal() bool {
	return that != StatusAwaitingPlayerMove
}

type Move struct {
	Index int  `json:"index"`
	Mark  Cell `json:"mark"`
}

// Opponent picks the cell the computer plays on. The board is a copy.
type Opponent interface {
	NextMove(board Board, difficulty Difficulty) (int, error)
}

// Session is one game between a single participant and the computer.
// It is not safe for concurrent use; callers serialize access.
type Session struct {
	ID            string
	ParticipantID string
	Difficulty    Difficulty
	Board         Board
	Status        Status
	Outcome       Outcome
	Moves         []Move
	CreatedAt     time.Time
	Deadline      time.Time
}

func NewSession(id, participantID string, difficulty Difficulty, createdAt time.Time, ttl time.Duration) (*Session, error) {
	if !difficulty.Valid() {
		return nil, fmt.Errorf("%w: got %d", apperror.ErrInvalidDifficulty, difficulty)
	}

	return &Session{
		ID:            id,
		ParticipantID: participantID,
		Difficulty:    difficulty,
		Status:        StatusAwaitingPlayerMove,
		Outcome:       InProgress,
		CreatedAt:     createdAt,
		Deadline:      createdAt.Add(ttl),
	}, nil
}

func (that *Session) IsTerminal() bool {
	return that.Status.IsTerminal()
}

// ValidateMove runs the request checks in order: requester, status, range, occupancy.
func (that *Session) ValidateMove(requesterID string, index int) error {
	if requesterID != that.ParticipantID {
		return apperror.ErrNotYourGame
	}

	switch that.Status {
	case StatusFinished:
		return apperror.ErrGameAlreadyOver
	case StatusExpired:
		return apperror.ErrGameExpired
	case StatusAwaitingPlayerMove:
	}

	if !InRange(index) {
		return fmt.Errorf("%w: cell %d", apperror.ErrIndexOutOfRange, index)
	}

	if that.Board.IsOccupied(index) {
		return fmt.Errorf("%w: cell %d", apperror.ErrCellOccupied, index)
	}

	return nil
}

// PlayTurn applies the participant's move and, if the game goes on, the opponent's reply.
// On error the session is left exactly as it was.
func (that *Session) PlayTurn(requesterID string, index int, opponent Opponent) ([]Move, error) {
	if err := that.ValidateMove(requesterID, index); err != nil {
		return nil, err
	}

	board := that.Board.Clone()
	applied := make([]Move, 0, 2)

	if err := board.Place(index, PlayerMark); err != nil {
		return nil, fmt.Errorf("failed to place player mark: %w", err)
	}
	applied = append(applied, Move{Index: index, Mark: PlayerMark})

	// the opponent never moves onto a decided board
	outcome := DetermineOutcome(board)
	if !outcome.IsTerminal() {
		reply, err := opponent.NextMove(board.Clone(), that.Difficulty)
		if err != nil {
			return nil, fmt.Errorf("failed to choose opponent move: %w", err)
		}

		if err = board.Place(reply, OpponentMark); err != nil {
			return nil, fmt.Errorf("failed to place opponent mark: %w", err)
		}
		applied = append(applied, Move{Index: reply, Mark: OpponentMark})

		outcome = DetermineOutcome(board)
	}

	that.Board = board
	that.Moves = append(that.Moves, applied...)
	that.Outcome = outcome
	if outcome.IsTerminal() {
		that.Status = StatusFinished
	}

	return applied, nil
}

// IsOverdue reports whether the deadline passed while the game was still waiting for a move.
func (that *Session) IsOverdue(now time.Time) bool {
	return that.Status == StatusAwaitingPlayerMove && !now.Before(that.Deadline)
}

// Expire moves a waiting session to StatusExpired. It reports false, and changes
// nothing, when the session is already terminal.
func (that *Session) Expire() bool {
	if that.IsTerminal() {
		return false
	}

	that.Status = StatusExpired

	return true
}

// Snapshot is a detached copy of a session for rendering.
type Snapshot struct {
	ID            string     `json:"id"`
	ParticipantID string     `json:"participant_id"`
	Difficulty    Difficulty `json:"difficulty"`
	Board         Board      `json:"board"`
	Status        Status     `json:"status"`
	Outcome       Outcome    `json:"outcome"`
	Winner        Cell       `json:"winner"`
	Moves         []Move     `json:"moves"`
	Deadline      time.Time  `json:"deadline"`
}

func (that *Session) Snapshot() Snapshot {
	moves := make([]Move, len(that.Moves))
	copy(moves, that.Moves)

	return Snapshot{
		ID:            that.ID,
		ParticipantID: that.ParticipantID,
		Difficulty:    that.Difficulty,
		Board:         that.Board,
		Status:        that.Status,
		Outcome:       that.Outcome,
		Winner:        that.Outcome.Winner(),
		Moves:         moves,
		Deadline:      that.Deadline,
	}
}

// LastMove returns the most recent move of the given mark.
func (that Snapshot) LastMove(mark Cell) (Move, bool) {
	for i := len(that.Moves) - 1; i >= 0; i-- {
		if that.Moves[i].Mark == mark {
			return that.Moves[i], true
		}
	}

	return Move{}, false
}
