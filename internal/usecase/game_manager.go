package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rocketscienceinc/tictactoe-bot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-bot/internal/entity"
	"github.com/rocketscienceinc/tictactoe-bot/internal/pkg"
	"github.com/rocketscienceinc/tictactoe-bot/internal/pkg/clock"
	"github.com/rocketscienceinc/tictactoe-bot/internal/repository"
)

type playerRepo interface {
	Claim(ctx context.Context, player *entity.Player, ttl time.Duration) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	Release(ctx context.Context, player *entity.Player) error
}

type recorder interface {
	SessionStarted(difficulty int)
	SessionEnded(result string)
	MoveApplied(mark string)
	MoveRejected(reason string)
}

// Session is the handle of a running game. It stays usable after the game ends.
type Session struct {
	mu    sync.Mutex
	state *entity.Session
	timer clock.Timer

	// set once the session is terminal, readable without mu
	ended atomic.Bool
}

func (that *Session) ID() string {
	return that.state.ID
}

func (that *Session) ParticipantID() string {
	return that.state.ParticipantID
}

func (that *Session) Snapshot() entity.Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state.Snapshot()
}

// GameManager owns the running sessions. Requests for one session are applied one at a time.
type GameManager struct {
	logger     *slog.Logger
	clock      clock.Clock
	opponent   entity.Opponent
	playerRepo playerRepo
	metrics    recorder
	ttl        time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session

	notifiersMu sync.RWMutex
	notifiers   []Notifier
}

func NewGameManager(
	logger *slog.Logger,
	clock clock.Clock,
	opponent entity.Opponent,
	playerRepo playerRepo,
	metrics recorder,
	ttl time.Duration,
) *GameManager {
	return &GameManager{
		logger:     logger.With("component", "game_manager"),
		clock:      clock,
		opponent:   opponent,
		playerRepo: playerRepo,
		metrics:    metrics,
		ttl:        ttl,
		sessions:   make(map[string]*Session),
	}
}

// Subscribe registers a notifier for the events of every session.
func (that *GameManager) Subscribe(notifier Notifier) {
	that.notifiersMu.Lock()
	defer that.notifiersMu.Unlock()

	that.notifiers = append(that.notifiers, notifier)
}

func (that *GameManager) StartSession(ctx context.Context, participantID string, difficulty int) (*Session, error) {
	log := that.logger.With("method", "StartSession", "participant_id", participantID)

	level, err := entity.NewDifficulty(difficulty)
	if err != nil {
		return nil, err
	}

	id := pkg.GenerateSessionID()
	state, err := entity.NewSession(id, participantID, level, that.clock.Now(), that.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session := &Session{state: state}

	// registered before the claim, so a concurrent start sees the index entry as live
	session.mu.Lock()
	defer session.mu.Unlock()

	that.mu.Lock()
	that.sessions[id] = session
	that.mu.Unlock()

	if err = that.claimPlayer(ctx, &entity.Player{ID: participantID, SessionID: id}); err != nil {
		that.forget(id)
		return nil, err
	}

	session.timer = that.clock.AfterFunc(that.ttl, func() {
		that.Expire(context.Background(), session)
	})

	that.metrics.SessionStarted(difficulty)
	log.Info("session started", "session_id", id, "difficulty", difficulty)

	return session, nil
}

// claimPlayer binds the participant to the new session. An index entry that points at a
// session this manager no longer runs is stale and gets replaced.
func (that *GameManager) claimPlayer(ctx context.Context, player *entity.Player) error {
	claimed, err := that.playerRepo.Claim(ctx, player, that.ttl)
	if err != nil {
		return fmt.Errorf("failed to claim player: %w", err)
	}

	if claimed {
		return nil
	}

	existing, err := that.playerRepo.GetByID(ctx, player.ID)
	switch {
	case errors.Is(err, repository.ErrPlayerNotFound):
	case err != nil:
		return fmt.Errorf("failed to get player by id: %w", err)
	default:
		if current, lookupErr := that.Session(existing.SessionID); lookupErr == nil && !current.ended.Load() {
			return apperror.ErrGameAlreadyExists
		}

		if err = that.playerRepo.Release(ctx, existing); err != nil {
			return fmt.Errorf("failed to release stale player: %w", err)
		}
	}

	claimed, err = that.playerRepo.Claim(ctx, player, that.ttl)
	if err != nil {
		return fmt.Errorf("failed to claim player: %w", err)
	}

	if !claimed {
		return apperror.ErrGameAlreadyExists
	}

	return nil
}

// SubmitMove applies the participant's move and the opponent's reply. A rejected request
// returns the unchanged snapshot together with the error.
func (that *GameManager) SubmitMove(ctx context.Context, session *Session, requesterID string, cell int) (entity.Snapshot, error) {
	log := that.logger.With("method", "SubmitMove", "session_id", session.ID())

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.state.IsOverdue(that.clock.Now()) {
		that.expire(ctx, session)
	}

	moves, err := session.state.PlayTurn(requesterID, cell, that.opponent)
	if err != nil {
		snapshot := session.state.Snapshot()

		if reason, ok := rejectionReason(err); ok {
			that.metrics.MoveRejected(reason)
			return snapshot, err
		}

		if errors.Is(err, apperror.ErrNoMoveAvailable) {
			log.Error("opponent asked to move without a legal cell", "board", snapshot.Board, "error", err)
		} else {
			log.Error("failed to play turn", "error", err)
		}

		return snapshot, fmt.Errorf("%w: failed to play turn", apperror.ErrInternal)
	}

	snapshot := session.state.Snapshot()

	for i, move := range moves {
		that.metrics.MoveApplied(move.Mark.String())
		that.notify(Event{
			Kind:     EventMove,
			Move:     move,
			Snapshot: snapshotAfter(snapshot, len(moves)-1-i),
		})
	}

	log.Debug("turn played", "moves", moves, "status", snapshot.Status)

	if session.state.IsTerminal() {
		that.finish(ctx, session)
		that.metrics.SessionEnded(snapshot.Outcome.String())
		that.notify(Event{Kind: EventFinished, Snapshot: snapshot})

		log.Info("session finished", "outcome", snapshot.Outcome)
	}

	return snapshot, nil
}

// Expire ends a waiting session. Calling it on a finished or expired session changes nothing.
func (that *GameManager) Expire(ctx context.Context, session *Session) entity.Snapshot {
	session.mu.Lock()
	defer session.mu.Unlock()

	that.expire(ctx, session)

	return session.state.Snapshot()
}

// expire runs under the session lock.
func (that *GameManager) expire(ctx context.Context, session *Session) {
	if !session.state.Expire() {
		return
	}

	that.finish(ctx, session)
	that.metrics.SessionEnded(entity.StatusExpired.String())
	that.notify(Event{Kind: EventExpired, Snapshot: session.state.Snapshot()})

	that.logger.Info("session expired", "session_id", session.ID())
}

// finish releases everything a terminal session holds. It runs under the session lock.
// The session stays reachable by ID for one more TTL, so late requests learn how it ended.
func (that *GameManager) finish(ctx context.Context, session *Session) {
	session.ended.Store(true)

	if session.timer != nil {
		session.timer.Stop()
	}

	id := session.ID()
	session.timer = that.clock.AfterFunc(that.ttl, func() {
		that.forget(id)
	})

	player := &entity.Player{ID: session.state.ParticipantID, SessionID: session.state.ID}
	if err := that.playerRepo.Release(ctx, player); err != nil {
		that.logger.Error("failed to release player", "session_id", session.ID(), "error", err)
	}
}

func (that *GameManager) forget(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.sessions, id)
}

// Session returns a session by ID. Ended sessions are kept for one TTL after their end.
func (that *GameManager) Session(id string) (*Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	return session, nil
}

// ActiveSession returns the running session of a participant.
func (that *GameManager) ActiveSession(ctx context.Context, participantID string) (*Session, error) {
	player, err := that.playerRepo.GetByID(ctx, participantID)
	if errors.Is(err, repository.ErrPlayerNotFound) {
		return nil, fmt.Errorf("%w: participant %s", apperror.ErrSessionNotFound, participantID)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by id: %w", err)
	}

	session, err := that.Session(player.SessionID)
	if err != nil {
		return nil, err
	}

	if session.ended.Load() {
		return nil, fmt.Errorf("%w: participant %s", apperror.ErrSessionNotFound, participantID)
	}

	return session, nil
}

func (that *GameManager) notify(event Event) {
	that.notifiersMu.RLock()
	defer that.notifiersMu.RUnlock()

	for _, notifier := range that.notifiers {
		notifier.Notify(event)
	}
}

var rejectionReasons = []struct {
	err    error
	reason string
}{
	{apperror.ErrNotYourGame, "not_your_game"},
	{apperror.ErrGameAlreadyOver, "game_over"},
	{apperror.ErrGameExpired, "expired"},
	{apperror.ErrIndexOutOfRange, "out_of_range"},
	{apperror.ErrCellOccupied, "cell_occupied"},
}

func rejectionReason(err error) (string, bool) {
	for _, rejection := range rejectionReasons {
		if errors.Is(err, rejection.err) {
			return rejection.reason, true
		}
	}

	return "", false
}

// snapshotAfter rewinds a snapshot by the given number of trailing moves.
// Only the participant's move is ever rewound, and the game was still running before the reply.
func snapshotAfter(snapshot entity.Snapshot, rewind int) entity.Snapshot {
	if rewind == 0 {
		return snapshot
	}

	kept := len(snapshot.Moves) - rewind
	for _, move := range snapshot.Moves[kept:] {
		snapshot.Board[move.Index] = entity.EmptyCell
	}

	moves := make([]entity.Move, kept)
	copy(moves, snapshot.Moves)

	snapshot.Moves = moves
	snapshot.Status = entity.StatusAwaitingPlayerMove
	snapshot.Outcome = entity.InProgress
	snapshot.Winner = entity.EmptyCell

	return snapshot
}
