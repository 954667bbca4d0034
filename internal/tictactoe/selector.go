package tictactoe

import (
	"sync"
	"time"

	"golang.org/x/exp/rand"

	"github.com/rocketscienceinc/tictactoe-bot/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-bot/internal/entity"
)

// Random is the only source of non-determinism of the opponent.
// *rand.Rand from golang.org/x/exp/rand satisfies it.
type Random interface {
	Float64() float64
	Intn(n int) int
}

func NewRandom(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Choice is the cell the opponent picked and whether it came from the search.
type Choice struct {
	Index   int
	Optimal bool
}

type option func(selector *Selector)

// WithObserver registers a callback invoked after every decision with the time it took.
func WithObserver(observer func(choice Choice, elapsed time.Duration)) option {
	return func(selector *Selector) {
		selector.observer = observer
	}
}

// Selector blends optimal and random play according to the session difficulty.
// It is safe for concurrent use.
type Selector struct {
	mu       sync.Mutex
	random   Random
	observer func(choice Choice, elapsed time.Duration)
}

func NewSelector(random Random, options ...option) *Selector {
	selector := &Selector{random: random}
	for _, option := range options {
		option(selector)
	}

	return selector
}

// Choose draws one sample in [0,1): below difficulty/10 the search result is played,
// otherwise a uniformly random legal cell.
func (that *Selector) Choose(board entity.Board, difficulty entity.Difficulty) (Choice, error) {
	moves := board.LegalMoves()
	if len(moves) == 0 {
		return Choice{Index: NoMove}, apperror.ErrNoMoveAvailable
	}

	started := time.Now()

	that.mu.Lock()
	sample := that.random.Float64()
	optimal := sample < difficulty.OptimalProbability()
	pick := 0
	if !optimal {
		pick = that.random.Intn(len(moves))
	}
	that.mu.Unlock()

	choice := Choice{Index: moves[pick], Optimal: optimal}
	if optimal {
		choice.Index = Search(board, entity.OpponentMark).Index
	}

	if that.observer != nil {
		that.observer(choice, time.Since(started))
	}

	return choice, nil
}

// NextMove lets the selector act as the opponent of a session.
func (that *Selector) NextMove(board entity.Board, difficulty entity.Difficulty) (int, error) {
	choice, err := that.Choose(board, difficulty)
	if err != nil {
		return NoMove, err
	}

	return choice.Index, nil
}
