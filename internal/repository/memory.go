package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-bot/internal/entity"
	"github.com/rocketscienceinc/tictactoe-bot/internal/pkg/clock"
)

type memoryEntry struct {
	player    entity.Player
	expiresAt time.Time
}

// memoryPlayer keeps the index in process memory; used when Redis is disabled.
type memoryPlayer struct {
	clock clock.Clock

	mu      sync.Mutex
	players map[string]memoryEntry
}

func NewMemoryPlayerRepository(clock clock.Clock) PlayerRepository {
	return &memoryPlayer{
		clock:   clock,
		players: make(map[string]memoryEntry),
	}
}

// lookup returns a live entry and drops an expired one. Callers hold the lock.
func (that *memoryPlayer) lookup(id string) (memoryEntry, bool) {
	entry, ok := that.players[id]
	if !ok {
		return memoryEntry{}, false
	}

	if !that.clock.Now().Before(entry.expiresAt) {
		delete(that.players, id)
		return memoryEntry{}, false
	}

	return entry, true
}

func (that *memoryPlayer) Ping(_ context.Context) error {
	return nil
}

func (that *memoryPlayer) Claim(_ context.Context, player *entity.Player, ttl time.Duration) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.lookup(player.ID); ok {
		return false, nil
	}

	that.players[player.ID] = memoryEntry{player: *player, expiresAt: that.clock.Now().Add(ttl)}

	return true, nil
}

func (that *memoryPlayer) GetByID(_ context.Context, id string) (*entity.Player, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.lookup(id)
	if !ok {
		return nil, ErrPlayerNotFound
	}

	player := entry.player

	return &player, nil
}

func (that *memoryPlayer) Release(_ context.Context, player *entity.Player) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if entry, ok := that.lookup(player.ID); ok && entry.player == *player {
		delete(that.players, player.ID)
	}

	return nil
}
