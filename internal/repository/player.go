package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-bot/internal/entity"
)

var ErrPlayerNotFound = errors.New("player not found")

// PlayerRepository indexes the session each participant is currently playing.
type PlayerRepository interface {
	// Claim stores the player only if no entry exists yet and reports whether it did.
	Claim(ctx context.Context, player *entity.Player, ttl time.Duration) (bool, error)
	GetByID(ctx context.Context, id string) (*entity.Player, error)
	// Release removes the entry if it still points at player.SessionID.
	Release(ctx context.Context, player *entity.Player) error
	Ping(ctx context.Context) error
}

// releaseScript deletes the key only when it holds the expected value.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type dbPlayer struct {
	client *redis.Client
}

func NewPlayerRepository(client *redis.Client) PlayerRepository {
	return &dbPlayer{
		client: client,
	}
}

func playerKey(id string) string {
	return "player:" + id
}

func (that *dbPlayer) Ping(ctx context.Context) error {
	if err := that.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (that *dbPlayer) Claim(ctx context.Context, player *entity.Player, ttl time.Duration) (bool, error) {
	playerJSON, err := json.Marshal(player)
	if err != nil {
		return false, fmt.Errorf("failed to marshal player: %w", err)
	}

	claimed, err := that.client.SetNX(ctx, playerKey(player.ID), playerJSON, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set player: %w", err)
	}

	return claimed, nil
}

func (that *dbPlayer) GetByID(ctx context.Context, id string) (*entity.Player, error) {
	response, err := that.client.Get(ctx, playerKey(id)).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrPlayerNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get player by ID: %w", err)
	}

	var existingPlayer entity.Player
	if err = json.Unmarshal([]byte(response), &existingPlayer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player: %w", err)
	}

	return &existingPlayer, nil
}

func (that *dbPlayer) Release(ctx context.Context, player *entity.Player) error {
	playerJSON, err := json.Marshal(player)
	if err != nil {
		return fmt.Errorf("failed to marshal player: %w", err)
	}

	if err = releaseScript.Run(ctx, that.client, []string{playerKey(player.ID)}, string(playerJSON)).Err(); err != nil {
		return fmt.Errorf("failed to release player: %w", err)
	}

	return nil
}
