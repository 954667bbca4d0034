package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-bot/internal/entity"
	"github.com/rocketscienceinc/tictactoe-bot/testing/suite"
)

func TestPlayerRepository_Claim(t *testing.T) {
	ctx, st := suite.New(t)

	playerRepo := NewPlayerRepository(st.Storage)

	// Given: a player bound to a session
	player := &entity.Player{ID: "123", SessionID: "s1"}

	// When: Claim is called twice
	claimed, err := playerRepo.Claim(ctx, player, time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = playerRepo.Claim(ctx, &entity.Player{ID: "123", SessionID: "s2"}, time.Minute)

	// Then: only the first claim wins
	require.NoError(t, err)
	assert.False(t, claimed)

	ttl, err := st.Storage.TTL(ctx, "player:123").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
}

func TestPlayerRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// Given: a claimed player
		player := &entity.Player{ID: "123", SessionID: "s1"}

		_, err := playerRepo.Claim(ctx, player, time.Minute)
		require.NoError(t, err)

		// When: GetByID is called with existing ID
		retrievedPlayer, err := playerRepo.GetByID(ctx, player.ID)

		// Then: the retrieved player should match the saved player
		require.NoError(t, err)
		require.Equal(t, player, retrievedPlayer)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		nonExistentPlayerID := "9999999"

		// When: GetByID is called with non-existent ID
		retrievedPlayer, err := playerRepo.GetByID(ctx, nonExistentPlayerID)

		// Then: an ErrPlayerNotFound error should be returned
		require.Error(t, err)
		assert.Equal(t, ErrPlayerNotFound, err)
		assert.Nil(t, retrievedPlayer)
	})
}

func TestPlayerRepository_Release(t *testing.T) {
	t.Run("Release_MatchingSession", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// Given: a claimed player
		player := &entity.Player{ID: "123", SessionID: "s1"}
		_, err := playerRepo.Claim(ctx, player, time.Minute)
		require.NoError(t, err)

		// When: Release is called for the same session
		err = playerRepo.Release(ctx, player)

		// Then: the player can be claimed again
		require.NoError(t, err)

		_, err = playerRepo.GetByID(ctx, player.ID)
		require.ErrorIs(t, err, ErrPlayerNotFound)
	})

	t.Run("Release_OtherSession", func(t *testing.T) {
		ctx, st := suite.New(t)

		playerRepo := NewPlayerRepository(st.Storage)

		// Given: a player bound to session s2
		_, err := playerRepo.Claim(ctx, &entity.Player{ID: "123", SessionID: "s2"}, time.Minute)
		require.NoError(t, err)

		// When: a stale release for session s1 arrives
		err = playerRepo.Release(ctx, &entity.Player{ID: "123", SessionID: "s1"})

		// Then: the s2 entry is kept
		require.NoError(t, err)

		retrievedPlayer, err := playerRepo.GetByID(ctx, "123")
		require.NoError(t, err)
		assert.Equal(t, "s2", retrievedPlayer.SessionID)
	})
}

func TestPlayerRepository_Ping(t *testing.T) {
	ctx, st := suite.New(t)

	playerRepo := NewPlayerRepository(st.Storage)

	require.NoError(t, playerRepo.Ping(ctx))

	// When: the connection is gone
	require.NoError(t, st.Storage.Close())

	// Then: the ping fails
	require.Error(t, playerRepo.Ping(ctx))
}
