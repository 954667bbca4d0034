package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestMustLoad(t *testing.T) {
	t.Run("Applies defaults", func(t *testing.T) {
		// Given: a config file that sets only the port
		path := writeConfig(t, "http-port: \"8080\"\n")

		// When: it is loaded
		conf := MustLoad(path)

		// Then: every other field has its default
		assert.Equal(t, "8080", conf.HTTPPort)
		assert.Equal(t, "info", conf.LogLevel)
		assert.Equal(t, 120*time.Second, conf.Session.TTL)
		assert.Equal(t, 5, conf.Session.DefaultDifficulty)
		assert.False(t, conf.Redis.Enabled)
		assert.Equal(t, "localhost:6379", conf.Redis.GetRedisAddr())
		assert.Equal(t, 60, conf.Telegram.UpdateTimeout)
	})

	t.Run("Environment overrides the file", func(t *testing.T) {
		path := writeConfig(t, "session:\n  ttl: 30s\n")
		t.Setenv("SESSION_TTL", "45s")
		t.Setenv("REDIS_HOST", "redis")

		conf := MustLoad(path)

		assert.Equal(t, 45*time.Second, conf.Session.TTL)
		assert.Equal(t, "redis:6379", conf.Redis.GetRedisAddr())
	})

	t.Run("Panics on invalid values", func(t *testing.T) {
		path := writeConfig(t, "session:\n  default-difficulty: 11\n")

		assert.Panics(t, func() { MustLoad(path) })
	})

	t.Run("Requires a token for telegram", func(t *testing.T) {
		path := writeConfig(t, "telegram:\n  enabled: true\n")

		assert.Panics(t, func() { MustLoad(path) })
	})
}
