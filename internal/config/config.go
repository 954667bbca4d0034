package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel string   `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string   `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Session  Session  `yaml:"session"`
	Redis    Redis    `yaml:"redis"`
	Telegram Telegram `yaml:"telegram"`
}

type Session struct {
	TTL               time.Duration `yaml:"ttl" env:"SESSION_TTL" env-default:"120s"`
	DefaultDifficulty int           `yaml:"default-difficulty" env:"SESSION_DEFAULT_DIFFICULTY" env-default:"5"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Telegram struct {
	Enabled       bool   `yaml:"enabled" env:"TELEGRAM_ENABLED" env-default:"false"`
	Token         string `yaml:"token" env:"TELEGRAM_TOKEN"`
	UpdateTimeout int    `yaml:"update-timeout" env:"TELEGRAM_UPDATE_TIMEOUT" env-default:"60"`
}

// MustLoad - load all configurations in config.yml file. Variables from a .env file next to
// the working directory are applied first, so they override the file like any other env.
func MustLoad(path string) *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(fmt.Errorf("unable to load .env file: %w", err))
	}

	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	if err := config.Validate(); err != nil {
		panic(fmt.Errorf("invalid config: %w", err))
	}

	return config
}

func (that *Config) Validate() error {
	if that.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive, got %s", that.Session.TTL)
	}

	if that.Session.DefaultDifficulty < 1 || that.Session.DefaultDifficulty > 10 {
		return fmt.Errorf("session default difficulty must be within 1-10, got %d", that.Session.DefaultDifficulty)
	}

	if that.Telegram.Enabled && that.Telegram.Token == "" {
		return errors.New("telegram token is required when telegram is enabled")
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
