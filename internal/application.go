package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-bot/internal/config"
	"github.com/rocketscienceinc/tictactoe-bot/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-bot/internal/pkg/clock"
	"github.com/rocketscienceinc/tictactoe-bot/internal/repository"
	"github.com/rocketscienceinc/tictactoe-bot/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-bot/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-bot/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-bot/transport/rest"
	"github.com/rocketscienceinc/tictactoe-bot/transport/telegram"
	"github.com/rocketscienceinc/tictactoe-bot/transport/websocket"
)

const shutdownTimeout = 5 * time.Second

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	realClock := clock.New()

	playerRepo, closeStorage, err := newPlayerRepository(ctx, conf, realClock)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := closeStorage(); closeErr != nil {
			log.Error("could not close redis storage", "error", closeErr)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	gameMetrics := metrics.New(registry)

	selector := tictactoe.NewSelector(
		tictactoe.NewRandom(uint64(time.Now().UnixNano())),
		tictactoe.WithObserver(func(choice tictactoe.Choice, elapsed time.Duration) {
			gameMetrics.OpponentDecided(choice.Optimal, elapsed)
		}),
	)

	gameManager := usecase.NewGameManager(logger, realClock, selector, playerRepo, gameMetrics, conf.Session.TTL)

	wsServer := websocket.New(logger, gameManager, conf.Session.DefaultDifficulty)
	gameManager.Subscribe(wsServer)

	router := rest.NewRouter(
		rest.NewPingHandler(logger, playerRepo),
		rest.NewSessionHandler(logger, gameManager, conf.Session.DefaultDifficulty),
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		wsServer,
	)
	httpServer := rest.NewServer(conf.HTTPPort, router)

	var bot *telegram.Bot
	if conf.Telegram.Enabled {
		api, botErr := tgbotapi.NewBotAPI(conf.Telegram.Token)
		if botErr != nil {
			return fmt.Errorf("could not connect to telegram: %w", botErr)
		}

		bot = telegram.New(logger, api, gameManager, conf.Session.DefaultDifficulty, conf.Telegram.UpdateTimeout)
		gameManager.Subscribe(bot)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := httpServer.Start(); httpErr != nil {
			return fmt.Errorf("HTTP server error: %w", httpErr)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("Application context canceled, shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	})

	if bot != nil {
		group.Go(func() error {
			return bot.Run(groupCtx)
		})
	}

	if err = group.Wait(); err != nil {
		return fmt.Errorf("application stopped: %w", err)
	}

	return nil
}

// newPlayerRepository picks Redis when it is enabled and process memory otherwise.
func newPlayerRepository(
	ctx context.Context,
	conf *config.Config,
	clock clock.Clock,
) (repository.PlayerRepository, func() error, error) {
	if !conf.Redis.Enabled {
		return repository.NewMemoryPlayerRepository(clock), func() error { return nil }, nil
	}

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return nil, nil, ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to redis storage: %w", err)
	}

	return repository.NewPlayerRepository(redisStorage), redisStorage.Close, nil
}
