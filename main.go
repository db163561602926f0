package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/sleepbot/internal/bot"
	"github.com/example/sleepbot/internal/config"
	"github.com/example/sleepbot/internal/database"
	"github.com/example/sleepbot/internal/logging"
	"github.com/example/sleepbot/internal/scheduler"
	"github.com/example/sleepbot/internal/session"
	"github.com/example/sleepbot/internal/tracker"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := logging.New(cfg.LogLevel, cfg.LogPretty)

	// Channel for shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to connect to database")
	}
	defer store.Close()

	cache := session.New(store, logger)
	tr := tracker.New(cache, store, logger, tracker.WithLocation(cfg.Location))

	botCfg := bot.DefaultConfig()
	b, err := bot.New(cfg.TelegramToken, tr, botCfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create bot")
	}

	if cfg.SchedulerEnabled {
		s := scheduler.New(b, store, scheduler.Settings{
			StartHour: cfg.NotificationStartHour,
			EndHour:   cfg.NotificationEndHour,
			WakeAfter: cfg.WakeReminderAfter,
			BedtimeAt: cfg.BedtimeReminderHour,
			Location:  cfg.Location,
		}, logger)
		if err := s.Start(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to start reminder scheduler")
		}
		defer s.Stop()
	}

	done := make(chan struct{})

	go func() {
		sig := <-sigChan
		logger.Info().Stringer("signal", sig).Msg("received signal")
		cancel()

		// Give in-flight updates their full handler timeout to finish
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), botCfg.HandlerTimeout+5*time.Second)
		defer shutdownCancel()

		if err := b.Stop(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("error during shutdown")
		}
		close(done)
	}()

	logger.Info().Msg("bot started, press Ctrl+C to stop")
	go func() {
		if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("bot error")
		}
	}()

	<-done
	logger.Info().Msg("bot stopped successfully")
}
