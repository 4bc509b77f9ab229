package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/famshare/billing-bot/internal/config"
	"github.com/famshare/billing-bot/internal/db"
	"github.com/famshare/billing-bot/internal/httpapi"
	"github.com/famshare/billing-bot/internal/i18n"
	"github.com/famshare/billing-bot/internal/ledger"
	"github.com/famshare/billing-bot/internal/scheduler"
	"github.com/famshare/billing-bot/internal/telegram"
	"github.com/famshare/billing-bot/pkg/automation"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Local development keeps the token in a .env file.
	godotenv.Load()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.PostgreSQL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to PostgreSQL")
	}
	defer pool.Close()
	if err := db.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("database migration failed")
	}

	translator, err := i18n.Load(cfg.LocalesDir, cfg.DefaultLocale, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load locale catalogs")
	}

	led := ledger.New(pool, cfg.DefaultLocale, logger)

	bot, err := telegram.New(cfg, led, translator, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize Telegram bot")
	}

	dispatcher := scheduler.NewDispatcher(bot, led, translator, scheduler.DefaultSendDelay, logger)
	enforcer := scheduler.NewEnforcer(
		led,
		scheduler.AccountsMapper(cfg.Enforcement.Accounts),
		automation.NewClient(cfg.Enforcement.Script, logger),
		logger,
	)

	sched := scheduler.New(
		cfg.Billing.AnchorDay,
		cfg.Billing.ReminderHour,
		cfg.Billing.EnforceHour,
		func(ctx context.Context) { dispatcher.Notify(ctx, led.ForNotification(ctx)) },
		enforcer.Run,
		logger,
	)

	schedDone := make(chan error, 1)
	go func() { schedDone <- sched.Run(ctx) }()

	if cfg.Server.Port != "" {
		statusSrv := httpapi.NewServer(cfg.Server.Port, pool, led, logger)
		go func() {
			if err := statusSrv.Run(ctx); err != nil {
				logger.Error().Err(err).Msg("status server failed")
			}
		}()
	}

	logger.Info().Msg("billing bot is running, press CTRL+C to exit")
	bot.Run(ctx)

	// The scheduler treats cancellation as a normal stop; wait for it so
	// the process never exits with a run in flight.
	if err := <-schedDone; err != nil {
		logger.Error().Err(err).Msg("scheduler exited with error")
	} else {
		logger.Info().Msg("scheduler stopped cleanly")
	}
	logger.Info().Msg("billing bot shut down")
}
