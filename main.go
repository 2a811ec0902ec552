package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sjsage522/cardwatch/config"
	"sjsage522/cardwatch/helpers"
	"sjsage522/cardwatch/internal"
	"sjsage522/cardwatch/internal/crawler"
	"sjsage522/cardwatch/internal/reference"
	"sjsage522/cardwatch/logger"
	apperrors "sjsage522/cardwatch/pkg/errors"
	"sjsage522/cardwatch/services/cache"
	"sjsage522/cardwatch/services/chart"
	"sjsage522/cardwatch/services/history"
	"sjsage522/cardwatch/services/notifier"
	"sjsage522/cardwatch/services/publisher"
	"sjsage522/cardwatch/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		exit(log, err, "Invalid configuration")
	}

	jobs, err := config.LoadJobs(cfg.JobsPath)
	if err != nil {
		exit(log, err, "Invalid jobs file "+cfg.JobsPath)
	}
	if err := cfg.CheckJobs(jobs); err != nil {
		exit(log, err, "Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Int("jobs", len(jobs)).
		Bool("dry_run", cfg.DryRun).
		Str("fetch_mode", cfg.FetchMode).
		Msg("Starting application")

	// Set up context cancelled on shutdown signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize services
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		exit(log, err, "Failed to initialize services")
	}
	defer services.Cleanup()

	w := worker.NewWorker(services.Dependencies, worker.NewEvaluator(
		services.Offers,
		services.Reference,
		cfg.TopN,
		cfg.ReferenceDelay,
	))

	if cfg.Schedule == "" {
		w.RunOnce(ctx, jobs)
		log.Info().Msg("Run complete")
		return
	}

	if err := w.Schedule(ctx, cfg.Schedule, jobs); err != nil {
		services.Cleanup()
		exit(log, err, "Scheduler exited with error")
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
}

// exitCode maps a startup error to the process exit status:
// 2 for configuration errors, 1 for anything else
func exitCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.IsFatal() {
		return 2
	}
	return 1
}

// exit logs err and stops the process
func exit(log *logger.Logger, err error, msg string) {
	code := exitCode(err)
	log.Error().Err(err).Int("exit_code", code).Msg(msg)
	os.Exit(code)
}

// Services holds all the initialized services
type Services struct {
	internal.Dependencies
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		if err := s.Publisher.Close(); err != nil {
			logger.Error("Failed to close publisher: %v", err)
		}
		s.Publisher = nil
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	// Initialize cache service
	services.Cache = cache.New(cfg.MemcacheAddr)

	// Initialize publisher
	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamCount,
			cfg.RedisStreamMaxLength,
		)
		if err := redisPublisher.Ping(ctx); err != nil {
			redisPublisher.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		services.Publisher = redisPublisher

		logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	}

	// Initialize price sources
	services.Offers = crawler.CreateOfferSource(cfg, services.Cache)
	if cfg.CardTraderToken != "" {
		services.Reference = reference.NewCardTrader(cfg.CardTraderAPIURL, cfg.CardTraderToken, cfg.ReferenceTimeout)
	} else {
		logger.Warn("CARDTRADER_TOKEN is not set, reference prices are disabled")
	}

	// Initialize outputs
	services.History = history.NewCSVStore(cfg.HistoryPath)
	services.Chart = chart.New(cfg.ChartPath)
	services.Logger = helpers.NewLogger(cfg.ErrorLogPath, logger.Default)

	n, err := newNotifier(cfg)
	if err != nil {
		services.Cleanup()
		return nil, err
	}
	services.Notifier = n

	return services, nil
}

// newNotifier prints to stdout in dry-run mode and talks to Telegram otherwise
func newNotifier(cfg *config.Config) (notifier.Notifier, error) {
	if cfg.DryRun {
		stdout := notifier.NewStdoutChannel(os.Stdout)
		return notifier.NewDispatcher(stdout, stdout, cfg.TelegramChatID), nil
	}

	alert, err := notifier.NewTelegramChannel("alert", cfg.TelegramAlertToken, cfg.DeliveryTimeout)
	if err != nil {
		return nil, err
	}
	digest, err := notifier.NewTelegramChannel("digest", cfg.TelegramDigestToken, cfg.DeliveryTimeout)
	if err != nil {
		return nil, err
	}
	return notifier.NewDispatcher(alert, digest, cfg.TelegramChatID), nil
}
