package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"typerbot/bot"
	"typerbot/config"
	"typerbot/database"
	"typerbot/events"
	"typerbot/httpapi"
	"typerbot/notify"
	"typerbot/observability"
	"typerbot/oracle"
	"typerbot/ranks"
	"typerbot/repository"
	"typerbot/service"
	"typerbot/workers"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies the configured level and, outside development, JSON output
func ConfigureLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Environment != "development" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.WithField("environment", cfg.Environment).Info("Starting typer bot...")

	// Initialize database connection
	databaseURL := database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName)
	if err := database.RunMigrationsWithURL(databaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	db, err := database.NewConnection(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	// Initialize event bus and unit of work factory
	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	shutdown := &shutdownStack{}
	shutdownWithTimeout := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		shutdown.run(shutdownCtx)
		if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
			log.Warn("Shutdown timeout exceeded")
		}
	}

	// Initialize metrics
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	metrics.Register(eventBus)
	shutdown.push("metrics", metrics.Shutdown)

	// Initialize match data provider
	provider, rdb, err := newProvider(ctx, cfg)
	if err != nil {
		shutdownWithTimeout()
		return err
	}
	if rdb != nil {
		shutdown.push("redis", func(context.Context) error { return rdb.Close() })
	}

	// Initialize services
	accountService := service.NewAccountService(uowFactory, ranks.Default)
	wageringService := service.NewWageringService(uowFactory, cfg)
	pointsService := service.NewPointsService(uowFactory, ranks.Default, cfg)
	settlementService := service.NewSettlementService(uowFactory, provider, cfg)

	// Initialize promotion fan-out
	if cfg.NATSServers != "" {
		publisher := notify.NewNATSPublisher(cfg.NATSServers, cfg.PromotionSubject)
		if err := publisher.Connect(ctx); err != nil {
			shutdownWithTimeout()
			return fmt.Errorf("failed to initialize NATS publisher: %w", err)
		}
		publisher.Register(eventBus)
		shutdown.push("nats", func(context.Context) error { return publisher.Close() })
	}

	// Start settlement worker
	worker := workers.NewSettlementWorker(settlementService, cfg.SettlementInterval(), metrics)
	stopWorker, err := worker.Start(ctx)
	if err != nil {
		shutdownWithTimeout()
		return fmt.Errorf("failed to start settlement worker: %w", err)
	}
	shutdown.push("settlement worker", func(context.Context) error {
		stopWorker()
		return nil
	})

	// Start status API
	if cfg.HTTPAddr != "" {
		server := httpapi.NewServer(db, accountService, wageringService, pointsService, worker)
		go func() {
			if err := server.Listen(cfg.HTTPAddr); err != nil {
				log.WithError(err).Error("Status API stopped")
			}
		}()
		shutdown.push("status API", server.Shutdown)
	}

	// Initialize Discord bot
	botConfig := bot.Config{
		Token:    cfg.DiscordToken,
		GuildID:  cfg.GuildID,
		MinStake: cfg.MinStake,
	}
	discordBot, err := bot.New(botConfig, accountService, wageringService, pointsService, provider, ranks.Default)
	if err != nil {
		shutdownWithTimeout()
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	shutdown.push("discord bot", func(context.Context) error { return discordBot.Close() })
	notify.NewPromotionDM(discordBot.Session()).Register(eventBus)

	log.Info("Bot is running")
	<-ctx.Done()

	log.Info("Shutting down...")
	shutdownWithTimeout()
	log.Info("Shutdown completed")
	return nil
}

// newProvider picks the live API when a key is configured, otherwise the
// built-in fixtures, and puts redis in front when an address is configured
func newProvider(ctx context.Context, cfg *config.Config) (oracle.Provider, *redis.Client, error) {
	var provider oracle.Provider
	if cfg.FootballAPIKey != "" {
		client, err := oracle.NewFootballAPIClient(cfg.FootballAPIBaseURL, cfg.FootballAPIKey, cfg.SupportedCompetitions)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create football API client: %w", err)
		}
		provider = client
		log.WithField("competitions", cfg.SupportedCompetitions).Info("Using football API")
	} else {
		provider = oracle.NewMockProvider(time.Now(), cfg.SupportedCompetitions)
		log.Warn("RAPIDAPI_KEY not set, using mock fixtures")
	}

	if cfg.RedisAddr == "" {
		return provider, nil, nil
	}

	rdb, err := oracle.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return oracle.NewCachedProvider(provider, rdb, cfg.OracleCacheTTL()), rdb, nil
}
