package cmd

import (
	"context"
	"fmt"
	"time"

	"gridiron/config"
	"gridiron/database"
	"gridiron/events"
	"gridiron/feed"
	"gridiron/generator"
	"gridiron/infrastructure"
	"gridiron/metrics"
	"gridiron/notify"
	"gridiron/realtime"
	"gridiron/repository"
	"gridiron/server"
	"gridiron/service"
	"gridiron/timer"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// ConfigureLogging applies the configured level and format to the global logger
func ConfigureLogging(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func timerConfig(cfg *config.Config) timer.Config {
	return timer.Config{
		StartClock:   cfg.TimerStartClock,
		Floor:        cfg.TimerFloor,
		Step:         cfg.TimerStep,
		Interval:     cfg.TimerInterval,
		Tick:         cfg.TimerTick,
		InitialDelay: cfg.TimerInitialDelay,
		WindowSize:   cfg.GeneratorWindowSize,
	}
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.Println("Starting gridiron server...")

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Println("Database connection established successfully")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	multiplier, err := decimal.NewFromString(cfg.DefaultMultiplier)
	if err != nil {
		return fmt.Errorf("invalid DEFAULT_MULTIPLIER %q: %w", cfg.DefaultMultiplier, err)
	}

	// Initialize services
	log.Println("Initializing services...")
	userService := service.NewUserService(uowFactory, cfg.StartingBalance)
	questionService := service.NewQuestionService(uowFactory, multiplier)
	betService := service.NewBetService(uowFactory)
	resolutionService := service.NewResolutionService(uowFactory)
	friendService := service.NewFriendService(uowFactory)
	playerService := service.NewPlayerService(uowFactory)

	// Question timers
	var questionGenerator generator.Generator
	if cfg.GeneratorURL != "" {
		questionGenerator = generator.NewHTTPClient(cfg.GeneratorURL, cfg.GeneratorMaxRetries)
	} else {
		log.Warn("GENERATOR_URL not set, every generated question will use the fallback")
	}
	questionTimer, err := timer.New(timerConfig(cfg), feed.NewFileSource(cfg.FeedDir), generator.NewResilient(questionGenerator, cfg.GeneratorTimeout), questionService)
	if err != nil {
		return fmt.Errorf("failed to create question timer: %w", err)
	}

	var locker timer.Locker
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		locker = timer.NewRedisLocker(redisClient, "gridiron", 30*time.Second)
		log.WithField("addr", cfg.RedisAddr).Info("Room timer locks stored in Redis")
	}

	timerManager := timer.NewManager(ctx, questionTimer, repository.NewTimerRunRepository(db), locker, eventBus)
	roomService := service.NewRoomService(uowFactory, timerManager)
	log.Println("Services initialized successfully")

	// Event consumers
	metrics.SubscribeToBus(eventBus)
	hub := realtime.NewHub()
	hub.SubscribeToBus(eventBus)

	if cfg.NATSServers != "" {
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return err
		}
		defer natsClient.Close()
		if err := natsClient.EnsureStream(infrastructure.DomainEventStream, infrastructure.AllSubjects()); err != nil {
			return err
		}
		infrastructure.NewNATSEventPublisher(natsClient).SubscribeToBus(eventBus)
	}

	if cfg.DiscordEnabled() {
		announcer, err := notify.New(cfg.DiscordToken, cfg.DiscordChannelID)
		if err != nil {
			return fmt.Errorf("failed to initialize Discord announcements: %w", err)
		}
		defer announcer.Close()
		announcer.SubscribeToBus(eventBus)
	}

	handler := server.NewHandler(server.Services{
		Users:       userService,
		Bets:        betService,
		Questions:   questionService,
		Resolutions: resolutionService,
		Rooms:       roomService,
		Friends:     friendService,
		Players:     playerService,
	}, hub)
	httpServer := server.New(cfg, handler)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	log.Printf("Server is running in %s mode...", cfg.Environment)
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			log.WithError(err).Error("HTTP server stopped")
		}
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}
	timerManager.StopAll()
	hub.Close()

	log.Println("Shutdown completed")
	return nil
}
