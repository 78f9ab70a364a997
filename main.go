package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gatherly-api/cache"
	"gatherly-api/config"
	"gatherly-api/controllers"
	"gatherly-api/database"
	"gatherly-api/jobs"
	"gatherly-api/logger"
	"gatherly-api/messaging"
	"gatherly-api/middleware"
	"gatherly-api/models"
	"gatherly-api/repositories"
	"gatherly-api/routes"
	"gatherly-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	appLog, err := newLogger(cfg)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer appLog.Sync()

	// Initialize database
	db, err := database.Initialize(cfg.DBDriver, cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		appLog.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(db, appLog); err != nil {
		appLog.Fatal("failed to migrate database", zap.Error(err))
	}

	if cfg.SeedFile != "" {
		n, err := database.SeedVenues(context.Background(), db, cfg.SeedFile)
		if err != nil {
			appLog.Warn("failed to seed venue catalog", zap.String("file", cfg.SeedFile), zap.Error(err))
		} else {
			appLog.Info("venue catalog seeded", zap.Int("venues", n))
		}
	}

	planRepo := repositories.NewPlanRepository(db)
	voteRepo := repositories.NewVoteRepository(db)
	venueRepo := repositories.NewVenueRepository(db)

	readModel := services.NewVenueReadModel(venueRepo)
	center := models.GeoPoint{Lat: cfg.DefaultCityLat, Lng: cfg.DefaultCityLng}
	shortlists := services.NewShortlistService(venueRepo, readModel, services.DefaultShortlistConfig(center), appLog)

	shortlistCache, closeCache := newShortlistCache(cfg, appLog)
	defer closeCache()

	notifier, closeNotifiers := newNotifier(cfg, appLog)
	defer closeNotifiers()

	planService := services.NewPlanService(planRepo, voteRepo, shortlists, readModel, shortlistCache, notifier, appLog)

	// Set Gin mode
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(appLog))
	router.Use(middleware.ErrorHandler(appLog))
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())

	routes.SetupRoutes(router,
		cfg,
		controllers.NewPlanController(planService),
		controllers.NewVenueController(readModel),
	)

	deadlineJob := jobs.NewVotingDeadlineJob(planService, cfg.DeadlineSweepInterval, appLog)
	deadlineJob.Start()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLog.Info("starting Gatherly API server", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down")
	deadlineJob.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLog.Error("server shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*logger.Logger, error) {
	if cfg.IsDevelopment() {
		return logger.NewDevelopment(cfg.LogLevel)
	}
	return logger.New(cfg.LogLevel)
}

// newShortlistCache uses Redis when configured. Without it shortlists are
// regenerated on every read.
func newShortlistCache(cfg *config.Config, appLog *logger.Logger) (services.ShortlistCache, func()) {
	if cfg.RedisURL == "" {
		appLog.Info("REDIS_URL not set, shortlist caching disabled")
		return cache.NoopShortlistCache{}, func() {}
	}

	client, err := cache.NewRedisClient(cfg.RedisURL)
	if err != nil {
		appLog.Fatal("invalid REDIS_URL", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		appLog.Warn("redis unreachable, cache reads will miss until it recovers", zap.Error(err))
	}

	return cache.NewRedisShortlistCache(client, cfg.ShortlistCacheTTL), func() { client.Close() }
}

// newNotifier fans lifecycle events out to every configured channel.
func newNotifier(cfg *config.Config, appLog *logger.Logger) (services.Notifier, func()) {
	var notifiers services.MultiNotifier
	var closers []func()

	if cfg.NATSURL != "" {
		client, err := messaging.Connect(cfg.NATSURL, appLog)
		if err != nil {
			appLog.Fatal("failed to connect to NATS", zap.Error(err))
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = client.EnsureStream(ctx)
		cancel()
		if err != nil {
			appLog.Fatal("failed to ensure plan event stream", zap.Error(err))
		}
		notifiers = append(notifiers, messaging.NewPublisher(client.JetStream()))
		closers = append(closers, client.Close)
	}

	if cfg.TelegramToken != "" {
		bot, err := services.NewTelegramBot(cfg.TelegramToken)
		if err != nil {
			appLog.Warn("telegram notifications disabled", zap.Error(err))
		} else {
			notifiers = append(notifiers, services.NewTelegramNotifier(bot))
		}
	}

	if cfg.SMTPHost != "" && cfg.NotifyEmailTo != "" {
		notifiers = append(notifiers, services.NewEmailNotifier(cfg))
	}

	appLog.Info("lifecycle notifications configured", zap.Int("channels", len(notifiers)))

	return notifiers, func() {
		for _, c := range closers {
			c()
		}
	}
}
