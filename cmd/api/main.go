package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/khidmah/backend/internal/auth"
	"github.com/khidmah/backend/internal/config"
	"github.com/khidmah/backend/internal/database"
	"github.com/khidmah/backend/internal/events"
	"github.com/khidmah/backend/internal/handlers"
	"github.com/khidmah/backend/internal/logger"
	"github.com/khidmah/backend/internal/middleware"
	"github.com/khidmah/backend/internal/repository"
	"github.com/khidmah/backend/internal/server"
	"github.com/khidmah/backend/internal/services"
)

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog := logger.New(cfg.App.Env)
	defer func() { _ = zlog.Sync() }()
	zlog.Info("starting marketplace backend",
		zap.String("env", cfg.App.Env),
		zap.Int("port", cfg.App.Port),
	)

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, zlog)
	if err != nil {
		zlog.Fatal("mongo connect", zap.Error(err))
	}

	rdb, err := database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, zlog)
	if err != nil {
		zlog.Warn("redis unavailable, rate limiting and presence disabled", zap.Error(err))
		rdb = nil
	}

	var publisher *events.Publisher
	if cfg.Kafka.Enabled {
		publisher = events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, zlog)
	} else {
		publisher = events.NewPublisher(nil, "", zlog)
	}
	defer func() { _ = publisher.Close() }()

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db, mongoClient)
	messageRepo := repository.NewMessageRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiresHours)*time.Hour)

	authSvc := services.NewAuthService(
		userRepo, categoryRepo, jwtManager, rdb, publisher,
		cfg.Security.PasswordHashCost,
		cfg.Security.MinVerificationPics,
		time.Duration(cfg.Security.PresenceTTLMinutes)*time.Minute,
	)
	adminSvc := services.NewAdminService(userRepo, messageRepo, publisher)
	analyticsSvc := services.NewAnalyticsService(userRepo)
	categorySvc := services.NewCategoryService(categoryRepo, publisher)
	discoverySvc := services.NewDiscoveryService(userRepo, categoryRepo)
	messageSvc := services.NewMessageService(messageRepo, userRepo, categoryRepo, publisher)
	reviewSvc := services.NewReviewService(reviewRepo, messageRepo)

	var googleCfg *oauth2.Config
	if cfg.Google.ClientID != "" {
		googleCfg = &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		}
	}

	h := handlers.New(handlers.Deps{
		Auth:      authSvc,
		Admin:     adminSvc,
		Analytics: analyticsSvc,
		Category:  categorySvc,
		Discovery: discoverySvc,
		Messages:  messageSvc,
		Reviews:   reviewSvc,
		Google:    googleCfg,
		Log:       zlog,
	})

	protect := middleware.Protect(jwtManager, userRepo)
	authLimit := middleware.NewRateLimiter(
		rdb, "ratelimit:auth",
		cfg.Security.AuthRateLimit,
		time.Duration(cfg.Security.AuthRateWindowSecs)*time.Second,
	).ByIP()

	app := server.New(cfg, h, protect, authLimit, mongoClient, zlog)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		zlog.Info("server listening", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		zlog.Error("fiber shutdown", zap.Error(err))
	}
	if err := mongoClient.Disconnect(ctx); err != nil {
		zlog.Error("mongo disconnect", zap.Error(err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			zlog.Error("redis close", zap.Error(err))
		}
	}
	zlog.Info("shutdown complete")
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}
