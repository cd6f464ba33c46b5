package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/E-LOVE-APP/chat-service/internal/broker"
	"github.com/E-LOVE-APP/chat-service/internal/cache"
	"github.com/E-LOVE-APP/chat-service/internal/config"
	"github.com/E-LOVE-APP/chat-service/internal/domain"
	"github.com/E-LOVE-APP/chat-service/internal/handler"
	"github.com/E-LOVE-APP/chat-service/internal/hub"
	"github.com/E-LOVE-APP/chat-service/internal/repository"
	"github.com/E-LOVE-APP/chat-service/internal/service"
	"github.com/E-LOVE-APP/chat-service/pkg/database"
	pkglog "github.com/E-LOVE-APP/chat-service/pkg/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Level == "debug",
		ServiceName: "chat-service",
	})
	logger := pkglog.L()

	// Connect to database using GORM
	dbConfig := &database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	db, err := database.New(dbConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Auto-migrate
	if err := database.AutoMigrate(db, &domain.ConversationModel{}, &domain.MessageModel{}); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Msg("database migration completed")

	// Initialize repositories
	conversationRepo := repository.NewGormConversationRepository(db)
	messageRepo := repository.NewGormMessageRepository(db)

	// Initialize Redis cache
	conversationCache, err := cache.NewRedisConversationCache(cfg.Redis, cfg.Cache.Prefix)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer conversationCache.Close()
	logger.Info().Msg("redis cache connected")

	// Initialize services
	conversationService := service.NewConversationService(conversationRepo, conversationCache, cfg.Cache.TTL)
	messageService := service.NewMessageService(conversationRepo, messageRepo)

	// Initialize hub and broker
	registry := hub.NewRegistry()
	msgBroker := broker.New(registry, messageService)

	// Initialize handlers
	httpHandler := handler.NewHTTPHandler(conversationService, messageService, msgBroker)
	wsHandler := handler.NewWSHandler(conversationService, msgBroker, registry, cfg.WebSocket)

	// Setup Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Register routes
	httpHandler.RegisterRoutes(r)
	wsHandler.RegisterRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", addr).Str("driver", cfg.Database.Driver).Msg("chat-service starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info().Msg("shutting down chat-service")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("chat-service exited with error")
	}
	logger.Info().Msg("chat-service stopped")
}
