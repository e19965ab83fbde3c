package main

import (
	"context"
	"log"
	"time"

	"chat-messages/internal/config"
	"chat-messages/internal/events"
	"chat-messages/internal/handler"
	"chat-messages/internal/middleware"
	"chat-messages/internal/redis"
	"chat-messages/internal/repository"
	"chat-messages/internal/server"
	"chat-messages/internal/services"
	"chat-messages/internal/store"
	"chat-messages/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.Server.Mode == server.ReleaseMode {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	logger.SetGlobalLogger(l)
	defer func() { _ = l.Sync() }()

	ctx := context.Background()

	handle, err := store.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Database.Driver, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := handle.Close(closeCtx); err != nil {
			l.Errorf("Error closing store: %s", err)
		}
	}()

	if err := handle.Migrate(ctx); err != nil {
		log.Fatalf("Failed to prepare %s store: %v", cfg.Database.Driver, err)
	}

	// Redis is optional: without it events are dropped and writes are not
	// rate limited.
	var publisher events.Publisher = events.NopPublisher{}
	var limiter middleware.MessageLimiter
	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redis.Ping(ctx, redisClient, 3*time.Second); err != nil {
		l.Warnf("Redis unreachable, events disabled: %s", err)
	} else {
		publisher = events.NewRedisPublisher(redisClient, cfg.Redis.EventsChannel)
		if cfg.Redis.RateLimitMessages > 0 {
			limiter = redis.NewRateLimiter(redisClient, redis.RateLimitConfig{
				MessageLimit:  cfg.Redis.RateLimitMessages,
				MessageWindow: cfg.Redis.RateLimitWindow,
			})
		}
	}

	data := repository.NewMessageData(handle.Collection)
	messageService := services.NewMessageService(data, publisher, l)
	authService := services.NewAuthService(cfg.Auth.JWTSecret)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Message: handler.NewMessageHandler(messageService),
	}, authService, limiter)

	if err := srv.Start(); err != nil {
		l.Errorf("Server exited with error: %s", err)
	}
}
