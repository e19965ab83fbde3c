package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-messages/internal/config"
	"chat-messages/internal/handler"
	"chat-messages/internal/middleware"
	"chat-messages/internal/services"
	"chat-messages/internal/transport/httpdto"
	"chat-messages/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Message *handler.MessageHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.Server.Mode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.Server.Mode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// SetupRoutes mounts the message API. limiter may be nil, in which case
// message writes are not rate limited.
func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, limiter middleware.MessageLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware(s.config.Server.CORSOrigin))
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})
	s.engine.GET("/health", handlers.Message.Health)

	v1 := s.engine.Group("/v1", middleware.AuthMiddleware(authService))

	create := []gin.HandlerFunc{handlers.Message.Create}
	if limiter != nil {
		create = append([]gin.HandlerFunc{middleware.MessageRateLimitMiddleware(limiter, s.logger)}, create...)
	}

	messages := v1.Group("/messages")
	{
		messages.POST("", create...)
		messages.GET("/:id", handlers.Message.GetByID)
		messages.DELETE("/:id", handlers.Message.Delete)
		messages.PUT("/:id/tags", handlers.Message.UpdateTags)
		messages.POST("/:id/like", handlers.Message.Like)
		messages.DELETE("/:id/like", handlers.Message.Unlike)
		messages.POST("/:id/resolve", handlers.Message.Resolve)
		messages.DELETE("/:id/resolve", handlers.Message.Unresolve)
	}

	v1.GET("/conversations/:id/messages", handlers.Message.ListConversation)
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.Server.Port)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.Server.Port)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
