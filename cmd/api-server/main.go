package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"chathub/database"
	"chathub/internal/config"
	"chathub/internal/microservices/chat"
	"chathub/internal/microservices/http-api/handler"
	"chathub/internal/microservices/http-api/middleware"
	"chathub/internal/microservices/http-api/repository"
	"chathub/internal/microservices/http-api/service"
)

func main() {
	// 1. Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	// 2. Structured logging
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// 3. Connect to the database
	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	// 4. Redis presence mirror (optional - chat works without it)
	var mirror *chat.PresenceMirror
	if opts, err := redis.ParseURL(cfg.RedisURL); err != nil {
		logger.Warn("redis_url_invalid_mirror_disabled", "error", err.Error())
	} else {
		if cfg.RedisPassword != "" {
			opts.Password = cfg.RedisPassword
		}
		rdb := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis_unreachable_mirror_disabled", "error", err.Error())
		} else {
			mirror = chat.NewPresenceMirror(rdb)
		}
		cancel()
	}

	// 5. Repositories and services
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	messageRepo := chat.NewChatMessageRepository(db)
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg)

	// 6. Chat core: registry + sink + session loop.
	// No game bot adapter is wired yet; commands degrade to a visible
	// "bot unavailable" system message.
	registry := chat.NewRegistry(authService)
	sink := chat.NewMessageSink(messageRepo, cfg.ChatSinkBuffer)
	session := chat.NewSessionManager(registry, messageRepo, sink, nil, mirror)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sink.Run(ctx)
	go session.Run(ctx)

	// 7. HTTP routes
	if cfg.GoEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	authHandler := handler.NewAuthHandler(authService)
	roomHandler := handler.NewRoomHandler(roomRepo, messageRepo, session, cfg.ChatHistoryLimit, cfg.RoomCapacity)

	r.GET("/check-conn", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":     "API is alive and database connected",
			"connections": registry.Count(),
		})
	})

	api := r.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.RefreshToken)
			authGroup.POST("/revoke", authHandler.RevokeToken)
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("", roomHandler.List)
			rooms.GET("/:id", roomHandler.Get)
			rooms.GET("/:id/messages", roomHandler.History)
			rooms.POST("", middleware.AuthMiddleware(authService), roomHandler.Create)
			rooms.DELETE("/:id", middleware.AuthMiddleware(authService), middleware.RequireRole("manager"), roomHandler.Delete)
		}
	}

	// WebSocket entry point; auth is resolved inside (guests allowed)
	r.GET("/ws/chat", chat.WSHandler(session, registry, cfg.ChatSendBuffer))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		logger.Info("http_server_started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// 8. Graceful shutdown: stop accepting, close live sockets, let the
	// sink flush what it can
	<-ctx.Done()
	logger.Info("shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err.Error())
	}
	registry.CloseAllConnections()
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
