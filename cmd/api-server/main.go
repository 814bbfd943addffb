package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"anihub/database"
	"anihub/internal/config"
	"anihub/internal/httpapi/handler"
	"anihub/internal/httpapi/middleware"
	"anihub/internal/httpapi/repository"
	"anihub/internal/httpapi/service"
	"anihub/internal/upstream"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	// Redis only backs the list-response cache; the API stays up without it.
	rdb, err := database.ConnectRedis(cfg, logger)
	if err != nil {
		logger.Warn("redis unavailable, list caching disabled", "error", err)
		rdb = nil
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db_error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Repositories
	animeRepo := repository.NewAnimeRepository(db)
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	// Upstream client: one instance, so every call site shares the same
	// 3-slot admission gate.
	jikan := upstream.NewClient(cfg.JikanAPIURL, logger)

	// Services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg)
	animeService := service.NewAnimeService(animeRepo, jikan, rdb, cfg.CacheFreshness, cfg.ListCacheTTL, logger)
	collectionService := service.NewCollectionService(collectionRepo, animeRepo, animeService)
	commentService := service.NewCommentService(commentRepo, likeRepo, animeRepo)

	// Handlers
	api := router.Group("/api")

	authHandler := handler.NewAuthHandler(authService)
	authHandler.RegisterRoutes(api.Group("/auth"))

	animeHandler := handler.NewAnimeHandler(animeService)
	animeHandler.RegisterRoutes(api.Group("/anime"))

	commentHandler := handler.NewCommentHandler(commentService)
	commentHandler.RegisterPublicRoutes(api.Group("/comments", middleware.OptionalAuthMiddleware(authService)))

	protected := api.Group("", middleware.AuthMiddleware(authService))
	commentHandler.RegisterProtectedRoutes(protected.Group("/comments"))

	collectionHandler := handler.NewCollectionHandler(collectionService)
	collectionHandler.RegisterRoutes(protected.Group("/collection"))

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API server listening", "port", cfg.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}

	logger.Info("server stopped")
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
