package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"anihub/database"
	"anihub/internal/config"
	"anihub/internal/httpapi/repository"
	"anihub/internal/httpapi/service"
	"anihub/internal/upstream"
)

// cache-warm walks the top-anime ranking and pulls each entry through the
// read-through cache, so the first users after a deploy hit warm rows
// instead of paying the upstream round trip.
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

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	pages := getEnvInt("CACHE_WARM_PAGES", 2)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received, stopping warm run")
		cancel()
	}()

	jikan := upstream.NewClient(cfg.JikanAPIURL, logger)
	animeRepo := repository.NewAnimeRepository(db)
	animeService := service.NewAnimeService(animeRepo, jikan, nil, cfg.CacheFreshness, cfg.ListCacheTTL, logger)

	start := time.Now()
	var warmed, failed int

	for page := 1; page <= pages; page++ {
		top, err := jikan.GetTopAnime(ctx, page)
		if err != nil {
			logger.Error("top anime page fetch failed", "page", page, "error", err)
			os.Exit(1)
		}

		for _, entry := range top.Data {
			if ctx.Err() != nil {
				logger.Info("warm run cancelled", "warmed", warmed, "failed", failed)
				return
			}
			if _, err := animeService.GetAnime(ctx, entry.MalID); err != nil {
				logger.Warn("warm failed", "anime_id", entry.MalID, "error", err)
				failed++
				continue
			}
			warmed++
		}

		if !top.Pagination.HasNextPage {
			break
		}
	}

	logger.Info("warm run complete",
		"warmed", warmed,
		"failed", failed,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
