package main

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"nature_poster/internal/config"
	"nature_poster/internal/facebook"
	"nature_poster/internal/filter"
	"nature_poster/internal/model"
	"nature_poster/internal/mrss"
	"nature_poster/internal/pexels"
	"nature_poster/internal/probe"
	"nature_poster/internal/runner"
	"nature_poster/internal/storage"
	"nature_poster/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	httpClient := &http.Client{Timeout: 30 * time.Second}

	var source runner.Source
	switch cfg.Source {
	case config.SourceFeed:
		source = mrss.New(httpClient, cfg.FeedURL)
	default:
		source = pexels.New(httpClient, cfg.PexelsAPIKey, cfg.PageSize)
	}

	var publisher runner.Publisher
	switch cfg.Publisher {
	case config.PublisherTelegram:
		publisher, err = telegram.New(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Error("create telegram publisher", "error", err)
			os.Exit(1)
		}
	default:
		publisher = facebook.New(httpClient, cfg.FBAccessToken, cfg.FBPageID)
	}

	policy := filter.Policy{
		AllowedExtensions: model.DefaultExtensions(),
		MaxSizeKB:         cfg.MaxSizeKB,
		MaxDurationSec:    cfg.MaxDurationSec,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	r := runner.New(store, source, publisher, probe.New(httpClient), policy,
		rand.New(rand.NewSource(time.Now().UnixNano())), log)

	rec, err := r.Run(ctx)
	if err != nil {
		log.Error("run failed", "error", err)
		os.Exit(1)
	}
	if rec == nil {
		log.Info("no candidate accepted, nothing published")
		return
	}
	log.Info("run complete", "source_id", rec.SourceID, "description", rec.Description)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
