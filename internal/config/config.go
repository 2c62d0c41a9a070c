// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Source and publisher selections.
const (
	SourcePexels = "pexels"
	SourceFeed   = "feed"

	PublisherFacebook = "facebook"
	PublisherTelegram = "telegram"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath string
	LogLevel     string

	Source       string
	PexelsAPIKey string
	FeedURL      string
	PageSize     int

	Publisher        string
	FBAccessToken    string
	FBPageID         string
	TelegramBotToken string
	TelegramChatID   int64

	MaxSizeKB      float64
	MaxDurationSec int
}

// Load reads configuration from environment variables. Credentials are
// only required for the selected source and publisher.
func Load() (*Config, error) {
	cfg := &Config{
		DatabasePath:     envOr("DATABASE_PATH", "./data/poster.db"),
		LogLevel:         envOr("LOG_LEVEL", "info"),
		Source:           envOr("SOURCE", SourcePexels),
		PexelsAPIKey:     os.Getenv("PEXELS_API_KEY"),
		FeedURL:          os.Getenv("FEED_URL"),
		Publisher:        envOr("PUBLISHER", PublisherFacebook),
		FBAccessToken:    os.Getenv("FB_ACCESS_TOKEN"),
		FBPageID:         os.Getenv("FB_PAGE_ID"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	var err error
	if cfg.PageSize, err = envInt("PAGE_SIZE", 15); err != nil {
		return nil, err
	}
	maxSize, err := envInt("MAX_SIZE_KB", 1_000_000)
	if err != nil {
		return nil, err
	}
	cfg.MaxSizeKB = float64(maxSize)
	if cfg.MaxDurationSec, err = envInt("MAX_DURATION_SEC", 1200); err != nil {
		return nil, err
	}

	switch cfg.Source {
	case SourcePexels:
		if cfg.PexelsAPIKey == "" {
			return nil, fmt.Errorf("PEXELS_API_KEY is required for the pexels source")
		}
	case SourceFeed:
		if cfg.FeedURL == "" {
			return nil, fmt.Errorf("FEED_URL is required for the feed source")
		}
	default:
		return nil, fmt.Errorf("unknown SOURCE %q", cfg.Source)
	}

	switch cfg.Publisher {
	case PublisherFacebook:
		if cfg.FBAccessToken == "" || cfg.FBPageID == "" {
			return nil, fmt.Errorf("FB_ACCESS_TOKEN and FB_PAGE_ID are required for the facebook publisher")
		}
	case PublisherTelegram:
		if cfg.TelegramBotToken == "" {
			return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required for the telegram publisher")
		}
		raw := os.Getenv("TELEGRAM_CHAT_ID")
		if raw == "" {
			return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required for the telegram publisher")
		}
		if cfg.TelegramChatID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
	default:
		return nil, fmt.Errorf("unknown PUBLISHER %q", cfg.Publisher)
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return n, nil
}
