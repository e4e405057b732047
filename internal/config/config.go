package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Bounds for the two batch caps. Values outside the range fall back to the
// default instead of failing the run.
const (
	MinArticles = 1
	MaxArticles = 200
	MinMessages = 1
	MaxMessages = 20
)

type Config struct {
	// Telegram settings
	TelegramToken  string
	TelegramChatID string

	// RSS settings
	FeedsConfigPath string
	MaxArticleCount int // articles summarized per batch
	MaxMessageCount int // messages dispatched per send action

	// Summary settings
	SummaryMaxChars int
	TopK            int

	// Scraper settings
	ScrapeMissing     bool // fetch article pages for entries without a body
	ScrapeMaxArticles int

	// App settings
	SendTimeout time.Duration
	Debug       bool
}

func Load() *Config {
	cfg := &Config{
		// Default values
		FeedsConfigPath:   "configs/feeds.yaml",
		MaxArticleCount:   30,
		MaxMessageCount:   5,
		SummaryMaxChars:   300,
		TopK:              3,
		ScrapeMaxArticles: 5,
		SendTimeout:       15 * time.Second,
	}

	// Load from environment
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")

	if path := os.Getenv("FEEDS_CONFIG_PATH"); path != "" {
		cfg.FeedsConfigPath = path
	}

	if v := os.Getenv("MAX_ARTICLES"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= MinArticles && val <= MaxArticles {
			cfg.MaxArticleCount = val
		}
	}
	if v := os.Getenv("MAX_MESSAGES"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= MinMessages && val <= MaxMessages {
			cfg.MaxMessageCount = val
		}
	}

	if os.Getenv("SCRAPE_MISSING") == "true" {
		cfg.ScrapeMissing = true
	}
	if v := os.Getenv("SCRAPE_MAX_ARTICLES"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.ScrapeMaxArticles = val
		}
	}

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg
}

// SetMaxArticleCount applies a caller-supplied cap, keeping the current value
// when the input is out of bounds.
func (c *Config) SetMaxArticleCount(n int) {
	if n >= MinArticles && n <= MaxArticles {
		c.MaxArticleCount = n
	}
}

// SetMaxMessageCount applies a caller-supplied cap, keeping the current value
// when the input is out of bounds.
func (c *Config) SetMaxMessageCount(n int) {
	if n >= MinMessages && n <= MaxMessages {
		c.MaxMessageCount = n
	}
}

// ValidateTelegram checks the send precondition. Both fields are required
// before any message is attempted.
func (c *Config) ValidateTelegram() error {
	if c.TelegramToken == "" || c.TelegramChatID == "" {
		return fmt.Errorf("both TELEGRAM_TOKEN and TELEGRAM_CHAT_ID are required")
	}
	return nil
}
