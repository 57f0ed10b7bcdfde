package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Gemini settings
	GeminiAPIKey   string
	GeminiModel    string
	MaxLLMRequests int // maximum summarization requests per run (0 = unlimited)

	// Source settings
	SourcesConfigPath string
	FetchConcurrency  int // parallel workers for feed fetching
	FetchTimeout      time.Duration

	// Summarizer settings
	BatchSize         int           // articles per combined summarization request
	BatchDelay        time.Duration // pause between chunk requests
	ArticleCharBudget int           // max content chars per article inside a batch prompt
	RetryAttempts     int
	RetryDelay        time.Duration

	// Cache settings
	CacheEnabled  bool
	CacheFilePath string
	CacheTTLDays  int

	// Output settings
	OutputPath string

	// Telegram settings (optional notification channel)
	TelegramToken  string
	TelegramChatID string

	// App settings
	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		GeminiModel:       "gemini-1.5-flash",
		SourcesConfigPath: "configs/sources.yaml",
		FetchConcurrency:  4,
		FetchTimeout:      15 * time.Second,
		BatchSize:         5,
		BatchDelay:        2 * time.Second,
		ArticleCharBudget: 1000,
		RetryAttempts:     3,
		RetryDelay:        4 * time.Second,
		CacheEnabled:      true,
		CacheFilePath:     "article_cache.json",
		CacheTTLDays:      7,
		OutputPath:        "news_digest.html",
	}

	// Load from environment
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")

	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesConfigPath)
	cfg.CacheFilePath = getEnvOrDefault("CACHE_FILE_PATH", cfg.CacheFilePath)
	cfg.OutputPath = getEnvOrDefault("OUTPUT_PATH", cfg.OutputPath)
	cfg.CacheTTLDays = getEnvIntOrDefault("CACHE_TTL_DAYS", cfg.CacheTTLDays)

	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.GeminiModel = model
	}

	if v := os.Getenv("FETCH_CONCURRENCY"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.FetchConcurrency = val
		}
	}
	if v := os.Getenv("BATCH_SIZE"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.BatchSize = val
		}
	}
	if v := os.Getenv("ARTICLE_CHAR_BUDGET"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.ArticleCharBudget = val
		}
	}
	if v := os.Getenv("RETRY_ATTEMPTS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RetryAttempts = val
		}
	}
	if v := os.Getenv("MAX_LLM_REQUESTS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.MaxLLMRequests = val
		}
	}
	if v := os.Getenv("BATCH_DELAY_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val >= 0 {
			cfg.BatchDelay = time.Duration(val) * time.Second
		}
	}
	if v := os.Getenv("FETCH_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.FetchTimeout = time.Duration(val) * time.Second
		}
	}

	if os.Getenv("DISABLE_CACHE") == "true" {
		cfg.CacheEnabled = false
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.CacheTTLDays <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	return nil
}
