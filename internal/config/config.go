// Package config loads pipeline settings from the environment (and an optional .env file).
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderZhipu  = "zhipu"
	ProviderGemini = "gemini"

	StageAll     = "all"
	StageCollect = "collect"
	StageProcess = "process"
	StageReport  = "report"
	StageWeekly  = "weekly" // never part of StageAll
)

type Config struct {
	// Sources
	SourcesConfigPath     string
	EntriesPerSource      int
	SourceDelay           time.Duration
	FeedTimeout           time.Duration
	FetchMissingSummaries bool

	// Selection
	MaxSummaryRunes int
	TopN            int

	// Generation
	AIProvider      string // "zhipu" or "gemini"
	ZhipuAPIKey     string
	ZhipuBaseURL    string
	ZhipuModel      string
	GeminiAPIKey    string
	GeminiModel     string
	GenerateDelay   time.Duration
	GenerateTimeout time.Duration
	MaxAIRequests   int // per run, 0 = unlimited

	// Artifacts
	OutputDir string
	DocsDir   string
	Timezone  string

	// Notification (optional)
	TelegramToken  string
	TelegramChatID string

	// App settings
	Stage string
	Debug bool
}

// Load reads .env (ENV_PATH or ./.env, missing file is fine) and then the environment.
func Load() (*Config, error) {
	envPath := getEnvOrDefault("ENV_PATH", ".env")
	if err := godotenv.Load(envPath); err != nil {
		slog.Debug("no .env loaded", "path", envPath, "error", err)
	}

	cfg := &Config{
		SourcesConfigPath: "configs/sources.yaml",
		EntriesPerSource:  3,
		SourceDelay:       time.Second,
		FeedTimeout:       15 * time.Second,
		MaxSummaryRunes:   500,
		TopN:              10,
		AIProvider:        ProviderZhipu,
		ZhipuBaseURL:      "https://open.bigmodel.cn/api/paas/v4",
		ZhipuModel:        "glm-4",
		GeminiModel:       "gemini-1.5-flash",
		GenerateDelay:     2 * time.Second,
		GenerateTimeout:   30 * time.Second,
		OutputDir:         "output",
		DocsDir:           "docs",
		Timezone:          "Local",
		Stage:             StageAll,
	}

	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesConfigPath)
	cfg.EntriesPerSource = getEnvIntOrDefault("ENTRIES_PER_SOURCE", cfg.EntriesPerSource)
	cfg.SourceDelay = getEnvMillisOrDefault("SOURCE_DELAY_MS", cfg.SourceDelay)
	cfg.FeedTimeout = getEnvSecondsOrDefault("FEED_TIMEOUT_SECONDS", cfg.FeedTimeout)
	cfg.FetchMissingSummaries = os.Getenv("FETCH_MISSING_SUMMARIES") == "true"

	cfg.MaxSummaryRunes = getEnvIntOrDefault("MAX_SUMMARY_RUNES", cfg.MaxSummaryRunes)
	cfg.TopN = getEnvIntOrDefault("TOP_N", cfg.TopN)

	cfg.AIProvider = getEnvOrDefault("AI_PROVIDER", cfg.AIProvider)
	cfg.ZhipuAPIKey = os.Getenv("ZHIPU_API_KEY")
	cfg.ZhipuBaseURL = getEnvOrDefault("ZHIPU_BASE_URL", cfg.ZhipuBaseURL)
	cfg.ZhipuModel = getEnvOrDefault("ZHIPU_MODEL", cfg.ZhipuModel)
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.GenerateDelay = getEnvMillisOrDefault("GENERATE_DELAY_MS", cfg.GenerateDelay)
	cfg.GenerateTimeout = getEnvSecondsOrDefault("GENERATE_TIMEOUT_SECONDS", cfg.GenerateTimeout)
	cfg.MaxAIRequests = getEnvIntOrDefault("MAX_AI_REQUESTS", cfg.MaxAIRequests)

	cfg.OutputDir = getEnvOrDefault("OUTPUT_DIR", cfg.OutputDir)
	cfg.DocsDir = getEnvOrDefault("DOCS_DIR", cfg.DocsDir)
	cfg.Timezone = getEnvOrDefault("TIMEZONE", cfg.Timezone)

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")

	cfg.Stage = getEnvOrDefault("PIPELINE_STAGE", cfg.Stage)
	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

// APIKey returns the credential of the selected provider; empty means offline mode.
func (c *Config) APIKey() string {
	if c.AIProvider == ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.ZhipuAPIKey
}

// Location resolves Timezone, falling back to the local zone.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		slog.Warn("unknown timezone, using local", "timezone", c.Timezone, "error", err)
		return time.Local
	}
	return loc
}

// NotifyEnabled reports whether both Telegram settings are present.
func (c *Config) NotifyEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != ""
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

func getEnvMillisOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

func getEnvSecondsOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if s, err := strconv.Atoi(value); err == nil && s > 0 {
			return time.Duration(s) * time.Second
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.AIProvider != ProviderZhipu && c.AIProvider != ProviderGemini {
		return fmt.Errorf("AI_PROVIDER must be '%s' or '%s'", ProviderZhipu, ProviderGemini)
	}
	switch c.Stage {
	case StageAll, StageCollect, StageProcess, StageReport, StageWeekly:
	default:
		return fmt.Errorf("PIPELINE_STAGE must be one of all, collect, process, report, weekly")
	}
	if c.EntriesPerSource <= 0 {
		return fmt.Errorf("ENTRIES_PER_SOURCE must be positive")
	}
	if c.TopN <= 0 {
		return fmt.Errorf("TOP_N must be positive")
	}
	if c.MaxSummaryRunes <= 0 {
		return fmt.Errorf("MAX_SUMMARY_RUNES must be positive")
	}
	if c.MaxAIRequests < 0 {
		return fmt.Errorf("MAX_AI_REQUESTS must not be negative")
	}
	return nil
}
