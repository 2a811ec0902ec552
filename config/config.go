package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "sjsage522/cardwatch/pkg/errors"
)

// Fetch modes for listing pages
const (
	FetchModeChrome = "chrome"
	FetchModeHTTP   = "http"
)

// Config represents the application configuration
type Config struct {
	// Files
	JobsPath     string
	HistoryPath  string
	ChartPath    string
	ErrorLogPath string

	// Telegram configuration
	DryRun              bool
	TelegramAlertToken  string
	TelegramDigestToken string
	TelegramChatID      int64
	DeliveryTimeout     time.Duration

	// CardTrader configuration
	CardTraderToken  string
	CardTraderAPIURL string
	ReferenceDelay   time.Duration
	ReferenceTimeout time.Duration

	// Marketplace configuration
	TopN           int
	FetchMode      string
	ChromeBin      string
	PageTimeout    time.Duration
	RateLimitBlock time.Duration

	// Memcache configuration
	MemcacheAddr string

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Scheduling
	Schedule string

	// Environment
	Environment string

	parseErrs []error
}

// LoadConfig loads the configuration from environment variables with defaults.
// Values that are set but cannot be parsed are reported by Validate.
func LoadConfig() *Config {
	env := &envReader{}
	chatID := env.int64Value("TELEGRAM_CHAT_ID", 0)
	redisDB := env.intValue("REDIS_DB", 0)
	redisStreamCount := env.intValue("REDIS_STREAM_COUNT", 1)
	redisStreamMaxLength := env.intValue("REDIS_STREAM_MAX_LENGTH", 1000)
	topN := env.intValue("TOP_N", 5)
	referenceDelay := env.intValue("REFERENCE_DELAY_MS", 1100)
	referenceTimeout := env.intValue("REFERENCE_TIMEOUT_SECONDS", 10)
	deliveryTimeout := env.intValue("DELIVERY_TIMEOUT_SECONDS", 60)
	pageTimeout := env.intValue("PAGE_TIMEOUT_SECONDS", 60)
	rateLimitBlock := env.intValue("RATE_LIMIT_BLOCK_SECONDS", 300)
	dryRun := env.boolValue("DRY_RUN", false)

	alertToken := getEnv("TELEGRAM_ALERT_TOKEN", "")

	return &Config{
		JobsPath:             getEnv("JOBS_CONFIG", "jobs.json"),
		HistoryPath:          getEnv("HISTORY_CSV", "history.csv"),
		ChartPath:            getEnv("CHART_PATH", "price_trend.png"),
		ErrorLogPath:         getEnv("ERROR_LOG_PATH", ""),
		DryRun:               dryRun,
		TelegramAlertToken:   alertToken,
		TelegramDigestToken:  getEnv("TELEGRAM_DIGEST_TOKEN", alertToken),
		TelegramChatID:       chatID,
		DeliveryTimeout:      time.Duration(deliveryTimeout) * time.Second,
		CardTraderToken:      getEnv("CARDTRADER_TOKEN", ""),
		CardTraderAPIURL:     getEnv("CARDTRADER_API_URL", "https://api.cardtrader.com/api/v2"),
		ReferenceDelay:       time.Duration(referenceDelay) * time.Millisecond,
		ReferenceTimeout:     time.Duration(referenceTimeout) * time.Second,
		TopN:                 topN,
		FetchMode:            strings.ToLower(getEnv("FETCH_MODE", FetchModeChrome)),
		ChromeBin:            getEnv("CHROME_BIN", ""),
		PageTimeout:          time.Duration(pageTimeout) * time.Second,
		RateLimitBlock:       time.Duration(rateLimitBlock) * time.Second,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "cardwatch:summaries"),
		RedisStreamCount:     redisStreamCount,
		RedisStreamMaxLength: redisStreamMaxLength,
		Schedule:             getEnv("SCHEDULE", ""),
		Environment:          getEnv("CARDWATCH_ENVIRONMENT", "development"),
		parseErrs:            env.errs,
	}
}

// Validate checks the configuration. Any error it returns is fatal.
func (c *Config) Validate() error {
	if len(c.parseErrs) > 0 {
		return c.parseErrs[0]
	}
	if c.TopN < 1 {
		return apperrors.NewConfiguration("TOP_N must be at least 1", nil)
	}
	if c.FetchMode != FetchModeChrome && c.FetchMode != FetchModeHTTP {
		return apperrors.NewConfiguration("FETCH_MODE must be \"chrome\" or \"http\", got \""+c.FetchMode+"\"", nil)
	}
	if c.ReferenceDelay < 0 {
		return apperrors.NewConfiguration("REFERENCE_DELAY_MS must not be negative", nil)
	}
	if c.ReferenceTimeout <= 0 || c.DeliveryTimeout <= 0 || c.PageTimeout <= 0 {
		return apperrors.NewConfiguration("timeouts must be positive", nil)
	}
	if c.DryRun {
		return nil
	}
	if c.TelegramAlertToken == "" {
		return apperrors.NewConfiguration("TELEGRAM_ALERT_TOKEN is required unless DRY_RUN is set", nil)
	}
	if c.TelegramChatID == 0 {
		return apperrors.NewConfiguration("TELEGRAM_CHAT_ID is required unless DRY_RUN is set", nil)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// envReader parses typed environment variables and keeps the parse failures
type envReader struct {
	errs []error
}

func (r *envReader) intValue(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		r.fail(key, "an integer", raw, err)
		return defaultValue
	}
	return value
}

func (r *envReader) int64Value(key string, defaultValue int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		r.fail(key, "an integer", raw, err)
		return defaultValue
	}
	return value
}

func (r *envReader) boolValue(key string, defaultValue bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		r.fail(key, "true or false", raw, err)
		return defaultValue
	}
	return value
}

func (r *envReader) fail(key, want, raw string, err error) {
	r.errs = append(r.errs, apperrors.NewConfiguration(
		fmt.Sprintf("%s must be %s, got %q", key, want, raw), err))
}
