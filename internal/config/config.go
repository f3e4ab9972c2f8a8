package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/PredictionMetrics/internal/forecast"
	"github.com/Alias1177/PredictionMetrics/internal/report"
	"github.com/Alias1177/PredictionMetrics/models"
)

// Load initializes configuration from environment variables. The result is
// not validated so callers can apply overrides first and then call Validate.
func Load() (*models.Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg models.Config

	cfg.TwelveAPIKey = os.Getenv("TWELVE_API_KEY")
	cfg.Symbols = getEnvListWithDefault("SYMBOLS", []string{"AAPL"})
	cfg.Interval = getEnvWithDefault("INTERVAL", "1day")
	cfg.CandleCount = getEnvIntWithDefault("CANDLE_COUNT", 30)
	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)
	cfg.ForecastMethod = getEnvWithDefault("FORECAST_METHOD", forecast.MethodNaive)
	cfg.EMAPeriod = getEnvIntWithDefault("EMA_PERIOD", 5)
	cfg.MockSeed = uint64(getEnvIntWithDefault("MOCK_SEED", 1))
	cfg.StatusThreshold = getEnvFloatWithDefault("STATUS_THRESHOLD", 0.5)
	cfg.OutputFormat = getEnvWithDefault("OUTPUT_FORMAT", report.TextOut)
	cfg.Precision = getEnvIntWithDefault("PRECISION", 2)
	cfg.NoColor = getEnvBoolWithDefault("NO_COLOR_OUTPUT", false)
	cfg.StoreResults = getEnvBoolWithDefault("STORE_RESULTS", false)
	cfg.NotifyResults = getEnvBoolWithDefault("NOTIFY_RESULTS", false)

	cfg.DB = models.DBConfig{
		Host:     os.Getenv("DB_HOST"),
		Port:     getEnvWithDefault("DB_PORT", "5432"),
		User:     os.Getenv("DB_USER"),
		Password: os.Getenv("DB_PASSWORD"),
		DBName:   os.Getenv("DB_NAME"),
		SSLMode:  getEnvWithDefault("DB_SSLMODE", "disable"),
	}

	chatIDs, err := parseChatIDs(os.Getenv("TELEGRAM_CHAT_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.Telegram = models.TelegramConfig{
		BotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		ChatIDs:  chatIDs,
	}

	return &cfg, nil
}

// Validate checks values that cannot be defaulted silently
func Validate(cfg *models.Config) error {
	var errs []error
	if !report.ValidFormat(cfg.OutputFormat) {
		errs = append(errs, fmt.Errorf("OUTPUT_FORMAT %q is not one of %s", cfg.OutputFormat, strings.Join(report.Formats, ", ")))
	}
	if !slices.Contains(forecast.Methods, strings.ToLower(cfg.ForecastMethod)) {
		errs = append(errs, fmt.Errorf("FORECAST_METHOD %q is not one of %s", cfg.ForecastMethod, strings.Join(forecast.Methods, ", ")))
	}
	if cfg.StatusThreshold <= 0 {
		errs = append(errs, fmt.Errorf("STATUS_THRESHOLD must be positive, got %g", cfg.StatusThreshold))
	}
	if cfg.Precision < 0 {
		errs = append(errs, fmt.Errorf("PRECISION must not be negative, got %d", cfg.Precision))
	}
	if cfg.CandleCount < 3 {
		errs = append(errs, fmt.Errorf("CANDLE_COUNT must be at least 3, got %d", cfg.CandleCount))
	}
	if cfg.EMAPeriod < 1 {
		errs = append(errs, fmt.Errorf("EMA_PERIOD must be positive, got %d", cfg.EMAPeriod))
	}
	return errors.Join(errs...)
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid integer, using default")
	}
	return defaultValue
}

func getEnvFloatWithDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid number, using default")
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvListWithDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return SplitList(value)
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseChatIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range SplitList(s) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TELEGRAM_CHAT_IDS: invalid chat id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
