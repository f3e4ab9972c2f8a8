package models

import (
	"time"
)

type Config struct {
	TwelveAPIKey    string   `env:"TWELVE_API_KEY" envDefault:"-"`
	Symbols         []string `env:"SYMBOLS" envDefault:"AAPL"`
	Interval        string   `env:"INTERVAL" envDefault:"1day"`
	CandleCount     int      `env:"CANDLE_COUNT" envDefault:"30"`
	LogLevel        string   `env:"LOG_LEVEL" envDefault:"info"`
	RequestTimeout  int      `env:"REQUEST_TIMEOUT" envDefault:"30"` // seconds
	ForecastMethod  string   `env:"FORECAST_METHOD" envDefault:"naive"`
	EMAPeriod       int      `env:"EMA_PERIOD" envDefault:"5"`
	MockSeed        uint64   `env:"MOCK_SEED" envDefault:"1"`
	StatusThreshold float64  `env:"STATUS_THRESHOLD" envDefault:"0.5"` // percent
	OutputFormat    string   `env:"OUTPUT_FORMAT" envDefault:"text"`
	Precision       int      `env:"PRECISION" envDefault:"2"`
	NoColor         bool     `env:"NO_COLOR_OUTPUT" envDefault:"false"`
	StoreResults    bool     `env:"STORE_RESULTS" envDefault:"false"`
	NotifyResults   bool     `env:"NOTIFY_RESULTS" envDefault:"false"`

	DB       DBConfig
	Telegram TelegramConfig
}

// DBConfig holds PostgreSQL connection parameters
type DBConfig struct {
	Host     string `env:"DB_HOST"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	DBName   string `env:"DB_NAME"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// Enabled reports whether enough parameters are set to open a connection.
func (c DBConfig) Enabled() bool {
	return c.Host != "" && c.DBName != ""
}

type TelegramConfig struct {
	BotToken string  `env:"TELEGRAM_BOT_TOKEN"`
	ChatIDs  []int64 `env:"TELEGRAM_CHAT_IDS"`
}

func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && len(c.ChatIDs) > 0
}

// Candle represents a single price candle
type Candle struct {
	Datetime string  `json:"datetime"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   int64   `json:"volume,omitempty"`
}

// TwelveResponse represents the API response from Twelve Data
type TwelveResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string  `json:"datetime"`
		Open     float64 `json:"open,string"`
		High     float64 `json:"high,string"`
		Low      float64 `json:"low,string"`
		Close    float64 `json:"close,string"`
		Volume   int64   `json:"volume,string,omitempty"`
	} `json:"values"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// AccuracyReport is one scored forecast run for a symbol
type AccuracyReport struct {
	ID                int64     `json:"id,omitempty"`
	Symbol            string    `json:"symbol"`
	Method            string    `json:"method"`
	Interval          string    `json:"interval"`
	Samples           int       `json:"samples"` // number of present predictions
	MAE               float64   `json:"mae"`
	RMSE              float64   `json:"rmse"`
	MAPE              float64   `json:"mape"`
	DirectionAccuracy float64   `json:"direction_accuracy"`
	CreatedAt         time.Time `json:"created_at"`
}
