package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	APIKey   string `env:"API_KEY"`

	Timezone     string `env:"TZ,            default=Asia/Taipei"`
	LateCutoff   string `env:"LATE_CUTOFF,   default=08:00"`
	OnlyWeekdays bool   `env:"ONLY_WEEKDAYS, default=true"`

	Line   LineConfig
	Sheets SheetsConfig
	File   FileConfig
	Redis  RedisConfig
}

type LineConfig struct {
	ChannelSecret string `env:"CHANNEL_SECRET"`
	AccessToken   string `env:"CHANNEL_ACCESS_TOKEN"`
	APIBase       string `env:"LINE_API_BASE, default=https://api.line.me"`
}

type SheetsConfig struct {
	// ServiceAccountJSON holds the service-account credentials document
	// verbatim, not a file path.
	ServiceAccountJSON string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	SpreadsheetID      string `env:"GOOGLE_SHEET_ID"`
}

type FileConfig struct {
	DataDir string `env:"DATA_DIR, default=."`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// Validate checks the settings the service cannot run without. An empty
// channel secret would make every webhook signature forgeable, and an empty
// access token makes every outbound message fail.
func (c *Config) Validate() error {
	if c.Line.ChannelSecret == "" {
		return fmt.Errorf("config: CHANNEL_SECRET is required")
	}
	if c.Line.AccessToken == "" {
		return fmt.Errorf("config: CHANNEL_ACCESS_TOKEN is required")
	}
	return nil
}

// UseSheets reports whether the spreadsheet backend is fully configured.
// Both credentials and a spreadsheet id are required; anything less falls
// back to the file backend.
func (c *Config) UseSheets() bool {
	return c.Sheets.ServiceAccountJSON != "" && c.Sheets.SpreadsheetID != ""
}

// Location resolves the configured timezone, falling back to UTC when the
// name is unknown to the host tz database.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
