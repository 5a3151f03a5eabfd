// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"

	"github.com/shehryarbajwa/bitbrowser-go/pkg/client"
)

// Prefix of every environment variable, e.g. BITBROWSER_URL
const Prefix = "BITBROWSER"

// Config holds every setting of the CLI and the local API server
type Config struct {
	URL      string            `envconfig:"URL" default:"http://127.0.0.1:54345"`
	Token    string            `envconfig:"TOKEN"`
	Timeout  time.Duration     `envconfig:"TIMEOUT" default:"10s"`
	Headers  map[string]string `envconfig:"HEADERS"`
	PageSize int               `envconfig:"PAGE_SIZE" default:"100"`

	Listen      string `envconfig:"LISTEN" default:":8080"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	SnapshotDir string `envconfig:"SNAPSHOT_DIR" default:"./storage/cookies"`

	RatePerHour int `envconfig:"RATE_PER_HOUR" default:"100"`
	RateBurst   int `envconfig:"RATE_BURST" default:"10"`
	RelaySlots  int `envconfig:"RELAY_SLOTS" default:"4"`
}

// Load reads files (".env" when none are given) and then the environment.
// Missing env files are not an error; variables already set win over files.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("URL required")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.PageSize <= 0 {
		return errors.New("page size must be positive")
	}
	if c.RatePerHour <= 0 || c.RateBurst <= 0 {
		return errors.New("rate limit and burst must be positive")
	}
	if c.RelaySlots <= 0 {
		return errors.New("relay slots must be positive")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// ClientConfig is the transport configuration derived from c
func (c Config) ClientConfig() client.Config {
	return client.Config{
		BaseURL: c.URL,
		Headers: c.Headers,
		Token:   c.Token,
		Timeout: c.Timeout,
	}
}

// NewLogger builds the process logger at the configured level
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger
}
