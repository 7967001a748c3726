package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the blackjack server. Values come
// from BLACKJACKD_* environment variables, optionally seeded from a .env
// file in the working directory.
type Config struct {
	ListenAddr string `env:"BLACKJACKD_LISTEN"    envDefault:":8080"`
	RedisURL   string `env:"BLACKJACKD_REDIS_URL" envDefault:"redis://127.0.0.1:6379/0"`

	DataDir     string `env:"BLACKJACKD_DATA_DIR"`
	LogFile     string `env:"BLACKJACKD_LOG_FILE"`
	DebugLevel  string `env:"BLACKJACKD_DEBUG_LEVEL"   envDefault:"info"`
	MaxLogFiles int    `env:"BLACKJACKD_MAX_LOG_FILES" envDefault:"5"`

	SessionTTL      time.Duration `env:"BLACKJACKD_SESSION_TTL"      envDefault:"2h"`
	TurnDelay       time.Duration `env:"BLACKJACKD_TURN_DELAY"       envDefault:"1s"`
	StartingBalance int64         `env:"BLACKJACKD_STARTING_BALANCE" envDefault:"1000"`

	// QueueSize and Workers size the background turn scheduler. Zero means
	// the server defaults.
	QueueSize int `env:"BLACKJACKD_QUEUE_SIZE"`
	Workers   int `env:"BLACKJACKD_WORKERS"`

	// AuditRetention is how long balance audit entries are kept before the
	// nightly prune removes them.
	AuditRetention time.Duration `env:"BLACKJACKD_AUDIT_RETENTION" envDefault:"2160h"`
}

// Load reads the configuration from the environment. A missing .env file is
// not an error; the process environment alone is fine.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = dcrutil.AppDataDir("blackjackd", false)
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "logs", "blackjackd.log")
	}

	return &cfg, nil
}

// DBPath returns the path of the accounts database inside the data dir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "blackjack.db")
}
