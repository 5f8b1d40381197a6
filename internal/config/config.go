// Package config loads runtime settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/jwulff/finvoice/internal/daemon"
	"github.com/jwulff/finvoice/internal/db"
)

// Microphone backends.
const (
	MicSimulated = "simulated"
	MicDaemon    = "daemon"
)

type Config struct {
	// Storage
	DBPath       string `env:"FINVOICE_DB_PATH"`
	HistoryLimit int    `env:"FINVOICE_HISTORY_LIMIT" envDefault:"200"`

	// Logging
	LogPath  string `env:"FINVOICE_LOG_PATH"`
	LogLevel string `env:"FINVOICE_LOG_LEVEL" envDefault:"info"`

	// Capture
	Mic           string `env:"FINVOICE_MIC" envDefault:"simulated"`
	CaptureSocket string `env:"FINVOICE_CAPTURE_SOCKET"`
	CaptureDevice string `env:"FINVOICE_CAPTURE_DEVICE"`
	Playback      bool   `env:"FINVOICE_PLAYBACK" envDefault:"true"`

	// Timing
	ReplyDelay      time.Duration `env:"FINVOICE_REPLY_DELAY" envDefault:"1500ms"`
	TranscribeDelay time.Duration `env:"FINVOICE_TRANSCRIBE_DELAY" envDefault:"1500ms"`
	NoticeDuration  time.Duration `env:"FINVOICE_NOTICE_DURATION" envDefault:"5s"`

	// Replies
	CatalogPath string `env:"FINVOICE_CATALOG"`
	Seed        uint64 `env:"FINVOICE_SEED" envDefault:"0"`
}

// Load reads envFile (if it exists) into the process environment and parses
// the result. Variables already set win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = db.DefaultDBPath()
	}
	if cfg.CaptureSocket == "" {
		cfg.CaptureSocket = daemon.SocketPath()
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the app cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Mic {
	case MicSimulated, MicDaemon:
	default:
		errs = append(errs, fmt.Errorf("FINVOICE_MIC: unknown backend %q", c.Mic))
	}
	if c.ReplyDelay <= 0 {
		errs = append(errs, errors.New("FINVOICE_REPLY_DELAY must be positive"))
	}
	if c.TranscribeDelay <= 0 {
		errs = append(errs, errors.New("FINVOICE_TRANSCRIBE_DELAY must be positive"))
	}
	if c.NoticeDuration <= 0 {
		errs = append(errs, errors.New("FINVOICE_NOTICE_DURATION must be positive"))
	}
	if c.HistoryLimit < 0 {
		errs = append(errs, errors.New("FINVOICE_HISTORY_LIMIT must not be negative"))
	}
	return errors.Join(errs...)
}
