package config

import (
	"errors"
	"net/url"
	"time"
)

type RelayConfig struct {
	// Endpoint is the full URL of the backend ingestion webhook,
	// e.g. http://localhost:3000/indexer/webhook
	Endpoint string        `mapstructure:"endpoint"`
	Secret   string        `mapstructure:"secret"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

func (cfg *RelayConfig) Validate() error {
	if cfg.Endpoint == "" {
		return errors.New("relay endpoint is required")
	}
	if _, err := url.ParseRequestURI(cfg.Endpoint); err != nil {
		return errors.New("relay endpoint must be a valid URL")
	}
	if cfg.Secret == "" {
		return errors.New("relay secret is required")
	}
	if cfg.Timeout <= 0 {
		return errors.New("relay timeout must be positive")
	}

	return nil
}
