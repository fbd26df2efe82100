package config

import "errors"

type QueueConfig struct {
	QueueUser     string `mapstructure:"queue-user"`
	QueuePassword string `mapstructure:"queue-password"`
	Url           string `mapstructure:"url"`
	QueueName     string `mapstructure:"queue-name"`
	// PrefetchCount bounds unacked deliveries per worker channel.
	PrefetchCount int `mapstructure:"prefetch-count"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.QueueUser == "" {
		return errors.New("queue user is required")
	}
	if cfg.QueuePassword == "" {
		return errors.New("queue password is required")
	}
	if cfg.Url == "" {
		return errors.New("queue url is required")
	}
	if cfg.QueueName == "" {
		return errors.New("queue name is required")
	}
	if cfg.PrefetchCount < 0 {
		return errors.New("queue prefetch-count must not be negative")
	}

	return nil
}
