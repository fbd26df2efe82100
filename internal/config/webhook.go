package config

import "errors"

type WebhookConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// Secret is the shared secret relayed events must carry in the
	// X-Envio-Secret header. There is no built-in default: deployments must
	// set it explicitly, startup fails otherwise.
	Secret string `mapstructure:"secret"`
}

func (cfg *WebhookConfig) Validate() error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return errors.New("webhook port must be in the 1-65535 range")
	}
	if cfg.Secret == "" {
		return errors.New("webhook secret is required")
	}

	return nil
}
