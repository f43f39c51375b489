package session

import (
	"fmt"
	"time"

	"reportdesk/internal/common/config"
)

type Config struct {
	StorageKey string        `mapstructure:"storage_key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	ClockSkew  time.Duration `mapstructure:"clock_skew"`

	// ExpiryCheck drops stored JWTs whose exp has passed without calling /auth/me.
	ExpiryCheck bool `mapstructure:"expiry_check"`
}

func DefaultConfig() *Config {
	return &Config{
		StorageKey:  config.DefaultStorageKey,
		Timeout:     15 * time.Second,
		ExpiryCheck: true,
		ClockSkew:   30 * time.Second,
	}
}

// ConfigFrom derives the session settings from the application config.
func ConfigFrom(cfg *config.Config) *Config {
	c := DefaultConfig()
	if cfg.Session.StorageKey != "" {
		c.StorageKey = cfg.Session.StorageKey
	}
	if cfg.API.TimeoutMs > 0 {
		c.Timeout = config.GetDuration(cfg.API.TimeoutMs)
	}
	return c
}

func (c *Config) Validate() error {
	if c.StorageKey == "" {
		return fmt.Errorf("storage_key is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.ClockSkew < 0 {
		return fmt.Errorf("clock_skew must not be negative")
	}
	return nil
}
