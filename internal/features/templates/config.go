package templates

import (
	"fmt"
	"strings"

	"reportdesk/internal/common/config"
)

type Config struct {
	// ListRoute is the template list, shown after a delete.
	ListRoute string `mapstructure:"list_route"`

	MaxDescription int     `mapstructure:"max_description"`
	MinTemperature float64 `mapstructure:"min_temperature"`
	MaxTemperature float64 `mapstructure:"max_temperature"`
}

func DefaultConfig() *Config {
	return &Config{
		ListRoute:      "/admin/templates",
		MaxDescription: 1000,
		MinTemperature: 0,
		MaxTemperature: 2,
	}
}

func ConfigFrom(cfg *config.Config) *Config {
	c := DefaultConfig()
	if cfg.Routes.Templates != "" {
		c.ListRoute = cfg.Routes.Templates
	}
	return c
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.ListRoute, "/") {
		return fmt.Errorf("list_route must be an absolute path")
	}
	if c.MaxDescription <= 0 {
		return fmt.Errorf("max_description must be positive")
	}
	if c.MinTemperature > c.MaxTemperature {
		return fmt.Errorf("min_temperature must not exceed max_temperature")
	}
	return nil
}

// TemplateRoute is the editor page of one template.
func (c *Config) TemplateRoute(id string) string {
	return strings.TrimSuffix(c.ListRoute, "/") + "/" + id
}
