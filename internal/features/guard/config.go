package guard

import (
	"fmt"
	"strings"

	"reportdesk/internal/common/config"
)

// Config names the navigation targets the guards redirect to.
type Config struct {
	Login        string `mapstructure:"login"`
	Register     string `mapstructure:"register"`
	AccessDenied string `mapstructure:"access_denied"`
	AdminRoot    string `mapstructure:"admin_root"`
	UserRoot     string `mapstructure:"user_root"`
}

func DefaultConfig() *Config {
	return &Config{
		Login:        "/login",
		Register:     "/register",
		AccessDenied: "/admin-access-denied",
		AdminRoot:    "/admin",
		UserRoot:     "/dashboard",
	}
}

// ConfigFrom copies the routes section of the application config.
func ConfigFrom(routes config.RoutesConfig) *Config {
	c := DefaultConfig()
	if routes.Login != "" {
		c.Login = routes.Login
	}
	if routes.Register != "" {
		c.Register = routes.Register
	}
	if routes.AccessDenied != "" {
		c.AccessDenied = routes.AccessDenied
	}
	if routes.AdminRoot != "" {
		c.AdminRoot = routes.AdminRoot
	}
	if routes.UserRoot != "" {
		c.UserRoot = routes.UserRoot
	}
	return c
}

func (c *Config) Validate() error {
	for name, p := range map[string]string{
		"login":         c.Login,
		"register":      c.Register,
		"access_denied": c.AccessDenied,
		"admin_root":    c.AdminRoot,
		"user_root":     c.UserRoot,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("route %s must be an absolute path, got %q", name, p)
		}
	}
	if c.AdminRoot == c.UserRoot {
		return fmt.Errorf("admin_root and user_root must differ")
	}
	return nil
}
