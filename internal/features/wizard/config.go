package wizard

import (
	"fmt"

	"reportdesk/internal/common/config"
)

type Config struct {
	Catalog Catalog `mapstructure:"-"`

	// UploadConcurrency caps parallel uploads within one batch.
	UploadConcurrency int `mapstructure:"upload_concurrency"`

	// DoneRoute is where a successful generation navigates.
	DoneRoute string `mapstructure:"done_route"`
}

func DefaultConfig() *Config {
	return &Config{
		Catalog:           DefaultCatalog(),
		UploadConcurrency: 4,
		DoneRoute:         "/dashboard/my-reports",
	}
}

func ConfigFrom(cfg *config.Config) *Config {
	c := DefaultConfig()
	c.Catalog = CatalogFrom(cfg.Wizard)
	if cfg.Wizard.UploadLimit > 0 {
		c.UploadConcurrency = cfg.Wizard.UploadLimit
	}
	if cfg.Routes.MyReports != "" {
		c.DoneRoute = cfg.Routes.MyReports
	}
	return c
}

func (c *Config) Validate() error {
	if c.UploadConcurrency <= 0 {
		return fmt.Errorf("upload_concurrency must be positive")
	}
	if c.DoneRoute == "" {
		return fmt.Errorf("done_route is required")
	}
	if len(c.Catalog.Industries) == 0 {
		return fmt.Errorf("catalog has no industries")
	}
	if c.Catalog.DefaultTone != "" && !contains(c.Catalog.Tones, c.Catalog.DefaultTone) {
		return fmt.Errorf("default tone %q is not in the tone list", c.Catalog.DefaultTone)
	}
	if c.Catalog.DefaultDepth != "" && !contains(c.Catalog.Depths, c.Catalog.DefaultDepth) {
		return fmt.Errorf("default depth %q is not in the depth list", c.Catalog.DefaultDepth)
	}
	return nil
}
