// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultAPIBase    = "http://localhost:8080/api"
	DefaultStorageKey = "auth_token"
)

// Load reads configs/config.yaml, merges config.<env>.yaml on top and applies
// environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	if root := findProjectRoot(); root != "" {
		v.AddConfigPath(filepath.Join(root, "configs"))
	}

	bindEnv(v)

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func bindEnv(v *viper.Viper) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// Short names used by deployments of the web dashboard.
	_ = v.BindEnv("api.base_url", "API_BASE", "API_BASE_URL")
	_ = v.BindEnv("session.store", "REPORTDESK_TOKEN_STORE")
	_ = v.BindEnv("session.file_path", "REPORTDESK_TOKEN_FILE")
	_ = v.BindEnv("database.redis.address", "REDIS_ADDRESS")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
}

// loadEnvFile loads .env from the working directory or the project root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// Direct override if config values are still empty after expansion
func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
	if cfg.App.Environment == "" {
		if val := os.Getenv("APP_ENVIRONMENT"); val != "" {
			cfg.App.Environment = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "reportdesk"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultAPIBase
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.TimeoutMs == 0 {
		cfg.API.TimeoutMs = 30000
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = "reportdesk"
	}

	if cfg.Session.Store == "" {
		cfg.Session.Store = StoreFile
	}
	if cfg.Session.StorageKey == "" {
		cfg.Session.StorageKey = DefaultStorageKey
	}
	if cfg.Session.FilePath == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.Session.FilePath = filepath.Join(dir, "reportdesk", "token")
		} else {
			cfg.Session.FilePath = ".reportdesk-token"
		}
	}

	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}
	if cfg.Database.Redis.KeyPrefix == "" {
		cfg.Database.Redis.KeyPrefix = "reportdesk:"
	}

	if cfg.Routes.Login == "" {
		cfg.Routes.Login = "/login"
	}
	if cfg.Routes.Register == "" {
		cfg.Routes.Register = "/register"
	}
	if cfg.Routes.AccessDenied == "" {
		cfg.Routes.AccessDenied = "/admin-access-denied"
	}
	if cfg.Routes.AdminRoot == "" {
		cfg.Routes.AdminRoot = "/admin"
	}
	if cfg.Routes.UserRoot == "" {
		cfg.Routes.UserRoot = "/dashboard"
	}
	if cfg.Routes.MyReports == "" {
		cfg.Routes.MyReports = "/dashboard/my-reports"
	}
	if cfg.Routes.Templates == "" {
		cfg.Routes.Templates = "/admin/templates"
	}

	if cfg.Wizard.UploadLimit == 0 {
		cfg.Wizard.UploadLimit = 4
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9464"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if !strings.HasPrefix(cfg.API.BaseURL, "http://") && !strings.HasPrefix(cfg.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutMs < 0 {
		return fmt.Errorf("api.timeout_ms must not be negative")
	}

	switch cfg.Session.Store {
	case StoreFile:
		if cfg.Session.FilePath == "" {
			return fmt.Errorf("session.file_path is required for the file store")
		}
	case StoreRedis:
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("session.store must be one of file, redis, memory, got %q", cfg.Session.Store)
	}

	for i, ind := range cfg.Wizard.Industries {
		if ind.Name == "" {
			return fmt.Errorf("wizard.industries[%d].name is required", i)
		}
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
