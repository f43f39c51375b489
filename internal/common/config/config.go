// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	API      APIConfig      `mapstructure:"api"`
	Session  SessionConfig  `mapstructure:"session"`
	Database DatabaseConfig `mapstructure:"database"`
	Routes   RoutesConfig   `mapstructure:"routes"`
	Wizard   WizardConfig   `mapstructure:"wizard"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// APIConfig points the REST client at the backend.
type APIConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	TimeoutMs int    `mapstructure:"timeout_ms"`
	UserAgent string `mapstructure:"user_agent"`
}

// SessionConfig selects where the bearer token is persisted.
type SessionConfig struct {
	Store      string `mapstructure:"store"` // file | redis | memory
	FilePath   string `mapstructure:"file_path"`
	StorageKey string `mapstructure:"storage_key"`
}

const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// KeyPrefix namespaces the token key when several users share one Redis.
	KeyPrefix string `mapstructure:"key_prefix"`
}

// RoutesConfig names the navigation targets used by the route guards.
type RoutesConfig struct {
	Login        string `mapstructure:"login"`
	Register     string `mapstructure:"register"`
	AccessDenied string `mapstructure:"access_denied"`
	AdminRoot    string `mapstructure:"admin_root"`
	UserRoot     string `mapstructure:"user_root"`
	MyReports    string `mapstructure:"my_reports"`
	Templates    string `mapstructure:"templates"`
}

// WizardConfig overrides the built-in wizard catalog. Empty lists keep the defaults.
type WizardConfig struct {
	Industries   []IndustryConfig `mapstructure:"industries"`
	Audiences    []string         `mapstructure:"audiences"`
	Purposes     []string         `mapstructure:"purposes"`
	Tones        []string         `mapstructure:"tones"`
	Depths       []string         `mapstructure:"depths"`
	DefaultTone  string           `mapstructure:"default_tone"`
	DefaultDepth string           `mapstructure:"default_depth"`
	UploadLimit  int              `mapstructure:"upload_concurrency"`
}

type IndustryConfig struct {
	Name        string   `mapstructure:"name"`
	ReportTypes []string `mapstructure:"report_types"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig controls the optional Prometheus endpoint of the CLI.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}
