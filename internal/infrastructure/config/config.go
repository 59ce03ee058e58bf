package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Session  SessionConfig  `mapstructure:"session"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Security SecurityConfig `mapstructure:"security"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// StorageConfig holds the JSON document store configuration
type StorageConfig struct {
	DataDir  string `mapstructure:"data_dir"`
	FileMode string `mapstructure:"file_mode"`
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	Secret      string        `mapstructure:"secret"`
	CookieName  string        `mapstructure:"cookie_name"`
	TTL         time.Duration `mapstructure:"ttl"`
	RememberTTL time.Duration `mapstructure:"remember_ttl"`
	Issuer      string        `mapstructure:"issuer"`
	Secure      bool          `mapstructure:"secure"`
}

// AdminConfig lists the usernames allowed into the admin panel
type AdminConfig struct {
	Usernames string `mapstructure:"usernames"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

const defaultSessionSecret = "change-me-session-secret"

// Load loads configuration from various sources
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Ficus")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)

	// Server defaults
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")

	// Storage defaults
	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("storage.file_mode", "0644")

	// Session defaults
	v.SetDefault("session.secret", defaultSessionSecret)
	v.SetDefault("session.cookie_name", "session")
	v.SetDefault("session.ttl", "30m")
	v.SetDefault("session.remember_ttl", "240h") // 10 days
	v.SetDefault("session.issuer", "ficus-store")
	v.SetDefault("session.secure", false)

	v.SetDefault("admin.usernames", "admin")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.filename", "")

	// Security defaults
	v.SetDefault("security.cors_allowed_origins", "*")
	v.SetDefault("security.rate_limit_requests", 100)
	v.SetDefault("security.rate_limit_window", "1m")

	v.SetDefault("metrics.enabled", true)
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "APP_NAME")
	v.BindEnv("app.version", "APP_VERSION")
	v.BindEnv("app.environment", "APP_ENVIRONMENT")
	v.BindEnv("app.debug", "APP_DEBUG")

	// Server
	v.BindEnv("server.port", "SERVER_PORT", "PORT")
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	v.BindEnv("server.idle_timeout", "SERVER_IDLE_TIMEOUT")

	// Storage
	v.BindEnv("storage.data_dir", "DATA_DIR")
	v.BindEnv("storage.file_mode", "DATA_FILE_MODE")

	// Session
	v.BindEnv("session.secret", "SESSION_SECRET")
	v.BindEnv("session.cookie_name", "SESSION_COOKIE_NAME")
	v.BindEnv("session.ttl", "SESSION_TTL")
	v.BindEnv("session.remember_ttl", "SESSION_REMEMBER_TTL")
	v.BindEnv("session.issuer", "SESSION_ISSUER")
	v.BindEnv("session.secure", "SESSION_SECURE")

	v.BindEnv("admin.usernames", "ADMIN_USERNAMES")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.format", "LOG_FORMAT")
	v.BindEnv("logger.output", "LOG_OUTPUT")
	v.BindEnv("logger.filename", "LOG_FILENAME")

	// Security
	v.BindEnv("security.cors_allowed_origins", "CORS_ALLOWED_ORIGINS")
	v.BindEnv("security.rate_limit_requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("security.rate_limit_window", "RATE_LIMIT_WINDOW")

	v.BindEnv("metrics.enabled", "ENABLE_METRICS")
}

func validateConfig(cfg *Config) error {
	if cfg.Storage.DataDir == "" {
		return fmt.Errorf("storage data directory is required")
	}

	if _, err := cfg.Storage.Mode(); err != nil {
		return err
	}

	if cfg.Session.Secret == "" {
		return fmt.Errorf("session secret is required")
	}

	if cfg.App.IsProduction() && cfg.Session.Secret == defaultSessionSecret {
		return fmt.Errorf("session secret must not use the default value in production")
	}

	if cfg.Session.TTL <= 0 || cfg.Session.RememberTTL <= 0 {
		return fmt.Errorf("session ttl values must be positive")
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	return nil
}

// Mode parses FileMode as an octal permission string
func (cfg *StorageConfig) Mode() (os.FileMode, error) {
	mode, err := strconv.ParseUint(cfg.FileMode, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid storage file mode %q: %w", cfg.FileMode, err)
	}
	return os.FileMode(mode), nil
}

// AdminUsernames returns the configured admin usernames
func (cfg *AdminConfig) AdminUsernames() []string {
	var names []string
	for _, name := range strings.Split(cfg.Usernames, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// GetAddr returns the listen address
func (cfg *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}

// IsProduction returns true if the environment is production
func (cfg *AppConfig) IsProduction() bool {
	return cfg.Environment == "production"
}
