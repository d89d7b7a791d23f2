package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/mopshyai/carebowapp-sub005/internal/safety"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Safety   SafetyConfig
	Location LocationConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// SecurityConfig holds at-rest encryption configuration
type SecurityConfig struct {
	EncryptionKey string // 32 bytes, AES-256
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string
	Environment     string
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// SafetyConfig holds safety check-in and reminder configuration
type SafetyConfig struct {
	ReminderPollInterval time.Duration
	DefaultCheckInTime   string
	DefaultGraceMinutes  int
}

// LocationConfig holds the device-location gateway configuration
type LocationConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load reads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdowntimeout", 30*time.Second)

	// Database defaults
	v.SetDefault("database.maxopenconns", 25)
	v.SetDefault("database.connmaxlifetime", 5*time.Minute)

	// Safety defaults
	v.SetDefault("safety.reminderpollinterval", 30*time.Second)
	v.SetDefault("safety.defaultcheckintime", "09:00")
	v.SetDefault("safety.defaultgraceminutes", 60)

	// Location gateway defaults
	v.SetDefault("location.timeout", 8*time.Second)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.environment", "ENV", "ENVIRONMENT")

	// Database
	v.BindEnv("database.url", "DATABASE_URL")

	// Safety
	v.BindEnv("safety.reminderpollinterval", "REMINDER_POLL_INTERVAL")
	v.BindEnv("safety.defaultcheckintime", "DEFAULT_CHECKIN_TIME")
	v.BindEnv("safety.defaultgraceminutes", "DEFAULT_GRACE_MINUTES")

	// Location gateway
	v.BindEnv("location.endpoint", "LOCATION_GATEWAY_ENDPOINT")
	v.BindEnv("location.timeout", "LOCATION_TIMEOUT")

	// Security
	v.BindEnv("security.encryptionkey", "ENCRYPTION_KEY")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOG_FORMAT")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}

	if len(c.Security.EncryptionKey) != 32 {
		return fmt.Errorf("security.encryptionkey must be exactly 32 bytes")
	}

	if !safety.IsValidTimeFormat(c.Safety.DefaultCheckInTime) {
		return fmt.Errorf("safety.defaultcheckintime must be a 24-hour HH:mm string")
	}

	if !safety.IsValidGracePeriod(c.Safety.DefaultGraceMinutes) {
		return fmt.Errorf("safety.defaultgraceminutes must be between 1 and 1440")
	}

	return nil
}
