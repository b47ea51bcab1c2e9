package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Oracle   OracleConfig   `mapstructure:"oracle" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL           string `mapstructure:"url" validate:"required,url"`
	MigrationsDir string `mapstructure:"migrations_dir" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// OracleConfig contains settings for the forgetting-curve prediction oracle.
// The oracle speaks the OpenAI chat-completions protocol; BaseURL may point
// at any compatible provider.
type OracleConfig struct {
	APIKey          string `mapstructure:"api_key" validate:"required"`
	BaseURL         string `mapstructure:"base_url"`
	Model           string `mapstructure:"model" validate:"required"`
	TimeoutSeconds  int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	CacheTTLMinutes int    `mapstructure:"cache_ttl_minutes" validate:"required,gt=0"`
}

// Timeout returns the per-request oracle timeout as a duration.
func (c OracleConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns the prediction cache TTL as a duration.
func (c OracleConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLMinutes) * time.Minute
}
