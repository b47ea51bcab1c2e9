package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults keep local development working with only MNEMO_DATABASE_URL,
	// MNEMO_AUTH_JWT_SECRET and MNEMO_ORACLE_API_KEY set.
	v.SetDefault("server.port", 8080)
	// Keys without real defaults still need to be registered so AutomaticEnv
	// picks them up during Unmarshal.
	v.SetDefault("database.url", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("oracle.api_key", "")
	v.SetDefault("oracle.base_url", "")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.migrations_dir", "migrations")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("oracle.model", "gpt-4o-mini")
	v.SetDefault("oracle.timeout_seconds", 15)
	v.SetDefault("oracle.cache_ttl_minutes", 60)

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing config file is fine; environment variables may carry everything.
	}

	// Environment variables with MNEMO_ prefix override file values,
	// e.g. MNEMO_SERVER_PORT, MNEMO_DATABASE_URL.
	v.SetEnvPrefix("MNEMO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
