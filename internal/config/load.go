package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// TASKROOMS_AUTH_JWT_SECRET overrides auth.jwt_secret.
const EnvPrefix = "TASKROOMS"

// DevelopmentJWTSecret is the built-in signing secret. It is public, so it is
// only accepted when the server logs at debug level.
const DevelopmentJWTSecret = "development-insecure-secret-change-me"

// ErrDevelopmentSecret is returned by CheckSecrets when the built-in JWT
// secret is configured outside debug mode.
var ErrDevelopmentSecret = errors.New("auth.jwt_secret is the built-in development secret; set TASKROOMS_AUTH_JWT_SECRET")

// Defaults used when neither the config file nor the environment set a key.
var defaults = map[string]any{
	"server.address":          ":8008",
	"server.log_level":        "info",
	"server.allowed_origins":  []string{"http://localhost:3000"},
	"server.shutdown_timeout": "10s",

	"database.path":      "tasks-management.db",
	"database.log_level": "warn",

	"auth.jwt_secret": DevelopmentJWTSecret,
	"auth.issuer":     "task-rooms-api",
	"auth.audience":   "task-rooms-clients",
	"auth.token_ttl":  "24h",

	"google.client_id":     "",
	"google.client_secret": "",
	"google.redirect_url":  "",
	"google.frontend_url":  "http://localhost:3000/dashboard",

	"realtime.send_buffer":      256,
	"realtime.write_timeout":    "10s",
	"realtime.read_timeout":     "60s",
	"realtime.ping_interval":    "54s",
	"realtime.max_message_size": 4096,
	"realtime.rate_burst":       20,
	"realtime.rate_interval":    "1s",

	"rooms.max_attempts": 10000,
	"rooms.cache_ttl":    "10m",
}

// Load reads configuration from fileName (yaml, looked up in the working
// directory and ./config) and the environment. A missing file is not an error.
func Load(logger *slog.Logger, fileName string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName(fileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		logger.Warn("config file not found, relying on defaults and environment", slog.String("name", fileName))
	} else {
		logger.Info("config file loaded", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == DevelopmentJWTSecret {
		logger.Warn("using the built-in development JWT secret", slog.String("env", EnvPrefix+"_AUTH_JWT_SECRET"))
	}
	return &cfg, nil
}

// CheckSecrets rejects the built-in JWT secret unless the server runs at
// debug level.
func CheckSecrets(cfg *Config) error {
	if cfg.Auth.JWTSecret == DevelopmentJWTSecret && cfg.Server.LogLevel != "debug" {
		return ErrDevelopmentSecret
	}
	return nil
}

// Validate checks the struct tags on cfg.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
