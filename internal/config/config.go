// Package config loads the service configuration from defaults, an optional
// config file and TASKROOMS_* environment variables.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Google   GoogleConfig   `mapstructure:"google"`
	Realtime RealtimeConfig `mapstructure:"realtime" validate:"required"`
	Rooms    RoomsConfig    `mapstructure:"rooms" validate:"required"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address         string        `mapstructure:"address" validate:"required"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig points at the SQLite file.
type DatabaseConfig struct {
	Path     string `mapstructure:"path" validate:"required"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=silent error warn info"`
}

// AuthConfig configures token issuance and verification.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	Issuer    string        `mapstructure:"issuer" validate:"required"`
	Audience  string        `mapstructure:"audience" validate:"required"`
	TokenTTL  time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
}

// GoogleConfig enables Google login when ClientID is set.
type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret" validate:"required_with=ClientID"`
	RedirectURL  string `mapstructure:"redirect_url" validate:"required_with=ClientID"`
	FrontendURL  string `mapstructure:"frontend_url" validate:"omitempty,url"`
}

// Enabled reports whether Google login is configured.
func (g GoogleConfig) Enabled() bool {
	return g.ClientID != ""
}

// RealtimeConfig tunes the WebSocket connections.
type RealtimeConfig struct {
	SendBuffer     int           `mapstructure:"send_buffer" validate:"gt=0"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	PingInterval   time.Duration `mapstructure:"ping_interval" validate:"gt=0,ltfield=ReadTimeout"`
	MaxMessageSize int64         `mapstructure:"max_message_size" validate:"gt=0"`
	RateBurst      int           `mapstructure:"rate_burst" validate:"gt=0"`
	RateInterval   time.Duration `mapstructure:"rate_interval" validate:"gt=0"`
}

// RoomsConfig tunes room code generation and lookups.
type RoomsConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" validate:"gt=0"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
}
