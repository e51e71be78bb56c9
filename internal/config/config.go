package config

import (
	"time"

	"github.com/vovakirdan/wirechat-relay/internal/core"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxMessageBytes   int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`

	JWTSecret   string        `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	JWTIssuer   string        `mapstructure:"jwt_issuer" yaml:"jwt_issuer"`
	JWTAudience string        `mapstructure:"jwt_audience" yaml:"jwt_audience"`
	JWTTTL      time.Duration `mapstructure:"jwt_ttl" yaml:"jwt_ttl"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	LogFile  string `mapstructure:"log_file" yaml:"log_file"`

	Rooms               []string      `mapstructure:"rooms" yaml:"rooms"`
	HistoryLimit        int           `mapstructure:"history_limit" yaml:"history_limit"`
	PresenceLimit       int           `mapstructure:"presence_limit" yaml:"presence_limit"`
	MaxMessageRunes     int           `mapstructure:"max_message_runes" yaml:"max_message_runes"`
	EventBuffer         int           `mapstructure:"event_buffer" yaml:"event_buffer"`
	CollaboratorTimeout time.Duration `mapstructure:"collaborator_timeout" yaml:"collaborator_timeout"`
	RateLimitPerMinute  int           `mapstructure:"rate_limit_per_minute" yaml:"rate_limit_per_minute"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:                ":3000",
		ReadHeaderTimeout:   5 * time.Second,
		ShutdownTimeout:     5 * time.Second,
		MaxMessageBytes:     1 << 16,
		DatabasePath:        "wirechat.db",
		JWTSecret:           "change-me",
		JWTIssuer:           "wirechat-relay",
		JWTAudience:         "wirechat-relay",
		JWTTTL:              24 * time.Hour,
		LogLevel:            "info",
		Rooms:               append([]string(nil), core.DefaultRooms...),
		HistoryLimit:        core.DefaultHistoryLimit,
		PresenceLimit:       core.DefaultPresenceLimit,
		MaxMessageRunes:     core.DefaultMaxMessageRunes,
		EventBuffer:         core.DefaultEventBuffer,
		CollaboratorTimeout: core.DefaultCollaboratorTimeout,
		RateLimitPerMinute:  120,
	}
}

// HubConfig projects the dispatcher settings.
func (c Config) HubConfig() core.HubConfig {
	return core.HubConfig{
		Rooms:               c.Rooms,
		HistoryLimit:        c.HistoryLimit,
		PresenceLimit:       c.PresenceLimit,
		MaxMessageRunes:     c.MaxMessageRunes,
		EventBuffer:         c.EventBuffer,
		CollaboratorTimeout: c.CollaboratorTimeout,
	}
}
