package config

import (
	"time"
)

// Config holds the leadboard configuration
type Config struct {
	// Where the database, lock file and TUI log live
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
	// Defaults to <data_dir>/leadboard.db
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
	// Key the CRM document is stored under
	DocumentKey string `yaml:"document_key" mapstructure:"document_key"`

	Theme         string `yaml:"theme" mapstructure:"theme"`
	Notifications bool   `yaml:"notifications" mapstructure:"notifications"`

	// clamp or strict
	IndexPolicy  string `yaml:"index_policy" mapstructure:"index_policy"`
	HistoryLimit int    `yaml:"history_limit" mapstructure:"history_limit"`

	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Redis  RedisConfig  `yaml:"redis" mapstructure:"redis"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	// Used by the TUI; defaults to <data_dir>/leadboard.log
	File string `yaml:"file" mapstructure:"file"`
}

// RedisConfig configures the optional document cache. An empty URL disables
// it.
type RedisConfig struct {
	URL string        `yaml:"url" mapstructure:"url"`
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
	// HS256 secret for the admin API. The admin routes are disabled when
	// empty.
	JWTSecret string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
}
