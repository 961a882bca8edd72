package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`

	// AllowDuplicateUsers permits one userId to hold several simultaneous
	// connections to the same room. Disconnecting any of them removes all,
	// so deployments that find that surprising can disable it here.
	AllowDuplicateUsers bool `mapstructure:"allow_duplicate_users" yaml:"allow_duplicate_users"`

	// SendTimeout bounds each broadcast send so a hung client cannot stall
	// a broadcast. Zero disables the bound.
	SendTimeout time.Duration `mapstructure:"send_timeout" yaml:"send_timeout"`

	// PersistTimeout bounds each asynchronous message store write.
	PersistTimeout time.Duration `mapstructure:"persist_timeout" yaml:"persist_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:                ":8080",
		ReadHeaderTimeout:   5 * time.Second,
		ShutdownTimeout:     5 * time.Second,
		LogLevel:            "info",
		DatabasePath:        "chatrelay.db",
		AllowDuplicateUsers: true,
		SendTimeout:         10 * time.Second,
		PersistTimeout:      5 * time.Second,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.SendTimeout != 0 {
		c.SendTimeout = other.SendTimeout
	}
	if other.PersistTimeout != 0 {
		c.PersistTimeout = other.PersistTimeout
	}
}
