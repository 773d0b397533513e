// Package config assembles the client's runtime settings from, in order of
// increasing precedence: built-in defaults, environment variables (with
// optional .env file), a JSON config file, and command-line flags.
package config

import "time"

// Config holds runtime settings for the chat client.
type Config struct {
	// ServerBaseURL is the backend API origin, e.g. "http://localhost:5000/api".
	ServerBaseURL string
	// RequestTimeout bounds each auth/profile round trip.
	RequestTimeout time.Duration
	// ChatTimeout bounds the chat round trip; expiry yields the distinct
	// timed-out assistant message.
	ChatTimeout time.Duration
	// DataDir holds the credential state directory and the chat database.
	DataDir string
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:5000/api"
	c.RequestTimeout = 10 * time.Second
	c.ChatTimeout = 20 * time.Second
	c.DataDir = "chatterm-data"
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the environment, a JSON file (if given) and command-line flags.
// Later sources win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
