package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config with environment variables, loading a .env file
// from the working directory first when one exists. Recognized variables:
//
//	CHATTERM_SERVER_URL       backend base URL
//	CHATTERM_DATA_DIR         state directory
//	CHATTERM_LOG_LEVEL        debug | info | warn | error
//	CHATTERM_REQUEST_TIMEOUT  duration, e.g. "10s"
//	CHATTERM_CHAT_TIMEOUT     duration, e.g. "20s"
//
// Unset variables leave the current value alone; unparseable durations are
// ignored.
func parseEnv(cfg *Config) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	if v := os.Getenv("CHATTERM_SERVER_URL"); v != "" {
		cfg.ServerBaseURL = v
	}
	if v := os.Getenv("CHATTERM_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("CHATTERM_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CHATTERM_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if v := os.Getenv("CHATTERM_CHAT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.ChatTimeout = d
		}
	}
}
