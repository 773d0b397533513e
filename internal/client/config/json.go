package config

import (
	"encoding/json"
	"os"

	"chatterm/internal/flagx"
	"chatterm/internal/timex"
)

// jsonConfig is a DTO used exclusively for JSON unmarshalling. timex.Duration
// lets intervals be written either as strings like "20s" or as integer
// nanoseconds.
type jsonConfig struct {
	ServerBaseURL  string         `json:"server_base_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	ChatTimeout    timex.Duration `json:"chat_timeout"`
	DataDir        string         `json:"data_dir"`
	LogLevel       string         `json:"log_level"`
}

// parseJSON overlays Config with values from the JSON file named by the
// -c/-config flag. No flag, no overlay. Fields absent from the file keep
// their current values. Panics on read or parse errors; a broken config
// file should stop startup loudly.
func parseJSON(cfg *Config) {
	path := flagx.JSONConfigPath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ChatTimeout.Duration > 0 {
		cfg.ChatTimeout = jc.ChatTimeout.Duration
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
