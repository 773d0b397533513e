package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{old[0]}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestLoadConfig_Defaults(t *testing.T) {
	withArgs(t)

	cfg := LoadConfig()
	assert.Equal(t, "http://localhost:5000/api", cfg.ServerBaseURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 20*time.Second, cfg.ChatTimeout)
	assert.Equal(t, "chatterm-data", cfg.DataDir)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_EnvOverridesDefaults(t *testing.T) {
	withArgs(t)
	t.Setenv("CHATTERM_SERVER_URL", "http://env:9999/api")
	t.Setenv("CHATTERM_CHAT_TIMEOUT", "5s")
	t.Setenv("CHATTERM_REQUEST_TIMEOUT", "garbage")

	cfg := LoadConfig()
	assert.Equal(t, "http://env:9999/api", cfg.ServerBaseURL)
	assert.Equal(t, 5*time.Second, cfg.ChatTimeout)
	// Unparseable duration keeps the default.
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
}

func TestLoadConfig_JSONOverridesEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server_base_url": "http://json:8080/api",
		"chat_timeout": "7s"
	}`), 0o600))

	withArgs(t, "-c", path)
	t.Setenv("CHATTERM_SERVER_URL", "http://env:9999/api")

	cfg := LoadConfig()
	assert.Equal(t, "http://json:8080/api", cfg.ServerBaseURL)
	assert.Equal(t, 7*time.Second, cfg.ChatTimeout)
	// Fields absent in the file keep the lower-precedence value.
	assert.Equal(t, "chatterm-data", cfg.DataDir)
}

func TestLoadConfig_FlagsWinOverJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_base_url": "http://json:8080/api"}`), 0o600))

	withArgs(t, "-c", path, "-a", "http://flag:7070/api", "-l", "debug")

	cfg := LoadConfig()
	assert.Equal(t, "http://flag:7070/api", cfg.ServerBaseURL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_BrokenJSONPanics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

	withArgs(t, "-config", path)
	assert.Panics(t, func() { LoadConfig() })
}
