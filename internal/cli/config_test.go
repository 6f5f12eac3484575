package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CONFIGURINE_HOST", "http://127.0.0.1:8080")
	t.Setenv("CONFIGURINE_CLIENT_ID", "fnord")
	t.Setenv("CONFIGURINE_SHARED_KEY", "a1c1f962-bc57-4109-8d49-bee9f562b321")
	t.Setenv("CONFIGURINE_TIMEOUT", "3s")
	t.Setenv("CONFIGURINE_LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfig(viper.New(), "")
	require.NoError(t, err)
	require.Equal(t, Config{
		Host:      "http://127.0.0.1:8080",
		ClientID:  "fnord",
		SharedKey: "a1c1f962-bc57-4109-8d49-bee9f562b321",
		LogLevel:  "debug",
		LogFormat: "text",
		Timeout:   3 * time.Second,
	}, cfg)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "configurine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
host: http://config.internal:8080
client_id: fnord
shared_key: s3cret
log_format: json
`), 0o600))

	cfg, err := LoadConfig(viper.New(), path)
	require.NoError(t, err)
	require.Equal(t, "http://config.internal:8080", cfg.Host)
	require.Equal(t, "fnord", cfg.ClientID)
	require.Equal(t, "s3cret", cfg.SharedKey)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorContains(t, err, "read config file")
	})

	t.Run("missing credentials", func(t *testing.T) {
		v := viper.New()
		v.Set("host", "http://127.0.0.1:8080")

		_, err := LoadConfig(v, "")
		require.ErrorContains(t, err, "invalid config")
		require.ErrorContains(t, err, "ClientID")
	})

	t.Run("bad log format", func(t *testing.T) {
		v := viper.New()
		v.Set("host", "http://127.0.0.1:8080")
		v.Set("client_id", "fnord")
		v.Set("shared_key", "k")
		v.Set("log_format", "xml")

		_, err := LoadConfig(v, "")
		require.ErrorContains(t, err, "LogFormat")
	})
}
