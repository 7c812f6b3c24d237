package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/vaultify/internal/client/models"
	"github.com/dmitrijs2005/vaultify/internal/client/services"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, TransportGRPC, c.Transport)
	assert.Equal(t, 250000, c.KDFIterations)
	assert.Equal(t, 300*time.Second, c.TicketTTL)
	assert.Equal(t, 5, c.MaxOTPAttempts)
	assert.Equal(t, services.Policy{Debounce: 2 * time.Second, MinInterval: 3 * time.Second}, c.Policy(models.KindVault))
	assert.Equal(t, services.Policy{Debounce: time.Second, MinInterval: 5 * time.Second}, c.Policy(models.KindCards))
}

func TestLoadConfig_NoArgs(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd"}

	cfg := LoadConfig()
	require.NotNil(t, cfg)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name        string
		args        []string
		mutate      func(c *Config)
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd", "-a", "10.0.0.1:9090", "-t", "http", "-u", "https://vault.example/api", "-r", "3", "-k", "1000", "-l", "debug"},
			mutate: func(c *Config) {
				c.ServerEndpointAddr = "10.0.0.1:9090"
				c.Transport = TransportHTTP
				c.HTTPBaseURL = "https://vault.example/api"
				c.RequestTimeout = 3 * time.Second
				c.KDFIterations = 1000
				c.LogLevel = "debug"
			},
		},
		{
			name:   "unknown flags are ignored",
			args:   []string{"cmd", "-x", "1", "-a", "h:1"},
			mutate: func(c *Config) { c.ServerEndpointAddr = "h:1" },
		},
		{name: "bad timeout", args: []string{"cmd", "-r", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			cfg := defaults()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(cfg) })
				return
			}

			want := defaults()
			tt.mutate(want)
			require.NotPanics(t, func() { parseFlags(cfg) })
			assert.Empty(t, cmp.Diff(want, cfg))
		})
	}
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestParseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("overlays set values only", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{
			"transport":          "http",
			"vault_debounce":     "500ms",
			"cards_min_interval": float64(7 * time.Second),
			"max_otp_attempts":   3,
		})
		os.Args = []string{"cmd", "-config", path}

		cfg := defaults()
		parseJson(cfg)

		want := defaults()
		want.Transport = TransportHTTP
		want.VaultDebounce = 500 * time.Millisecond
		want.CardsMinInterval = 7 * time.Second
		want.MaxOTPAttempts = 3
		assert.Empty(t, cmp.Diff(want, cfg))
	})

	t.Run("no file", func(t *testing.T) {
		os.Args = []string{"cmd"}
		cfg := defaults()
		parseJson(cfg)
		assert.Empty(t, cmp.Diff(defaults(), cfg))
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ nope`), 0o600))
		os.Args = []string{"cmd", "-c", bad}
		require.Panics(t, func() { parseJson(defaults()) })
	})

	t.Run("flags win over JSON", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{"server_endpoint_addr": "json:1"})
		os.Args = []string{"cmd", "-c", path, "-a", "flag:2"}
		cfg := LoadConfig()
		assert.Equal(t, "flag:2", cfg.ServerEndpointAddr)
	})
}
