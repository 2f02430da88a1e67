package consoleconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/starship-console/go/internal/wires"
)

var consoleEnv = []string{
	"SERVER_URL", "POLL_INTERVAL_MS", "POLL_TIMEOUT_MS", "COMMAND_METHOD",
	"DASHBOARD_PORT", "NATS_URL", "NATS_SUBJECT", "LOG_LEVEL",
	"TERMINAL_RENDER", "CONSOLE_CONFIG",
}

// clearEnv unsets every console variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range consoleEnv {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "console.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestNewConfigFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := NewConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000", cfg.ServerURL)
	assert.Equal(t, 100*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, "GET", cfg.CommandMethod)
	assert.Equal(t, "8082", cfg.DashboardPort)
	assert.Empty(t, cfg.NATSURL)
	assert.Equal(t, "starship.console", cfg.NATSSubject)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
	assert.True(t, cfg.TerminalRender)
	assert.Equal(t, wires.DefaultPalette, cfg.Palette)
}

func TestNewConfigFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_URL", "http://ship:1234")
	t.Setenv("POLL_INTERVAL_MS", "250")
	t.Setenv("POLL_TIMEOUT_MS", "900")
	t.Setenv("COMMAND_METHOD", "POST")
	t.Setenv("DASHBOARD_PORT", "")
	t.Setenv("NATS_URL", "nats://bus:4222")
	t.Setenv("NATS_SUBJECT", "bridge")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TERMINAL_RENDER", "false")
	t.Setenv("CONSOLE_CONFIG", writeFile(t, "wires:\n  palette: [red, green, yellow, orange]\n"))

	cfg, err := NewConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "http://ship:1234", cfg.ServerURL)
	assert.Equal(t, 250*time.Millisecond, cfg.SyncConfig().PollInterval)
	assert.Equal(t, 900*time.Millisecond, cfg.SyncConfig().RequestTimeout)
	assert.Equal(t, "POST", cfg.CommandMethod)
	assert.Empty(t, cfg.DashboardPort)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
	assert.False(t, cfg.TerminalRender)
	assert.Equal(t, wires.Palette{"red", "green", "yellow", "orange"}, cfg.Palette)

	mirrorCfg := cfg.MirrorConfig()
	assert.Equal(t, "nats://bus:4222", mirrorCfg.URL)
	assert.Equal(t, "bridge", mirrorCfg.SubjectPrefix)
}

func TestNewConfigFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "POLL_INTERVAL_MS", value: "fast"},
		{key: "POLL_TIMEOUT_MS", value: "0"},
		{key: "LOG_LEVEL", value: "loud"},
		{key: "TERMINAL_RENDER", value: "maybe"},
		{key: "CONSOLE_CONFIG", value: "/does/not/exist.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := NewConfigFromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadPalette(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		want     wires.Palette
		wantErr  error
	}{
		{
			name:     "custom palette",
			contents: "wires:\n  palette: [black, white, blue, pink]\n",
			want:     wires.Palette{"black", "white", "blue", "pink"},
		},
		{
			name:     "no palette",
			contents: "other: true\n",
			want:     wires.DefaultPalette,
		},
		{
			name:     "too few colors",
			contents: "wires:\n  palette: [black, white]\n",
			wantErr:  ErrInvalidPalette,
		},
		{
			name:     "too many colors",
			contents: "wires:\n  palette: [a, b, c, d, e]\n",
			wantErr:  ErrInvalidPalette,
		},
		{
			name:     "reserved color",
			contents: "wires:\n  palette: [black, none, blue, pink]\n",
			wantErr:  ErrInvalidPalette,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			palette, err := LoadPalette(writeFile(t, tt.contents))
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, palette)
		})
	}
}

func TestLoadPalette_BadYAML(t *testing.T) {
	_, err := LoadPalette(writeFile(t, "wires: [unterminated\n"))
	assert.Error(t, err)
}
