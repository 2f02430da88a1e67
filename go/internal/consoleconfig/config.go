package consoleconfig

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/starship-console/go/clients/starship_client"
	"github.com/mcdev12/starship-console/go/internal/mirror"
	"github.com/mcdev12/starship-console/go/internal/statesync"
	"github.com/mcdev12/starship-console/go/internal/wires"
)

var ErrInvalidPalette = errors.New("invalid wire palette")

// Config holds the console process settings.
type Config struct {
	ServerURL      string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	CommandMethod  string

	DashboardPort string // empty disables the dashboard
	NATSURL       string // empty disables mirroring
	NATSSubject   string

	LogLevel       zerolog.Level
	TerminalRender bool
	Palette        wires.Palette
}

// fileConfig is the layout of the optional CONSOLE_CONFIG file.
type fileConfig struct {
	Wires struct {
		Palette []string `yaml:"palette"`
	} `yaml:"wires"`
}

// NewConfigFromEnv reads the console environment variables (with defaults)
// and the optional CONSOLE_CONFIG file.
func NewConfigFromEnv() (Config, error) {
	defaults := statesync.DefaultConfig()

	pollInterval, err := getEnvAsMillis("POLL_INTERVAL_MS", defaults.PollInterval)
	if err != nil {
		return Config{}, err
	}
	requestTimeout, err := getEnvAsMillis("POLL_TIMEOUT_MS", defaults.RequestTimeout)
	if err != nil {
		return Config{}, err
	}

	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	terminal, err := strconv.ParseBool(getEnv("TERMINAL_RENDER", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TERMINAL_RENDER: %w", err)
	}

	cfg := Config{
		ServerURL:      getEnv("SERVER_URL", starship_client.DefaultBaseURL),
		PollInterval:   pollInterval,
		RequestTimeout: requestTimeout,
		CommandMethod:  getEnv("COMMAND_METHOD", "GET"),
		DashboardPort:  os.Getenv("DASHBOARD_PORT"),
		NATSURL:        os.Getenv("NATS_URL"),
		NATSSubject:    getEnv("NATS_SUBJECT", mirror.DefaultConfig().SubjectPrefix),
		LogLevel:       level,
		TerminalRender: terminal,
		Palette:        wires.DefaultPalette,
	}
	if _, set := os.LookupEnv("DASHBOARD_PORT"); !set {
		cfg.DashboardPort = "8082"
	}

	if path := os.Getenv("CONSOLE_CONFIG"); path != "" {
		palette, err := LoadPalette(path)
		if err != nil {
			return Config{}, err
		}
		cfg.Palette = palette
	}

	return cfg, nil
}

// LoadPalette reads the wire palette from a YAML file. A file without a
// palette yields the default one.
func LoadPalette(path string) (wires.Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return wires.Palette{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return wires.Palette{}, fmt.Errorf("failed to parse config: %w", err)
	}

	names := file.Wires.Palette
	if names == nil {
		return wires.DefaultPalette, nil
	}
	if len(names) != wires.Count {
		return wires.Palette{}, fmt.Errorf("%w: got %d colors, want %d", ErrInvalidPalette, len(names), wires.Count)
	}

	var palette wires.Palette
	for i, name := range names {
		if name == "" || name == wires.None {
			return wires.Palette{}, fmt.Errorf("%w: wire %d has no usable color", ErrInvalidPalette, i)
		}
		palette[i] = name
	}
	return palette, nil
}

// SyncConfig returns the synchronizer cadence.
func (c Config) SyncConfig() statesync.Config {
	return statesync.Config{
		PollInterval:   c.PollInterval,
		RequestTimeout: c.RequestTimeout,
	}
}

// MirrorConfig returns the NATS mirror settings.
func (c Config) MirrorConfig() mirror.Config {
	cfg := mirror.DefaultConfig()
	cfg.URL = c.NATSURL
	cfg.SubjectPrefix = c.NATSSubject
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsMillis(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	ms, err := strconv.Atoi(value)
	if err != nil || ms <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive number of milliseconds", key, value)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
