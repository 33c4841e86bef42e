package app

import (
	"errors"
	"os"

	"combell-mcp/internal/config"
)

// ErrMissingCredentials is returned when the selected mode needs Combell
// credentials from the configuration and none are set.
var ErrMissingCredentials = errors.New("COMBELL_API_KEY and COMBELL_API_SECRET must be set")

// Config holds the settings given on the command line. Zero values leave the
// loaded configuration untouched.
type Config struct {
	ConfigPath string
	EnvFile    string
	Debug      bool
	Version    string

	Transport string
	Host      string
	Port      int

	// RequireCredentials fails bootstrap without configured Combell
	// credentials regardless of the transport.
	RequireCredentials bool

	// Offline skips the credential check for commands that never reach the
	// Combell API.
	Offline bool

	// LogLevel overrides logging.level. Debug takes precedence.
	LogLevel string

	// Lookup reads environment variables. Defaults to os.LookupEnv.
	Lookup config.LookupFunc
}

// NewConfig creates a new application configuration.
func NewConfig(configPath, envFile string, debug bool, version string) *Config {
	return &Config{
		ConfigPath: configPath,
		EnvFile:    envFile,
		Debug:      debug,
		Version:    version,
	}
}

// LoadSettings runs the configuration sequence: file, .env, environment,
// command line overrides, validation.
func LoadSettings(cfg *Config) (config.Config, error) {
	settings, err := config.LoadConfig(cfg.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.LoadDotEnv(cfg.EnvFile); err != nil {
		return config.Config{}, err
	}

	lookup := cfg.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := config.ApplyEnv(&settings, lookup); err != nil {
		return config.Config{}, err
	}

	if cfg.Transport != "" {
		settings.Server.Transport = cfg.Transport
	}
	if cfg.Host != "" {
		settings.Server.Host = cfg.Host
	}
	if cfg.Port != 0 {
		settings.Server.Port = cfg.Port
	}
	if cfg.LogLevel != "" {
		settings.Logging.Level = cfg.LogLevel
	}
	if cfg.Debug {
		settings.Logging.Level = "debug"
	}

	if err := settings.Validate(); err != nil {
		return config.Config{}, err
	}

	if cfg.Offline {
		return settings, nil
	}
	if (cfg.RequireCredentials || NeedsConfiguredCredentials(settings)) && !settings.Combell.HasCredentials() {
		return config.Config{}, ErrMissingCredentials
	}
	return settings, nil
}

// NeedsConfiguredCredentials reports whether upstream calls can only use
// the configured Combell credentials. That is the case when no caller can
// present its own: stdio, a disabled gate, or a gate pinned to a fixed pair.
func NeedsConfiguredCredentials(settings config.Config) bool {
	if settings.Server.Transport == config.MCPTransportStdio {
		return true
	}
	return !settings.Auth.Enabled || settings.Auth.HasFixedCredentials()
}
