package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"combell-mcp/pkg/logging"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/combell-mcp"
	configFileName = "config.yaml"
)

// Environment variables that override file settings.
const (
	EnvCombellAPIKey    = "COMBELL_API_KEY"
	EnvCombellAPISecret = "COMBELL_API_SECRET"
	EnvCombellAPIURL    = "COMBELL_API_URL"
	EnvMCPAPIKey        = "MCP_API_KEY"
	EnvMCPAPISecret     = "MCP_API_SECRET"
	EnvTransport        = "COMBELL_MCP_TRANSPORT"
	EnvHost             = "COMBELL_MCP_HOST"
	EnvPort             = "COMBELL_MCP_PORT"
)

// DefaultConfigPath returns ~/.config/combell-mcp/config.yaml, or the bare
// file name when the home directory cannot be determined.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(homeDir, userConfigDir, configFileName)
}

// LoadConfig reads the YAML file at path on top of the defaults.
// A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	config := GetDefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config file found at %s, using defaults", path)
			return config, nil
		}
		return Config{}, fmt.Errorf("error reading config from %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	logging.Info("ConfigLoader", "Loaded configuration from %s", path)
	return config, nil
}

// LoadDotEnv loads a .env file into the process environment without
// overriding variables that are already set. A missing file is ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("error loading env file %s: %w", path, err)
	}
	logging.Debug("ConfigLoader", "Loaded environment from %s", path)
	return nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides config values from the environment.
func ApplyEnv(config *Config, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(EnvCombellAPIKey, &config.Combell.APIKey)
	set(EnvCombellAPISecret, &config.Combell.APISecret)
	set(EnvCombellAPIURL, &config.Combell.BaseURL)
	set(EnvMCPAPIKey, &config.Auth.APIKey)
	set(EnvMCPAPISecret, &config.Auth.APISecret)
	set(EnvTransport, &config.Server.Transport)
	set(EnvHost, &config.Server.Host)

	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}
		config.Server.Port = port
	}
	return nil
}

// Load is the full loading sequence: file, .env, environment, validation.
func Load(path, envFile string) (Config, error) {
	config, err := LoadConfig(path)
	if err != nil {
		return Config{}, err
	}
	if err := LoadDotEnv(envFile); err != nil {
		return Config{}, err
	}
	if err := ApplyEnv(&config, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}
