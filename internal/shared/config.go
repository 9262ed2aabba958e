package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Spotify  SpotifyConfig  `toml:"spotify"`
	Plugin   PluginConfig   `toml:"plugin"`
	Dispatch DispatchConfig `toml:"dispatch"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Logging  LoggingConfig  `toml:"logging"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// PluginConfig contains settings for the plugin working directory where
// tokens and cached artwork live.
type PluginConfig struct {
	Dir         string `toml:"dir"`
	DefaultIcon string `toml:"default_icon"`
}

// DispatchConfig contains query dispatch settings.
type DispatchConfig struct {
	Debounce   bool `toml:"debounce"`
	DebounceMS int  `toml:"debounce_ms"`
}

// DatabaseConfig contains artwork database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidArgument)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// PluginDir returns the plugin working directory with "~" expanded,
// creating it if it does not exist.
func (c *Config) PluginDir() (string, error) {
	dir := c.Plugin.Dir
	if dir == "" {
		dir = "~/.tunebar"
	}

	dir, err := ExpandPath(dir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create plugin directory: %w", err)
	}

	return dir, nil
}

// DatabasePath returns the artwork database path, defaulting to
// artwork.db inside the plugin directory.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return ExpandPath(c.Database.Path)
	}

	dir, err := c.PluginDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, "artwork.db"), nil
}

// QuietPeriod returns the debounce quiet period, defaulting to 500ms when
// unset or invalid.
func (c *Config) QuietPeriod() time.Duration {
	if c.Dispatch.DebounceMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.Dispatch.DebounceMS) * time.Millisecond
}
