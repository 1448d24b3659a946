// Package config loads the vocalrange YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "vocalrange"
	configFilename = "vocalrange.yaml"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// BackendConfig holds the analysis backend endpoint settings.
type BackendConfig struct {
	// BaseURL is the root of the analysis API, e.g. "https://api.example.com/api/v1".
	BaseURL string `yaml:"base_url"`

	// CompressUpload converts the captured WAV to Ogg Vorbis before upload
	// when ffmpeg is available.
	CompressUpload bool `yaml:"compress_upload"`
}

// AudioConfig holds capture settings.
type AudioConfig struct {
	SampleRate int    `yaml:"sample_rate"`
	Device     string `yaml:"device"`

	// MaxDurationSeconds auto-finishes a recording that reaches this length.
	// The backend rejects longer uploads.
	MaxDurationSeconds int `yaml:"max_duration_seconds"`
}

type Config struct {
	LogLevel string        `yaml:"log_level"`
	Backend  BackendConfig `yaml:"backend"`
	Audio    AudioConfig   `yaml:"audio"`
}

// GetBackendConfig returns backend settings with defaults applied.
func (c *Config) GetBackendConfig() BackendConfig {
	cfg := c.Backend
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000/api/v1"
	}
	return cfg
}

// GetAudioConfig returns audio settings with defaults applied.
func (c *Config) GetAudioConfig() AudioConfig {
	cfg := c.Audio
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 44100
	}
	if cfg.MaxDurationSeconds == 0 {
		cfg.MaxDurationSeconds = 300
	}
	return cfg
}

// GetLogLevel returns the configured log level, defaulting to info.
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{}
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config directory: %w", err)
	}
	return filepath.Join(dir, configDirName, configFilename), nil
}

// Load reads the user configuration file. A missing file yields
// ErrConfigNotFound; callers normally fall back to Default.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse unmarshals YAML configuration data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// Save writes the configuration to the user config directory, creating it if
// needed.
func Save(cfg *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
