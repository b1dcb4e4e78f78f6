package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/spindle/config.yaml"

// Config holds all Spindle configuration.
type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	State    StateConfig    `yaml:"state"`
	Rules    RulesConfig    `yaml:"rules"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Scrobble ScrobbleConfig `yaml:"scrobble"`
}

type DeviceConfig struct {
	Drive string `yaml:"drive"`
}

type StateConfig struct {
	Dir string `yaml:"dir"`
}

type RuleConfig struct {
	Enabled bool `yaml:"enabled"`
	Limit   int  `yaml:"limit"`
}

type RulesConfig struct {
	OnRepeat     RuleConfig `yaml:"on_repeat"`
	Forgotten    RuleConfig `yaml:"forgotten"`
	SecondChance RuleConfig `yaml:"second_chance"`
	TimeTravel   RuleConfig `yaml:"time_travel"`
	Flashback    RuleConfig `yaml:"flashback"`
}

type ScoringConfig struct {
	Decay float64 `yaml:"decay"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type ScrobbleConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// The decay base must stay a proper fraction or scores stop
	// discriminating by age.
	if cfg.Scoring.Decay <= 0 || cfg.Scoring.Decay >= 1 {
		cfg.Scoring.Decay = DefaultConfig().Scoring.Decay
	}

	return cfg, nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// StateDir returns the expanded state directory path.
func (c *Config) StateDir() (string, error) {
	return expandPath(c.State.Dir)
}

// CachePath returns the metadata cache location inside the state dir.
func (c *Config) CachePath() (string, error) {
	dir, err := c.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "metadata_cache.json"), nil
}

// SessionPath returns the scrobble session/state location inside the state dir.
func (c *Config) SessionPath() (string, error) {
	dir, err := c.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
