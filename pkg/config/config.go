// Package config loads coordination settings from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Coordinator CoordinatorConfig `yaml:"coordinator"`
	Bus         BusConfig         `yaml:"bus"`
	Logging     LogConfig         `yaml:"logging"`
	Team        []AgentConfig     `yaml:"team"`
}

type CoordinatorConfig struct {
	Strategy       string        `yaml:"strategy"`
	WorkDelay      time.Duration `yaml:"work_delay"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type BusConfig struct {
	HistorySize int `yaml:"history_size"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type AgentConfig struct {
	ID           string             `yaml:"id"`
	Name         string             `yaml:"name"`
	Role         string             `yaml:"role"`
	Capabilities []CapabilityConfig `yaml:"capabilities"`
}

type CapabilityConfig struct {
	Name        string  `yaml:"name"`
	Proficiency float64 `yaml:"proficiency"`
}

func defaults() Config {
	return Config{
		Coordinator: CoordinatorConfig{
			Strategy:  "balanced",
			WorkDelay: 100 * time.Millisecond,
			// Zero disables assignment acknowledgments.
			RequestTimeout: 0,
		},
		Bus: BusConfig{
			HistorySize: 1000,
		},
		Logging: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the config file named by HIVEMIND_CONFIG (falling back to
// config/hivemind.yaml) on top of the defaults. A missing file is not
// an error; environment overrides apply last.
func Load() (*Config, error) {
	cfg := defaults()

	path := os.Getenv("HIVEMIND_CONFIG")
	if path == "" {
		path = "config/hivemind.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults + env
	} else {
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv overrides settings from HIVEMIND_* variables. A variable
// that is set but unparsable is an error, not a silent fallback to the
// default.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("HIVEMIND_STRATEGY"); v != "" {
		cfg.Coordinator.Strategy = v
	}
	if v := os.Getenv("HIVEMIND_WORK_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HIVEMIND_WORK_DELAY %q: %w", v, err)
		}
		cfg.Coordinator.WorkDelay = d
	}
	if v := os.Getenv("HIVEMIND_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HIVEMIND_REQUEST_TIMEOUT %q: %w", v, err)
		}
		cfg.Coordinator.RequestTimeout = d
	}
	if v := os.Getenv("HIVEMIND_HISTORY_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HIVEMIND_HISTORY_SIZE %q: %w", v, err)
		}
		cfg.Bus.HistorySize = n
	}
	if v := os.Getenv("HIVEMIND_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HIVEMIND_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	return nil
}
