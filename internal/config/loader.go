package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/tailscale/hujson"
)

var envRefRe = regexp.MustCompile(`\$\{(\w+)\}`)

// Load reads a JSONC config file, strips comments, expands ${VAR} env
// references, unmarshals it into Config, and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand env references before stripping comments; references live in strings.
	expanded := expandEnvRefs(string(data))

	std, err := hujson.Standardize([]byte(expanded))
	if err != nil {
		return nil, fmt.Errorf("standardize config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(std, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a Config with all defaults applied, for running without a
// config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// expandEnvRefs replaces ${VAR} with the environment variable's value.
func expandEnvRefs(s string) string {
	return envRefRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envRefRe.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		return os.Getenv(parts[1])
	})
}

// applyDefaults fills in zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Gateway.Host == "" {
		cfg.Gateway.Host = "127.0.0.1"
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 18520
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(TaskchatPath(), "tasks.db")
	}
	if cfg.Chat.MaxHistory == 0 {
		cfg.Chat.MaxHistory = 10
	}
	if cfg.Chat.TieBreak == "" {
		cfg.Chat.TieBreak = "store-order"
	}
	if cfg.Chat.ListLimit == 0 {
		cfg.Chat.ListLimit = 20
	}
	if cfg.Chat.MaxListLimit == 0 {
		cfg.Chat.MaxListLimit = 100
	}
	if cfg.Chat.BulkLimit == 0 {
		cfg.Chat.BulkLimit = 1000
	}
	if cfg.Events.BufferSize == 0 {
		cfg.Events.BufferSize = 1024
	}
	if cfg.Reminder.Schedule == "" {
		cfg.Reminder.Schedule = "*/15 * * * *"
	}
	if cfg.Reminder.Horizon.Duration() == 0 {
		cfg.Reminder.Horizon = Duration(24 * time.Hour)
	}
}
