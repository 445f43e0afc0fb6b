// Package config loads and validates the taskchat configuration.
package config

import "time"

// Config is the root configuration for taskchat.
type Config struct {
	Gateway  GatewayConfig  `json:"gateway"`
	Models   ModelsConfig   `json:"models"`
	Store    StoreConfig    `json:"store"`
	Chat     ChatConfig     `json:"chat"`
	Events   EventsConfig   `json:"events"`
	Reminder ReminderConfig `json:"reminder"`
}

// GatewayConfig holds the gateway server settings.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// StoreConfig configures the task store.
type StoreConfig struct {
	Path string `json:"path"` // SQLite database path (default: $TASKCHAT_PATH/tasks.db)
}

// ChatConfig holds orchestration settings.
type ChatConfig struct {
	MaxHistory   int    `json:"max_history"`   // turns kept per conversation (default 10)
	TieBreak     string `json:"tie_break"`     // "store-order" | "last-mentioned"
	ListLimit    int    `json:"list_limit"`    // default page size for list_tasks (default 20)
	MaxListLimit int    `json:"max_list_limit"` // hard cap on list_tasks limit (default 100)
	BulkLimit    int    `json:"bulk_limit"`    // max tasks touched by one bulk operation (default 1000)
	SystemPrompt string `json:"system_prompt,omitempty"` // replaces the built-in instructions when set
}

// ModelsConfig holds model provider configuration.
type ModelsConfig struct {
	Default   string                    `json:"default"`
	Providers map[string]ProviderConfig `json:"providers"`
}

// ProviderConfig configures a single LLM provider.
type ProviderConfig struct {
	Driver    string         `json:"driver"` // "openai", "claude", "gemini", "ollama"
	Model     string         `json:"model"`
	BaseURL   string         `json:"base_url,omitempty"`
	Auth      AuthConfig     `json:"auth"`
	MaxTokens int            `json:"max_tokens,omitempty"`
	Timeout   Duration       `json:"timeout,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
}

// AuthConfig configures API key resolution.
type AuthConfig struct {
	APIKey string `json:"api_key,omitempty"` // Direct API key or ${VAR} env reference
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	BufferSize int `json:"buffer_size"`
}

// ReminderConfig configures the due-date reminder job.
type ReminderConfig struct {
	Enabled  bool     `json:"enabled"`
	Schedule string   `json:"schedule"` // cron spec (default: every 15 minutes)
	Horizon  Duration `json:"horizon"`  // how far ahead to look for due tasks (default 24h)
}

// Duration wraps time.Duration for JSON unmarshaling.
type Duration time.Duration

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}
