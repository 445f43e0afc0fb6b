package config

import (
	"os"
	"path/filepath"
)

// TaskchatPath returns the root directory for taskchat data.
// It uses $TASKCHAT_PATH if set, otherwise defaults to ~/.taskchat.
func TaskchatPath() string {
	if v := os.Getenv("TASKCHAT_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".taskchat")
	}
	return filepath.Join(home, ".taskchat")
}

// ConfigPath returns the path to the taskchat config file.
func ConfigPath() string {
	return filepath.Join(TaskchatPath(), "config.jsonc")
}

// DotenvPath returns the path to the taskchat .env file.
func DotenvPath() string {
	return filepath.Join(TaskchatPath(), ".env")
}
