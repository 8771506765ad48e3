// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Session SessionConfig `toml:"session"`
	Feed    FeedConfig    `toml:"feed"`
	Log     LogConfig     `toml:"log"`
	History HistoryConfig `toml:"history"`
}

// SessionConfig maps counting session settings.
type SessionConfig struct {
	Duration      *int      `toml:"duration"`
	Persistence   *string   `toml:"persistence"`
	Snapshot      *string   `toml:"snapshot"`
	Top           *int      `toml:"top"`
	Language      *string   `toml:"language"`
	StopWords     *[]string `toml:"stop-words"`
	StopWordsFile *string   `toml:"stop-words-file"`
	Signals       *[]string `toml:"signals"`
	IdleDeadline  *bool     `toml:"idle-deadline"`
}

// FeedConfig maps the upstream feed settings. Credentials are opaque here.
type FeedConfig struct {
	Type      *string `toml:"type"`
	Path      *string `toml:"path"`
	URL       *string `toml:"url"`
	Token     *string `toml:"token"`
	UserAgent *string `toml:"user-agent"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
}

// HistoryConfig maps session history settings.
type HistoryConfig struct {
	Enabled *bool   `toml:"enabled"`
	DB      *string `toml:"db"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
