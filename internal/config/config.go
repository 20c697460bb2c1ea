// Package config provides configuration loading and structs for Vocanote.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug    bool           `yaml:"debug"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	AI       AIConfig       `yaml:"ai"`
	Chat     ChatConfig     `yaml:"chat"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the JSON stores, the session archive
// database, and the full-text index.
type StorageConfig struct {
	VocabularyPath   string `yaml:"vocabulary_path"`
	ChatSessionsPath string `yaml:"chat_sessions_path"`
	BookmarksPath    string `yaml:"bookmarks_path"`
	ArchivePath      string `yaml:"archive_path"`
	SearchIndexPath  string `yaml:"search_index_path"`
	WatchFiles       *bool  `yaml:"watch_files"`
}

// WatchFilesOrDefault returns whether store files are watched for external
// changes; defaults to true when unset.
func (s *StorageConfig) WatchFilesOrDefault() bool {
	if s.WatchFiles != nil {
		return *s.WatchFiles
	}
	return true
}

// AIConfig holds the generative model settings. The API key is normally
// supplied via the GOOGLE_API_KEY environment variable.
type AIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// ChatConfig holds chat retention settings.
type ChatConfig struct {
	RetentionDays int `yaml:"retention_days"`
}

// TelegramConfig holds the bot settings. The token is normally supplied via
// the TELEGRAM_BOT_TOKEN environment variable.
type TelegramConfig struct {
	Token string `yaml:"token"`
}

// Load reads and parses the config file at path, applies defaults, expands
// storage paths, and applies environment overrides (PORT, GOOGLE_API_KEY,
// TELEGRAM_BOT_TOKEN).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	finalize(&cfg, filepath.Dir(path))
	return &cfg, nil
}

// LoadOrDefault behaves like Load, except a missing file yields the default
// configuration instead of an error.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		var cfg Config
		finalize(&cfg, ".")
		return &cfg, nil
	}
	return Load(path)
}

func finalize(cfg *Config, configDir string) {
	ApplyDefaults(cfg)
	cfg.Storage.VocabularyPath = expandPath(cfg.Storage.VocabularyPath, configDir)
	cfg.Storage.ChatSessionsPath = expandPath(cfg.Storage.ChatSessionsPath, configDir)
	cfg.Storage.BookmarksPath = expandPath(cfg.Storage.BookmarksPath, configDir)
	cfg.Storage.ArchivePath = expandPath(cfg.Storage.ArchivePath, configDir)
	cfg.Storage.SearchIndexPath = expandPath(cfg.Storage.SearchIndexPath, configDir)
	applyEnvOverrides(cfg)
}

func applyEnvOverrides(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = n
		}
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.Token = token
	}
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are kept relative to the
// working directory.
func expandPath(path, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	return path
}
