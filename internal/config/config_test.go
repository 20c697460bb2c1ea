package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "127.0.0.1"
  port: 9000
storage:
  vocabulary_path: "/tmp/vocab.json"
chat:
  retention_days: 7
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
	if cfg.Storage.VocabularyPath != "/tmp/vocab.json" {
		t.Errorf("vocabulary_path = %s", cfg.Storage.VocabularyPath)
	}
	if cfg.Chat.RetentionDays != 7 {
		t.Errorf("retention_days = %d, want 7", cfg.Chat.RetentionDays)
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  vocabulary_path: "./data/vocab.json"
  bookmarks_path: "data/bookmarks.json"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "data", "vocab.json")
	if cfg.Storage.VocabularyPath != want {
		t.Errorf("vocabulary_path = %s, want %s", cfg.Storage.VocabularyPath, want)
	}
	// Plain relative paths stay relative to the working directory.
	if cfg.Storage.BookmarksPath != "data/bookmarks.json" {
		t.Errorf("bookmarks_path = %s, want untouched", cfg.Storage.BookmarksPath)
	}
}

func TestLoad_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed yaml should return an error")
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "localhost" || cfg.Server.Port != 8000 {
		t.Errorf("default server config: %+v", cfg.Server)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Storage.VocabularyPath != "data/vocabulary_data.json" {
		t.Errorf("default vocabulary_path: got %s", cfg.Storage.VocabularyPath)
	}
	if cfg.AI.Model != "gemini-2.0-flash-exp" {
		t.Errorf("default model: got %s", cfg.AI.Model)
	}
	if cfg.Chat.RetentionDays != 30 {
		t.Errorf("default retention_days: got %d", cfg.Chat.RetentionDays)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("GOOGLE_API_KEY", "test-key")
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("PORT override: got %d", cfg.Server.Port)
	}
	if cfg.AI.APIKey != "test-key" {
		t.Errorf("GOOGLE_API_KEY override: got %s", cfg.AI.APIKey)
	}
	if cfg.Telegram.Token != "test-token" {
		t.Errorf("TELEGRAM_BOT_TOKEN override: got %s", cfg.Telegram.Token)
	}
}

func TestEnvOverrides_BadPortIgnored(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("bad PORT should keep default, got %d", cfg.Server.Port)
	}
}

func TestWatchFilesOrDefault(t *testing.T) {
	s := &StorageConfig{}
	if !s.WatchFilesOrDefault() {
		t.Error("unset watch_files should default to true")
	}
	f := false
	s.WatchFiles = &f
	if s.WatchFilesOrDefault() {
		t.Error("explicit false should be honored")
	}
}
