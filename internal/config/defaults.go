package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Storage.VocabularyPath == "" {
		cfg.Storage.VocabularyPath = "data/vocabulary_data.json"
	}
	if cfg.Storage.ChatSessionsPath == "" {
		cfg.Storage.ChatSessionsPath = "data/chat_sessions.json"
	}
	if cfg.Storage.BookmarksPath == "" {
		cfg.Storage.BookmarksPath = "data/bookmarks.json"
	}
	if cfg.Storage.ArchivePath == "" {
		cfg.Storage.ArchivePath = "data/archive/sessions.db"
	}
	if cfg.Storage.SearchIndexPath == "" {
		cfg.Storage.SearchIndexPath = "data/indices/vocabulary.bleve"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gemini-2.0-flash-exp"
	}
	if cfg.Chat.RetentionDays == 0 {
		cfg.Chat.RetentionDays = 30
	}
}
