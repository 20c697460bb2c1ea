package storage

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hanmaru/vocanote/internal/models"
)

type vocabularySnapshot struct {
	Vocabulary  []*models.VocabularyEntry `json:"vocabulary"`
	LastUpdated models.Timestamp          `json:"last_updated,omitzero"`
}

// VocabularyStore keeps vocabulary entries in memory, keyed by the natural
// key OriginalWord, and rewrites the backing file on every mutation. Entries
// preserve insertion order so an overwrite keeps its slot.
type VocabularyStore struct {
	mu      sync.Mutex
	path    string
	entries []*models.VocabularyEntry
	logger  *zap.Logger
}

// NewVocabularyStore loads the store from path. A missing file starts an
// empty collection; a malformed file resets to empty and logs the cause.
// Load failures never propagate to the caller.
func NewVocabularyStore(path string, logger *zap.Logger) *VocabularyStore {
	s := &VocabularyStore{path: path, logger: logger}
	s.load()
	return s
}

func (s *VocabularyStore) load() {
	var snap vocabularySnapshot
	existed, err := readSnapshot(s.path, &snap)
	if err != nil {
		s.logger.Error("vocabulary load failed, starting empty", zap.Error(err))
		s.entries = nil
		return
	}
	if !existed {
		s.logger.Info("creating new vocabulary store", zap.String("path", s.path))
		s.entries = nil
		return
	}
	s.entries = snap.Vocabulary
	s.logger.Info("vocabulary loaded", zap.Int("entries", len(s.entries)))
}

// Reload re-reads the backing file, replacing the in-memory collection.
// Used when another process rewrites the file.
func (s *VocabularyStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
}

// saveAllLocked rewrites the backing file. Failures are logged, never raised.
func (s *VocabularyStore) saveAllLocked() bool {
	snap := vocabularySnapshot{Vocabulary: s.entries, LastUpdated: models.Now()}
	if err := writeSnapshot(s.path, &snap); err != nil {
		s.logger.Error("vocabulary save failed", zap.Error(err))
		return false
	}
	return true
}

// Save persists entry, assigning an id and creation time when missing. An
// existing entry with the same OriginalWord is replaced in place; otherwise
// the entry is appended. The whole collection is written back either way.
func (s *VocabularyStore) Save(entry *models.VocabularyEntry) *models.VocabularyEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = models.Now()
	}

	replaced := false
	for i, existing := range s.entries {
		if existing.OriginalWord == entry.OriginalWord {
			s.entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		s.entries = append(s.entries, entry)
	}
	s.saveAllLocked()

	saved := *entry
	return &saved
}

// GetByWord returns a copy of the entry for word, or nil when absent.
// Lookup is a linear scan over the natural key.
func (s *VocabularyStore) GetByWord(word string) *models.VocabularyEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.entries {
		if entry.OriginalWord == word {
			found := *entry
			return &found
		}
	}
	return nil
}

// Delete removes the entry for word and reports whether anything was removed.
// The file is rewritten only when something changed.
func (s *VocabularyStore) Delete(word string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entry := range s.entries {
		if entry.OriginalWord == word {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.saveAllLocked()
			return true
		}
	}
	return false
}

// ListAll returns copies of every entry, most recently created first.
func (s *VocabularyStore) ListAll() []*models.VocabularyEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.VocabularyEntry, len(s.entries))
	for i, entry := range s.entries {
		copied := *entry
		out[i] = &copied
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt.Time)
	})
	return out
}

// Count returns the number of stored entries.
func (s *VocabularyStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
