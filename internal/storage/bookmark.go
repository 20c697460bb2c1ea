package storage

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hanmaru/vocanote/internal/models"
	"github.com/hanmaru/vocanote/pkg/utils"
)

// reviewIntervalDays maps the difficulty rating to the base review interval.
// The effective interval is the base multiplied by min(review count, 5).
// This table is a behavioral contract; do not substitute an SM-2 ease factor.
var reviewIntervalDays = map[int]int{
	1: 1,
	2: 3,
	3: 7,
	4: 14,
	5: 30,
}

const maxReviewMultiplier = 5

type bookmarkSnapshot struct {
	Bookmarks   []*models.BookmarkEntry `json:"bookmarks"`
	LastUpdated models.Timestamp        `json:"last_updated,omitzero"`
}

// BookmarkStats aggregates bookmark counts for the stats endpoints.
type BookmarkStats struct {
	TotalBookmarks int              `json:"total_bookmarks"`
	ReviewNeeded   int              `json:"review_needed"`
	AvgDifficulty  float64          `json:"avg_difficulty"`
	AvgReviews     float64          `json:"avg_reviews"`
	LatestBookmark models.Timestamp `json:"latest_bookmark,omitzero"`
}

// BookmarkStore keeps bookmarks in memory, enforces one bookmark per
// (session, message) pair, and embeds the spaced-repetition scheduler in
// UpdateReview.
type BookmarkStore struct {
	mu        sync.Mutex
	path      string
	bookmarks map[string]*models.BookmarkEntry
	logger    *zap.Logger
}

// NewBookmarkStore loads the store from path. Missing file starts empty;
// malformed file resets to empty with the cause logged.
func NewBookmarkStore(path string, logger *zap.Logger) *BookmarkStore {
	s := &BookmarkStore{path: path, logger: logger}
	s.load()
	return s
}

func (s *BookmarkStore) load() {
	s.bookmarks = make(map[string]*models.BookmarkEntry)
	var snap bookmarkSnapshot
	existed, err := readSnapshot(s.path, &snap)
	if err != nil {
		s.logger.Error("bookmarks load failed, starting empty", zap.Error(err))
		return
	}
	if !existed {
		s.logger.Info("creating new bookmark store", zap.String("path", s.path))
		return
	}
	for _, bookmark := range snap.Bookmarks {
		s.bookmarks[bookmark.ID] = bookmark
	}
	s.logger.Info("bookmarks loaded", zap.Int("bookmarks", len(s.bookmarks)))
}

// Reload re-reads the backing file, replacing the in-memory collection.
func (s *BookmarkStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()
}

func (s *BookmarkStore) saveAllLocked() bool {
	snap := bookmarkSnapshot{
		Bookmarks:   make([]*models.BookmarkEntry, 0, len(s.bookmarks)),
		LastUpdated: models.Now(),
	}
	for _, bookmark := range s.bookmarks {
		snap.Bookmarks = append(snap.Bookmarks, bookmark)
	}
	sort.Slice(snap.Bookmarks, func(i, j int) bool {
		return snap.Bookmarks[i].ID < snap.Bookmarks[j].ID
	})
	if err := writeSnapshot(s.path, &snap); err != nil {
		s.logger.Error("bookmarks save failed", zap.Error(err))
		return false
	}
	return true
}

// Create bookmarks an AI chat message. Only AI messages are bookmarkable;
// anything else returns nil. A duplicate (session, message) pair returns the
// existing bookmark unchanged without growing the store. The first review is
// scheduled one day out.
func (s *BookmarkStore) Create(sessionID string, msg models.ChatMessage) *models.BookmarkEntry {
	if msg.Type != models.MessageTypeAI {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing := s.findByMessageLocked(sessionID, msg.ID); existing != nil {
		s.logger.Info("bookmark already exists", zap.String("message_id", msg.ID))
		found := *existing
		return &found
	}

	bookmark := &models.BookmarkEntry{
		ID:                 uuid.NewString(),
		SessionID:          sessionID,
		MessageID:          msg.ID,
		KoreanText:         msg.Text,
		RussianTranslation: msg.RussianTranslation,
		Pronunciation:      msg.Pronunciation,
		UsageExamples:      msg.UsageExamples,
		CreatedAt:          models.Now(),
		NextReviewDate:     models.At(time.Now().AddDate(0, 0, 1)),
		DifficultyLevel:    1,
	}
	s.bookmarks[bookmark.ID] = bookmark
	s.saveAllLocked()
	s.logger.Info("bookmark created", zap.String("text", utils.Truncate(bookmark.KoreanText, 20)))

	created := *bookmark
	return &created
}

// FindByMessage returns the bookmark for a (session, message) pair, or nil.
func (s *BookmarkStore) FindByMessage(sessionID, messageID string) *models.BookmarkEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b := s.findByMessageLocked(sessionID, messageID); b != nil {
		found := *b
		return &found
	}
	return nil
}

func (s *BookmarkStore) findByMessageLocked(sessionID, messageID string) *models.BookmarkEntry {
	for _, bookmark := range s.bookmarks {
		if bookmark.SessionID == sessionID && bookmark.MessageID == messageID {
			return bookmark
		}
	}
	return nil
}

// Delete removes the bookmark and reports whether it existed.
func (s *BookmarkStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	bookmark, ok := s.bookmarks[id]
	if !ok {
		return false
	}
	delete(s.bookmarks, id)
	s.saveAllLocked()
	s.logger.Info("bookmark deleted", zap.String("text", utils.Truncate(bookmark.KoreanText, 20)))
	return true
}

// ListAll returns copies of up to limit bookmarks, newest first.
// limit <= 0 means no limit.
func (s *BookmarkStore) ListAll(limit int) []*models.BookmarkEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.collectLocked(func(*models.BookmarkEntry) bool { return true })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ListBySession returns the session's bookmarks, newest first.
func (s *BookmarkStore) ListBySession(sessionID string) []*models.BookmarkEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collectLocked(func(b *models.BookmarkEntry) bool {
		return b.SessionID == sessionID
	})
}

// collectLocked returns copies of matching bookmarks sorted newest-created first.
func (s *BookmarkStore) collectLocked(match func(*models.BookmarkEntry) bool) []*models.BookmarkEntry {
	var out []*models.BookmarkEntry
	for _, bookmark := range s.bookmarks {
		if match(bookmark) {
			copied := *bookmark
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt.Time)
	})
	return out
}

// Search returns bookmarks whose Korean text or Russian translation contains
// query, case-insensitively. No tokenization or ranking; results are newest
// first. An empty query matches nothing.
func (s *BookmarkStore) Search(query string) []*models.BookmarkEntry {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collectLocked(func(b *models.BookmarkEntry) bool {
		return strings.Contains(strings.ToLower(b.KoreanText), query) ||
			strings.Contains(strings.ToLower(b.RussianTranslation), query)
	})
}

// DueForReview returns every bookmark whose next review date is at or before
// now, ordered by (next review date, difficulty) descending. The descending
// order is long-standing observed behavior and is kept for compatibility.
func (s *BookmarkStore) DueForReview() []*models.BookmarkEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var due []*models.BookmarkEntry
	for _, bookmark := range s.bookmarks {
		if !bookmark.NextReviewDate.IsZero() && !bookmark.NextReviewDate.After(now) {
			copied := *bookmark
			due = append(due, &copied)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].NextReviewDate.Equal(due[j].NextReviewDate.Time) {
			return due[i].NextReviewDate.After(due[j].NextReviewDate.Time)
		}
		return due[i].DifficultyLevel > due[j].DifficultyLevel
	})
	return due
}

// UpdateReview records a completed review: increments the review count,
// stamps last-reviewed, overwrites the difficulty with the clamped rating,
// and schedules the next review at base-interval × min(review count, 5)
// days out. Returns false when the id is unknown.
func (s *BookmarkStore) UpdateReview(id string, difficultyRating int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookmark, ok := s.bookmarks[id]
	if !ok {
		return false
	}

	rating := difficultyRating
	if rating < 1 {
		rating = 1
	} else if rating > 5 {
		rating = 5
	}

	now := time.Now()
	bookmark.ReviewCount++
	bookmark.LastReviewed = models.At(now)
	bookmark.DifficultyLevel = rating

	multiplier := bookmark.ReviewCount
	if multiplier > maxReviewMultiplier {
		multiplier = maxReviewMultiplier
	}
	days := reviewIntervalDays[rating] * multiplier
	bookmark.NextReviewDate = models.At(now.AddDate(0, 0, days))

	s.saveAllLocked()
	s.logger.Info("review completed",
		zap.String("text", utils.Truncate(bookmark.KoreanText, 20)),
		zap.Int("next_review_days", days))
	return true
}

// Stats returns aggregate bookmark counts; zero-safe on an empty store.
func (s *BookmarkStore) Stats() BookmarkStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := BookmarkStats{TotalBookmarks: len(s.bookmarks)}
	now := time.Now()
	var difficultySum, reviewSum int
	for _, bookmark := range s.bookmarks {
		difficultySum += bookmark.DifficultyLevel
		reviewSum += bookmark.ReviewCount
		if !bookmark.NextReviewDate.IsZero() && !bookmark.NextReviewDate.After(now) {
			stats.ReviewNeeded++
		}
		if bookmark.CreatedAt.After(stats.LatestBookmark.Time) {
			stats.LatestBookmark = bookmark.CreatedAt
		}
	}
	if stats.TotalBookmarks > 0 {
		stats.AvgDifficulty = math.Round(float64(difficultySum)/float64(stats.TotalBookmarks)*10) / 10
		stats.AvgReviews = math.Round(float64(reviewSum)/float64(stats.TotalBookmarks)*10) / 10
	}
	return stats
}

// Count returns the number of stored bookmarks.
func (s *BookmarkStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookmarks)
}
