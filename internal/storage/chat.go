package storage

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hanmaru/vocanote/internal/models"
)

const welcomeText = "👋 안녕하세요! 한국어 ↔ 러시아어 번역을 도와드릴게요!\n💡 팁: /help 명령어로 사용법을 확인할 수 있어요!"

// Date-grouping bucket names.
const (
	BucketToday     = "today"
	BucketYesterday = "yesterday"
	BucketThisWeek  = "this_week"
	BucketEarlier   = "earlier"
)

type chatSnapshot struct {
	Sessions    []*models.ChatSession `json:"sessions"`
	LastUpdated models.Timestamp      `json:"last_updated,omitzero"`
}

// ChatStats aggregates session counts for the stats endpoints.
type ChatStats struct {
	TotalSessions         int              `json:"total_sessions"`
	TotalMessages         int              `json:"total_messages"`
	AvgMessagesPerSession float64          `json:"avg_messages_per_session"`
	LatestActivity        models.Timestamp `json:"latest_activity,omitzero"`
}

// ChatStore keeps chat sessions in memory and rewrites the backing file on
// every mutation. When an ArchiveStore is attached, the retention sweep
// archives each session before removing it.
type ChatStore struct {
	mu       sync.Mutex
	path     string
	sessions map[string]*models.ChatSession
	archive  *ArchiveStore
	logger   *zap.Logger
}

// NewChatStore loads the store from path. Missing file starts empty;
// malformed file resets to empty with the cause logged.
func NewChatStore(path string, logger *zap.Logger) *ChatStore {
	s := &ChatStore{path: path, logger: logger}
	s.load()
	return s
}

// SetArchive attaches a session archive used by ClearOldSessions.
func (s *ChatStore) SetArchive(archive *ArchiveStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archive = archive
}

func (s *ChatStore) load() {
	s.sessions = make(map[string]*models.ChatSession)
	var snap chatSnapshot
	existed, err := readSnapshot(s.path, &snap)
	if err != nil {
		s.logger.Error("chat sessions load failed, starting empty", zap.Error(err))
		return
	}
	if !existed {
		s.logger.Info("creating new chat session store", zap.String("path", s.path))
		return
	}
	for _, session := range snap.Sessions {
		s.sessions[session.SessionID] = session
	}
	s.logger.Info("chat sessions loaded", zap.Int("sessions", len(s.sessions)))
}

// Reload re-reads the backing file, replacing the in-memory collection.
func (s *ChatStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	archive := s.archive
	s.load()
	s.archive = archive
}

func (s *ChatStore) saveAllLocked() bool {
	snap := chatSnapshot{
		Sessions:    make([]*models.ChatSession, 0, len(s.sessions)),
		LastUpdated: models.Now(),
	}
	for _, session := range s.sessions {
		snap.Sessions = append(snap.Sessions, session)
	}
	sort.Slice(snap.Sessions, func(i, j int) bool {
		return snap.Sessions[i].SessionID < snap.Sessions[j].SessionID
	})
	if err := writeSnapshot(s.path, &snap); err != nil {
		s.logger.Error("chat sessions save failed", zap.Error(err))
		return false
	}
	return true
}

// CreateSession creates a session seeded with the system welcome message and,
// when firstMessage is non-empty, an initial user message.
func (s *ChatStore) CreateSession(firstMessage string) *models.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := models.NewChatSession()
	session.AddMessage(models.NewChatMessage(models.MessageTypeSystem, welcomeText))
	if firstMessage != "" {
		session.AddMessage(models.NewChatMessage(models.MessageTypeUser, firstMessage))
	}
	s.sessions[session.SessionID] = session
	s.saveAllLocked()
	s.logger.Info("chat session created", zap.String("session_id", session.SessionID))

	created := *session
	return &created
}

// GetSession returns a copy of the session, or nil when unknown.
func (s *ChatStore) GetSession(sessionID string) *models.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	found := *session
	return &found
}

// AddMessage appends msg to the session and persists. Returns false when the
// session id is unknown; the caller turns that into a not-found signal.
func (s *ChatStore) AddMessage(sessionID string, msg models.ChatMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		s.logger.Warn("session not found", zap.String("session_id", sessionID))
		return false
	}
	session.AddMessage(msg)
	s.saveAllLocked()
	s.logger.Info("message added",
		zap.String("session_id", sessionID),
		zap.Int("message_count", session.MessageCount))
	return true
}

// ListSessions returns copies of up to limit sessions, most recently updated
// first. limit <= 0 means no limit.
func (s *ChatStore) ListSessions(limit int) []*models.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(limit)
}

func (s *ChatStore) listLocked(limit int) []*models.ChatSession {
	out := make([]*models.ChatSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		copied := *session
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastUpdated.After(out[j].LastUpdated.Time)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GroupSessionsByDate partitions sessions into today / yesterday / this week
// (Monday-anchored) / earlier buckets by LastUpdated, newest first within
// each bucket. Empty buckets are omitted.
func (s *ChatStore) GroupSessionsByDate() map[string][]*models.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	today := dateOf(now)
	yesterday := today.AddDate(0, 0, -1)
	weekOffset := (int(now.Weekday()) + 6) % 7 // days since Monday
	weekStart := today.AddDate(0, 0, -weekOffset)

	grouped := make(map[string][]*models.ChatSession)
	for _, session := range s.listLocked(0) {
		d := dateOf(session.LastUpdated.Time)
		switch {
		case d.Equal(today):
			grouped[BucketToday] = append(grouped[BucketToday], session)
		case d.Equal(yesterday):
			grouped[BucketYesterday] = append(grouped[BucketYesterday], session)
		case !d.Before(weekStart):
			grouped[BucketThisWeek] = append(grouped[BucketThisWeek], session)
		default:
			grouped[BucketEarlier] = append(grouped[BucketEarlier], session)
		}
	}
	return grouped
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DeleteSession removes the session and reports whether it existed.
func (s *ChatStore) DeleteSession(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return false
	}
	delete(s.sessions, sessionID)
	s.saveAllLocked()
	s.logger.Info("session deleted", zap.String("session_id", sessionID))
	return true
}

// ClearOldSessions deletes every session whose LastUpdated predates the
// cutoff and returns the count removed. Swept sessions are archived first
// when an archive is attached; the file is rewritten once if any were removed.
func (s *ChatStore) ClearOldSessions(olderThan time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-olderThan)
	deleted := 0
	for id, session := range s.sessions {
		if session.LastUpdated.Before(cutoff) {
			if s.archive != nil {
				if err := s.archive.ArchiveSession(context.Background(), session); err != nil {
					s.logger.Warn("session archive failed",
						zap.String("session_id", id), zap.Error(err))
				}
			}
			delete(s.sessions, id)
			deleted++
		}
	}
	if deleted > 0 {
		s.saveAllLocked()
		s.logger.Info("old sessions cleared", zap.Int("deleted", deleted))
	}
	return deleted
}

// Stats returns aggregate session counts; zero-safe on an empty store.
func (s *ChatStore) Stats() ChatStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := ChatStats{TotalSessions: len(s.sessions)}
	for _, session := range s.sessions {
		stats.TotalMessages += session.MessageCount
		if session.LastUpdated.After(stats.LatestActivity.Time) {
			stats.LatestActivity = session.LastUpdated
		}
	}
	if stats.TotalSessions > 0 {
		avg := float64(stats.TotalMessages) / float64(stats.TotalSessions)
		stats.AvgMessagesPerSession = math.Round(avg*10) / 10
	}
	return stats
}
