package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hanmaru/vocanote/internal/ai"
	"github.com/hanmaru/vocanote/internal/models"
)

func (s *Server) handleGenerateVocabulary(w http.ResponseWriter, r *http.Request) {
	var req models.VocabularyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	word := strings.TrimSpace(req.KoreanWord)
	if word == "" {
		s.respondError(w, http.StatusBadRequest, "korean_word is required")
		return
	}
	s.logger.Info("vocabulary generation requested", zap.String("word", word))

	// A word already in the store short-circuits the model call.
	if existing := s.vocab.GetByWord(word); existing != nil {
		s.respondJSON(w, http.StatusOK, models.VocabularyResponse{Success: true, Data: existing})
		return
	}

	entry := ai.GenerateOrFallback(r.Context(), s.generator, word, s.logger)
	saved := s.vocab.Save(entry)
	s.indexEntry(saved)
	s.respondJSON(w, http.StatusOK, models.VocabularyResponse{Success: true, Data: saved})
}

func (s *Server) handleListVocabulary(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.vocab.ListAll())
}

func (s *Server) handleSearchVocabulary(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		s.respondError(w, http.StatusNotImplemented, "search index not enabled")
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "q is required")
		return
	}
	hits, err := s.index.Search(query, 20)
	if err != nil {
		s.logger.Error("vocabulary search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// Resolve hits back to full entries; index rows lag the store only
	// briefly so missing words are simply skipped.
	entries := make([]*models.VocabularyEntry, 0, len(hits))
	for _, hit := range hits {
		if entry := s.vocab.GetByWord(hit.Word); entry != nil {
			entries = append(entries, entry)
		}
	}
	s.respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleGetVocabulary(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")
	entry := s.vocab.GetByWord(word)
	if entry == nil {
		s.respondError(w, http.StatusNotFound, "word not found")
		return
	}
	s.respondJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteVocabulary(w http.ResponseWriter, r *http.Request) {
	word := chi.URLParam(r, "word")
	if !s.vocab.Delete(word) {
		s.respondError(w, http.StatusNotFound, "word not found")
		return
	}
	if s.index != nil {
		if err := s.index.Delete(word); err != nil {
			s.logger.Warn("index delete failed", zap.String("word", word), zap.Error(err))
		}
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "word": word})
}

func (s *Server) indexEntry(entry *models.VocabularyEntry) {
	if s.index == nil {
		return
	}
	if err := s.index.Index(entry); err != nil {
		s.logger.Warn("index update failed", zap.String("word", entry.OriginalWord), zap.Error(err))
	}
}

type createSessionRequest struct {
	FirstMessage string `json:"first_message,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	session := s.chats.CreateSession(strings.TrimSpace(req.FirstMessage))
	s.respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.chats.ListSessions(50))
}

func (s *Server) handleGroupedSessions(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.chats.GroupSessionsByDate())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session := s.chats.GetSession(chi.URLParam(r, "id"))
	if session == nil {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	s.respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.chats.DeleteSession(id) {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "session_id": id})
}

type addMessageRequest struct {
	Type               string                `json:"type"`
	Text               string                `json:"text"`
	Pronunciation      string                `json:"pronunciation,omitempty"`
	RussianTranslation string                `json:"russian_translation,omitempty"`
	UsageExamples      []models.UsageExample `json:"usage_examples,omitempty"`
}

func (s *Server) handleAddMessage(w http.ResponseWriter, r *http.Request) {
	var req addMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	switch req.Type {
	case models.MessageTypeUser, models.MessageTypeAI, models.MessageTypeSystem:
	case "":
		req.Type = models.MessageTypeUser
	default:
		s.respondError(w, http.StatusBadRequest, "unknown message type")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	msg := models.NewChatMessage(req.Type, req.Text)
	msg.Pronunciation = req.Pronunciation
	msg.RussianTranslation = req.RussianTranslation
	msg.UsageExamples = req.UsageExamples

	if !s.chats.AddMessage(chi.URLParam(r, "id"), msg) {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	s.respondJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleListArchivedSessions(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.respondError(w, http.StatusNotImplemented, "archive not enabled")
		return
	}
	sessions, err := s.archive.ListSessions(r.Context(), 100)
	if err != nil {
		s.logger.Error("archive list failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, sessions)
}

type createBookmarkRequest struct {
	SessionID string `json:"session_id"`
	MessageID string `json:"message_id"`
}

func (s *Server) handleCreateBookmark(w http.ResponseWriter, r *http.Request) {
	var req createBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	session := s.chats.GetSession(req.SessionID)
	if session == nil {
		s.respondError(w, http.StatusNotFound, "session not found")
		return
	}
	var msg *models.ChatMessage
	for i := range session.Messages {
		if session.Messages[i].ID == req.MessageID {
			msg = &session.Messages[i]
			break
		}
	}
	if msg == nil {
		s.respondError(w, http.StatusNotFound, "message not found")
		return
	}
	bookmark := s.bookmarks.Create(req.SessionID, *msg)
	if bookmark == nil {
		s.respondError(w, http.StatusBadRequest, "only AI messages can be bookmarked")
		return
	}
	s.respondJSON(w, http.StatusCreated, bookmark)
}

func (s *Server) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	if sessionID := r.URL.Query().Get("session_id"); sessionID != "" {
		s.respondJSON(w, http.StatusOK, s.bookmarks.ListBySession(sessionID))
		return
	}
	s.respondJSON(w, http.StatusOK, s.bookmarks.ListAll(100))
}

func (s *Server) handleSearchBookmarks(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.bookmarks.Search(r.URL.Query().Get("q")))
}

func (s *Server) handleReviewQueue(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.bookmarks.DueForReview())
}

type completeReviewRequest struct {
	DifficultyRating int `json:"difficulty_rating"`
}

func (s *Server) handleCompleteReview(w http.ResponseWriter, r *http.Request) {
	var req completeReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DifficultyRating < 1 || req.DifficultyRating > 5 {
		s.respondError(w, http.StatusBadRequest, "difficulty_rating must be between 1 and 5")
		return
	}
	if !s.bookmarks.UpdateReview(chi.URLParam(r, "id"), req.DifficultyRating) {
		s.respondError(w, http.StatusNotFound, "bookmark not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.bookmarks.Delete(id) {
		s.respondError(w, http.StatusNotFound, "bookmark not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"vocabulary": map[string]int{"total_entries": s.vocab.Count()},
		"chat":       s.chats.Stats(),
		"bookmarks":  s.bookmarks.Stats(),
	}
	if s.archive != nil {
		if count, err := s.archive.CountSessions(r.Context()); err == nil {
			resp["archive"] = map[string]int64{"archived_sessions": count}
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
