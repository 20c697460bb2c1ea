package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hanmaru/vocanote/internal/models"
)

// Page and partial handlers. Partials return rendered HTML fragments for
// hx-get swaps; full pages pull them in on load.

type homeData struct {
	VocabularyCount int
	Recent          []*models.VocabularyEntry
	DueCount        int
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	entries := s.vocab.ListAll()
	recent := entries
	if len(recent) > 10 {
		recent = recent[:10]
	}
	s.render(w, "index.html", homeData{
		VocabularyCount: len(entries),
		Recent:          recent,
		DueCount:        len(s.bookmarks.DueForReview()),
	})
}

func (s *Server) handleTerminalPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "terminal.html", nil)
}

func (s *Server) handleVocabularyPartial(w http.ResponseWriter, r *http.Request) {
	s.render(w, "vocab_list.html", s.vocab.ListAll())
}

func (s *Server) handleBookmarksPartial(w http.ResponseWriter, r *http.Request) {
	s.render(w, "bookmark_list.html", s.bookmarks.ListAll(100))
}

func (s *Server) handleReviewPartial(w http.ResponseWriter, r *http.Request) {
	s.render(w, "review_list.html", s.bookmarks.DueForReview())
}

func (s *Server) render(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template render failed", zap.String("template", name), zap.Error(err))
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}
