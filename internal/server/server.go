// Package server provides the HTTP API, the HTMX web UI, and the WebSocket
// terminal for Vocanote.
package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hanmaru/vocanote/internal/ai"
	"github.com/hanmaru/vocanote/internal/config"
	"github.com/hanmaru/vocanote/internal/search"
	"github.com/hanmaru/vocanote/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server is the HTTP server for the Vocanote API and UI.
type Server struct {
	vocab     *storage.VocabularyStore
	chats     *storage.ChatStore
	bookmarks *storage.BookmarkStore
	archive   *storage.ArchiveStore
	generator ai.Generator
	index     *search.WordIndex
	config    *config.ServerConfig
	logger    *zap.Logger
	templates *template.Template
	upgrader  websocket.Upgrader
	server    *http.Server
}

// NewServer creates a server with the given dependencies. generator, index,
// and archive may be nil; the affected endpoints degrade gracefully.
func NewServer(
	vocab *storage.VocabularyStore,
	chats *storage.ChatStore,
	bookmarks *storage.BookmarkStore,
	archive *storage.ArchiveStore,
	generator ai.Generator,
	index *search.WordIndex,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		vocab:     vocab,
		chats:     chats,
		bookmarks: bookmarks,
		archive:   archive,
		generator: generator,
		index:     index,
		config:    cfg,
		logger:    logger,
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Single-user deployment; the UI is served from the same host.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	// Pages and HTMX partials.
	r.Get("/", s.handleHome)
	r.Get("/terminal", s.handleTerminalPage)
	r.Get("/partials/vocabulary", s.handleVocabularyPartial)
	r.Get("/partials/bookmarks", s.handleBookmarksPartial)
	r.Get("/partials/review", s.handleReviewPartial)

	// Vocabulary API.
	r.Post("/api/generate-vocabulary", s.handleGenerateVocabulary)
	r.Get("/api/vocabulary", s.handleListVocabulary)
	r.Get("/api/vocabulary/search", s.handleSearchVocabulary)
	r.Get("/api/vocabulary/{word}", s.handleGetVocabulary)
	r.Delete("/api/vocabulary/{word}", s.handleDeleteVocabulary)

	// Chat API.
	r.Post("/api/chat/sessions", s.handleCreateSession)
	r.Get("/api/chat/sessions", s.handleListSessions)
	r.Get("/api/chat/sessions/grouped", s.handleGroupedSessions)
	r.Get("/api/chat/sessions/{id}", s.handleGetSession)
	r.Delete("/api/chat/sessions/{id}", s.handleDeleteSession)
	r.Post("/api/chat/sessions/{id}/messages", s.handleAddMessage)
	r.Get("/api/chat/archive", s.handleListArchivedSessions)

	// Bookmark API.
	r.Post("/api/bookmarks", s.handleCreateBookmark)
	r.Get("/api/bookmarks", s.handleListBookmarks)
	r.Get("/api/bookmarks/search", s.handleSearchBookmarks)
	r.Get("/api/bookmarks/review", s.handleReviewQueue)
	r.Post("/api/bookmarks/{id}/review", s.handleCompleteReview)
	r.Delete("/api/bookmarks/{id}", s.handleDeleteBookmark)

	r.Get("/api/stats", s.handleStats)
	r.Get("/health", s.handleHealth)

	// WebSocket terminal.
	r.Get("/ws/terminal", s.handleTerminalWS)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
