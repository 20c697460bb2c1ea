package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/hanmaru/vocanote/internal/ai"
	"github.com/hanmaru/vocanote/internal/config"
	"github.com/hanmaru/vocanote/internal/models"
	"github.com/hanmaru/vocanote/internal/search"
	"github.com/hanmaru/vocanote/internal/storage"
)

type stubGenerator struct {
	entry *models.VocabularyEntry
	err   error
}

func (s *stubGenerator) Generate(ctx context.Context, word string) (*models.VocabularyEntry, error) {
	return s.entry, s.err
}

func newTestServer(t *testing.T, generator ai.Generator) *Server {
	t.Helper()
	dir := t.TempDir()
	logger := zap.NewNop()
	vocab := storage.NewVocabularyStore(filepath.Join(dir, "vocab.json"), logger)
	chats := storage.NewChatStore(filepath.Join(dir, "chat.json"), logger)
	bookmarks := storage.NewBookmarkStore(filepath.Join(dir, "bookmarks.json"), logger)
	index, err := search.NewMemoryWordIndex()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { index.Close() })
	return NewServer(vocab, chats, bookmarks, nil, generator, index,
		&config.ServerConfig{Host: "localhost", Port: 0}, logger)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestGenerateVocabulary_Fallback(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/generate-vocabulary",
		map[string]string{"korean_word": "사랑"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp models.VocabularyResponse
	decodeBody(t, rec, &resp)
	if !resp.Success || resp.Data == nil {
		t.Fatalf("response: %+v", resp)
	}
	if resp.Data.RussianTranslation != "번역 필요" {
		t.Errorf("no generator should serve the fallback entry, got %q", resp.Data.RussianTranslation)
	}
}

func TestGenerateVocabulary_UsesGenerator(t *testing.T) {
	gen := &stubGenerator{entry: &models.VocabularyEntry{
		OriginalWord: "사랑", RussianTranslation: "любовь",
	}}
	srv := newTestServer(t, gen)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/generate-vocabulary",
		map[string]string{"korean_word": "사랑"})
	var resp models.VocabularyResponse
	decodeBody(t, rec, &resp)
	if resp.Data.RussianTranslation != "любовь" {
		t.Errorf("translation = %q", resp.Data.RussianTranslation)
	}
}

func TestGenerateVocabulary_GeneratorErrorFallsBack(t *testing.T) {
	srv := newTestServer(t, &stubGenerator{err: errors.New("boom")})
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/generate-vocabulary",
		map[string]string{"korean_word": "사랑"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 via fallback", rec.Code)
	}
	var resp models.VocabularyResponse
	decodeBody(t, rec, &resp)
	if resp.Data.RussianTranslation != "번역 필요" {
		t.Errorf("generator failure should serve the fallback, got %q", resp.Data.RussianTranslation)
	}
}

func TestGenerateVocabulary_ExistingWordShortCircuits(t *testing.T) {
	gen := &stubGenerator{err: errors.New("should not be called")}
	srv := newTestServer(t, gen)
	srv.vocab.Save(&models.VocabularyEntry{OriginalWord: "사랑", RussianTranslation: "любовь"})

	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/generate-vocabulary",
		map[string]string{"korean_word": "사랑"})
	var resp models.VocabularyResponse
	decodeBody(t, rec, &resp)
	if resp.Data.RussianTranslation != "любовь" {
		t.Errorf("existing entry should be returned without regeneration, got %q", resp.Data.RussianTranslation)
	}
}

func TestGenerateVocabulary_BadRequest(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doJSON(t, srv.Router(), http.MethodPost, "/api/generate-vocabulary",
		map[string]string{"korean_word": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank word: status = %d, want 400", rec.Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/generate-vocabulary",
		bytes.NewBufferString("not json"))
	rec2 := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec2, req)
	if rec2.Code != http.StatusBadRequest {
		t.Errorf("bad body: status = %d, want 400", rec2.Code)
	}
}

func TestVocabularyCRUD(t *testing.T) {
	srv := newTestServer(t, nil)
	router := srv.Router()
	srv.vocab.Save(&models.VocabularyEntry{OriginalWord: "사랑", RussianTranslation: "любовь"})

	rec := doJSON(t, router, http.MethodGet, "/api/vocabulary/사랑", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get: status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/vocabulary/없는말", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get missing: status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/vocabulary", nil)
	var all []*models.VocabularyEntry
	decodeBody(t, rec, &all)
	if len(all) != 1 {
		t.Errorf("list = %d entries, want 1", len(all))
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/vocabulary/사랑", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete: status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodDelete, "/api/vocabulary/사랑", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", rec.Code)
	}
}

func TestSearchVocabulary(t *testing.T) {
	srv := newTestServer(t, nil)
	router := srv.Router()
	// Seed through the generate endpoint so the index is populated.
	doJSON(t, router, http.MethodPost, "/api/generate-vocabulary",
		map[string]string{"korean_word": "사랑"})

	rec := doJSON(t, router, http.MethodGet, "/api/vocabulary/search?q=사랑", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var entries []*models.VocabularyEntry
	decodeBody(t, rec, &entries)
	if len(entries) != 1 || entries[0].OriginalWord != "사랑" {
		t.Errorf("search results: %+v", entries)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/vocabulary/search", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d, want 400", rec.Code)
	}
}

func TestChatSessionEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	router := srv.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/chat/sessions",
		map[string]string{"first_message": "사랑"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var session models.ChatSession
	decodeBody(t, rec, &session)
	if session.MessageCount != 2 {
		t.Errorf("created session message count = %d, want 2", session.MessageCount)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/chat/sessions/"+session.SessionID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get: status = %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/api/chat/sessions/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get missing: status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/chat/sessions/"+session.SessionID+"/messages",
		map[string]string{"type": "ai", "text": "любовь", "russian_translation": "любовь"})
	if rec.Code != http.StatusCreated {
		t.Errorf("add message: status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPost, "/api/chat/sessions/"+session.SessionID+"/messages",
		map[string]string{"type": "alien", "text": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad type: status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/chat/sessions/grouped", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("grouped: status = %d", rec.Code)
	}
	var grouped map[string][]*models.ChatSession
	decodeBody(t, rec, &grouped)
	if len(grouped[storage.BucketToday]) != 1 {
		t.Errorf("grouped today: %+v", grouped)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/chat/sessions/"+session.SessionID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete: status = %d", rec.Code)
	}
}

func TestBookmarkReviewFlow(t *testing.T) {
	srv := newTestServer(t, nil)
	router := srv.Router()

	session := srv.chats.CreateSession("")
	aiMsg := models.NewChatMessage(models.MessageTypeAI, "사랑")
	aiMsg.RussianTranslation = "любовь"
	srv.chats.AddMessage(session.SessionID, aiMsg)

	rec := doJSON(t, router, http.MethodPost, "/api/bookmarks",
		map[string]string{"session_id": session.SessionID, "message_id": aiMsg.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create bookmark: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var bookmark models.BookmarkEntry
	decodeBody(t, rec, &bookmark)

	// The welcome message is a system message and cannot be bookmarked.
	rec = doJSON(t, router, http.MethodPost, "/api/bookmarks",
		map[string]string{"session_id": session.SessionID, "message_id": session.Messages[0].ID})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("system message bookmark: status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/bookmarks/"+bookmark.ID+"/review",
		map[string]int{"difficulty_rating": 3})
	if rec.Code != http.StatusOK {
		t.Errorf("review: status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPost, "/api/bookmarks/"+bookmark.ID+"/review",
		map[string]int{"difficulty_rating": 6})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range rating: status = %d, want 400", rec.Code)
	}
	rec = doJSON(t, router, http.MethodPost, "/api/bookmarks/nope/review",
		map[string]int{"difficulty_rating": 3})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown bookmark review: status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/bookmarks?session_id="+session.SessionID, nil)
	var list []*models.BookmarkEntry
	decodeBody(t, rec, &list)
	if len(list) != 1 || list[0].ReviewCount != 1 {
		t.Errorf("session bookmarks: %+v", list)
	}

	rec = doJSON(t, router, http.MethodDelete, "/api/bookmarks/"+bookmark.ID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete: status = %d", rec.Code)
	}
}

func TestStats(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.chats.CreateSession("사랑")
	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats map[string]json.RawMessage
	decodeBody(t, rec, &stats)
	for _, key := range []string{"vocabulary", "chat", "bookmarks"} {
		if _, ok := stats[key]; !ok {
			t.Errorf("stats missing %q section", key)
		}
	}
}

func TestArchiveEndpointDisabled(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/chat/archive", nil)
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501 without an archive", rec.Code)
	}
}

func TestHomePage(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("content type = %s", ct)
	}
}

func TestPartials(t *testing.T) {
	srv := newTestServer(t, nil)
	router := srv.Router()
	srv.vocab.Save(&models.VocabularyEntry{OriginalWord: "사랑", RussianTranslation: "любовь"})
	for _, path := range []string{"/partials/vocabulary", "/partials/bookmarks", "/partials/review"} {
		rec := doJSON(t, router, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", path, rec.Code)
		}
	}
}
