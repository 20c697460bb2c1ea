package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hanmaru/vocanote/internal/models"
)

// ArchiveStore keeps chat sessions removed by the retention sweep in a
// SQLite database, so old conversations stay queryable after they leave the
// live JSON store.
type ArchiveStore struct {
	db *sql.DB
}

// ArchivedSession is one row of the archive.
type ArchivedSession struct {
	SessionID    string               `json:"session_id"`
	Title        string               `json:"title,omitempty"`
	CreatedAt    models.Timestamp     `json:"created_at,omitzero"`
	LastUpdated  models.Timestamp     `json:"last_updated,omitzero"`
	MessageCount int                  `json:"message_count"`
	Messages     []models.ChatMessage `json:"messages,omitempty"`
	ArchivedAt   models.Timestamp     `json:"archived_at,omitzero"`
}

// NewArchiveStore opens or creates the archive database at dbPath and
// initializes the schema. Parent directories are created if needed.
func NewArchiveStore(dbPath string) (*ArchiveStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initArchiveSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	return &ArchiveStore{db: db}, nil
}

func initArchiveSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS archived_sessions (
		session_id TEXT PRIMARY KEY,
		title TEXT,
		created_at TIMESTAMP,
		last_updated TIMESTAMP,
		message_count INTEGER NOT NULL,
		messages TEXT NOT NULL,
		archived_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_archived_last_updated ON archived_sessions(last_updated);
	`
	_, err := db.Exec(schema)
	return err
}

// ArchiveSession inserts the session, replacing any earlier archive of the
// same id.
func (a *ArchiveStore) ArchiveSession(ctx context.Context, session *models.ChatSession) error {
	messagesJSON, err := json.Marshal(session.Messages)
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}
	_, err = a.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO archived_sessions
		 (session_id, title, created_at, last_updated, message_count, messages, archived_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.SessionID, session.Title,
		session.CreatedAt.Time, session.LastUpdated.Time,
		session.MessageCount, string(messagesJSON), time.Now(),
	)
	return err
}

// GetSession returns the archived session by id.
func (a *ArchiveStore) GetSession(ctx context.Context, sessionID string) (*ArchivedSession, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT session_id, title, created_at, last_updated, message_count, messages, archived_at
		 FROM archived_sessions WHERE session_id = ?`, sessionID)
	session, err := scanArchivedSession(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("archived session not found: %s", sessionID)
	}
	return session, err
}

// ListSessions returns up to limit archived sessions, most recently updated first.
func (a *ArchiveStore) ListSessions(ctx context.Context, limit int) ([]*ArchivedSession, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT session_id, title, created_at, last_updated, message_count, messages, archived_at
		 FROM archived_sessions ORDER BY last_updated DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*ArchivedSession
	for rows.Next() {
		session, err := scanArchivedSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

// CountSessions returns the number of archived sessions.
func (a *ArchiveStore) CountSessions(ctx context.Context) (int64, error) {
	var count int64
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM archived_sessions`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArchivedSession(row rowScanner) (*ArchivedSession, error) {
	var session ArchivedSession
	var createdAt, lastUpdated, archivedAt time.Time
	var messagesJSON string
	if err := row.Scan(&session.SessionID, &session.Title, &createdAt, &lastUpdated,
		&session.MessageCount, &messagesJSON, &archivedAt); err != nil {
		return nil, err
	}
	session.CreatedAt = models.At(createdAt)
	session.LastUpdated = models.At(lastUpdated)
	session.ArchivedAt = models.At(archivedAt)
	if messagesJSON != "" {
		if err := json.Unmarshal([]byte(messagesJSON), &session.Messages); err != nil {
			return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
		}
	}
	return &session, nil
}

// Close closes the underlying database.
func (a *ArchiveStore) Close() error {
	return a.db.Close()
}
