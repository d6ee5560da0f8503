package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/s376930/Chat-Arena/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements TranscriptStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed transcript store.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS conversations (
		session_id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		participants_json TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_started ON conversations(started_at);

	CREATE TABLE IF NOT EXISTS messages (
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		PRIMARY KEY (session_id, seq)
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Persist upserts the conversation header and appends unseen messages.
// Message rows are keyed by (session_id, seq) so repeated calls with a
// growing transcript insert only the tail.
func (s *SQLiteStore) Persist(ctx context.Context, conv *domain.Conversation) error {
	return s.persist(ctx, conv, false)
}

// Finalize persists the conversation with its end time set.
func (s *SQLiteStore) Finalize(ctx context.Context, conv *domain.Conversation) error {
	return s.persist(ctx, conv, true)
}

func (s *SQLiteStore) persist(ctx context.Context, conv *domain.Conversation, final bool) error {
	participants, err := json.Marshal(conv.Participants)
	if err != nil {
		return fmt.Errorf("marshal participants: %w", err)
	}

	var endedAt interface{}
	if final {
		ts := time.Now().UTC()
		if conv.EndedAt != nil {
			ts = *conv.EndedAt
		}
		endedAt = ts.Unix()
	} else if conv.EndedAt != nil {
		endedAt = conv.EndedAt.Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO conversations (session_id, topic, participants_json, started_at, ended_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		participants_json = excluded.participants_json,
		ended_at = excluded.ended_at`,
		conv.SessionID, conv.Topic, string(participants), conv.StartedAt.Unix(), endedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO messages (session_id, seq, role, content, timestamp)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(session_id, seq) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare message insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range conv.Messages {
		if _, err := stmt.ExecContext(ctx, conv.SessionID, i, msg.Role, msg.Content, msg.Timestamp.UnixMilli()); err != nil {
			return fmt.Errorf("insert message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Load retrieves a stored conversation, or (nil, nil) when absent.
func (s *SQLiteStore) Load(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	row := s.db.QueryRowContext(ctx, `
	SELECT topic, participants_json, started_at, ended_at
	FROM conversations WHERE session_id = ?`, sessionID)

	var conv domain.Conversation
	var participantsJSON string
	var startedAt int64
	var endedAt sql.NullInt64

	err := row.Scan(&conv.Topic, &participantsJSON, &startedAt, &endedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan conversation row: %w", err)
	}

	conv.SessionID = sessionID
	conv.StartedAt = time.Unix(startedAt, 0).UTC()
	if endedAt.Valid {
		t := time.Unix(endedAt.Int64, 0).UTC()
		conv.EndedAt = &t
	}
	if err := json.Unmarshal([]byte(participantsJSON), &conv.Participants); err != nil {
		return nil, fmt.Errorf("unmarshal participants: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT role, content, timestamp FROM messages
	WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg domain.TranscriptMessage
		var ts int64
		if err := rows.Scan(&msg.Role, &msg.Content, &ts); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		msg.Timestamp = time.UnixMilli(ts).UTC()
		conv.Messages = append(conv.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return &conv, nil
}

// ListSessions returns stored session ids, most recent first.
func (s *SQLiteStore) ListSessions(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT session_id FROM conversations ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return ids, nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
