package transcript

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zhouzirui/z-counsel/backend/internal/model/chat"
)

// SQLiteStore keeps transcripts in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS transcripts (
		id TEXT PRIMARY KEY,
		profile_json TEXT,
		messages_json TEXT NOT NULL,
		num_turns INTEGER NOT NULL,
		termination_reason TEXT NOT NULL DEFAULT '',
		evaluation_json TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_transcripts_created ON transcripts(created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts t or replaces the row with the same ID.
func (s *SQLiteStore) Save(ctx context.Context, t chat.Transcript) error {
	if t.ID == "" {
		return errors.New("transcript id is required")
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	profile, err := json.Marshal(t.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	messages, err := json.Marshal(t.Messages)
	if err != nil {
		return fmt.Errorf("encode messages: %w", err)
	}
	var evaluation any
	if len(t.Evaluation) > 0 {
		raw, err := json.Marshal(t.Evaluation)
		if err != nil {
			return fmt.Errorf("encode evaluation: %w", err)
		}
		evaluation = string(raw)
	}

	query := `
	INSERT INTO transcripts (id, profile_json, messages_json, num_turns, termination_reason, evaluation_json, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		profile_json = excluded.profile_json,
		messages_json = excluded.messages_json,
		num_turns = excluded.num_turns,
		termination_reason = excluded.termination_reason,
		evaluation_json = excluded.evaluation_json,
		updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		t.ID, string(profile), string(messages), t.NumTurns, string(t.TerminationReason),
		evaluation, t.CreatedAt.UnixNano(), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("upsert transcript: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (chat.Transcript, error) {
	query := `
		SELECT id, profile_json, messages_json, num_turns, termination_reason, evaluation_json, created_at
		FROM transcripts WHERE id = ?`

	var (
		t                   chat.Transcript
		profile, evaluation sql.NullString
		messages, reason    string
		createdAt           int64
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &profile, &messages, &t.NumTurns, &reason, &evaluation, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return chat.Transcript{}, ErrTranscriptNotFound
	}
	if err != nil {
		return chat.Transcript{}, fmt.Errorf("scan transcript row: %w", err)
	}

	if err := json.Unmarshal([]byte(messages), &t.Messages); err != nil {
		return chat.Transcript{}, fmt.Errorf("decode messages: %w", err)
	}
	if profile.Valid && profile.String != "" && profile.String != "null" {
		var p any
		if err := json.Unmarshal([]byte(profile.String), &p); err != nil {
			return chat.Transcript{}, fmt.Errorf("decode profile: %w", err)
		}
		t.Profile = p
	}
	if evaluation.Valid && evaluation.String != "" {
		if err := json.Unmarshal([]byte(evaluation.String), &t.Evaluation); err != nil {
			return chat.Transcript{}, fmt.Errorf("decode evaluation: %w", err)
		}
	}
	t.TerminationReason = chat.TerminationReason(reason)
	t.CreatedAt = time.Unix(0, createdAt).UTC()
	return t, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	query := `
		SELECT id, num_turns, termination_reason, evaluation_json IS NOT NULL, created_at
		FROM transcripts ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			item      Summary
			reason    string
			createdAt int64
		)
		if err := rows.Scan(&item.ID, &item.NumTurns, &reason, &item.Evaluated, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transcript summary: %w", err)
		}
		item.TerminationReason = chat.TerminationReason(reason)
		item.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, item)
	}
	return out, rows.Err()
}
