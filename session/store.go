// Package session persists extracted questionnaires to SQLite so a document
// is uploaded and extracted once, then analyzed and simulated many times.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hazyhaar/surveypipe/dbopen"
	"github.com/hazyhaar/surveypipe/idgen"
	"github.com/hazyhaar/surveypipe/survey"
)

// ErrNotFound is returned when no session exists for an id.
var ErrNotFound = errors.New("session not found")

// Schema for the sessions table. Call Store.Init() or apply manually.
const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	questions TEXT NOT NULL,
	question_count INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
`

// Record is one stored extraction session.
type Record struct {
	ID        string            `json:"id"`
	Filename  string            `json:"filename"`
	Questions []survey.Question `json:"questions"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Summary is the listing view of a session, without the question payload.
type Summary struct {
	ID            string    `json:"id"`
	Filename      string    `json:"filename"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Store persists sessions in a SQLite database.
type Store struct {
	db  *sql.DB
	ids idgen.Generator
}

// NewStore creates a session store backed by the given database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, ids: idgen.Prefixed("sess_", idgen.UUIDv7())}
}

// Init creates the sessions table if it doesn't exist.
func (s *Store) Init() error {
	_, err := s.db.Exec(Schema)
	return err
}

// Save upserts a session. A record without an ID gets one assigned.
// Timestamps are managed here: CreatedAt on first save, UpdatedAt always.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = s.ids()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	payload, err := json.Marshal(rec.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}

	// Writes go through the busy-retry helper: extraction and deletes can
	// land concurrently on a WAL database.
	_, err = dbopen.Exec(ctx, s.db, `
		INSERT INTO sessions (id, filename, questions, question_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			questions = excluded.questions,
			question_count = excluded.question_count,
			updated_at = excluded.updated_at`,
		rec.ID, rec.Filename, string(payload), len(rec.Questions),
		rec.CreatedAt.Unix(), rec.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("save session %s: %w", rec.ID, err)
	}
	return nil
}

// Get loads one session by id.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, filename, questions, created_at, updated_at
		FROM sessions WHERE id = ?`, id)

	var rec Record
	var payload string
	var created, updated int64
	if err := row.Scan(&rec.ID, &rec.Filename, &payload, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(payload), &rec.Questions); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	rec.CreatedAt = time.Unix(created, 0).UTC()
	rec.UpdatedAt = time.Unix(updated, 0).UTC()
	return &rec, nil
}

// List returns session summaries, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, filename, question_count, created_at, updated_at
		FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var created, updated int64
		if err := rows.Scan(&s.ID, &s.Filename, &s.QuestionCount, &created, &updated); err != nil {
			return nil, err
		}
		s.CreatedAt = time.Unix(created, 0).UTC()
		s.UpdatedAt = time.Unix(updated, 0).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes a session. Deleting a nonexistent id returns ErrNotFound.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := dbopen.Exec(ctx, s.db, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
