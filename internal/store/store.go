// Package store handles SQLite persistence of session history.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/tcounter/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			reason TEXT NOT NULL,
			persistence TEXT NOT NULL,
			messages INTEGER NOT NULL,
			tokens INTEGER NOT NULL,
			distinct_words INTEGER NOT NULL,
			save_error TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS session_top_words (
			session_id INTEGER NOT NULL,
			rank INTEGER NOT NULL,
			word TEXT NOT NULL,
			count INTEGER NOT NULL,
			PRIMARY KEY (session_id, rank)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finished session and its top words.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (started_at, ended_at, reason, persistence, messages, tokens, distinct_words, save_error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.StartedAt.Format(time.RFC3339Nano),
		rec.EndedAt.Format(time.RFC3339Nano),
		rec.Reason,
		rec.Persistence,
		rec.Messages,
		rec.Tokens,
		rec.DistinctWords,
		rec.SaveError,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(rec.TopWords) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO session_top_words (session_id, rank, word, count) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, wc := range rec.TopWords {
			if _, err := stmt.ExecContext(ctx, id, i+1, wc.Word, wc.Count); err != nil {
				return 0, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListSessions returns the most recent sessions, oldest first. last <= 0
// returns all of them.
func (s *Store) ListSessions(ctx context.Context, last int) ([]model.SessionRecord, error) {
	query := `SELECT id, started_at, ended_at, reason, persistence, messages, tokens, distinct_words, save_error
		FROM (
			SELECT * FROM sessions ORDER BY ended_at DESC, id DESC LIMIT ?
		) ORDER BY ended_at ASC, id ASC`
	limit := last
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionRecord
	for rows.Next() {
		var rec model.SessionRecord
		var startedAt, endedAt string
		if err := rows.Scan(&rec.ID, &startedAt, &endedAt, &rec.Reason, &rec.Persistence,
			&rec.Messages, &rec.Tokens, &rec.DistinctWords, &rec.SaveError); err != nil {
			return nil, err
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if rec.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range sessions {
		top, err := s.ListTopWords(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].TopWords = top
	}
	return sessions, nil
}

// ListTopWords returns the stored top words of a session in rank order.
func (s *Store) ListTopWords(ctx context.Context, sessionID int64) ([]model.WordCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word, count FROM session_top_words WHERE session_id = ? ORDER BY rank ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.WordCount
	for rows.Next() {
		var wc model.WordCount
		if err := rows.Scan(&wc.Word, &wc.Count); err != nil {
			return nil, err
		}
		result = append(result, wc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
