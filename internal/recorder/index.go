package recorder

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Index is a small sqlite catalogue of recorded sessions, so recordings can
// be found without scanning the log directory.
type Index struct {
	db *sql.DB
}

type SessionRow struct {
	ID        string
	ServerURL string
	Path      string
	StartedAt time.Time
	EndedAt   time.Time
	Frames    int64
	Bytes     int64
}

func OpenIndex(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	schema := `CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		server_url TEXT NOT NULL,
		path TEXT NOT NULL,
		started_at TEXT NOT NULL,
		ended_at TEXT,
		frames INTEGER NOT NULL DEFAULT 0,
		bytes INTEGER NOT NULL DEFAULT 0
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

func (ix *Index) Start(id, serverURL, path string, startedAt time.Time) error {
	_, err := ix.db.Exec(
		`INSERT INTO sessions (id, server_url, path, started_at) VALUES (?, ?, ?, ?)`,
		id, serverURL, path, startedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (ix *Index) Finish(id string, frames uint64, bytes int64, endedAt time.Time) error {
	_, err := ix.db.Exec(
		`UPDATE sessions SET ended_at = ?, frames = ?, bytes = ? WHERE id = ?`,
		endedAt.UTC().Format(time.RFC3339), int64(frames), bytes, id,
	)
	return err
}

// Sessions lists recordings, newest first.
func (ix *Index) Sessions() ([]SessionRow, error) {
	rows, err := ix.db.Query(
		`SELECT id, server_url, path, started_at, COALESCE(ended_at, ''), frames, bytes
		 FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		var started, ended string
		if err := rows.Scan(&r.ID, &r.ServerURL, &r.Path, &started, &ended, &r.Frames, &r.Bytes); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		if ended != "" {
			r.EndedAt, _ = time.Parse(time.RFC3339, ended)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (ix *Index) Close() error { return ix.db.Close() }
