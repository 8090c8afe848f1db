package importer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Source is one row of lexicon_sources: where an adapter downloads from and
// what happened the last time it was checked or imported.
type Source struct {
	AdapterID   string
	DictID      string
	Language    string
	Kind        string
	Description string
	SourceURL   string
	License     string
	LastCheck   *int64
	LastStatus  *int
	LastError   *string
	LastImport  *int64
	Entries     *int
	UpdatedAt   int64
}

// SourceDB stores lexicon source URLs and their health in SQLite, so URL
// overrides survive restarts and the serve command can report stale mirrors.
type SourceDB struct {
	db *sql.DB
}

const sourcesDDL = `CREATE TABLE IF NOT EXISTS lexicon_sources (
	adapter_id   TEXT PRIMARY KEY,
	dict_id      TEXT NOT NULL,
	language     TEXT NOT NULL,
	kind         TEXT NOT NULL,
	description  TEXT NOT NULL,
	source_url   TEXT NOT NULL,
	license      TEXT NOT NULL DEFAULT '',
	last_check   INTEGER,
	last_status  INTEGER,
	last_error   TEXT,
	last_import  INTEGER,
	entries      INTEGER,
	updated_at   INTEGER NOT NULL
)`

// OpenSourceDB opens (or creates) the database at path.
func OpenSourceDB(path string) (*SourceDB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open source db: %w", err)
	}
	if _, err := db.Exec(sourcesDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create lexicon_sources table: %w", err)
	}
	return &SourceDB{db: db}, nil
}

func (s *SourceDB) Close() error {
	return s.db.Close()
}

// Seed inserts a row per adapter. Existing rows are left untouched so manual
// URL overrides survive.
func (s *SourceDB) Seed(ctx context.Context, adapters []Adapter) error {
	const q = `INSERT OR IGNORE INTO lexicon_sources
		(adapter_id, dict_id, language, kind, description, source_url, license, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, a := range adapters {
		if _, err := tx.ExecContext(ctx, q, a.ID(), a.DictID(), a.Language(), a.Kind(),
			a.Description(), a.DefaultURL(), a.License(), now); err != nil {
			return fmt.Errorf("seed %s: %w", a.ID(), err)
		}
	}
	return tx.Commit()
}

// GetURL returns the current source URL of an adapter.
func (s *SourceDB) GetURL(ctx context.Context, adapterID string) (string, error) {
	var url string
	err := s.db.QueryRowContext(ctx, `SELECT source_url FROM lexicon_sources WHERE adapter_id = ?`, adapterID).Scan(&url)
	if err != nil {
		return "", fmt.Errorf("get url for %s: %w", adapterID, err)
	}
	return url, nil
}

// SetURL overrides the source URL of an adapter.
func (s *SourceDB) SetURL(ctx context.Context, adapterID, url string) error {
	return s.update(ctx, adapterID, "set url",
		`UPDATE lexicon_sources SET source_url = ?, updated_at = ? WHERE adapter_id = ?`,
		url, time.Now().Unix(), adapterID)
}

// UpdateCheck records the result of an availability check. An empty checkErr
// clears the previous error.
func (s *SourceDB) UpdateCheck(ctx context.Context, adapterID string, status int, checkErr string) error {
	return s.update(ctx, adapterID, "update check",
		`UPDATE lexicon_sources SET last_check = ?, last_status = ?, last_error = ? WHERE adapter_id = ?`,
		time.Now().Unix(), status, nullable(checkErr), adapterID)
}

// RecordImport records a successful import and its entry count.
func (s *SourceDB) RecordImport(ctx context.Context, adapterID string, entries int) error {
	return s.update(ctx, adapterID, "record import",
		`UPDATE lexicon_sources SET last_import = ?, entries = ? WHERE adapter_id = ?`,
		time.Now().Unix(), entries, adapterID)
}

func (s *SourceDB) update(ctx context.Context, adapterID, op, q string, args ...any) error {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("%s for %s: %w", op, adapterID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: adapter %s not found", op, adapterID)
	}
	return nil
}

// ListSources returns all rows ordered by adapter_id.
func (s *SourceDB) ListSources(ctx context.Context) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT adapter_id, dict_id, language, kind, description,
		source_url, license, last_check, last_status, last_error, last_import, entries, updated_at
		FROM lexicon_sources ORDER BY adapter_id`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.AdapterID, &src.DictID, &src.Language, &src.Kind, &src.Description,
			&src.SourceURL, &src.License, &src.LastCheck, &src.LastStatus, &src.LastError,
			&src.LastImport, &src.Entries, &src.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
