package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

const (
	OutcomeResolved = "resolved"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// LookupRecord is one fetch against the market-data provider.
type LookupRecord struct {
	ID        int64  `json:"id"`
	TS        int64  `json:"ts"`
	Symbol    string `json:"symbol"`
	Kind      string `json:"kind"`
	Variant   string `json:"variant"`
	Outcome   string `json:"outcome"`
	Attempts  int    `json:"attempts"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
}

func Open(path string) (*Store, error) {
	if path == "" {
		path = "data/lookups.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=3000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS lookups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			symbol TEXT,
			kind TEXT,
			variant TEXT,
			outcome TEXT,
			attempts INTEGER,
			latency_ms INTEGER,
			error TEXT,
			created_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_lookups_ts ON lookups(ts);`,
		`CREATE INDEX IF NOT EXISTS idx_lookups_symbol ON lookups(symbol);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) InsertLookup(r LookupRecord) error {
	if s == nil || s.db == nil {
		return nil
	}
	if r.TS == 0 {
		r.TS = time.Now().Unix()
	}
	if r.CreatedAt == "" {
		r.CreatedAt = time.Now().Format(time.RFC3339)
	}
	_, err := s.db.Exec(
		`INSERT INTO lookups (ts, symbol, kind, variant, outcome, attempts, latency_ms, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.TS, r.Symbol, r.Kind, r.Variant, r.Outcome, r.Attempts, r.LatencyMs, r.Error, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lookup: %w", err)
	}
	return nil
}

// QueryLookups lists lookups newest first. Empty symbol or kind match all.
func (s *Store) QueryLookups(symbol string, kind string, limit int, offset int) ([]LookupRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("store not initialized")
	}
	if limit <= 0 {
		limit = 200
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT id, ts, symbol, kind, variant, outcome, attempts, latency_ms, error, created_at
		FROM lookups WHERE 1 = 1`
	var args []any
	if symbol != "" {
		query += " AND symbol = ?"
		args = append(args, symbol)
	}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY ts DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query lookups: %w", err)
	}
	defer rows.Close()

	var out []LookupRecord
	for rows.Next() {
		var r LookupRecord
		if err := rows.Scan(&r.ID, &r.TS, &r.Symbol, &r.Kind, &r.Variant, &r.Outcome, &r.Attempts, &r.LatencyMs, &r.Error, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lookup: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows lookup: %w", err)
	}
	return out, nil
}
