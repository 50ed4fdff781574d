package analysis

import (
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the optional write-through persistence for analysis
// results. Expiry is the cache's job; this store just records rows.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if necessary creates) the cache table.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS analysis_cache (
			fingerprint TEXT PRIMARY KEY,
			result BLOB NOT NULL,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Load reads a persisted result. Rows that fail to decode report
// ErrCacheCorrupt so the caller recomputes instead of failing.
func (s *SQLiteStore) Load(fingerprint string) (*AnalysisResult, time.Time, error) {
	var blob []byte
	var createdUnix int64
	err := s.db.QueryRow(
		"SELECT result, created_at FROM analysis_cache WHERE fingerprint = ?",
		fingerprint,
	).Scan(&blob, &createdUnix)

	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	var res AnalysisResult
	if err := json.Unmarshal(blob, &res); err != nil {
		return nil, time.Time{}, fmt.Errorf("%w: %v", ErrCacheCorrupt, err)
	}
	return &res, time.Unix(createdUnix, 0), nil
}

// Save writes a result, replacing any previous row for the fingerprint.
func (s *SQLiteStore) Save(fingerprint string, res *AnalysisResult) error {
	blob, err := json.Marshal(res)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO analysis_cache (fingerprint, result, created_at) VALUES (?, ?, ?)",
		fingerprint, blob, res.CreatedAt.Unix(),
	)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
