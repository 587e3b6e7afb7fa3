package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/HendryAvila/habit-tracker/internal/activity"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// DatabaseFile is the filename of the SQLite activity database.
const DatabaseFile = "activities.db"

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// SQLiteStore implements Store on an SQLite table. Rows are ordered by an
// autoincrement sequence so insertion order is preserved.
type SQLiteStore struct {
	mu         sync.Mutex
	db         *sql.DB
	path       string
	opts       options
	logger     *zap.Logger
	activities []activity.Activity
}

// NewSQLiteStore opens (creating if needed) activities.db under dataDir,
// applies the pragmas and runs migrations.
func NewSQLiteStore(dataDir string, opts ...Option) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, &StorageError{Kind: KindInit, Path: dataDir, Err: err}
	}

	path := filepath.Join(dataDir, DatabaseFile)
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, &StorageError{Kind: KindInit, Path: path, Err: fmt.Errorf("open database: %w", err)}
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, &StorageError{Kind: KindInit, Path: path, Err: fmt.Errorf("pragma %q: %w", p, err)}
		}
	}

	o := applyOptions(opts)
	s := &SQLiteStore{
		db:     db,
		path:   path,
		opts:   o,
		logger: o.logger.With(zap.String("mod", "store"), zap.String("backend", string(BackendSQLite))),
	}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, &StorageError{Kind: KindInit, Path: path, Err: fmt.Errorf("migration: %w", err)}
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS activities (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			id          TEXT    NOT NULL UNIQUE,
			timestamp   TEXT    NOT NULL,
			hours       REAL    NOT NULL,
			description TEXT    NOT NULL
		);
	`)
	return err
}

// Path returns the absolute path to activities.db.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Load reads every row in insertion order. Rows whose timestamp cannot be
// parsed are corruption: an error in strict mode, skipped otherwise.
func (s *SQLiteStore) Load() (*LoadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *SQLiteStore) load() (*LoadResult, error) {
	rows, err := s.db.Query("SELECT id, timestamp, hours, description FROM activities ORDER BY seq")
	if err != nil {
		return nil, &StorageError{Kind: KindRead, Path: s.path, Err: err}
	}
	defer func() { _ = rows.Close() }()

	var (
		records []activity.Activity
		cause   error
		skipped int
	)
	for rows.Next() {
		var (
			a  activity.Activity
			ts string
		)
		if err := rows.Scan(&a.ID, &ts, &a.Hours, &a.Description); err != nil {
			return nil, &StorageError{Kind: KindRead, Path: s.path, Err: err}
		}
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			if s.opts.strict {
				return nil, &StorageError{Kind: KindCorrupt, Path: s.path, Err: fmt.Errorf("activity %s: %w", a.ID, err)}
			}
			if cause == nil {
				cause = fmt.Errorf("activity %s: %w", a.ID, err)
			}
			skipped++
			continue
		}
		a.Timestamp = parsed.UTC()
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Kind: KindRead, Path: s.path, Err: err}
	}

	state := StateLoaded
	switch {
	case cause != nil:
		state = StateRecovered
		s.logger.Warn("skipped unreadable activity rows",
			zap.Int("skipped", skipped), zap.Error(cause))
	case len(records) == 0:
		state = StateEmpty
	}

	s.activities = records
	return &LoadResult{Activities: slices.Clone(records), State: state, Cause: cause}, nil
}

// Append inserts a new activity row.
func (s *SQLiteStore) Append(hours float64, description string) (activity.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-read first: another process may have written since the last load.
	if _, err := s.load(); err != nil {
		return activity.Activity{}, err
	}

	a := activity.New(hours, description)
	if _, err := s.db.Exec(
		"INSERT INTO activities (id, timestamp, hours, description) VALUES (?, ?, ?, ?)",
		a.ID, a.Timestamp.Format(time.RFC3339Nano), a.Hours, a.Description,
	); err != nil {
		return activity.Activity{}, &StorageError{Kind: KindWrite, Path: s.path, Err: err}
	}
	s.activities = append(s.activities, a)

	s.logger.Debug("activity appended",
		zap.String("id", a.ID), zap.Float64("hours", a.Hours), zap.Int("total", len(s.activities)))
	return a, nil
}

// Import inserts records in one transaction; ids already stored are ignored.
func (s *SQLiteStore) Import(records []activity.Activity) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.load(); err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(s.activities))
	for _, a := range s.activities {
		seen[a.ID] = true
	}
	fresh := withIDs(records, seen)
	if len(fresh) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, &StorageError{Kind: KindWrite, Path: s.path, Err: fmt.Errorf("import: begin tx: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	imported := make([]activity.Activity, 0, len(fresh))
	for _, a := range fresh {
		res, err := tx.Exec(
			"INSERT OR IGNORE INTO activities (id, timestamp, hours, description) VALUES (?, ?, ?, ?)",
			a.ID, a.Timestamp.Format(time.RFC3339Nano), a.Hours, a.Description,
		)
		if err != nil {
			return 0, &StorageError{Kind: KindWrite, Path: s.path, Err: fmt.Errorf("import activity %s: %w", a.ID, err)}
		}
		if n, _ := res.RowsAffected(); n > 0 {
			imported = append(imported, a)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, &StorageError{Kind: KindWrite, Path: s.path, Err: fmt.Errorf("import: commit: %w", err)}
	}
	s.activities = append(s.activities, imported...)
	return len(imported), nil
}

// Activities returns a copy of the sequence as of the last Load, Append
// or Import. Call Load first to pick up writes from other processes.
func (s *SQLiteStore) Activities() []activity.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.activities)
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
