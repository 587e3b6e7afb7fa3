// Package store persists the append-only activity log.
//
// Two backends implement Store: FileStore keeps the whole sequence in a
// single pretty-printed JSON document (the default), SQLiteStore keeps it
// in an SQLite table. Both hold the loaded sequence in memory and only
// publish a new snapshot after the write that produced it succeeded.
package store

import (
	"fmt"
	"strings"

	"github.com/HendryAvila/habit-tracker/internal/activity"
	"go.uber.org/zap"
)

// Store defines the persistence interface for the activity log.
// Abstracted so the CLI and MCP tools do not care which backend is active.
type Store interface {
	// Load reads the persisted sequence into memory.
	Load() (*LoadResult, error)
	// Append re-reads the persisted sequence, records a new activity
	// stamped with the current instant and persists the result.
	Append(hours float64, description string) (activity.Activity, error)
	// Activities returns a copy of the in-memory sequence as of the last
	// Load, Append or Import.
	Activities() []activity.Activity
	// Import re-reads the persisted sequence and appends records from an
	// export, skipping ids already stored.
	Import(records []activity.Activity) (int, error)
	// Path is the location of the persisted document.
	Path() string
	Close() error
}

// LoadState tells the caller what Load found on disk.
type LoadState string

const (
	// StateEmpty means nothing was ever written.
	StateEmpty LoadState = "empty"
	// StateLoaded means a valid document was read.
	StateLoaded LoadState = "loaded"
	// StateRecovered means the document was malformed and was treated as
	// empty (or, for SQLite, unreadable rows were skipped).
	StateRecovered LoadState = "recovered"
)

// LoadResult is returned by Load.
type LoadResult struct {
	Activities []activity.Activity
	State      LoadState
	// Cause holds the parse error when State is StateRecovered.
	Cause error
}

// Backend selects a Store implementation.
type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
)

// ParseBackend validates a backend name from configuration.
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case BackendJSON, BackendSQLite:
		return b, nil
	case "":
		return BackendJSON, nil
	default:
		return "", fmt.Errorf("invalid store backend %q: must be one of: json, sqlite", name)
	}
}

// Open creates the store for backend rooted at dataDir.
func Open(backend Backend, dataDir string, opts ...Option) (Store, error) {
	switch backend {
	case BackendJSON, "":
		return NewFileStore(dataDir, opts...)
	case BackendSQLite:
		return NewSQLiteStore(dataDir, opts...)
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// --- Options ---

type options struct {
	strict bool
	logger *zap.Logger
}

// Option configures a store.
type Option func(*options)

// WithStrict makes a malformed document a load error instead of being
// recovered as empty.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithLogger sets the logger used for recovery warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// withIDs fills in missing ids and normalizes timestamps to UTC, dropping
// records whose id is already in seen. seen is updated in place.
func withIDs(records []activity.Activity, seen map[string]bool) []activity.Activity {
	out := make([]activity.Activity, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			r.ID = activity.NewID()
		}
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		r.Timestamp = r.Timestamp.UTC()
		out = append(out, r)
	}
	return out
}
