package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/HendryAvila/habit-tracker/internal/activity"
	"go.uber.org/zap"
)

const (
	// DocumentFile is the filename of the JSON activity document.
	DocumentFile = "activities.json"
	// CorruptSuffix is appended to a malformed document when it is moved
	// aside before the first overwrite.
	CorruptSuffix = ".corrupt"
)

// FileStore implements Store with a single JSON document that is
// rewritten in full on every append.
type FileStore struct {
	mu         sync.Mutex
	path       string
	opts       options
	logger     *zap.Logger
	activities []activity.Activity
	state      LoadState
}

// NewFileStore creates a document store under dataDir, creating the
// directory if needed.
func NewFileStore(dataDir string, opts ...Option) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, &StorageError{Kind: KindInit, Path: dataDir, Err: err}
	}
	o := applyOptions(opts)
	return &FileStore{
		path:   filepath.Join(dataDir, DocumentFile),
		opts:   o,
		logger: o.logger.With(zap.String("mod", "store"), zap.String("backend", string(BackendJSON))),
	}, nil
}

// Path returns the absolute path to activities.json.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads activities.json. A missing or blank file is an empty log.
func (s *FileStore) Load() (*LoadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) load() (*LoadResult, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.settle(nil, StateEmpty, nil), nil
		}
		return nil, &StorageError{Kind: KindRead, Path: s.path, Err: err}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return s.settle(nil, StateEmpty, nil), nil
	}

	var records []activity.Activity
	if err := json.Unmarshal(data, &records); err != nil {
		if s.opts.strict {
			return nil, &StorageError{Kind: KindCorrupt, Path: s.path, Err: err}
		}
		s.logger.Warn("activity document is malformed, starting from an empty log",
			zap.String("path", s.path), zap.Error(err))
		return s.settle(nil, StateRecovered, err), nil
	}

	return s.settle(records, StateLoaded, nil), nil
}

func (s *FileStore) settle(records []activity.Activity, state LoadState, cause error) *LoadResult {
	s.activities = records
	s.state = state
	return &LoadResult{
		Activities: slices.Clone(records),
		State:      state,
		Cause:      cause,
	}
}

// Append records a new activity and rewrites the document.
func (s *FileStore) Append(hours float64, description string) (activity.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-read first: another process may have written since the last load.
	if _, err := s.load(); err != nil {
		return activity.Activity{}, err
	}

	a := activity.New(hours, description)
	next := append(slices.Clone(s.activities), a)
	if err := s.save(next); err != nil {
		return activity.Activity{}, err
	}
	s.activities = next

	s.logger.Debug("activity appended",
		zap.String("id", a.ID), zap.Float64("hours", a.Hours), zap.Int("total", len(next)))
	return a, nil
}

// Import appends records not already present (by id) and rewrites the
// document once.
func (s *FileStore) Import(records []activity.Activity) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.load(); err != nil {
		return 0, err
	}

	seen := make(map[string]bool, len(s.activities))
	for _, a := range s.activities {
		if a.ID != "" {
			seen[a.ID] = true
		}
	}
	fresh := withIDs(records, seen)
	if len(fresh) == 0 {
		return 0, nil
	}

	next := append(slices.Clone(s.activities), fresh...)
	if err := s.save(next); err != nil {
		return 0, err
	}
	s.activities = next
	return len(fresh), nil
}

// Activities returns a copy of the sequence as of the last Load, Append
// or Import. Call Load first to pick up writes from other processes.
func (s *FileStore) Activities() []activity.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.activities)
}

// Close is a no-op for the document store.
func (s *FileStore) Close() error {
	return nil
}

// save writes records as the whole document. A document recovered as
// empty is first moved aside so the overwrite does not destroy it.
func (s *FileStore) save(records []activity.Activity) error {
	if s.state == StateRecovered {
		backup := s.path + CorruptSuffix
		if err := os.Rename(s.path, backup); err != nil && !os.IsNotExist(err) {
			return &StorageError{Kind: KindWrite, Path: backup, Err: err}
		}
		s.logger.Warn("malformed activity document moved aside", zap.String("backup", backup))
		s.state = StateLoaded
	}

	if records == nil {
		records = []activity.Activity{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &StorageError{Kind: KindWrite, Path: s.path, Err: fmt.Errorf("marshaling activities: %w", err)}
	}

	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return &StorageError{Kind: KindWrite, Path: s.path, Err: err}
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over path, so readers see either the old or the new document.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing document: %w", err)
	}
	return nil
}
