package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/HendryAvila/habit-tracker/internal/activity"
)

// --- Helpers ---

func newTestFileStore(t *testing.T, opts ...Option) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFileStore(dir, opts...)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	return s, dir
}

func sameActivity(a, b activity.Activity) bool {
	return a.ID == b.ID &&
		a.Timestamp.Equal(b.Timestamp) &&
		a.Hours == b.Hours &&
		a.Description == b.Description
}

func assertSameSequence(t *testing.T, got, want []activity.Activity) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !sameActivity(got[i], want[i]) {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

// --- NewFileStore ---

func TestNewFileStore_CreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "habit-tracker")

	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("data dir not created: %v", err)
	}
	if s.Path() != filepath.Join(dir, DocumentFile) {
		t.Errorf("Path = %s, want %s", s.Path(), filepath.Join(dir, DocumentFile))
	}
}

func TestNewFileStore_InitErrorWhenDirIsAFile(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewFileStore(filepath.Join(blocker, "data"))
	if !errors.Is(err, ErrInit) {
		t.Fatalf("err = %v, want ErrInit", err)
	}
}

// --- Load ---

func TestLoad_MissingDocumentIsEmpty(t *testing.T) {
	s, _ := newTestFileStore(t)

	res, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if res.State != StateEmpty {
		t.Errorf("State = %s, want %s", res.State, StateEmpty)
	}
	if len(res.Activities) != 0 {
		t.Errorf("Activities = %d, want 0", len(res.Activities))
	}
}

func TestLoad_BlankDocumentIsEmpty(t *testing.T) {
	s, _ := newTestFileStore(t)
	if err := os.WriteFile(s.Path(), []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if res.State != StateEmpty {
		t.Errorf("State = %s, want %s", res.State, StateEmpty)
	}
}

func TestLoad_MalformedDocumentRecovered(t *testing.T) {
	s, _ := newTestFileStore(t)
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if res.State != StateRecovered {
		t.Errorf("State = %s, want %s", res.State, StateRecovered)
	}
	if res.Cause == nil {
		t.Error("Cause should carry the parse error")
	}
	if len(res.Activities) != 0 {
		t.Errorf("Activities = %d, want 0", len(res.Activities))
	}
}

func TestLoad_MalformedDocumentStrict(t *testing.T) {
	s, _ := newTestFileStore(t, WithStrict(true))
	if err := os.WriteFile(s.Path(), []byte(`{"hours": 1}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := s.Load()
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
	var se *StorageError
	if !errors.As(err, &se) || se.Path != s.Path() {
		t.Errorf("StorageError path = %v, want %s", se, s.Path())
	}
}

func TestLoad_ReadsLegacyDocument(t *testing.T) {
	s, _ := newTestFileStore(t)
	legacy := `[
  {
    "timestamp": "2024-06-01T08:15:30.123456Z",
    "hours": 2.5,
    "description": "read"
  }
]`
	if err := os.WriteFile(s.Path(), []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if res.State != StateLoaded {
		t.Errorf("State = %s, want %s", res.State, StateLoaded)
	}
	if len(res.Activities) != 1 || res.Activities[0].Description != "read" {
		t.Fatalf("Activities = %+v, want one 'read' record", res.Activities)
	}
}

// --- Append ---

func TestAppend_LoadReturnsRecordsInOrder(t *testing.T) {
	s, dir := newTestFileStore(t)

	var appended []activity.Activity
	for i, desc := range []string{"read", "walk", "code", "stretch"} {
		a, err := s.Append(float64(i)+0.5, desc)
		if err != nil {
			t.Fatalf("Append(%s) failed: %v", desc, err)
		}
		appended = append(appended, a)
	}

	reopened, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	res, err := reopened.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	assertSameSequence(t, res.Activities, appended)
	for i := 1; i < len(res.Activities); i++ {
		if res.Activities[i].Timestamp.Before(res.Activities[i-1].Timestamp) {
			t.Errorf("timestamp %d is before timestamp %d", i, i-1)
		}
	}
}

func TestAppend_WithoutExplicitLoadKeepsExistingRecords(t *testing.T) {
	s, dir := newTestFileStore(t)
	if _, err := s.Append(1, "first"); err != nil {
		t.Fatal(err)
	}

	// A fresh store that never called Load must not clobber the document.
	other, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.Append(2, "second"); err != nil {
		t.Fatal(err)
	}

	got := other.Activities()
	if len(got) != 2 {
		t.Fatalf("Activities = %d, want 2", len(got))
	}
	if got[0].Description != "first" || got[1].Description != "second" {
		t.Errorf("order = [%s %s], want [first second]", got[0].Description, got[1].Description)
	}
}

func TestAppend_WritesPrettyPrintedDocument(t *testing.T) {
	s, _ := newTestFileStore(t)
	if _, err := s.Append(2.5, "read"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  {\n") {
		t.Errorf("document is not indented:\n%s", data)
	}

	var parsed []map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("document is not valid JSON: %v", err)
	}
	for _, key := range []string{"timestamp", "hours", "description"} {
		if _, ok := parsed[0][key]; !ok {
			t.Errorf("document missing field %q", key)
		}
	}
	ts, _ := parsed[0]["timestamp"].(string)
	if _, err := time.Parse(time.RFC3339, ts); err != nil || !strings.HasSuffix(ts, "Z") {
		t.Errorf("timestamp %q is not an RFC3339 UTC instant", ts)
	}
}

func TestAppend_LeavesNoTempFiles(t *testing.T) {
	s, dir := newTestFileStore(t)
	for i := 0; i < 3; i++ {
		if _, err := s.Append(1, "x"); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != DocumentFile {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dir entries = %v, want only %s", names, DocumentFile)
	}
}

func TestAppend_MovesMalformedDocumentAside(t *testing.T) {
	s, _ := newTestFileStore(t)
	if err := os.WriteFile(s.Path(), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Load(); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Append(1, "fresh start"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	backup, err := os.ReadFile(s.Path() + CorruptSuffix)
	if err != nil {
		t.Fatalf("corrupt backup missing: %v", err)
	}
	if string(backup) != "garbage" {
		t.Errorf("backup = %q, want garbage", backup)
	}

	res, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if res.State != StateLoaded || len(res.Activities) != 1 {
		t.Errorf("after append: state=%s len=%d, want loaded/1", res.State, len(res.Activities))
	}
}

func TestAppend_StrictRefusesMalformedDocument(t *testing.T) {
	s, _ := newTestFileStore(t, WithStrict(true))
	if err := os.WriteFile(s.Path(), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Append(1, "x"); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
	data, _ := os.ReadFile(s.Path())
	if string(data) != "garbage" {
		t.Error("strict append must not overwrite the malformed document")
	}
}

func TestAppend_WriteFailureKeepsMemoryUnchanged(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	s, dir := newTestFileStore(t)
	if _, err := s.Append(1, "kept"); err != nil {
		t.Fatal(err)
	}

	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	_, err := s.Append(2, "lost")
	if !errors.Is(err, ErrWrite) {
		t.Fatalf("err = %v, want ErrWrite", err)
	}
	if got := s.Activities(); len(got) != 1 {
		t.Errorf("Activities = %d, want 1 after failed write", len(got))
	}
}

// --- Round trip ---

func TestRoundTrip_FieldForField(t *testing.T) {
	records := []activity.Activity{
		{ID: "a", Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC), Hours: 0.25, Description: "tea ceremony"},
		{ID: "b", Timestamp: time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), Hours: 0, Description: ""},
		{ID: "c", Timestamp: time.Date(2026, 1, 4, 23, 59, 59, 999999999, time.UTC), Hours: -1, Description: "unicode ✓"},
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	var parsed []activity.Activity
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatal(err)
	}
	assertSameSequence(t, parsed, records)
}

// --- Import ---

func TestFileStoreImport_SkipsKnownIDs(t *testing.T) {
	s, _ := newTestFileStore(t)
	existing, err := s.Append(1, "existing")
	if err != nil {
		t.Fatal(err)
	}

	n, err := s.Import([]activity.Activity{
		existing,
		{Timestamp: time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC), Hours: 3, Description: "no id"},
		{ID: "imported-1", Timestamp: time.Date(2025, 12, 2, 10, 0, 0, 0, time.UTC), Hours: 1, Description: "with id"},
		{ID: "imported-1", Timestamp: time.Date(2025, 12, 2, 10, 0, 0, 0, time.UTC), Hours: 1, Description: "duplicate"},
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if n != 2 {
		t.Errorf("imported = %d, want 2", n)
	}

	got := s.Activities()
	if len(got) != 3 {
		t.Fatalf("Activities = %d, want 3", len(got))
	}
	if got[1].ID == "" {
		t.Error("imported record without id should be assigned one")
	}
	if got[2].Description != "with id" {
		t.Errorf("third record = %q, want 'with id'", got[2].Description)
	}
}

func TestFileStoreImport_NothingNewDoesNotWrite(t *testing.T) {
	s, _ := newTestFileStore(t)

	n, err := s.Import(nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("imported = %d, want 0", n)
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Error("document should not be created by an empty import")
	}
}

// --- Concurrent writers on one data dir ---

func TestFileStore_AppendKeepsEntriesFromAnotherStore(t *testing.T) {
	server, dir := newTestFileStore(t)
	if _, err := server.Load(); err != nil {
		t.Fatal(err)
	}
	if _, err := server.Append(1, "via mcp"); err != nil {
		t.Fatal(err)
	}

	cli, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cli.Append(2, "via cli"); err != nil {
		t.Fatal(err)
	}

	if _, err := server.Append(3, "via mcp again"); err != nil {
		t.Fatal(err)
	}

	fresh, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	res, err := fresh.Load()
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, a := range res.Activities {
		got = append(got, a.Description)
	}
	if strings.Join(got, ",") != "via mcp,via cli,via mcp again" {
		t.Errorf("on-disk records = %v, want all three in order", got)
	}
	if n := len(server.Activities()); n != 3 {
		t.Errorf("server snapshot has %d records, want 3", n)
	}
}

func TestFileStore_ImportKeepsEntriesFromAnotherStore(t *testing.T) {
	server, dir := newTestFileStore(t)
	if _, err := server.Load(); err != nil {
		t.Fatal(err)
	}

	cli, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	logged, err := cli.Append(2, "via cli")
	if err != nil {
		t.Fatal(err)
	}

	n, err := server.Import([]activity.Activity{logged, {Timestamp: time.Now().UTC(), Hours: 1, Description: "imported"}})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("imported = %d, want 1 (the cli entry is already stored)", n)
	}

	res, err := cli.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Activities) != 2 || res.Activities[0].Description != "via cli" {
		t.Errorf("on disk = %+v, want via cli then imported", res.Activities)
	}
}

func TestFileStore_LoadPicksUpEntriesFromAnotherStore(t *testing.T) {
	server, dir := newTestFileStore(t)
	if _, err := server.Load(); err != nil {
		t.Fatal(err)
	}

	cli, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cli.Append(2, "via cli"); err != nil {
		t.Fatal(err)
	}

	res, err := server.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Activities) != 1 || len(server.Activities()) != 1 {
		t.Errorf("server sees %d records after reload, want 1", len(res.Activities))
	}
}
