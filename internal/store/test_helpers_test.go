package store

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, _ := createTestStoreWithLog(t)
	return s
}

// createTestStoreWithLog creates a store whose log output is captured.
func createTestStoreWithLog(t *testing.T) (*Store, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Create(path, WithLogger(logger))
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, buf
}

// insertRawProject bypasses identity resolution, for corruption scenarios.
func insertRawProject(t *testing.T, s *Store, name, url string) {
	t.Helper()
	if _, err := s.db.Exec("INSERT INTO project (name, url) VALUES (?, ?)", name, nullString(url)); err != nil {
		t.Fatalf("insert project: %v", err)
	}
}

// insertRawBuildJob bypasses identity resolution, for corruption scenarios.
func insertRawBuildJob(t *testing.T, s *Store, name, url string) {
	t.Helper()
	if _, err := s.db.Exec("INSERT INTO build_job (name, source_url) VALUES (?, ?)", name, nullString(url)); err != nil {
		t.Fatalf("insert build job: %v", err)
	}
}
