package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/counsel0/counsel/internal/log"
)

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := Open(dir, log.NewNop())
	if _, ok := s.Get(); ok {
		t.Fatal("Get() on fresh store reported a stored id")
	}

	s.Set("session-1")
	if id, ok := s.Get(); !ok || id != "session-1" {
		t.Errorf("Get() = (%q, %v), want (%q, true)", id, ok, "session-1")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopen and verify the pointer survived the restart.
	s = Open(dir, log.NewNop())
	defer s.Close()
	if id, ok := s.Get(); !ok || id != "session-1" {
		t.Errorf("Get() after reopen = (%q, %v), want (%q, true)", id, ok, "session-1")
	}
}

func TestStoreClearPersists(t *testing.T) {
	dir := t.TempDir()

	s := Open(dir, log.NewNop())
	s.Set("session-1")
	s.Clear()
	if id, ok := s.Get(); ok {
		t.Errorf("Get() after Clear = (%q, %v), want empty", id, ok)
	}
	s.Close()

	s = Open(dir, log.NewNop())
	defer s.Close()
	if id, ok := s.Get(); ok {
		t.Errorf("Get() after reopen = (%q, %v), want empty", id, ok)
	}
}

func TestStoreClearIdempotent(t *testing.T) {
	s := NewMemoryStore()
	s.Clear()
	s.Clear()
	if _, ok := s.Get(); ok {
		t.Error("Get() after double Clear reported a stored id")
	}
}

func TestStoreDegradesWhenDirUnavailable(t *testing.T) {
	// A regular file in place of the state directory makes MkdirAll fail.
	dir := t.TempDir()
	blocked := filepath.Join(dir, "state")
	if err := os.WriteFile(blocked, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := Open(blocked, log.NewNop())
	defer s.Close()

	// Degraded store still tracks the pointer in memory for this run.
	s.Set("session-1")
	if id, ok := s.Get(); !ok || id != "session-1" {
		t.Errorf("Get() on degraded store = (%q, %v), want (%q, true)", id, ok, "session-1")
	}
	s.Clear()
	if _, ok := s.Get(); ok {
		t.Error("Get() after Clear on degraded store reported a stored id")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	s.Set("a")
	s.Set("b")
	if id, ok := s.Get(); !ok || id != "b" {
		t.Errorf("Get() = (%q, %v), want (%q, true)", id, ok, "b")
	}
}
