package session

import (
	"os"
	"path/filepath"
	"sync"

	bolt "go.etcd.io/bbolt"

	"github.com/counsel0/counsel/internal/log"
)

const (
	stateFileName = "state.db"

	// pointerKey is namespaced inside its own bucket to avoid collision
	// with unrelated client state sharing the database.
	pointerKey = "current_session"
)

var bucketPointer = []byte("counsel")

// PointerStore remembers the current session id across client restarts.
//
// The store is deliberately forgiving: when durable storage is
// unavailable, operations silently no-op and tracking degrades to
// memory-only for the run. Current-session persistence is a convenience,
// never a correctness requirement.
type PointerStore interface {
	// Get returns the stored session id, or ("", false) when none is set.
	Get() (string, bool)
	// Set stores id as the current session.
	Set(id string)
	// Clear removes the stored session id. Idempotent.
	Clear()
}

// Store is the durable PointerStore, backed by a bbolt database in the
// state directory with an in-memory mirror used when storage fails.
type Store struct {
	mu      sync.Mutex
	db      *bolt.DB // nil when degraded to memory-only
	current string
	set     bool
	logger  log.Logger
}

// Open opens the pointer store under dir, creating the directory and
// database as needed. Storage failure is non-fatal: the returned store
// degrades to memory-only and logs once at warn level.
func Open(dir string, logger log.Logger) *Store {
	s := &Store{logger: logger}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		logger.Warn("state directory unavailable, session pointer will not persist",
			"dir", dir, "error", err)
		return s
	}

	db, err := bolt.Open(filepath.Join(dir, stateFileName), 0o600, nil)
	if err != nil {
		logger.Warn("state database unavailable, session pointer will not persist",
			"dir", dir, "error", err)
		return s
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(bucketPointer)
		return createErr
	}); err != nil {
		logger.Warn("state bucket unavailable, session pointer will not persist",
			"error", err)
		_ = db.Close()
		return s
	}

	s.db = db

	// Warm the memory mirror from disk so Get never needs a transaction.
	if err := db.View(func(tx *bolt.Tx) error {
		if data := tx.Bucket(bucketPointer).Get([]byte(pointerKey)); data != nil {
			s.current = string(data)
			s.set = true
		}
		return nil
	}); err != nil {
		logger.Warn("reading session pointer", "error", err)
	}

	return s
}

// NewMemoryStore creates a memory-only PointerStore for tests and for
// callers that explicitly do not want persistence.
func NewMemoryStore() *Store {
	return &Store{logger: log.NewNop()}
}

// Get implements PointerStore.
func (s *Store) Get() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.set
}

// Set implements PointerStore.
func (s *Store) Set(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = id
	s.set = true

	if s.db == nil {
		return
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPointer).Put([]byte(pointerKey), []byte(id))
	}); err != nil {
		s.logger.Warn("persisting session pointer", "error", err)
	}
}

// Clear implements PointerStore.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = ""
	s.set = false

	if s.db == nil {
		return
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPointer).Delete([]byte(pointerKey))
	}); err != nil {
		s.logger.Warn("clearing session pointer", "error", err)
	}
}

// Close releases the underlying database. Safe to call on a degraded store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
