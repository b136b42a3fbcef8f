package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/strata/internal/value"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createMemoryStore creates a private in-memory store.
func createMemoryStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// user builds a stored user record.
func user(id, email string, age int64) value.Object {
	return value.NewObject(
		value.O("id", value.String(id)),
		value.O("email", value.String(email)),
		value.O("age", value.I64(age)),
		value.O("tags", value.Array{value.String("a"), value.String("b")}),
		value.O("active", value.Bool(true)),
		value.O("note", value.Null{}),
	)
}
