package object

import (
	"context"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

// Connection is the storage an Object persists through. Records are
// addressed by model name and the string form of their primary key.
type Connection interface {
	pipeline.Lookup

	// Find returns the persisted fields of a record, or an error wrapping
	// ErrNotFound.
	Find(ctx context.Context, model, id string) (value.Object, error)

	// Save inserts or replaces a record.
	Save(ctx context.Context, model, id string, data value.Object) error

	// Delete removes a record. Deleting a missing record wraps ErrNotFound.
	Delete(ctx context.Context, model, id string) error

	// Begin starts a transaction scoped connection.
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a Connection inside a transaction.
type Tx interface {
	Connection
	Commit() error
	Rollback() error
}
