package pipeline

import (
	"context"

	"github.com/roach88/strata/internal/value"
)

// Record is the read-only view of a record that modifiers consult.
// During Set and Save, Get observes the staged values of the running call.
type Record interface {
	// Model is the name of the record's model.
	Model() string

	// ID is the primary key value, or Null when not yet assigned.
	ID() value.Value

	// Get returns the current (staged) value of a field.
	Get(key string) (value.Value, bool)

	// Previous returns the value a field held before its first modification
	// since the last save.
	Previous(key string) (value.Value, bool)

	IsNew() bool

	// IsModified reports whether key has been written since the last save.
	IsModified(key string) bool

	// Lookup is the storage attached to the record, or nil when detached.
	Lookup() Lookup
}

// Lookup is the part of a connection that modifiers may query.
type Lookup interface {
	// Exists reports whether a persisted record of model other than
	// excludeID holds v in field.
	Exists(ctx context.Context, model, field string, v value.Value, excludeID string) (bool, error)
}

// SameRecord reports whether a and b identify the same persisted record.
func SameRecord(a, b Record) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Model() != b.Model() {
		return false
	}
	if value.IsNull(a.ID()) || value.IsNull(b.ID()) {
		return false
	}
	return value.Equal(a.ID(), b.ID())
}

// IDString renders a primary key value as the string form used by storage.
// Null renders as "".
func IDString(v value.Value) string {
	if value.IsNull(v) {
		return ""
	}
	if s, ok := value.AsString(v); ok {
		return s
	}
	data, err := value.MarshalCanonical(v)
	if err != nil {
		return ""
	}
	return string(data)
}
