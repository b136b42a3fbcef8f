package modifiers

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time to the now modifier.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now in UTC.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// IDGenerator supplies identifiers to the uuid modifiers.
type IDGenerator interface {
	Generate() string
}

// UUIDv4Generator generates random RFC 4122 identifiers.
//
// Thread-safety: UUIDv4Generator is stateless and safe for concurrent use.
type UUIDv4Generator struct{}

// Generate returns a hyphenated UUIDv4.
func (UUIDv4Generator) Generate() string {
	return uuid.NewString()
}

// UUIDv7Generator generates time-sortable UUIDv7 identifiers.
//
// UUIDv7 embeds a timestamp in the most significant bits, so record ids
// sort by creation time.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a hyphenated UUIDv7.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
