package modifiers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/value"
)

type fixedClock time.Time

func (f fixedClock) Now() time.Time {
	return time.Time(f)
}

func TestNowUsesClock(t *testing.T) {
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	out := run(Now(fixedClock(at)), value.Null{})

	require.True(t, out.IsValue())
	assert.Equal(t, value.NewDateTime(at), out.Value())
}

func TestIsBeforeAfter(t *testing.T) {
	at := value.NewDateTime(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, run(IsBefore(lit(value.String("2024-07-01T00:00:00Z"))), at).IsValue())
	assert.True(t, run(IsBefore(lit(value.String("2024-05-01T00:00:00Z"))), at).IsInvalid())
	assert.True(t, run(IsAfter(lit(value.String("2024-05-01T00:00:00Z"))), at).IsValue())

	out := run(IsAfter(lit(value.String("soon"))), at)
	require.True(t, out.IsInvalid())
	assert.Equal(t, "Argument is not datetime.", out.Reason())

	out = run(IsAfter(lit(value.String("2024-05-01T00:00:00Z"))), value.String("2024-06-01"))
	assert.Equal(t, msgNotDateTime, out.Reason())
}
