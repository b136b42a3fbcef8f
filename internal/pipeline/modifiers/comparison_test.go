package modifiers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

func TestGte(t *testing.T) {
	m := Gte(lit(value.I64(5)))

	out := run(m, value.I64(4))
	require.True(t, out.IsInvalid())
	assert.Equal(t, "Value is not greater than or equal to rhs.", out.Reason())

	out = run(m, value.I64(5))
	require.True(t, out.IsValue())
	assert.Equal(t, value.I64(5), out.Value())
}

func TestComparisons(t *testing.T) {
	tests := []struct {
		name  string
		m     pipeline.Modifier
		in    value.Value
		valid bool
	}{
		{"gt", Gt(lit(value.I64(1))), value.F64(1.5), true},
		{"gt equal", Gt(lit(value.I64(1))), value.I32(1), false},
		{"lt", Lt(lit(value.I64(1))), value.I64(0), true},
		{"lte", Lte(lit(value.I64(1))), value.I64(1), true},
		{"lte over", Lte(lit(value.I64(1))), value.I64(2), false},
		{"strings", Gt(lit(value.String("a"))), value.String("b"), true},
		{"cross family", Gt(lit(value.I64(1))), value.String("2"), false},
		{"eq widths", Eq(lit(value.I64(3))), value.I32(3), true},
		{"eq miss", Eq(lit(value.String("x"))), value.String("y"), false},
		{"neq", Neq(lit(value.String("x"))), value.String("y"), true},
		{"one of", OneOf(lit(value.Array{value.String("a"), value.String("b")})), value.String("b"), true},
		{"one of miss", OneOf(lit(value.Array{value.String("a")})), value.String("c"), false},
		{"one of non-array", OneOf(lit(value.String("a"))), value.String("a"), false},
		{"is null", IsNull(), value.Null{}, true},
		{"is null miss", IsNull(), value.String(""), false},
		{"is not null", IsNotNull(), value.I64(0), true},
		{"is true", IsTrue(), value.Bool(true), true},
		{"is true miss", IsTrue(), value.Bool(false), false},
		{"is false", IsFalse(), value.Bool(false), true},
		{"is false non-bool", IsFalse(), value.I64(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(tt.m, tt.in)
			assert.Equal(t, tt.valid, out.IsValue(), out.Reason())
			if tt.valid {
				assert.Equal(t, tt.in, out.Value())
			}
		})
	}
}
