package modifiers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name string
		m    pipeline.Modifier
		in   value.Value
		want value.Value
	}{
		{"add i32", Add(lit(value.I64(2))), value.I32(3), value.I32(5)},
		{"sub f64", Sub(lit(value.F64(0.5))), value.F64(2), value.F64(1.5)},
		{"mul", Mul(lit(value.I64(3))), value.I64(4), value.I64(12)},
		{"div", Div(lit(value.I64(2))), value.I64(9), value.I64(4)},
		{"mod", Mod(lit(value.I64(4))), value.I64(9), value.I64(1)},
		{"abs negative", Abs(), value.I32(-4), value.I32(4)},
		{"abs float", Abs(), value.F64(-1.5), value.F64(1.5)},
		{"ceil", Ceil(), value.F64(1.2), value.F64(2)},
		{"floor", Floor(), value.F32(1.8), value.F32(1)},
		{"round", Round(), value.F64(2.5), value.F64(3)},
		{"round integer", Round(), value.I64(7), value.I64(7)},
		{"sqrt", Sqrt(), value.I64(9), value.F64(3)},
		{"min raises", Min(lit(value.I64(10))), value.I32(3), value.I32(10)},
		{"min keeps", Min(lit(value.I64(10))), value.I32(30), value.I32(30)},
		{"max caps", Max(lit(value.I64(10))), value.I64(30), value.I64(10)},
		{"max keeps float", Max(lit(value.I64(10))), value.F64(2.5), value.F64(2.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(tt.m, tt.in)
			require.True(t, out.IsValue(), out.Reason())
			assert.Equal(t, tt.want, out.Value())
		})
	}
}

func TestArithmeticInvalid(t *testing.T) {
	tests := []struct {
		name   string
		m      pipeline.Modifier
		in     value.Value
		reason string
	}{
		{"non-numeric value", Add(lit(value.I64(1))), value.String("1"), msgNotNumber},
		{"non-numeric argument", Add(lit(value.String("1"))), value.I64(1), msgArgNotNumber},
		{"division by zero", Div(lit(value.I64(0))), value.I64(1), "Division by zero."},
		{"modulo by zero", Mod(lit(value.I64(0))), value.I64(1), "Division by zero."},
		{"sqrt negative", Sqrt(), value.F64(-1), "Value is negative."},
		{"abs string", Abs(), value.String("x"), msgNotNumber},
		{"max non-number", Max(lit(value.I64(1))), value.Bool(true), msgNotNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(tt.m, tt.in)
			require.True(t, out.IsInvalid())
			assert.Equal(t, tt.reason, out.Reason())
		})
	}
}

func TestArithmeticPipelineArgument(t *testing.T) {
	// add(self("bonus"))
	rec := &stubRecord{values: map[string]value.Value{"bonus": value.I64(5)}}
	c := pipeline.New(value.I64(10)).WithRecord(rec)

	out := runCtx(Add(pipeline.Pipe(pipe(Self("bonus")))), c)
	require.True(t, out.IsValue())
	assert.Equal(t, value.I64(15), out.Value())
}

func TestArithmeticArgumentFailure(t *testing.T) {
	out := run(Add(pipeline.Pipe(pipe(Invalid()))), value.I64(1))
	require.True(t, out.IsInvalid())
	assert.Equal(t, "Value is invalid.", out.Reason())
}
