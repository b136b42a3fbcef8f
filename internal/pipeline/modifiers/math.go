package modifiers

import (
	"context"
	"errors"
	"math"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

func arith(name string, op value.ArithOp, arg pipeline.Argument) pipeline.Modifier {
	return pipeline.ValueFunc(name, func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		if !value.IsNumeric(c.Value()) {
			return c.Invalid(msgNotNumber)
		}
		rhs, c, ok := resolve(ctx, c, arg)
		if !ok {
			return c
		}
		out, err := value.Arith(c.Value(), op, rhs)
		switch {
		case errors.Is(err, value.ErrDivisionByZero):
			return c.Invalid("Division by zero.")
		case value.IsTypeMismatch(err):
			return c.Invalid(msgArgNotNumber)
		case err != nil:
			return c.Invalid(err.Error())
		}
		return c.WithValue(out)
	})
}

// Add adds the argument to the value.
func Add(arg pipeline.Argument) pipeline.Modifier { return arith("add", value.OpAdd, arg) }

// Sub subtracts the argument from the value.
func Sub(arg pipeline.Argument) pipeline.Modifier { return arith("sub", value.OpSub, arg) }

// Mul multiplies the value by the argument.
func Mul(arg pipeline.Argument) pipeline.Modifier { return arith("mul", value.OpMul, arg) }

// Div divides the value by the argument. Integer division truncates.
func Div(arg pipeline.Argument) pipeline.Modifier { return arith("div", value.OpDiv, arg) }

// Mod is the remainder of the value divided by the argument.
func Mod(arg pipeline.Argument) pipeline.Modifier { return arith("mod", value.OpMod, arg) }

// Abs replaces a number with its absolute value.
func Abs() pipeline.Modifier {
	return pipeline.ValueFunc("abs", func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		switch n := c.Value().(type) {
		case value.I32:
			if n < 0 {
				return c.WithValue(-n)
			}
			return c
		case value.I64:
			if n < 0 {
				return c.WithValue(-n)
			}
			return c
		case value.F32:
			return c.WithValue(value.F32(math.Abs(float64(n))))
		case value.F64:
			return c.WithValue(value.F64(math.Abs(float64(n))))
		}
		return c.Invalid(msgNotNumber)
	})
}

// rounding applies fn to floats; integers are already whole.
func rounding(name string, fn func(float64) float64) pipeline.Modifier {
	return pipeline.ValueFunc(name, func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		switch n := c.Value().(type) {
		case value.I32, value.I64:
			return c
		case value.F32:
			return c.WithValue(value.F32(fn(float64(n))))
		case value.F64:
			return c.WithValue(value.F64(fn(float64(n))))
		}
		return c.Invalid(msgNotNumber)
	})
}

// Ceil rounds up.
func Ceil() pipeline.Modifier { return rounding("ceil", math.Ceil) }

// Floor rounds down.
func Floor() pipeline.Modifier { return rounding("floor", math.Floor) }

// Round rounds half away from zero.
func Round() pipeline.Modifier { return rounding("round", math.Round) }

// Sqrt replaces a non-negative number with its square root. Integers yield F64.
func Sqrt() pipeline.Modifier {
	return pipeline.ValueFunc("sqrt", func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		f, ok := value.AsFloat64(c.Value())
		if !ok {
			return c.Invalid(msgNotNumber)
		}
		if f < 0 {
			return c.Invalid("Value is negative.")
		}
		return c.WithValue(value.WithWidthOf(c.Value(), math.Sqrt(f)))
	})
}

// clamp keeps the value on one side of the argument. lower=true raises values
// below the bound (min); lower=false caps values above it (max).
func clamp(name string, lower bool, arg pipeline.Argument) pipeline.Modifier {
	return pipeline.ValueFunc(name, func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		if !value.IsNumeric(c.Value()) {
			return c.Invalid(msgNotNumber)
		}
		bound, c, ok := resolve(ctx, c, arg)
		if !ok {
			return c
		}
		cmp, err := value.Compare(c.Value(), bound)
		if err != nil {
			return c.Invalid(msgArgNotNumber)
		}
		if (lower && cmp >= 0) || (!lower && cmp <= 0) {
			return c
		}
		out, ok := convertLike(c.Value(), bound)
		if !ok {
			return c.Invalid(msgArgNotNumber)
		}
		return c.WithValue(out)
	})
}

// Min makes the argument the lower bound of the value.
func Min(arg pipeline.Argument) pipeline.Modifier { return clamp("min", true, arg) }

// Max makes the argument the upper bound of the value.
func Max(arg pipeline.Argument) pipeline.Modifier { return clamp("max", false, arg) }
