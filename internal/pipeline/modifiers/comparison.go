package modifiers

import (
	"context"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

// compare validates the value against a resolved right-hand side.
func compare(name, reason string, arg pipeline.Argument, ok func(cmp int) bool) pipeline.Modifier {
	return pipeline.ValueFunc(name, func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		rhs, c, resolved := resolve(ctx, c, arg)
		if !resolved {
			return c
		}
		cmp, err := value.Compare(c.Value(), rhs)
		if err != nil {
			return c.Invalid("Value is not comparable with rhs.")
		}
		if !ok(cmp) {
			return c.Invalid(reason)
		}
		return c
	})
}

// Gt requires value > rhs.
func Gt(arg pipeline.Argument) pipeline.Modifier {
	return compare("gt", "Value is not greater than rhs.", arg, func(c int) bool { return c > 0 })
}

// Gte requires value >= rhs.
func Gte(arg pipeline.Argument) pipeline.Modifier {
	return compare("gte", "Value is not greater than or equal to rhs.", arg, func(c int) bool { return c >= 0 })
}

// Lt requires value < rhs.
func Lt(arg pipeline.Argument) pipeline.Modifier {
	return compare("lt", "Value is not less than rhs.", arg, func(c int) bool { return c < 0 })
}

// Lte requires value <= rhs.
func Lte(arg pipeline.Argument) pipeline.Modifier {
	return compare("lte", "Value is not less than or equal to rhs.", arg, func(c int) bool { return c <= 0 })
}

func equality(name, reason string, arg pipeline.Argument, want bool) pipeline.Modifier {
	return pipeline.ValueFunc(name, func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		rhs, c, ok := resolve(ctx, c, arg)
		if !ok {
			return c
		}
		if value.Equal(c.Value(), rhs) != want {
			return c.Invalid(reason)
		}
		return c
	})
}

// Eq requires value == rhs. Numeric widths compare by value.
func Eq(arg pipeline.Argument) pipeline.Modifier {
	return equality("eq", "Value is not equal to rhs.", arg, true)
}

// Neq requires value != rhs.
func Neq(arg pipeline.Argument) pipeline.Modifier {
	return equality("neq", "Value is equal to rhs.", arg, false)
}

// OneOf requires the value to equal an element of the array argument.
func OneOf(arg pipeline.Argument) pipeline.Modifier {
	return pipeline.ValueFunc("oneOf", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		set, c, ok := resolve(ctx, c, arg)
		if !ok {
			return c
		}
		candidates, ok := set.(value.Array)
		if !ok {
			return c.Invalid(msgArgNotArray)
		}
		for _, candidate := range candidates {
			if value.Equal(c.Value(), candidate) {
				return c
			}
		}
		return c.Invalid("Value is not one of allowed values.")
	})
}

func check(name, reason string, ok func(v value.Value) bool) pipeline.Modifier {
	return pipeline.ValueFunc(name, func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		if !ok(c.Value()) {
			return c.Invalid(reason)
		}
		return c
	})
}

// IsNull requires null.
func IsNull() pipeline.Modifier {
	return check("isNull", "Value is not null.", value.IsNull)
}

// IsNotNull rejects null.
func IsNotNull() pipeline.Modifier {
	return check("isNotNull", "Value is null.", func(v value.Value) bool { return !value.IsNull(v) })
}

// IsTrue requires Bool(true).
func IsTrue() pipeline.Modifier {
	return pipeline.ValueFunc("isTrue", func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		b, ok := value.AsBool(c.Value())
		switch {
		case !ok:
			return c.Invalid(msgNotBool)
		case !b:
			return c.Invalid("Value is not true.")
		}
		return c
	})
}

// IsFalse requires Bool(false).
func IsFalse() pipeline.Modifier {
	return pipeline.ValueFunc("isFalse", func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		b, ok := value.AsBool(c.Value())
		switch {
		case !ok:
			return c.Invalid(msgNotBool)
		case b:
			return c.Invalid("Value is not false.")
		}
		return c
	})
}
