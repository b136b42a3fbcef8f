package modifiers

import (
	"context"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

// Now replaces the value with the clock's current time.
func Now(clock Clock) pipeline.Modifier {
	if clock == nil {
		clock = SystemClock{}
	}
	return pipeline.ValueFunc("now", func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		return c.WithValue(value.NewDateTime(clock.Now()))
	})
}

func temporal(name, reason string, arg pipeline.Argument, ok func(cmp int) bool) pipeline.Modifier {
	return pipeline.ValueFunc(name, func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		if _, isTime := c.Value().(value.DateTime); !isTime {
			return c.Invalid(msgNotDateTime)
		}
		raw, c, resolved := resolve(ctx, c, arg)
		if !resolved {
			return c
		}
		rhs, err := value.Decode(raw, value.TypeDateTime)
		if err != nil || value.IsNull(rhs) {
			return c.Invalid("Argument is not datetime.")
		}
		cmp, _ := value.Compare(c.Value(), rhs)
		if !ok(cmp) {
			return c.Invalid(reason)
		}
		return c
	})
}

// IsBefore requires the value to precede the argument.
func IsBefore(arg pipeline.Argument) pipeline.Modifier {
	return temporal("isBefore", "Value is not before rhs.", arg, func(c int) bool { return c < 0 })
}

// IsAfter requires the value to follow the argument.
func IsAfter(arg pipeline.Argument) pipeline.Modifier {
	return temporal("isAfter", "Value is not after rhs.", arg, func(c int) bool { return c > 0 })
}
