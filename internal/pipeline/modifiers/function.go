package modifiers

import (
	"context"
	"log/slog"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

// Transform replaces the value with fn's result.
func Transform(fn pipeline.Func) pipeline.Modifier {
	return pipeline.ValueFunc("transform", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		v, err := fn(ctx, c)
		if err != nil {
			return c.Invalid(err.Error())
		}
		return c.WithValue(v)
	})
}

// Validate runs fn as a validator. Bool(true) or Null passes, Bool(false)
// fails with a generic reason, and a String result fails with that reason.
func Validate(fn pipeline.Func) pipeline.Modifier {
	return pipeline.ValueFunc("validate", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		v, err := fn(ctx, c)
		if err != nil {
			return c.Invalid(err.Error())
		}
		switch r := v.(type) {
		case nil, value.Null:
			return c
		case value.Bool:
			if r {
				return c
			}
			return c.Invalid("Value is invalid.")
		case value.String:
			return c.Invalid(string(r))
		}
		return c.Invalid("Validator returned unexpected result.")
	})
}

// Callback runs fn for its side effects. An error marks the Ctx invalid.
func Callback(fn pipeline.Func) pipeline.Modifier {
	return pipeline.ValueFunc("callback", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		if _, err := fn(ctx, c); err != nil {
			return c.Invalid(err.Error())
		}
		return c
	})
}

// Print logs the Ctx at debug level and passes it through in every state.
// A nil logger uses slog.Default at call time.
func Print(label string, logger *slog.Logger) pipeline.Modifier {
	return pipeline.ModifierFunc("print", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		l := logger
		if l == nil {
			l = slog.Default()
		}
		l.DebugContext(ctx, "pipeline print",
			"label", label,
			"state", c.State().String(),
			"path", c.Path().String(),
			"ctx", c.String(),
		)
		return c
	})
}
