package modifiers

import (
	"context"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

const msgConditionFalse = "Condition is false."

// failure returns the reason a sub-pipeline did not pass.
func failure(res pipeline.Ctx) string {
	if res.IsInvalid() {
		return res.Reason()
	}
	return msgConditionFalse
}

// And passes when every sub-pipeline passes. Evaluation stops at the first
// failure; later sub-pipelines never run. The value is unchanged.
func And(ps ...pipeline.Pipeline) pipeline.Modifier {
	return pipeline.ValueFunc("and", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		for _, p := range ps {
			res := p.Process(ctx, c)
			if !res.Passes() {
				return c.Invalid(failure(res))
			}
		}
		return c
	})
}

// Or passes as soon as one sub-pipeline passes. When none does the Ctx is
// invalid with the last failure's reason.
func Or(ps ...pipeline.Pipeline) pipeline.Modifier {
	return pipeline.ValueFunc("or", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		reason := msgConditionFalse
		for _, p := range ps {
			res := p.Process(ctx, c)
			if res.Passes() {
				return c
			}
			reason = failure(res)
		}
		return c.Invalid(reason)
	})
}

// Not passes when p fails.
func Not(p pipeline.Pipeline) pipeline.Modifier {
	return pipeline.ValueFunc("not", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		if p.Process(ctx, c).Passes() {
			return c.Invalid("Condition is not false.")
		}
		return c
	})
}

// If evaluates p as a condition and emits StateTrue or StateFalse, keeping
// the current value.
func If(p pipeline.Pipeline) pipeline.Modifier {
	return pipeline.ValueFunc("if", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		return c.Condition(p.Process(ctx, c).Passes())
	})
}

// Then runs p on a true condition. A false condition is left for Else.
func Then(p pipeline.Pipeline) pipeline.Modifier {
	return pipeline.ModifierFunc("then", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		if c.State() != pipeline.StateTrue {
			return c
		}
		return p.Process(ctx, c.WithValue(c.Value()))
	})
}

// Else runs p on a false condition.
func Else(p pipeline.Pipeline) pipeline.Modifier {
	return pipeline.ModifierFunc("else", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		if c.State() != pipeline.StateFalse {
			return c
		}
		return p.Process(ctx, c.WithValue(c.Value()))
	})
}

// Do runs p for its side effects and restores the incoming Ctx whatever p
// produced.
func Do(p pipeline.Pipeline) pipeline.Modifier {
	return pipeline.ValueFunc("do", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		_ = p.Process(ctx, c)
		return c
	})
}

// Invalid marks the Ctx invalid unconditionally.
func Invalid() pipeline.Modifier {
	return pipeline.ModifierFunc("invalid", func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		return c.Invalid("Value is invalid.")
	})
}

// Valid turns a condition signal back into a plain value.
func Valid() pipeline.Modifier {
	return pipeline.ModifierFunc("valid", func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		if !c.IsCondition() {
			return c
		}
		return c.WithValue(c.Value())
	})
}

// Fallback replaces an invalid Ctx with the resolved argument. The argument
// is resolved against the value that was current when the Ctx turned invalid.
func Fallback(arg pipeline.Argument) pipeline.Modifier {
	return pipeline.ModifierFunc("fallback", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		if !c.IsInvalid() {
			return c
		}
		recovered := c.Recover(c.Value())
		v, err := arg.Resolve(ctx, recovered)
		if err != nil {
			return c
		}
		return recovered.WithValue(v)
	})
}

// Default replaces null with the resolved argument.
func Default(arg pipeline.Argument) pipeline.Modifier {
	return pipeline.ValueFunc("default", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		if !value.IsNull(c.Value()) {
			return c
		}
		v, c, ok := resolve(ctx, c, arg)
		if !ok {
			return c
		}
		return c.WithValue(v)
	})
}

// When runs p only if the Ctx's action is one of actions.
func When(actions []pipeline.Action, p pipeline.Pipeline) pipeline.Modifier {
	return pipeline.ModifierFunc("when", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		if c.IsInvalid() || !c.Action().Passes(actions) {
			return c
		}
		return p.Process(ctx, c)
	})
}
