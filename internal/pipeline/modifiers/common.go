package modifiers

import (
	"context"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

const (
	msgNotString        = "Value is not string."
	msgNotNumber        = "Value is not number."
	msgNotArray         = "Value is not array."
	msgNotBool          = "Value is not bool."
	msgNotDateTime      = "Value is not datetime."
	msgNotStringOrArray = "Value is not string or array."
	msgArgNotNumber     = "Argument is not number."
	msgArgNotString     = "Argument is not string."
	msgArgNotArray      = "Argument is not array."
	msgArgNotInteger    = "Argument is not integer."
	msgNoRecord         = "Record is not attached."
	msgNoIdentity       = "Identity is not present."
	msgNoConnection     = "Connection is not attached."
)

// resolve resolves a against c. On failure the returned Ctx is invalid with
// the argument's reason and ok is false.
func resolve(ctx context.Context, c pipeline.Ctx, a pipeline.Argument) (value.Value, pipeline.Ctx, bool) {
	v, err := a.Resolve(ctx, c)
	if err != nil {
		return nil, c.Invalid(err.Error()), false
	}
	return v, c, true
}

// resolveInt resolves a to a non-negative int.
func resolveInt(ctx context.Context, c pipeline.Ctx, a pipeline.Argument) (int, pipeline.Ctx, bool) {
	v, c, ok := resolve(ctx, c, a)
	if !ok {
		return 0, c, false
	}
	n, ok := value.AsInt(v)
	if !ok || n < 0 {
		return 0, c.Invalid(msgArgNotInteger), false
	}
	return n, c, true
}

// resolveString resolves a to a string.
func resolveString(ctx context.Context, c pipeline.Ctx, a pipeline.Argument) (string, pipeline.Ctx, bool) {
	v, c, ok := resolve(ctx, c, a)
	if !ok {
		return "", c, false
	}
	s, ok := value.AsString(v)
	if !ok {
		return "", c.Invalid(msgArgNotString), false
	}
	return s, c, true
}

// convertLike converts numeric n to the width of like.
func convertLike(like, n value.Value) (value.Value, bool) {
	out, err := value.Decode(n, value.Type(value.KindOf(like)))
	if err != nil {
		return nil, false
	}
	return out, true
}

// lengthOf returns rune count for strings and element count for arrays.
func lengthOf(v value.Value) (int, bool) {
	switch x := v.(type) {
	case value.String:
		return len([]rune(string(x))), true
	case value.Array:
		return len(x), true
	}
	return 0, false
}
