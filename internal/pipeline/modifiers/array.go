package modifiers

import (
	"context"
	"fmt"
	"slices"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

// lengthCheck validates the length of a string or array against bounds
// resolved from args.
func lengthCheck(name string, args []pipeline.Argument, ok func(n int, bounds []int) string) pipeline.Modifier {
	return pipeline.ValueFunc(name, func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		n, isSized := lengthOf(c.Value())
		if !isSized {
			return c.Invalid(msgNotStringOrArray)
		}
		bounds := make([]int, len(args))
		for i, a := range args {
			b, next, resolved := resolveInt(ctx, c, a)
			if !resolved {
				return next
			}
			bounds[i] = b
		}
		if reason := ok(n, bounds); reason != "" {
			return c.Invalid(reason)
		}
		return c
	})
}

// Length requires exactly n characters (strings) or elements (arrays).
func Length(n pipeline.Argument) pipeline.Modifier {
	return lengthCheck("length", []pipeline.Argument{n}, func(got int, b []int) string {
		if got != b[0] {
			return fmt.Sprintf("Value length is not %d.", b[0])
		}
		return ""
	})
}

// MinLength requires at least n characters or elements.
func MinLength(n pipeline.Argument) pipeline.Modifier {
	return lengthCheck("minLength", []pipeline.Argument{n}, func(got int, b []int) string {
		if got < b[0] {
			return fmt.Sprintf("Value length is less than %d.", b[0])
		}
		return ""
	})
}

// MaxLength allows at most n characters or elements.
func MaxLength(n pipeline.Argument) pipeline.Modifier {
	return lengthCheck("maxLength", []pipeline.Argument{n}, func(got int, b []int) string {
		if got > b[0] {
			return fmt.Sprintf("Value length is greater than %d.", b[0])
		}
		return ""
	})
}

// LengthBetween requires a length within [lo, hi].
func LengthBetween(lo, hi pipeline.Argument) pipeline.Modifier {
	return lengthCheck("lengthBetween", []pipeline.Argument{lo, hi}, func(got int, b []int) string {
		if got < b[0] || got > b[1] {
			return fmt.Sprintf("Value length is not between %d and %d.", b[0], b[1])
		}
		return ""
	})
}

// Truncate keeps the first n characters of a string or elements of an array.
func Truncate(n pipeline.Argument) pipeline.Modifier {
	return pipeline.ValueFunc("truncate", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		if _, ok := lengthOf(c.Value()); !ok {
			return c.Invalid(msgNotStringOrArray)
		}
		limit, c, ok := resolveInt(ctx, c, n)
		if !ok {
			return c
		}
		switch v := c.Value().(type) {
		case value.String:
			r := []rune(string(v))
			if len(r) <= limit {
				return c
			}
			return c.WithValue(value.String(r[:limit]))
		case value.Array:
			if len(v) <= limit {
				return c
			}
			return c.WithValue(slices.Clone(v[:limit]))
		}
		return c.Invalid(msgNotStringOrArray)
	})
}

// GetLength replaces a string or array with its length as I64.
func GetLength() pipeline.Modifier {
	return pipeline.ValueFunc("getLength", func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		n, ok := lengthOf(c.Value())
		if !ok {
			return c.Invalid(msgNotStringOrArray)
		}
		return c.WithValue(value.I64(n))
	})
}

// Reverse reverses a string by characters or an array by elements.
func Reverse() pipeline.Modifier {
	return pipeline.ValueFunc("reverse", func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		switch v := c.Value().(type) {
		case value.String:
			r := []rune(string(v))
			slices.Reverse(r)
			return c.WithValue(value.String(r))
		case value.Array:
			out := slices.Clone(v)
			slices.Reverse(out)
			return c.WithValue(out)
		}
		return c.Invalid(msgNotStringOrArray)
	})
}

func insert(name string, arg pipeline.Argument, front bool) pipeline.Modifier {
	return pipeline.ValueFunc(name, func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		arr, ok := c.Value().(value.Array)
		if !ok {
			return c.Invalid(msgNotArray)
		}
		elem, c, ok := resolve(ctx, c, arg)
		if !ok {
			return c
		}
		out := make(value.Array, 0, len(arr)+1)
		if front {
			out = append(out, elem)
			out = append(out, arr...)
		} else {
			out = append(out, arr...)
			out = append(out, elem)
		}
		return c.WithValue(out)
	})
}

// Push appends an element to an array.
func Push(arg pipeline.Argument) pipeline.Modifier { return insert("push", arg, false) }

// Unshift prepends an element to an array.
func Unshift(arg pipeline.Argument) pipeline.Modifier { return insert("unshift", arg, true) }

// IsEmpty requires null, an empty string or an empty array.
func IsEmpty() pipeline.Modifier {
	return pipeline.ValueFunc("isEmpty", func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		if value.IsNull(c.Value()) {
			return c
		}
		n, ok := lengthOf(c.Value())
		if !ok {
			return c.Invalid(msgNotStringOrArray)
		}
		if n != 0 {
			return c.Invalid("Value is not empty.")
		}
		return c
	})
}

// All runs p over every element with the element's index on the path. The
// first failing element makes the whole value invalid at that index. When
// every element passes, elements transformed by p replace the originals.
func All(p pipeline.Pipeline) pipeline.Modifier {
	return pipeline.ValueFunc("all", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		arr, ok := c.Value().(value.Array)
		if !ok {
			return c.Invalid(msgNotArray)
		}
		out := make(value.Array, len(arr))
		for i, elem := range arr {
			res := p.Process(ctx, c.Derive(elem).Index(i))
			switch {
			case res.IsInvalid():
				return c.WithPath(res.Path()).Invalid(res.Reason())
			case res.State() == pipeline.StateFalse:
				return c.Index(i).Invalid("Condition is false.")
			case res.IsValue():
				out[i] = res.Value()
			default:
				out[i] = elem
			}
		}
		return c.WithValue(out)
	})
}

// Any passes when p passes for at least one element. The value is unchanged.
func Any(p pipeline.Pipeline) pipeline.Modifier {
	return pipeline.ValueFunc("any", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		arr, ok := c.Value().(value.Array)
		if !ok {
			return c.Invalid(msgNotArray)
		}
		for i, elem := range arr {
			if p.Process(ctx, c.Derive(elem).Index(i)).Passes() {
				return c
			}
		}
		return c.Invalid("No element passes.")
	})
}
