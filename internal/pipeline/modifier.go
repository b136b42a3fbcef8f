package pipeline

import "context"

// Modifier is one operation of a Pipeline.
//
// Call must honour the Ctx state: unless the modifier exists to react to
// invalidity or to condition signals, a Ctx that is not IsValue is returned
// unchanged.
type Modifier interface {
	Name() string
	Call(ctx context.Context, c Ctx) Ctx
}

// modifierFunc adapts a function to Modifier.
type modifierFunc struct {
	name string
	fn   func(ctx context.Context, c Ctx) Ctx
}

func (m modifierFunc) Name() string { return m.name }

func (m modifierFunc) Call(ctx context.Context, c Ctx) Ctx {
	return m.fn(ctx, c)
}

// ModifierFunc builds a Modifier from a raw function. fn receives every Ctx
// including invalid ones.
func ModifierFunc(name string, fn func(ctx context.Context, c Ctx) Ctx) Modifier {
	return modifierFunc{name: name, fn: fn}
}

// ValueFunc builds a Modifier that only runs on StateValue and passes
// everything else through.
func ValueFunc(name string, fn func(ctx context.Context, c Ctx) Ctx) Modifier {
	return modifierFunc{name: name, fn: func(ctx context.Context, c Ctx) Ctx {
		if !c.IsValue() {
			return c
		}
		return fn(ctx, c)
	}}
}
