package pipeline

import (
	"context"
	"slices"
)

// Pipeline is an ordered, stateless sequence of Modifiers. It is safe to
// share between goroutines and to reuse across evaluations.
type Pipeline struct {
	modifiers []Modifier
}

// NewPipeline returns a pipeline over mods in order.
func NewPipeline(mods ...Modifier) Pipeline {
	return Pipeline{modifiers: slices.Clone(mods)}
}

// Process folds c through every modifier in declaration order.
// A cancelled context turns the Ctx invalid before the next step.
func (p Pipeline) Process(ctx context.Context, c Ctx) Ctx {
	for _, m := range p.modifiers {
		if err := ctx.Err(); err != nil {
			return c.Invalid(err.Error())
		}
		c = m.Call(ctx, c)
	}
	return c
}

// Len returns the number of modifiers.
func (p Pipeline) Len() int {
	return len(p.modifiers)
}

// IsEmpty reports whether p has no modifiers.
func (p Pipeline) IsEmpty() bool {
	return len(p.modifiers) == 0
}

// Names returns the modifier names in order.
func (p Pipeline) Names() []string {
	names := make([]string, len(p.modifiers))
	for i, m := range p.modifiers {
		names[i] = m.Name()
	}
	return names
}

// Modifiers returns a copy of the modifier list.
func (p Pipeline) Modifiers() []Modifier {
	return slices.Clone(p.modifiers)
}

// Append returns a new pipeline with mods added at the end.
func (p Pipeline) Append(mods ...Modifier) Pipeline {
	out := make([]Modifier, 0, len(p.modifiers)+len(mods))
	out = append(out, p.modifiers...)
	return Pipeline{modifiers: append(out, mods...)}
}
