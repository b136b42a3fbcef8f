package modifiers

import (
	"context"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

func lit(v value.Value) pipeline.Argument {
	return pipeline.Lit(v)
}

func pipe(mods ...pipeline.Modifier) pipeline.Pipeline {
	return pipeline.NewPipeline(mods...)
}

func run(m pipeline.Modifier, v value.Value) pipeline.Ctx {
	return m.Call(context.Background(), pipeline.New(v))
}

func runCtx(m pipeline.Modifier, c pipeline.Ctx) pipeline.Ctx {
	return m.Call(context.Background(), c)
}

// counter counts how often it runs and passes the Ctx through.
type counter struct {
	calls int
}

func (c *counter) modifier() pipeline.Modifier {
	return pipeline.ValueFunc("counter", func(_ context.Context, ctx pipeline.Ctx) pipeline.Ctx {
		c.calls++
		return ctx
	})
}

// stubRecord is a Record backed by maps.
type stubRecord struct {
	model    string
	id       value.Value
	values   map[string]value.Value
	previous map[string]value.Value
	modified map[string]bool
	isNew    bool
	lookup   pipeline.Lookup
}

func (r *stubRecord) Model() string {
	return r.model
}

func (r *stubRecord) ID() value.Value {
	if r.id == nil {
		return value.Null{}
	}
	return r.id
}

func (r *stubRecord) Get(key string) (value.Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r *stubRecord) Previous(key string) (value.Value, bool) {
	v, ok := r.previous[key]
	return v, ok
}

func (r *stubRecord) IsNew() bool {
	return r.isNew
}

func (r *stubRecord) IsModified(key string) bool {
	return r.modified[key]
}

func (r *stubRecord) Lookup() pipeline.Lookup {
	return r.lookup
}

// stubLookup answers Exists from a fixed set of taken values.
type stubLookup struct {
	taken   map[string]string // value -> owning id
	lastArg struct {
		model, field, exclude string
	}
}

func (l *stubLookup) Exists(_ context.Context, model, field string, v value.Value, excludeID string) (bool, error) {
	l.lastArg.model, l.lastArg.field, l.lastArg.exclude = model, field, excludeID
	s, _ := value.AsString(v)
	owner, ok := l.taken[s]
	return ok && owner != excludeID, nil
}
