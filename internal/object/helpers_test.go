package object

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/pipeline/modifiers"
	"github.com/roach88/strata/internal/value"
)

// memConn is an in-memory Connection.
type memConn struct {
	mu      sync.Mutex
	records map[string]map[string]value.Object
	saves   int
	parent  *memConn
	done    bool
}

func newMemConn() *memConn {
	return &memConn{records: map[string]map[string]value.Object{}}
}

func (c *memConn) Find(_ context.Context, model, id string) (value.Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.records[model][id]
	if !ok {
		return value.Object{}, fmt.Errorf("%s %s: %w", model, id, ErrNotFound)
	}
	return data, nil
}

func (c *memConn) Save(_ context.Context, model, id string, data value.Object) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.records[model] == nil {
		c.records[model] = map[string]value.Object{}
	}
	c.records[model][id] = data
	c.saves++
	return nil
}

func (c *memConn) Delete(_ context.Context, model, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[model][id]; !ok {
		return fmt.Errorf("%s %s: %w", model, id, ErrNotFound)
	}
	delete(c.records[model], id)
	return nil
}

func (c *memConn) Exists(_ context.Context, model, field string, v value.Value, excludeID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, data := range c.records[model] {
		if id == excludeID {
			continue
		}
		if got, ok := data.Get(field); ok && value.Equal(got, v) {
			return true, nil
		}
	}
	return false, nil
}

func (c *memConn) Begin(_ context.Context) (Tx, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tx := &memConn{records: map[string]map[string]value.Object{}, parent: c}
	for model, rows := range c.records {
		tx.records[model] = maps.Clone(rows)
	}
	return tx, nil
}

func (c *memConn) Commit() error {
	if c.parent == nil || c.done {
		return fmt.Errorf("not in a transaction")
	}
	c.done = true
	c.parent.mu.Lock()
	defer c.parent.mu.Unlock()
	c.parent.records = c.records
	return nil
}

func (c *memConn) Rollback() error {
	if c.parent == nil || c.done {
		return fmt.Errorf("not in a transaction")
	}
	c.done = true
	return nil
}

func (c *memConn) count(model string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records[model])
}

func pipe(mods ...pipeline.Modifier) pipeline.Pipeline {
	return pipeline.NewPipeline(mods...)
}

func lit(v value.Value) pipeline.Argument {
	return pipeline.Lit(v)
}

func defaultOf(v value.Value) *pipeline.Argument {
	arg := pipeline.Lit(v)
	return &arg
}

// countingDefault returns a default that counts its evaluations.
func countingDefault(n *int, v value.Value) *pipeline.Argument {
	arg := pipeline.Fn(func(context.Context, pipeline.Ctx) (value.Value, error) {
		*n++
		return v, nil
	})
	return &arg
}

// userModel is the model most tests use.
func userModel() *Model {
	return MustModel("User",
		&Field{Name: "id", Type: value.TypeString, Primary: true, ReadOnly: true,
			Default: defaultOf(value.String("u1"))},
		&Field{Name: "email", Type: value.TypeString, Required: true,
			OnSet: pipe(modifiers.Trim(), modifiers.ToLowerCase(), modifiers.IsEmail())},
		&Field{Name: "name", Type: value.TypeString,
			OnSet: pipe(modifiers.Trim(), modifiers.MinLength(lit(value.I64(3))))},
		&Field{Name: "age", Type: value.TypeI32,
			OnSet: pipe(modifiers.Gte(lit(value.I64(18))))},
		&Field{Name: "role", Type: value.TypeString, Default: defaultOf(value.String("member"))},
		&Field{Name: "password", Type: value.TypeString, WriteOnly: true},
		&Field{Name: "confirm", Type: value.TypeString, Virtual: true},
		&Field{Name: "secret", Type: value.TypeString, Internal: true},
	)
}
