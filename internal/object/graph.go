package object

import (
	"fmt"
	"slices"
)

// Graph is the set of models known to a Session.
type Graph struct {
	models map[string]*Model
	order  []string
}

// NewGraph builds a graph. Model names must be unique.
func NewGraph(models ...*Model) (*Graph, error) {
	g := &Graph{models: make(map[string]*Model, len(models))}
	for _, m := range models {
		if _, dup := g.models[m.Name()]; dup {
			return nil, fmt.Errorf("duplicate model %q", m.Name())
		}
		g.models[m.Name()] = m
		g.order = append(g.order, m.Name())
	}
	return g, nil
}

// Model looks up a model by name.
func (g *Graph) Model(name string) (*Model, bool) {
	m, ok := g.models[name]
	return m, ok
}

// Models returns the models in declaration order.
func (g *Graph) Models() []*Model {
	out := make([]*Model, len(g.order))
	for i, name := range g.order {
		out[i] = g.models[name]
	}
	return out
}

// Names returns the model names in declaration order.
func (g *Graph) Names() []string {
	return slices.Clone(g.order)
}
