package object

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/strata/internal/value"
)

// Session creates and loads records of a Graph over one connection.
// Options given to NewSession apply to every record it creates.
type Session struct {
	graph  *Graph
	conn   Connection
	opts   []Option
	logger *slog.Logger
}

// NewSession returns a Session. conn may be nil for purely in-memory use.
func NewSession(graph *Graph, conn Connection, opts ...Option) *Session {
	return &Session{
		graph:  graph,
		conn:   conn,
		opts:   opts,
		logger: slog.Default(),
	}
}

// Model looks up a model of the session's graph.
func (s *Session) Model(name string) (*Model, bool) {
	return s.graph.Model(name)
}

// Graph returns the session's graph.
func (s *Session) Graph() *Graph {
	return s.graph
}

func (s *Session) model(name string) (*Model, error) {
	m, ok := s.graph.Model(name)
	if !ok {
		return nil, &ActionError{
			Kind:    KindNotFound,
			Message: fmt.Sprintf("Model %q is not defined.", name),
			Model:   name,
		}
	}
	return m, nil
}

func (s *Session) options(extra []Option) []Option {
	opts := make([]Option, 0, len(s.opts)+len(extra)+1)
	opts = append(opts, s.opts...)
	if s.conn != nil {
		opts = append(opts, WithConnection(s.conn))
	}
	return append(opts, extra...)
}

// New returns a new, uninitialized record of the named model.
func (s *Session) New(model string, opts ...Option) (*Object, error) {
	m, err := s.model(model)
	if err != nil {
		return nil, err
	}
	return New(m, s.options(opts)...), nil
}

// Find loads a persisted record by primary key.
func (s *Session) Find(ctx context.Context, model, id string, opts ...Option) (*Object, error) {
	m, err := s.model(model)
	if err != nil {
		return nil, err
	}
	if s.conn == nil {
		return nil, internalInconsistency(model, nil, "Connection is not attached.")
	}
	data, err := s.conn.Find(ctx, model, id)
	if err != nil {
		return nil, storageError(model, "find", err)
	}
	o := New(m, s.options(opts)...)
	if err := o.load(dropUnknown(m, data)); err != nil {
		return nil, err
	}
	return o, nil
}

// dropUnknown removes stored keys the model no longer persists.
func dropUnknown(m *Model, data value.Object) value.Object {
	for _, k := range unallowed(data, m.saveKeys) {
		data = data.Without(k)
	}
	return data
}

// Transaction runs fn with a Session bound to a new transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Session) Transaction(ctx context.Context, fn func(tx *Session) error) (err error) {
	if s.conn == nil {
		return internalInconsistency("", nil, "Connection is not attached.")
	}
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return storageError("", "begin", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	child := &Session{
		graph:  s.graph,
		conn:   tx,
		opts:   s.opts,
		logger: s.logger,
	}
	if err := fn(child); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.WarnContext(ctx, "rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageError("", "commit", err)
	}
	return nil
}
