package modifiers

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

// Builder constructs a modifier from schema arguments.
type Builder func(args []pipeline.Argument) (pipeline.Modifier, error)

// ErrUnknownModifier is wrapped by Build for names with no builder.
var ErrUnknownModifier = errors.New("unknown modifier")

// BuildError reports a modifier that could not be constructed.
type BuildError struct {
	// Name is the modifier name as written in the schema.
	Name string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("modifier %q: %s", e.Name, e.Message)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// IsBuildError reports whether err is (or wraps) a BuildError.
func IsBuildError(err error) bool {
	var be *BuildError
	return errors.As(err, &be)
}

// Registry maps modifier names to builders. It is open: hosts add their own
// modifiers with Register and their own functions with RegisterFunc.
//
// Thread-safety: Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
	funcs    map[string]pipeline.Func

	clock      Clock
	ids        IDGenerator
	idsV7      IDGenerator
	rand       *rand.Rand
	logger     *slog.Logger
	bcryptCost int
}

// Option configures a Registry.
type Option func(*Registry)

// WithClock sets the clock used by now.
func WithClock(c Clock) Option {
	return func(r *Registry) { r.clock = c }
}

// WithIDGenerator sets the generator used by both uuid and uuidV7.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Registry) {
		r.ids = g
		r.idsV7 = g
	}
}

// WithRand sets the random source used by randomDigits.
func WithRand(rnd *rand.Rand) Option {
	return func(r *Registry) { r.rand = rnd }
}

// WithLogger sets the logger used by print.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithBcryptCost sets the bcrypt cost used by bcryptSalt.
func WithBcryptCost(cost int) Option {
	return func(r *Registry) { r.bcryptCost = cost }
}

// NewRegistry returns a registry holding every built-in modifier.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		builders: make(map[string]Builder),
		funcs:    make(map[string]pipeline.Func),
		clock:    SystemClock{},
		ids:      UUIDv4Generator{},
		idsV7:    UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.registerBuiltins()
	return r
}

// Register adds a builder. Registering an existing name is an error.
func (r *Registry) Register(name string, b Builder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builders[name]; exists {
		return fmt.Errorf("modifier %q already registered", name)
	}
	r.builders[name] = b
	return nil
}

// RegisterFunc names a host function so schemas can reference it as
// {fn: "name"} in arguments, defaults and transform/validate/callback.
func (r *Registry) RegisterFunc(name string, fn pipeline.Func) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.funcs[name]; exists {
		return fmt.Errorf("function %q already registered", name)
	}
	r.funcs[name] = fn
	return nil
}

// Func looks up a registered host function.
func (r *Registry) Func(name string) (pipeline.Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	return fn, ok
}

// Has reports whether name has a builder.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.builders[name]
	return ok
}

// Names returns every registered modifier name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Build constructs the modifier name with args.
func (r *Registry) Build(name string, args []pipeline.Argument) (pipeline.Modifier, error) {
	r.mu.RLock()
	b, ok := r.builders[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &BuildError{Name: name, Message: "not registered", Err: ErrUnknownModifier}
	}
	m, err := b(args)
	if err != nil {
		var be *BuildError
		if errors.As(err, &be) {
			return nil, err
		}
		return nil, &BuildError{Name: name, Message: err.Error(), Err: err}
	}
	return m, nil
}

// MustBuild is like Build but panics on error.
// Use only in tests or for names known to be registered.
func (r *Registry) MustBuild(name string, args ...pipeline.Argument) pipeline.Modifier {
	m, err := r.Build(name, args)
	if err != nil {
		panic(err)
	}
	return m
}

// Argument helpers for builders.

func arity(name string, args []pipeline.Argument, lo, hi int) error {
	if len(args) < lo || len(args) > hi {
		want := fmt.Sprintf("%d", lo)
		if hi != lo {
			want = fmt.Sprintf("%d to %d", lo, hi)
		}
		return &BuildError{Name: name, Message: fmt.Sprintf("expected %s arguments, got %d", want, len(args))}
	}
	return nil
}

func literalString(name string, a pipeline.Argument) (string, error) {
	lit, ok := a.Literal()
	if ok {
		if s, ok := value.AsString(lit); ok {
			return s, nil
		}
	}
	return "", &BuildError{Name: name, Message: "argument must be a literal string"}
}

func pipelineOf(name string, a pipeline.Argument) (pipeline.Pipeline, error) {
	if p, ok := a.Pipeline(); ok {
		return p, nil
	}
	if lit, ok := a.Literal(); ok {
		if ref, ok := lit.(value.PipelineRef); ok {
			if p, ok := ref.Pipeline.(pipeline.Pipeline); ok {
				return p, nil
			}
		}
	}
	return pipeline.Pipeline{}, &BuildError{Name: name, Message: "argument must be a pipeline"}
}

func pipelinesOf(name string, args []pipeline.Argument) ([]pipeline.Pipeline, error) {
	out := make([]pipeline.Pipeline, len(args))
	for i, a := range args {
		p, err := pipelineOf(name, a)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func funcOf(name string, a pipeline.Argument) (pipeline.Func, error) {
	if fn, ok := a.Func(); ok {
		return fn, nil
	}
	return nil, &BuildError{Name: name, Message: "argument must be a host function"}
}

func actionsOf(name string, a pipeline.Argument) ([]pipeline.Action, error) {
	lit, ok := a.Literal()
	if !ok {
		return nil, &BuildError{Name: name, Message: "actions must be literal"}
	}
	var raw []value.Value
	switch v := lit.(type) {
	case value.String:
		raw = []value.Value{v}
	case value.Array:
		raw = v
	default:
		return nil, &BuildError{Name: name, Message: "actions must be a string or list of strings"}
	}
	actions := make([]pipeline.Action, 0, len(raw))
	for _, item := range raw {
		s, _ := value.AsString(item)
		action, ok := pipeline.ParseAction(s)
		if !ok {
			return nil, &BuildError{Name: name, Message: fmt.Sprintf("unknown action %q", s)}
		}
		actions = append(actions, action)
	}
	return actions, nil
}
