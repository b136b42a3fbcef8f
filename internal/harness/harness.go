package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"

	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/strata/internal/object"
	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/pipeline/modifiers"
	"github.com/roach88/strata/internal/schema"
	"github.com/roach88/strata/internal/store"
	"github.com/roach88/strata/internal/testutil"
	"github.com/roach88/strata/internal/value"
)

// Harness is the scenario execution engine.
// It runs scenarios with a deterministic clock, id generator and random
// source against an isolated in-memory store.
type Harness struct {
	store   *store.Store
	session *object.Session
	logger  *slog.Logger
}

// Option configures a run.
type Option func(*config)

type config struct {
	funcs  map[string]pipeline.Func
	logger *slog.Logger
}

// WithFunc registers a host function that schemas may reference with
// {fn: name}.
func WithFunc(name string, fn pipeline.Func) Option {
	return func(c *config) { c.funcs[name] = fn }
}

// WithLogger sets the logger. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Deterministic helpers ensure reproducible results.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Compile the schema
// 3. Execute setup steps
// 4. Execute flow steps with expect validation
// 5. Evaluate assertions against the stored state
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return RunContext(context.Background(), scenario, opts...)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := &config{
		funcs:  make(map[string]pipeline.Func),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	reg := modifiers.NewRegistry(
		modifiers.WithClock(testutil.NewDeterministicClock()),
		modifiers.WithIDGenerator(testutil.NewSequenceIDGenerator(scenario.IDPrefix)),
		modifiers.WithRand(rand.New(rand.NewPCG(scenario.Seed, scenario.Seed))),
		modifiers.WithBcryptCost(bcrypt.MinCost),
		modifiers.WithLogger(cfg.logger),
	)
	names := make([]string, 0, len(cfg.funcs))
	for name := range cfg.funcs {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if err := reg.RegisterFunc(name, cfg.funcs[name]); err != nil {
			return nil, err
		}
	}

	graph, err := compileSchema(scenario, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	h := &Harness{
		store:   st,
		session: object.NewSession(graph, st, object.WithLogger(cfg.logger)),
		logger:  cfg.logger,
	}

	result := NewResult()
	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	for _, msg := range EvaluateAssertions(ctx, st, result, scenario.Assertions) {
		result.AddError(msg)
	}

	if result.State, err = collectState(ctx, st); err != nil {
		return nil, err
	}
	if result.Snapshot, err = st.Snapshot(ctx); err != nil {
		return nil, fmt.Errorf("failed to snapshot store: %w", err)
	}
	return result, nil
}

func compileSchema(s *Scenario, reg *modifiers.Registry) (*object.Graph, error) {
	if s.Source != "" {
		return schema.CompileString(s.Source, s.Name+".cue", reg)
	}
	res, errs := schema.Load(s.Schema, reg, schema.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return res.Graph, nil
}

// executeSetup runs all setup steps. Any failure aborts the run.
func (h *Harness) executeSetup(ctx context.Context, setup []Step, result *Result) error {
	for i, step := range setup {
		ev, stepErr, err := h.execute(ctx, PhaseSetup, i, step)
		if err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		result.AddTrace(ev)
		if stepErr != nil {
			return fmt.Errorf("setup[%d] %s %s: %w", i, step.Action, step.Model, stepErr)
		}
	}
	return nil
}

// executeFlow runs all flow steps and validates expect clauses.
// A step failing against its expectation is recorded; the flow continues.
func (h *Harness) executeFlow(ctx context.Context, flow []Step, result *Result) error {
	for i, step := range flow {
		ev, stepErr, err := h.execute(ctx, PhaseFlow, i, step)
		if err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
		result.AddTrace(ev)
		for _, msg := range checkExpect(fmt.Sprintf("flow[%d]", i), step.Expect, ev, stepErr) {
			result.AddError(msg)
		}
	}
	return nil
}

// execute runs one step. stepErr is the record layer's verdict on the step;
// err is a harness failure.
func (h *Harness) execute(ctx context.Context, phase string, index int, step Step) (ev TraceEvent, stepErr error, err error) {
	ev = TraceEvent{
		Phase:  phase,
		Step:   index,
		Model:  step.Model,
		Action: step.Action,
	}

	input, err := toObject(step.Input)
	if err != nil {
		return ev, nil, fmt.Errorf("input: %w", err)
	}

	opts := []object.Option{object.WithAction(stepActions[step.Action])}
	if ref := step.Identity; ref != nil {
		identity, err := h.session.Find(ctx, ref.Model, ref.ID)
		if err != nil {
			return ev, nil, fmt.Errorf("identity %s %q: %w", ref.Model, ref.ID, err)
		}
		opts = append(opts, object.WithIdentity(identity.Record()))
	}

	o, stepErr := h.apply(ctx, step, input, opts)
	if stepErr == nil && stepActions[step.Action] != pipeline.ActionDelete {
		ev.Output, stepErr = output(ctx, o, step.Select)
	}
	if o != nil {
		ev.ID = pipeline.IDString(o.ID())
	}
	if ev.ID == "" {
		ev.ID = step.ID
	}

	ev.Outcome = OutcomeOK
	if stepErr != nil {
		ev.Output = value.Object{}
		ev.Outcome = "ERROR"
		ev.Message = stepErr.Error()
		var ae *object.ActionError
		if errors.As(stepErr, &ae) {
			ev.Outcome = string(ae.Kind)
			ev.Message = ae.Message
			ev.Path = ae.Path
			ev.Keys = ae.Keys
		}
	}

	h.logger.Debug("step completed",
		"phase", phase,
		"step", index,
		"model", step.Model,
		"action", step.Action,
		"id", ev.ID,
		"outcome", ev.Outcome,
	)
	return ev, stepErr, nil
}

func (h *Harness) apply(ctx context.Context, step Step, input value.Object, opts []object.Option) (*object.Object, error) {
	switch stepActions[step.Action] {
	case pipeline.ActionCreate:
		o, err := h.session.New(step.Model, opts...)
		if err != nil {
			return nil, err
		}
		return o, write(ctx, o, step.Trusted, input)

	case pipeline.ActionUpdate:
		o, err := h.session.Find(ctx, step.Model, step.ID, opts...)
		if err != nil {
			return nil, err
		}
		return o, write(ctx, o, step.Trusted, input)

	case pipeline.ActionUpsert:
		o, err := h.session.Find(ctx, step.Model, step.ID, opts...)
		if object.IsNotFound(err) {
			o, err = h.session.New(step.Model, opts...)
		}
		if err != nil {
			return nil, err
		}
		return o, write(ctx, o, step.Trusted, input)

	case pipeline.ActionDelete:
		o, err := h.session.Find(ctx, step.Model, step.ID, opts...)
		if err != nil {
			return nil, err
		}
		return o, o.Delete(ctx)

	case pipeline.ActionFind:
		return h.session.Find(ctx, step.Model, step.ID, opts...)
	}
	return nil, fmt.Errorf("unknown action %q", step.Action)
}

func write(ctx context.Context, o *object.Object, trusted bool, input value.Object) error {
	var err error
	if trusted {
		err = o.Update(input)
	} else {
		err = o.Set(ctx, input)
	}
	if err != nil {
		return err
	}
	return o.Save(ctx)
}

func output(ctx context.Context, o *object.Object, keys []string) (value.Object, error) {
	if len(keys) > 0 {
		if err := o.Select(keys...); err != nil {
			return value.Object{}, err
		}
	}
	return o.Output(ctx)
}

// toObject converts YAML-decoded input to a value.Object.
func toObject(m map[string]any) (value.Object, error) {
	if m == nil {
		return value.Object{}, nil
	}
	v, err := value.FromAny(m)
	if err != nil {
		return value.Object{}, err
	}
	obj, ok := v.(value.Object)
	if !ok {
		return value.Object{}, fmt.Errorf("expected an object, got %s", value.KindOf(v))
	}
	return obj, nil
}

// collectState reads every stored record, grouped by model and keyed by id.
func collectState(ctx context.Context, st *store.Store) (value.Object, error) {
	models, err := st.Models(ctx)
	if err != nil {
		return value.Object{}, fmt.Errorf("failed to list models: %w", err)
	}
	state := value.Object{}
	for _, model := range models {
		recs, err := st.List(ctx, model)
		if err != nil {
			return value.Object{}, fmt.Errorf("failed to list %s: %w", model, err)
		}
		byID := value.Object{}
		for _, rec := range recs {
			byID = byID.With(rec.ID, rec.Data)
		}
		state = state.With(model, byID)
	}
	return state, nil
}
