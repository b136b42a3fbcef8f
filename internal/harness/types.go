package harness

import "github.com/roach88/strata/internal/value"

// Trace phases.
const (
	PhaseSetup = "setup"
	PhaseFlow  = "flow"
)

// OutcomeOK is the outcome of a step that succeeded.
const OutcomeOK = "ok"

// TraceEvent records one executed step.
type TraceEvent struct {
	Phase  string `json:"phase"`
	Step   int    `json:"step"`
	Model  string `json:"model"`
	Action string `json:"action"`

	// ID is the primary key of the record after the step, if any.
	ID string `json:"id,omitempty"`

	// Outcome is OutcomeOK or the error kind.
	Outcome string `json:"outcome"`

	Path    []string `json:"path,omitempty"`
	Keys    []string `json:"keys,omitempty"`
	Message string   `json:"message,omitempty"`

	// Output is the record output after a successful step.
	Output value.Object `json:"output"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause and assertion matched.
	Pass bool `json:"pass"`

	// Trace contains every executed step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State maps each model to its stored records keyed by id, in store
	// order.
	State value.Object `json:"state"`

	// Snapshot is the store's digest over every stored record.
	Snapshot string `json:"snapshot"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}

// toValue renders the event for canonical serialization.
func (ev TraceEvent) toValue() value.Object {
	out := value.NewObject(
		value.O("phase", value.String(ev.Phase)),
		value.O("step", value.I64(ev.Step)),
		value.O("model", value.String(ev.Model)),
		value.O("action", value.String(ev.Action)),
		value.O("outcome", value.String(ev.Outcome)),
	)
	if ev.ID != "" {
		out = out.With("id", value.String(ev.ID))
	}
	if len(ev.Path) > 0 {
		out = out.With("path", stringArray(ev.Path))
	}
	if len(ev.Keys) > 0 {
		out = out.With("keys", stringArray(ev.Keys))
	}
	if ev.Message != "" {
		out = out.With("message", value.String(ev.Message))
	}
	if ev.Outcome == OutcomeOK {
		out = out.With("output", ev.Output)
	}
	return out
}

func stringArray(ss []string) value.Array {
	arr := make(value.Array, len(ss))
	for i, s := range ss {
		arr[i] = value.String(s)
	}
	return arr
}
