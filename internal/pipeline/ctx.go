package pipeline

import (
	"fmt"

	"github.com/roach88/strata/internal/value"
)

// State is the validity of a Ctx.
type State int

const (
	// StateValue means the Ctx holds a value to operate on.
	StateValue State = iota
	// StateInvalid is terminal. The reason is preserved.
	StateInvalid
	// StateTrue is a passed condition signal.
	StateTrue
	// StateFalse is a failed condition signal.
	StateFalse
)

func (s State) String() string {
	switch s {
	case StateValue:
		return "value"
	case StateInvalid:
		return "invalid"
	case StateTrue:
		return "true"
	case StateFalse:
		return "false"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Ctx is the unit of state flowing through a Pipeline. It is a small value
// type; every method returns a new Ctx and never mutates the receiver.
type Ctx struct {
	value    value.Value
	state    State
	reason   string
	path     Path
	record   Record
	identity Record
	action   Action
}

// New returns a Ctx holding v in StateValue.
func New(v value.Value) Ctx {
	if v == nil {
		v = value.Null{}
	}
	return Ctx{value: v}
}

// Value returns the current value. It is retained when the Ctx turns invalid
// or into a condition signal.
func (c Ctx) Value() value.Value {
	if c.value == nil {
		return value.Null{}
	}
	return c.value
}

func (c Ctx) State() State {
	return c.state
}

// Reason is the invalid reason, empty unless State is StateInvalid.
func (c Ctx) Reason() string {
	return c.reason
}

func (c Ctx) Path() Path {
	return c.path
}

// Record is the owning record, or nil.
func (c Ctx) Record() Record {
	return c.record
}

// Identity is the acting identity record, or nil.
func (c Ctx) Identity() Record {
	return c.identity
}

func (c Ctx) Action() Action {
	return c.action
}

// IsValue reports whether the Ctx holds a plain value.
func (c Ctx) IsValue() bool {
	return c.state == StateValue
}

// IsInvalid reports whether the Ctx has been marked invalid.
func (c Ctx) IsInvalid() bool {
	return c.state == StateInvalid
}

// IsCondition reports whether the Ctx carries a condition signal.
func (c Ctx) IsCondition() bool {
	return c.state == StateTrue || c.state == StateFalse
}

// Passes reports whether a sub-pipeline ending in c counts as passed:
// a plain value or a true condition.
func (c Ctx) Passes() bool {
	return c.state == StateValue || c.state == StateTrue
}

// WithValue replaces the value and clears any condition signal.
// No-op when invalid.
func (c Ctx) WithValue(v value.Value) Ctx {
	if c.IsInvalid() {
		return c
	}
	if v == nil {
		v = value.Null{}
	}
	c.value = v
	c.state = StateValue
	return c
}

// Invalid marks the Ctx invalid with reason. An already invalid Ctx keeps
// its original reason.
func (c Ctx) Invalid(reason string) Ctx {
	if c.IsInvalid() {
		return c
	}
	c.state = StateInvalid
	c.reason = reason
	return c
}

// Invalidf is Invalid with a formatted reason.
func (c Ctx) Invalidf(format string, args ...any) Ctx {
	if c.IsInvalid() {
		return c
	}
	return c.Invalid(fmt.Sprintf(format, args...))
}

// True sets a passed condition signal. No-op when invalid.
func (c Ctx) True() Ctx {
	return c.Condition(true)
}

// False sets a failed condition signal. No-op when invalid.
func (c Ctx) False() Ctx {
	return c.Condition(false)
}

// Condition sets StateTrue or StateFalse. No-op when invalid.
func (c Ctx) Condition(ok bool) Ctx {
	if c.IsInvalid() {
		return c
	}
	if ok {
		c.state = StateTrue
	} else {
		c.state = StateFalse
	}
	return c
}

// Recover returns a valid Ctx holding v regardless of the current state.
// Only modifiers that exist to react to invalidity (fallback) may use it.
func (c Ctx) Recover(v value.Value) Ctx {
	if v == nil {
		v = value.Null{}
	}
	c.value = v
	c.state = StateValue
	c.reason = ""
	return c
}

// Key appends a key segment to the path. Applies in every state.
func (c Ctx) Key(k string) Ctx {
	c.path = c.path.Key(k)
	return c
}

// Index appends an index segment to the path. Applies in every state.
func (c Ctx) Index(i int) Ctx {
	c.path = c.path.Index(i)
	return c
}

// WithPath replaces the path.
func (c Ctx) WithPath(p Path) Ctx {
	c.path = p
	return c
}

// WithRecord attaches the owning record.
func (c Ctx) WithRecord(r Record) Ctx {
	c.record = r
	return c
}

// WithIdentity attaches the acting identity.
func (c Ctx) WithIdentity(r Record) Ctx {
	c.identity = r
	return c
}

// WithAction sets the triggering action.
func (c Ctx) WithAction(a Action) Ctx {
	c.action = a
	return c
}

// Derive returns a fresh StateValue Ctx holding v that shares c's record,
// identity, action and path. Used to evaluate sub-pipelines over values
// other than the current one (array elements, arguments).
func (c Ctx) Derive(v value.Value) Ctx {
	d := New(v)
	d.path = c.path
	d.record = c.record
	d.identity = c.identity
	d.action = c.action
	return d
}

// String renders the Ctx for debugging.
func (c Ctx) String() string {
	switch c.state {
	case StateInvalid:
		return fmt.Sprintf("invalid(%q at %q)", c.reason, c.path.String())
	case StateTrue, StateFalse:
		return c.state.String()
	}
	data, err := value.MarshalJSON(c.Value())
	if err != nil {
		return fmt.Sprintf("value(%s)", value.KindOf(c.Value()))
	}
	return fmt.Sprintf("value(%s)", data)
}
