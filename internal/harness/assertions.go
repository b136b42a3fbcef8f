package harness

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/strata/internal/object"
	"github.com/roach88/strata/internal/store"
	"github.com/roach88/strata/internal/value"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s %s -> %s\n", i+1, ev.Phase, ev.Action, ev.Model, ev.Outcome)
		}
	}
	return buf.String()
}

// checkExpect compares a step's outcome with its expect clause.
// A nil clause means the step must succeed.
func checkExpect(where string, want *Expect, ev TraceEvent, stepErr error) []string {
	wantErr := want != nil && want.Error != ""

	switch {
	case !wantErr && stepErr != nil:
		return []string{fmt.Sprintf("%s: expected success, got %v", where, stepErr)}
	case wantErr && stepErr == nil:
		return []string{fmt.Sprintf("%s: expected %s, got success", where, want.Error)}
	case want == nil:
		return nil
	}

	var msgs []string
	if wantErr {
		if ev.Outcome != want.Error {
			msgs = append(msgs, fmt.Sprintf("%s: expected %s, got %s: %s", where, want.Error, ev.Outcome, ev.Message))
		}
		if want.Path != nil && !slices.Equal(ev.Path, want.Path) {
			msgs = append(msgs, fmt.Sprintf("%s: expected path %v, got %v", where, want.Path, ev.Path))
		}
		if want.Keys != nil && !slices.Equal(ev.Keys, want.Keys) {
			msgs = append(msgs, fmt.Sprintf("%s: expected keys %v, got %v", where, want.Keys, ev.Keys))
		}
		if want.Message != "" && ev.Message != want.Message {
			msgs = append(msgs, fmt.Sprintf("%s: expected message %q, got %q", where, want.Message, ev.Message))
		}
		return msgs
	}

	for _, mismatch := range matchSubset(ev.Output, want.Output) {
		msgs = append(msgs, fmt.Sprintf("%s: output %s", where, mismatch))
	}
	return msgs
}

// matchSubset checks that every key of expected is present in actual with
// an equal value. Keys of actual not named in expected are ignored.
// Returns one description per mismatch, in key order.
func matchSubset(actual value.Object, expected map[string]any) []string {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var mismatches []string
	for _, k := range keys {
		want, err := value.FromAny(expected[k])
		if err != nil {
			mismatches = append(mismatches, fmt.Sprintf("%s: invalid expected value: %v", k, err))
			continue
		}
		got, ok := actual.Get(k)
		if !ok {
			mismatches = append(mismatches, fmt.Sprintf("%s: missing, expected %s", k, render(want)))
			continue
		}
		if !value.Equal(got, want) {
			mismatches = append(mismatches, fmt.Sprintf("%s: expected %s, got %s", k, render(want), render(got)))
		}
	}
	return mismatches
}

func render(v value.Value) string {
	data, err := value.MarshalJSON(v)
	if err != nil {
		return string(value.KindOf(v))
	}
	return string(data)
}

func assertRecordPresence(ctx context.Context, st *store.Store, a Assertion, trace []TraceEvent) error {
	_, err := st.Find(ctx, a.Model, a.ID)
	found := err == nil
	if err != nil && !errors.Is(err, object.ErrNotFound) {
		return fmt.Errorf("%s: find %s %q: %w", a.Type, a.Model, a.ID, err)
	}

	want := a.Type == AssertRecordExists
	if found == want {
		return nil
	}
	state := func(present bool) string {
		if present {
			return fmt.Sprintf("%s %q stored", a.Model, a.ID)
		}
		return fmt.Sprintf("%s %q not stored", a.Model, a.ID)
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: state(want),
		Actual:   state(found),
		Trace:    trace,
	}
}

func assertRecordCount(ctx context.Context, st *store.Store, a Assertion, trace []TraceEvent) error {
	recs, err := st.List(ctx, a.Model)
	if err != nil {
		return fmt.Errorf("record_count: %w", err)
	}
	if len(recs) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRecordCount,
		Expected: fmt.Sprintf("%d %s records", a.Count, a.Model),
		Actual:   fmt.Sprintf("%d %s records", len(recs), a.Model),
		Trace:    trace,
	}
}

func assertRecordState(ctx context.Context, st *store.Store, a Assertion, trace []TraceEvent) error {
	data, err := st.Find(ctx, a.Model, a.ID)
	if errors.Is(err, object.ErrNotFound) {
		return &AssertionError{
			Type:     AssertRecordState,
			Expected: fmt.Sprintf("%s %q stored", a.Model, a.ID),
			Actual:   "no record",
			Trace:    trace,
		}
	}
	if err != nil {
		return fmt.Errorf("record_state: %w", err)
	}

	mismatches := matchSubset(data, a.Expect)
	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertRecordState,
		Expected: fmt.Sprintf("%s %q to match", a.Model, a.ID),
		Actual:   strings.Join(mismatches, "; "),
		Trace:    trace,
	}
}

// EvaluateAssertions evaluates all assertions against the stored state.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(ctx context.Context, st *store.Store, result *Result, assertions []Assertion) []string {
	var msgs []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertRecordExists, AssertRecordAbsent:
			err = assertRecordPresence(ctx, st, a, result.Trace)
		case AssertRecordCount:
			err = assertRecordCount(ctx, st, a, result.Trace)
		case AssertRecordState:
			err = assertRecordState(ctx, st, a, result.Trace)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	return msgs
}
