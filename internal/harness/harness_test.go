package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/testutil"
	"github.com/roach88/strata/internal/value"
)

const noteSchema = `
model: Note: fields: {
	id:    {type: "string", primary: true, readonly: true, default: {pipeline: ["uuid"]}}
	text:  {type: "string", required: true, onSet: ["trim", {minLength: 2}]}
	pin:   {type: "string", onSet: [{padStart: [4, "0"]}]}
	code:  {type: "string", readonly: true, default: {pipeline: [{randomDigits: 6}]}}
	stamp: {type: "datetime", default: {pipeline: ["now"]}}
	shout: {type: "string", onSave: [{self: "text"}, {transform: {fn: "upper"}}]}
}
`

func upper(_ context.Context, c pipeline.Ctx) (value.Value, error) {
	s, _ := value.AsString(c.Value())
	out := []rune(s)
	for i, r := range out {
		if r >= 'a' && r <= 'z' {
			out[i] = r - 'a' + 'A'
		}
	}
	return value.String(string(out)), nil
}

func noteScenario(flow ...Step) *Scenario {
	return &Scenario{
		Name:     "notes",
		Source:   noteSchema,
		IDPrefix: "note",
		Seed:     42,
		Flow:     flow,
	}
}

func TestRun_CreateAndOutput(t *testing.T) {
	scenario := noteScenario(Step{
		Model:  "Note",
		Action: "create",
		Input:  map[string]any{"text": "  hi there ", "pin": "7"},
		Expect: &Expect{Output: map[string]any{
			"id":    "note-0001",
			"text":  "hi there",
			"pin":   "0007",
			"shout": "HI THERE",
		}},
	})

	result, err := Run(scenario, WithFunc("upper", upper))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 1)
	ev := result.Trace[0]
	assert.Equal(t, PhaseFlow, ev.Phase)
	assert.Equal(t, "note-0001", ev.ID)
	assert.Equal(t, OutcomeOK, ev.Outcome)

	stamp, ok := ev.Output.Get("stamp")
	require.True(t, ok)
	assert.True(t, value.Equal(value.NewDateTime(testutil.Epoch), stamp), "stamp %s", render(stamp))

	code, _ := ev.Output.Get("code")
	s, _ := value.AsString(code)
	assert.Len(t, s, 6)

	assert.NotEmpty(t, result.Snapshot)
	notes, ok := result.State.Get("Note")
	require.True(t, ok)
	assert.Equal(t, 1, notes.(value.Object).Len())
}

func TestRun_IsDeterministic(t *testing.T) {
	step := Step{Model: "Note", Action: "create", Input: map[string]any{"text": "same"}}

	first, err := Run(noteScenario(step, step), WithFunc("upper", upper))
	require.NoError(t, err)
	second, err := Run(noteScenario(step, step), WithFunc("upper", upper))
	require.NoError(t, err)

	assert.Equal(t, first.Snapshot, second.Snapshot)
	a, err := Snapshot("notes", first)
	require.NoError(t, err)
	b, err := Snapshot("notes", second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_ExpectedFailure(t *testing.T) {
	scenario := noteScenario(Step{
		Model:  "Note",
		Action: "create",
		Input:  map[string]any{"text": " x "},
		Expect: &Expect{
			Error:   "VALIDATION_FAILED",
			Path:    []string{"text"},
			Message: "Value length is less than 2.",
		},
	})

	result, err := Run(scenario, WithFunc("upper", upper))
	require.NoError(t, err)

	require.Len(t, result.Trace, 1)
	assert.Equal(t, "VALIDATION_FAILED", result.Trace[0].Outcome)
	assert.Equal(t, []string{"text"}, result.Trace[0].Path)
	assert.Empty(t, result.Trace[0].ID)
}

func TestRun_UnexpectedOutcomesAreReported(t *testing.T) {
	scenario := noteScenario(
		Step{
			Model:  "Note",
			Action: "create",
			Input:  map[string]any{"text": "x"},
		},
		Step{
			Model:  "Note",
			Action: "create",
			Input:  map[string]any{"text": "fine"},
			Expect: &Expect{Error: "VALIDATION_FAILED"},
		},
		Step{
			Model:  "Note",
			Action: "create",
			Input:  map[string]any{"text": "fine"},
			Expect: &Expect{Output: map[string]any{"text": "other", "missing": 1}},
		},
	)

	result, err := Run(scenario, WithFunc("upper", upper))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "flow[0]: expected success")
	assert.Contains(t, result.Errors[1], "flow[1]: expected VALIDATION_FAILED, got success")
	assert.Contains(t, result.Errors[2], "flow[2]: output missing: missing")
	assert.Contains(t, result.Errors[3], `flow[2]: output text: expected "other", got "fine"`)
}

func TestRun_TrustedUpdateSkipsPipelines(t *testing.T) {
	scenario := noteScenario(
		Step{Model: "Note", Action: "create", Input: map[string]any{"text": "draft"}},
		Step{
			Model:   "Note",
			Action:  "update",
			ID:      "note-0001",
			Trusted: true,
			Input:   map[string]any{"text": "  x  ", "code": "000000"},
			Expect:  &Expect{Output: map[string]any{"text": "  x  ", "code": "000000", "shout": "  X  "}},
		},
	)
	scenario.Assertions = []Assertion{
		{Type: AssertRecordState, Model: "Note", ID: "note-0001", Expect: map[string]any{"code": "000000"}},
	}

	result, err := Run(scenario, WithFunc("upper", upper))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_UpsertCreatesThenUpdates(t *testing.T) {
	scenario := noteScenario(
		Step{
			Model:  "Note",
			Action: "upsert",
			ID:     "note-0001",
			Input:  map[string]any{"text": "first"},
			Expect: &Expect{Output: map[string]any{"id": "note-0001", "text": "first"}},
		},
		Step{
			Model:  "Note",
			Action: "upsert",
			ID:     "note-0001",
			Input:  map[string]any{"text": "second"},
			Expect: &Expect{Output: map[string]any{"id": "note-0001", "text": "second"}},
		},
	)
	scenario.Assertions = []Assertion{
		{Type: AssertRecordCount, Model: "Note", Count: 1},
	}

	result, err := Run(scenario, WithFunc("upper", upper))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_FailedAssertions(t *testing.T) {
	scenario := noteScenario(Step{Model: "Note", Action: "create", Input: map[string]any{"text": "kept"}})
	scenario.Assertions = []Assertion{
		{Type: AssertRecordAbsent, Model: "Note", ID: "note-0001"},
		{Type: AssertRecordExists, Model: "Note", ID: "note-0009"},
		{Type: AssertRecordCount, Model: "Note", Count: 3},
		{Type: AssertRecordState, Model: "Note", ID: "note-0001", Expect: map[string]any{"text": "gone"}},
		{Type: AssertRecordState, Model: "Note", ID: "note-0009", Expect: map[string]any{"text": "gone"}},
	}

	result, err := Run(scenario, WithFunc("upper", upper))
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "Assertion failed: record_absent")
	assert.Contains(t, result.Errors[0], `Note "note-0001" stored`)
	assert.Contains(t, result.Errors[1], `Expected: Note "note-0009" stored`)
	assert.Contains(t, result.Errors[2], "Actual: 1 Note records")
	assert.Contains(t, result.Errors[3], `text: expected "gone", got "kept"`)
	assert.Contains(t, result.Errors[4], "Actual: no record")
}

func TestRun_SetupFailureAborts(t *testing.T) {
	scenario := noteScenario(Step{Model: "Note", Action: "create", Input: map[string]any{"text": "ok"}})
	scenario.Setup = []Step{{Model: "Note", Action: "create", Input: map[string]any{"text": "x"}}}

	_, err := Run(scenario, WithFunc("upper", upper))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute setup")
	assert.Contains(t, err.Error(), "VALIDATION_FAILED")
}

func TestRun_SchemaErrors(t *testing.T) {
	_, err := Run(&Scenario{
		Name:   "broken",
		Source: `model: A: fields: id: {type: "nope"}`,
		Flow:   []Step{{Model: "A", Action: "create"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile schema")
}

func TestRun_MissingIdentityIsFatal(t *testing.T) {
	scenario := noteScenario(Step{
		Model:    "Note",
		Action:   "create",
		Input:    map[string]any{"text": "ok"},
		Identity: &RecordRef{Model: "Note", ID: "nobody"},
	})

	_, err := Run(scenario, WithFunc("upper", upper))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `identity Note "nobody"`)
}
