package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/strata/internal/object"
	"github.com/roach88/strata/internal/pipeline"
)

// Scenario defines a record-layer test scenario.
// A scenario compiles a schema, runs a sequence of record actions against a
// fresh store and asserts on each action's outcome and on the final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is the path to a CUE file or directory.
	// Paths are relative to the scenario file location.
	Schema string `yaml:"schema,omitempty"`

	// Source is an inline CUE schema, used instead of Schema.
	Source string `yaml:"source,omitempty"`

	// IDPrefix prefixes the ids produced by the uuid modifiers.
	// If empty, defaults to "id".
	IDPrefix string `yaml:"id_prefix,omitempty"`

	// Seed seeds the random source of randomDigits.
	Seed uint64 `yaml:"seed,omitempty"`

	// Setup contains actions run before the main flow.
	// Setup actions must succeed; a failing setup aborts the run.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow contains the actions under test with their expected outcomes.
	Flow []Step `yaml:"flow"`

	// Assertions validate the final stored state.
	// Supported types: record_exists, record_absent, record_count, record_state
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is a single record action.
type Step struct {
	// Model is the model name.
	Model string `yaml:"model"`

	// Action is one of create, update, upsert, delete, find.
	Action string `yaml:"action"`

	// ID addresses an existing record (required for update, delete, find).
	ID string `yaml:"id,omitempty"`

	// Input is the field input. Values are converted with value.FromAny and
	// then decoded against the declared field types.
	Input map[string]any `yaml:"input,omitempty"`

	// Trusted applies Input through Update, skipping on-set pipelines and
	// allowing read-only fields.
	Trusted bool `yaml:"trusted,omitempty"`

	// Identity names a stored record that acts as the identity.
	Identity *RecordRef `yaml:"identity,omitempty"`

	// Select restricts the output to these keys.
	Select []string `yaml:"select,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, the action must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// RecordRef addresses a stored record.
type RecordRef struct {
	Model string `yaml:"model"`
	ID    string `yaml:"id"`
}

// Expect is the expected outcome of a step.
type Expect struct {
	// Error is the expected error kind (e.g. VALIDATION_FAILED).
	// Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Path is the expected error path.
	Path []string `yaml:"path,omitempty"`

	// Message is the expected error message.
	Message string `yaml:"message,omitempty"`

	// Keys are the expected unallowed keys.
	Keys []string `yaml:"keys,omitempty"`

	// Output contains expected output values.
	// This is a subset match - only specified fields are validated.
	Output map[string]any `yaml:"output,omitempty"`
}

// Assertion validates the final stored state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "record_exists": the record is stored
	// - "record_absent": the record is not stored
	// - "record_count": the model holds exactly Count records
	// - "record_state": the stored record holds Expect (subset match)
	Type string `yaml:"type"`

	Model string `yaml:"model"`

	ID string `yaml:"id,omitempty"`

	Count int `yaml:"count,omitempty"`

	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertRecordExists = "record_exists"
	AssertRecordAbsent = "record_absent"
	AssertRecordCount  = "record_count"
	AssertRecordState  = "record_state"
)

// Step actions accepted by the harness.
var stepActions = map[string]pipeline.Action{
	"create": pipeline.ActionCreate,
	"update": pipeline.ActionUpdate,
	"upsert": pipeline.ActionUpsert,
	"delete": pipeline.ActionDelete,
	"find":   pipeline.ActionFind,
}

// LoadScenario reads and parses a scenario YAML file.
// The schema path is resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the schema path relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) && basePath != "" {
		scenario.Schema = filepath.Join(basePath, scenario.Schema)
	}
	return scenario, nil
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Schema == "" && s.Source == "" {
		return fmt.Errorf("one of schema or source is required")
	}
	if s.Schema != "" && s.Source != "" {
		return fmt.Errorf("schema and source are mutually exclusive")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow must have at least one step")
	}

	for i, step := range s.Setup {
		if err := validateStep(fmt.Sprintf("setup[%d]", i), step); err != nil {
			return err
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is not allowed in setup", i)
		}
	}
	for i, step := range s.Flow {
		if err := validateStep(fmt.Sprintf("flow[%d]", i), step); err != nil {
			return err
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(where string, step Step) error {
	if step.Model == "" {
		return fmt.Errorf("%s: model is required", where)
	}
	action, ok := stepActions[step.Action]
	if !ok {
		return fmt.Errorf("%s: unknown action %q", where, step.Action)
	}
	switch action {
	case pipeline.ActionUpdate, pipeline.ActionDelete, pipeline.ActionFind, pipeline.ActionUpsert:
		if step.ID == "" {
			return fmt.Errorf("%s: id is required for %s", where, step.Action)
		}
	}
	if action == pipeline.ActionDelete || action == pipeline.ActionFind {
		if len(step.Input) > 0 {
			return fmt.Errorf("%s: input is not allowed for %s", where, step.Action)
		}
	}
	if step.Identity != nil && (step.Identity.Model == "" || step.Identity.ID == "") {
		return fmt.Errorf("%s: identity requires model and id", where)
	}
	if step.Expect != nil && step.Expect.Error != "" {
		if !knownErrorKinds[object.ErrorKind(step.Expect.Error)] {
			return fmt.Errorf("%s: unknown error kind %q", where, step.Expect.Error)
		}
		if len(step.Expect.Output) > 0 {
			return fmt.Errorf("%s: output cannot be expected from a failing step", where)
		}
	}
	return nil
}

var knownErrorKinds = map[object.ErrorKind]bool{
	object.KindTypeMismatch:          true,
	object.KindKeysUnallowed:         true,
	object.KindValidationFailed:      true,
	object.KindInternalInconsistency: true,
	object.KindNotFound:              true,
	object.KindStorage:               true,
}

func validateAssertion(index int, a Assertion) error {
	if a.Model == "" {
		return fmt.Errorf("assertions[%d]: model is required", index)
	}

	switch a.Type {
	case AssertRecordExists, AssertRecordAbsent:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for %s", index, a.Type)
		}
	case AssertRecordCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for record_count", index)
		}
	case AssertRecordState:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for record_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for record_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
