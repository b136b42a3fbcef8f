// Package harness runs record-layer scenarios for strata schemas.
//
// A scenario compiles a CUE schema, executes record actions against a fresh
// in-memory store and checks each action's outcome and the final state.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	schema: ../schema/blog.cue
//	setup:
//	  - model: User
//	    action: create
//	    input: { email: ada@example.com }
//	flow:
//	  - model: User
//	    action: update
//	    id: user-0001
//	    input: { age: 17 }
//	    expect:
//	      error: VALIDATION_FAILED
//	      path: [age]
//	assertions:
//	  - type: record_state
//	    model: User
//	    id: user-0001
//	    expect: { email: ada@example.com }
//
// Step actions are create, update, upsert, delete and find. A step with
// trusted: true writes its input through Update, bypassing on-set
// pipelines. A step with identity: {model, id} runs with that stored record
// as the acting identity.
//
// # Assertion Types
//
//   - record_exists: the record is stored
//   - record_absent: the record is not stored
//   - record_count: the model holds exactly count records
//   - record_state: the stored record holds the expected values (subset match)
//
// # Deterministic Testing
//
// The modifier registry of every run uses:
//   - a testutil.DeterministicClock starting at 2024-01-01T00:00:00Z
//   - a testutil.SequenceIDGenerator ("<id_prefix>-0001", ...)
//   - a PCG random source seeded from the scenario's seed
//   - an in-memory SQLite store (isolated per run)
//
// This ensures identical traces across runs for golden file comparison.
package harness
