// Package pipeline implements the field pipeline engine.
//
// A Pipeline is an ordered list of Modifiers. Process folds a Ctx through
// them strictly left to right: modifier i+1 sees exactly the Ctx produced by
// modifier i. There is no global short-circuit flag; instead every Ctx
// carries a State and well-behaved modifiers pass a non-value Ctx through
// unchanged.
//
// ARCHITECTURE:
//
// Ctx (a.k.a. stage):
// One current value, one State, an invalid reason, a Path for diagnostics,
// and optional read-only views of the owning Record and the acting identity.
//
// State:
//   - StateValue: the Ctx holds a value to transform or validate
//   - StateInvalid: terminal; the reason is preserved and only the path may change
//   - StateTrue / StateFalse: condition signals produced by if/isNew/etc.
//
// Argument:
// A closed set of literal value, nested Pipeline, or host Func. Resolve
// always executes against the current Ctx.
//
// CRITICAL PATTERNS:
//
// Once invalid, a Ctx stays invalid. WithValue, Invalid, True and False are
// no-ops on an invalid Ctx; Recover is the single escape hatch.
//
// Evaluation is sequential. Modifiers that suspend (hashing, lookups) take a
// context.Context and the pipeline does not start the next step until the
// current one returns.
package pipeline
