// Package modifiers provides the built-in pipeline operations and the
// name-to-builder Registry used by the schema compiler.
//
// Every constructor returns a pipeline.Modifier. Validators pass the Ctx
// through unchanged on success and mark it invalid otherwise; transformers
// replace the value; record predicates (isNew, isModified, isSelf) and if
// emit condition signals. Unless a modifier exists to react to invalidity
// (fallback, print) or to condition signals (then, else, valid, when), a
// Ctx that is not a plain value passes through untouched.
//
// Invalid reasons follow the form "Value is not string." so they can be
// shown to API clients as is.
package modifiers
