// Package value provides the tagged union of data exchanged by strata pipelines.
//
// This package contains the Value variants, the declared field types used for
// wire decoding, and the canonical serialization used for hashing. It imports
// nothing internal; every other package builds on it.
//
// Key design constraints:
//   - Value is sealed: only the variants declared here implement it
//   - Values are immutable; Object.With and friends return copies
//   - A Value never silently changes variant across an operation
//   - Ordering is only defined within a family (numeric, string, datetime)
package value
