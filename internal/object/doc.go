// Package object integrates field pipelines with the record lifecycle.
//
// A Model declares ordered Fields with flags, defaults and on-set, on-save
// and on-output pipelines. An Object is one record of a Model. It moves
// through Uninitialized -> Initialized -> (Modified)* -> Saved:
//
//   - Set runs each supplied field through its on-set pipeline. The first
//     call also applies defaults to absent fields of a new record, once.
//   - Save re-runs on-save pipelines, enforces required fields and
//     persists through the attached Connection.
//   - Output shapes the selected fields through on-output pipelines.
//
// CRITICAL PATTERNS:
//
// All-or-nothing keys: every input key is checked against the allowed set
// before any field is processed.
//
// Staged writes: Set and Save evaluate into a draft that pipelines observe
// (later fields see earlier resolved values). The draft replaces the
// record state only when every field succeeded, so a failing call leaves
// the record exactly as it was.
//
// Exclusive mutation: an Object guards every public call with a mutex.
package object
