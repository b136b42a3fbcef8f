package object

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes record errors.
type ErrorKind string

const (
	// KindTypeMismatch indicates input that does not fit a field's type.
	KindTypeMismatch ErrorKind = "TYPE_MISMATCH"

	// KindKeysUnallowed indicates input keys outside the permitted set.
	KindKeysUnallowed ErrorKind = "KEYS_UNALLOWED"

	// KindValidationFailed indicates a pipeline marked a field invalid.
	KindValidationFailed ErrorKind = "VALIDATION_FAILED"

	// KindInternalInconsistency indicates a misconfigured schema, e.g. a
	// pipeline that ends in a condition signal.
	KindInternalInconsistency ErrorKind = "INTERNAL_INCONSISTENCY"

	// KindNotFound indicates a record that does not exist.
	KindNotFound ErrorKind = "NOT_FOUND"

	// KindStorage indicates a failure of the attached connection.
	KindStorage ErrorKind = "STORAGE"
)

// ActionError is the structured error returned by record operations.
type ActionError struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Message is a human-readable description. For validation failures it
	// is the pipeline's invalid reason.
	Message string

	// Model is the model of the affected record.
	Model string

	// Path locates the failing field, e.g. ["tags", "2"].
	Path []string

	// Keys lists offending input keys for KindKeysUnallowed.
	Keys []string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ActionError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Model != "" {
		fmt.Fprintf(&b, " (model=%s", e.Model)
		if len(e.Path) > 0 {
			fmt.Fprintf(&b, ", path=%s", strings.Join(e.Path, "."))
		}
		if len(e.Keys) > 0 {
			fmt.Fprintf(&b, ", keys=%s", strings.Join(e.Keys, ","))
		}
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *ActionError) Unwrap() error {
	return e.Err
}

func keysUnallowed(model string, keys []string) *ActionError {
	return &ActionError{
		Kind:    KindKeysUnallowed,
		Message: "Unallowed keys in input.",
		Model:   model,
		Keys:    keys,
	}
}

func validationFailed(model string, path []string, reason string) *ActionError {
	return &ActionError{
		Kind:    KindValidationFailed,
		Message: reason,
		Model:   model,
		Path:    path,
	}
}

func internalInconsistency(model string, path []string, message string) *ActionError {
	return &ActionError{
		Kind:    KindInternalInconsistency,
		Message: message,
		Model:   model,
		Path:    path,
	}
}

func storageError(model string, op string, err error) *ActionError {
	kind := KindStorage
	if errors.Is(err, ErrNotFound) {
		kind = KindNotFound
	}
	return &ActionError{
		Kind:    kind,
		Message: fmt.Sprintf("%s failed: %v", op, err),
		Model:   model,
		Err:     err,
	}
}

// ErrNotFound is returned by connections when a record does not exist.
var ErrNotFound = errors.New("record not found")

func kindOf(err error) (ErrorKind, bool) {
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return "", false
}

// IsKeysUnallowed reports whether err is a KEYS_UNALLOWED ActionError.
func IsKeysUnallowed(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindKeysUnallowed
}

// IsValidationFailed reports whether err is a VALIDATION_FAILED ActionError.
func IsValidationFailed(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindValidationFailed
}

// IsTypeMismatch reports whether err is a TYPE_MISMATCH ActionError.
func IsTypeMismatch(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindTypeMismatch
}

// IsInternalInconsistency reports whether err is an INTERNAL_INCONSISTENCY
// ActionError.
func IsInternalInconsistency(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindInternalInconsistency
}

// IsNotFound reports whether err is a NOT_FOUND ActionError or wraps
// ErrNotFound.
func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return (ok && k == KindNotFound) || errors.Is(err, ErrNotFound)
}

// IsStorage reports whether err is a STORAGE ActionError.
func IsStorage(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindStorage
}
