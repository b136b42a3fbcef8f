package value

import (
	"errors"
	"fmt"
)

// ErrTypeMismatch is the sentinel wrapped by every TypeMismatchError.
var ErrTypeMismatch = errors.New("type mismatch")

// TypeMismatchError reports a value that does not fit the expected type or
// family.
type TypeMismatchError struct {
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Got)
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

func mismatch(expected string, got any) *TypeMismatchError {
	var name string
	switch g := got.(type) {
	case Value:
		name = string(KindOf(g))
	case nil:
		name = "null"
	default:
		name = fmt.Sprintf("%T", got)
	}
	return &TypeMismatchError{Expected: expected, Got: name}
}

// IsTypeMismatch reports whether err is (or wraps) a type mismatch.
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}
