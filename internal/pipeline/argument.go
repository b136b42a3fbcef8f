package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/strata/internal/value"
)

// Func is a host-provided function usable as an argument, a default, or the
// body of transform/validate/callback.
type Func func(ctx context.Context, c Ctx) (value.Value, error)

type argKind int

const (
	argLiteral argKind = iota
	argPipeline
	argFunc
)

// Argument is a literal Value, a nested Pipeline, or a host Func.
// The zero Argument is the literal Null.
type Argument struct {
	kind     argKind
	literal  value.Value
	pipeline Pipeline
	fn       Func
}

// Lit returns a literal argument.
func Lit(v value.Value) Argument {
	if v == nil {
		v = value.Null{}
	}
	return Argument{kind: argLiteral, literal: v}
}

// Pipe returns a pipeline argument.
func Pipe(p Pipeline) Argument {
	return Argument{kind: argPipeline, pipeline: p}
}

// Fn returns a host function argument.
func Fn(f Func) Argument {
	return Argument{kind: argFunc, fn: f}
}

// IsLiteral reports whether a is a literal.
func (a Argument) IsLiteral() bool {
	return a.kind == argLiteral
}

// Literal returns the literal value, or false when a is not a literal.
func (a Argument) Literal() (value.Value, bool) {
	if a.kind != argLiteral {
		return nil, false
	}
	if a.literal == nil {
		return value.Null{}, true
	}
	return a.literal, true
}

// Pipeline returns the nested pipeline, or false when a is not one.
func (a Argument) Pipeline() (Pipeline, bool) {
	return a.pipeline, a.kind == argPipeline
}

// Func returns the host function, or false when a is not one.
func (a Argument) Func() (Func, bool) {
	return a.fn, a.kind == argFunc
}

// ErrArgumentInvalid is wrapped by Resolve failures.
var ErrArgumentInvalid = errors.New("argument is invalid")

// Resolve produces the argument's value against the current Ctx. A pipeline
// argument runs over the current Ctx; ending invalid yields an error whose
// message is the pipeline's reason. A condition outcome resolves to Bool.
func (a Argument) Resolve(ctx context.Context, c Ctx) (value.Value, error) {
	switch a.kind {
	case argPipeline:
		out := a.pipeline.Process(ctx, c.Derive(c.Value()))
		switch out.State() {
		case StateInvalid:
			return nil, &ArgumentError{Reason: out.Reason()}
		case StateTrue:
			return value.Bool(true), nil
		case StateFalse:
			return value.Bool(false), nil
		}
		return out.Value(), nil
	case argFunc:
		v, err := a.fn(ctx, c)
		if err != nil {
			return nil, &ArgumentError{Reason: err.Error(), Err: err}
		}
		if v == nil {
			v = value.Null{}
		}
		return v, nil
	}
	if a.literal == nil {
		return value.Null{}, nil
	}
	return a.literal, nil
}

// ArgumentError reports an argument that could not be resolved.
type ArgumentError struct {
	Reason string
	Err    error
}

func (e *ArgumentError) Error() string {
	return e.Reason
}

func (e *ArgumentError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrArgumentInvalid, e.Err}
	}
	return []error{ErrArgumentInvalid}
}

func (a Argument) String() string {
	switch a.kind {
	case argPipeline:
		return fmt.Sprintf("pipeline%v", a.pipeline.Names())
	case argFunc:
		return "func"
	}
	data, err := value.MarshalJSON(a.literal)
	if err != nil {
		return string(value.KindOf(a.literal))
	}
	return string(data)
}
