package schema

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/pipeline/modifiers"
)

// CompilePipeline builds a pipeline from a CUE list of items.
func CompilePipeline(field string, v cue.Value, reg *modifiers.Registry) (pipeline.Pipeline, error) {
	if err := v.Err(); err != nil {
		return pipeline.Pipeline{}, formatCUEError(field, err)
	}
	if v.IncompleteKind() != cue.ListKind {
		return pipeline.Pipeline{}, &CompileError{
			Field:   field,
			Message: "pipeline must be a list",
			Pos:     v.Pos(),
		}
	}

	iter, err := v.List()
	if err != nil {
		return pipeline.Pipeline{}, formatCUEError(field, err)
	}
	var mods []pipeline.Modifier
	for i := 0; iter.Next(); i++ {
		m, err := compileItem(fmt.Sprintf("%s[%d]", field, i), iter.Value(), reg)
		if err != nil {
			return pipeline.Pipeline{}, err
		}
		mods = append(mods, m)
	}
	return pipeline.NewPipeline(mods...), nil
}

// compileItem builds one modifier from "name" or {name: arg}.
func compileItem(field string, v cue.Value, reg *modifiers.Registry) (pipeline.Modifier, error) {
	var (
		name string
		args []pipeline.Argument
	)

	switch v.IncompleteKind() {
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(field, err)
		}
		name = s
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(field, err)
		}
		count := 0
		for iter.Next() {
			count++
			name = iter.Label()
			args, err = compileArgs(field+"."+name, iter.Value(), reg)
			if err != nil {
				return nil, err
			}
		}
		if count != 1 {
			return nil, &CompileError{
				Field:   field,
				Message: fmt.Sprintf("modifier struct must have exactly one key, got %d", count),
				Pos:     v.Pos(),
			}
		}
	default:
		return nil, &CompileError{
			Field:   field,
			Message: "modifier must be a name or a one-key struct",
			Pos:     v.Pos(),
		}
	}

	m, err := reg.Build(name, args)
	if err != nil {
		return nil, &CompileError{Field: field, Message: err.Error(), Pos: v.Pos(), Err: err}
	}
	return m, nil
}

// compileArgs spreads a list into several arguments; anything else is one.
func compileArgs(field string, v cue.Value, reg *modifiers.Registry) ([]pipeline.Argument, error) {
	if v.IncompleteKind() != cue.ListKind {
		arg, err := CompileArgument(field, v, reg)
		if err != nil {
			return nil, err
		}
		return []pipeline.Argument{arg}, nil
	}

	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(field, err)
	}
	var args []pipeline.Argument
	for i := 0; iter.Next(); i++ {
		arg, err := CompileArgument(fmt.Sprintf("%s[%d]", field, i), iter.Value(), reg)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	return args, nil
}

// CompileArgument builds an argument: {pipeline: [...]}, {fn: "name"} or a
// literal.
func CompileArgument(field string, v cue.Value, reg *modifiers.Registry) (pipeline.Argument, error) {
	if v.IncompleteKind() == cue.StructKind {
		if p := v.LookupPath(cue.ParsePath("pipeline")); p.Exists() && fieldCount(v) == 1 {
			sub, err := CompilePipeline(field+".pipeline", p, reg)
			if err != nil {
				return pipeline.Argument{}, err
			}
			return pipeline.Pipe(sub), nil
		}
		if f := v.LookupPath(cue.ParsePath("fn")); f.Exists() && fieldCount(v) == 1 {
			name, err := f.String()
			if err != nil {
				return pipeline.Argument{}, formatCUEError(field+".fn", err)
			}
			fn, ok := reg.Func(name)
			if !ok {
				return pipeline.Argument{}, &CompileError{
					Field:   field + ".fn",
					Message: fmt.Sprintf("function %q is not registered", name),
					Pos:     f.Pos(),
				}
			}
			return pipeline.Fn(fn), nil
		}
	}

	lit, err := literal(field, v)
	if err != nil {
		return pipeline.Argument{}, err
	}
	return pipeline.Lit(lit), nil
}

func fieldCount(v cue.Value) int {
	iter, err := v.Fields()
	if err != nil {
		return 0
	}
	n := 0
	for iter.Next() {
		n++
	}
	return n
}
