package schema

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/strata/internal/value"
)

// literal converts a concrete CUE value. Struct field order is kept.
func literal(field string, v cue.Value) (value.Value, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(field, err)
	}
	if !v.IsConcrete() {
		return nil, &CompileError{Field: field, Message: "value must be concrete", Pos: v.Pos()}
	}

	switch v.Kind() {
	case cue.NullKind:
		return value.Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(field, err)
		}
		return value.Bool(b), nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(field, err)
		}
		return value.I64(n), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(field, err)
		}
		return value.F64(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(field, err)
		}
		return value.String(s), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(field, err)
		}
		var arr value.Array
		for i := 0; iter.Next(); i++ {
			elem, err := literal(fmt.Sprintf("%s[%d]", field, i), iter.Value())
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		if arr == nil {
			arr = value.Array{}
		}
		return arr, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(field, err)
		}
		var pairs []value.Pair
		for iter.Next() {
			elem, err := literal(field+"."+iter.Label(), iter.Value())
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, value.O(iter.Label(), elem))
		}
		return value.NewObject(pairs...), nil
	}
	return nil, &CompileError{
		Field:   field,
		Message: fmt.Sprintf("unsupported value kind: %v", v.Kind()),
		Pos:     v.Pos(),
	}
}
