package value

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// IsNull reports whether v is Null or a nil interface.
func IsNull(v Value) bool {
	return KindOf(v) == KindNull
}

// IsNumeric reports whether v is one of the numeric variants.
func IsNumeric(v Value) bool {
	return FamilyOf(v) == FamilyNumeric
}

func isInteger(v Value) bool {
	switch v.(type) {
	case I32, I64:
		return true
	}
	return false
}

// AsInt64 returns v as an int64. Floats are accepted only when integral.
func AsInt64(v Value) (int64, bool) {
	switch n := v.(type) {
	case I32:
		return int64(n), true
	case I64:
		return int64(n), true
	case F32, F64:
		f, _ := AsFloat64(n)
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

// AsInt returns v as an int, e.g. for length arguments.
func AsInt(v Value) (int, bool) {
	n, ok := AsInt64(v)
	if !ok || n < math.MinInt || n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}

// AsFloat64 returns any numeric variant as a float64.
func AsFloat64(v Value) (float64, bool) {
	switch n := v.(type) {
	case I32:
		return float64(n), true
	case I64:
		return float64(n), true
	case F32:
		return float64(n), true
	case F64:
		return float64(n), true
	}
	return 0, false
}

// AsString returns the text of a String or ObjectID.
func AsString(v Value) (string, bool) {
	switch s := v.(type) {
	case String:
		return string(s), true
	case ObjectID:
		return string(s), true
	}
	return "", false
}

// AsBool returns the value of a Bool.
func AsBool(v Value) (bool, bool) {
	b, ok := v.(Bool)
	return bool(b), ok
}

// Equal reports structural equality. Numeric widths compare by mathematical
// value, object key order is ignored, and String equals ObjectID with the
// same text. Pipelines are never equal.
func Equal(a, b Value) bool {
	fa, fb := FamilyOf(a), FamilyOf(b)
	if fa != fb {
		return false
	}
	switch fa {
	case FamilyNull:
		return true
	case FamilyBool:
		return a.(Bool) == b.(Bool)
	case FamilyNumeric:
		c, err := compareNumeric(a, b)
		return err == nil && c == 0
	case FamilyString:
		sa, _ := AsString(a)
		sb, _ := AsString(b)
		return sa == sb
	case FamilyDateTime:
		return a.(DateTime).Time().Equal(b.(DateTime).Time())
	case FamilyArray:
		xa, xb := a.(Array), b.(Array)
		if len(xa) != len(xb) {
			return false
		}
		for i := range xa {
			if !Equal(xa[i], xb[i]) {
				return false
			}
		}
		return true
	case FamilyObject:
		oa, ob := a.(Object), b.(Object)
		if oa.Len() != ob.Len() {
			return false
		}
		for _, k := range oa.keys {
			vb, ok := ob.vals[k]
			if !ok || !Equal(oa.vals[k], vb) {
				return false
			}
		}
		return true
	}
	return false
}

// Compare orders a against b. It is defined within the numeric, string and
// datetime families; anything else returns a *TypeMismatchError.
func Compare(a, b Value) (int, error) {
	fa, fb := FamilyOf(a), FamilyOf(b)
	if fa != fb {
		return 0, &TypeMismatchError{Expected: fa.String(), Got: fb.String()}
	}
	switch fa {
	case FamilyNumeric:
		return compareNumeric(a, b)
	case FamilyString:
		sa, _ := AsString(a)
		sb, _ := AsString(b)
		return strings.Compare(sa, sb), nil
	case FamilyDateTime:
		return a.(DateTime).Time().Compare(b.(DateTime).Time()), nil
	}
	return 0, &TypeMismatchError{Expected: "ordered value", Got: fa.String()}
}

func compareNumeric(a, b Value) (int, error) {
	if isInteger(a) && isInteger(b) {
		ia, _ := AsInt64(a)
		ib, _ := AsInt64(b)
		switch {
		case ia < ib:
			return -1, nil
		case ia > ib:
			return 1, nil
		}
		return 0, nil
	}
	fa, okA := AsFloat64(a)
	fb, okB := AsFloat64(b)
	if !okA || !okB {
		return 0, mismatch("numeric", b)
	}
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return 0, errors.New("NaN is not ordered")
	}
	switch {
	case fa < fb:
		return -1, nil
	case fa > fb:
		return 1, nil
	}
	return 0, nil
}

// ArithOp is a binary numeric operation.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
)

// ErrDivisionByZero is returned by Arith for OpDiv and OpMod with a zero
// right-hand side.
var ErrDivisionByZero = errors.New("division by zero")

// Arith applies op to a and b and returns a result of a's width. An integer
// receiver combined with a float operand yields F64. I32 results that
// overflow are reported as errors.
func Arith(a Value, op ArithOp, b Value) (Value, error) {
	if !IsNumeric(a) {
		return nil, mismatch("numeric", a)
	}
	if !IsNumeric(b) {
		return nil, mismatch("numeric", b)
	}

	if isInteger(a) && isInteger(b) {
		x, _ := AsInt64(a)
		y, _ := AsInt64(b)
		var r int64
		switch op {
		case OpAdd:
			r = x + y
		case OpSub:
			r = x - y
		case OpMul:
			r = x * y
		case OpDiv:
			if y == 0 {
				return nil, ErrDivisionByZero
			}
			r = x / y
		case OpMod:
			if y == 0 {
				return nil, ErrDivisionByZero
			}
			r = x % y
		}
		if _, ok := a.(I32); ok {
			if r < math.MinInt32 || r > math.MaxInt32 {
				return nil, fmt.Errorf("i32 overflow: %d", r)
			}
			return I32(r), nil
		}
		return I64(r), nil
	}

	x, _ := AsFloat64(a)
	y, _ := AsFloat64(b)
	var r float64
	switch op {
	case OpAdd:
		r = x + y
	case OpSub:
		r = x - y
	case OpMul:
		r = x * y
	case OpDiv:
		if y == 0 {
			return nil, ErrDivisionByZero
		}
		r = x / y
	case OpMod:
		if y == 0 {
			return nil, ErrDivisionByZero
		}
		r = math.Mod(x, y)
	}
	return WithWidthOf(a, r), nil
}

// WithWidthOf returns f in the float width of like. Integer receivers yield
// F64 since the result may be fractional.
func WithWidthOf(like Value, f float64) Value {
	if _, ok := like.(F32); ok {
		return F32(f)
	}
	return F64(f)
}
