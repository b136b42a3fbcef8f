package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"time"
)

// Decode converts a decoded JSON tree (encoding/json with UseNumber) into a
// Value of the declared type. null is accepted for every type.
func Decode(raw any, t Type) (Value, error) {
	if raw == nil {
		return Null{}, nil
	}
	if v, ok := raw.(Value); ok {
		return decodeValue(v, t)
	}

	switch t {
	case TypeAny:
		return FromAny(raw)
	case TypeBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, mismatch(string(t), raw)
		}
		return Bool(b), nil
	case TypeI32:
		n, err := decodeInt(raw, t)
		if err != nil {
			return nil, err
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, &TypeMismatchError{Expected: string(t), Got: "out of range integer"}
		}
		return I32(n), nil
	case TypeI64:
		n, err := decodeInt(raw, t)
		if err != nil {
			return nil, err
		}
		return I64(n), nil
	case TypeF32:
		f, err := decodeFloat(raw, t)
		if err != nil {
			return nil, err
		}
		return F32(f), nil
	case TypeF64:
		f, err := decodeFloat(raw, t)
		if err != nil {
			return nil, err
		}
		return F64(f), nil
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, mismatch(string(t), raw)
		}
		return String(s), nil
	case TypeObjectID:
		s, ok := raw.(string)
		if !ok {
			return nil, mismatch(string(t), raw)
		}
		return ObjectID(s), nil
	case TypeDateTime:
		switch d := raw.(type) {
		case time.Time:
			return NewDateTime(d), nil
		case string:
			ts, err := time.Parse(time.RFC3339Nano, d)
			if err != nil {
				return nil, &TypeMismatchError{Expected: string(t), Got: fmt.Sprintf("string %q", d)}
			}
			return NewDateTime(ts), nil
		}
		return nil, mismatch(string(t), raw)
	case TypeArray:
		if _, ok := raw.([]any); !ok {
			return nil, mismatch(string(t), raw)
		}
		return FromAny(raw)
	case TypeObject:
		if _, ok := raw.(map[string]any); !ok {
			return nil, mismatch(string(t), raw)
		}
		return FromAny(raw)
	}
	return nil, fmt.Errorf("unknown field type %q", t)
}

// decodeValue checks an already-built Value against t, narrowing numbers
// where the declared width requires it.
func decodeValue(v Value, t Type) (Value, error) {
	if IsNull(v) || t == TypeAny {
		return v, nil
	}
	switch t {
	case TypeBool:
		if _, ok := v.(Bool); ok {
			return v, nil
		}
	case TypeI32, TypeI64:
		if n, ok := AsInt64(v); ok {
			return Decode(n, t)
		}
	case TypeF32, TypeF64:
		if f, ok := AsFloat64(v); ok {
			return Decode(f, t)
		}
	case TypeString:
		if s, ok := AsString(v); ok {
			return String(s), nil
		}
	case TypeObjectID:
		if s, ok := AsString(v); ok {
			return ObjectID(s), nil
		}
	case TypeDateTime:
		if _, ok := v.(DateTime); ok {
			return v, nil
		}
		if s, ok := v.(String); ok {
			return Decode(string(s), t)
		}
	case TypeArray:
		if _, ok := v.(Array); ok {
			return v, nil
		}
	case TypeObject:
		if _, ok := v.(Object); ok {
			return v, nil
		}
	}
	return nil, mismatch(string(t), v)
}

func decodeInt(raw any, t Type) (int64, error) {
	switch n := raw.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, &TypeMismatchError{Expected: string(t), Got: "number " + n.String()}
		}
		return decodeInt(f, t)
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) || n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, &TypeMismatchError{Expected: string(t), Got: "fractional number"}
		}
		return int64(n), nil
	}
	return 0, mismatch(string(t), raw)
}

func decodeFloat(raw any, t Type) (float64, error) {
	switch n := raw.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, &TypeMismatchError{Expected: string(t), Got: "number " + n.String()}
		}
		return f, nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, mismatch(string(t), raw)
}

// FromAny infers a Value from a Go value without a declared type.
// Integers become I64, fractional numbers F64. Go maps carry no order, so
// their keys are inserted in canonical order.
func FromAny(raw any) (Value, error) {
	switch r := raw.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return r, nil
	case bool:
		return Bool(r), nil
	case string:
		return String(r), nil
	case int:
		return I64(r), nil
	case int32:
		return I32(r), nil
	case int64:
		return I64(r), nil
	case float32:
		return F32(r), nil
	case float64:
		if r == math.Trunc(r) && !math.IsInf(r, 0) && math.Abs(r) < 1<<53 {
			return I64(int64(r)), nil
		}
		return F64(r), nil
	case json.Number:
		if i, err := r.Int64(); err == nil {
			return I64(i), nil
		}
		f, err := r.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", r.String(), err)
		}
		return F64(f), nil
	case time.Time:
		return NewDateTime(r), nil
	case []any:
		arr := make(Array, len(r))
		for i, elem := range r {
			v, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = v
		}
		return arr, nil
	case []string:
		arr := make(Array, len(r))
		for i, s := range r {
			arr[i] = String(s)
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareKeysRFC8785)
		pairs := make([]Pair, 0, len(keys))
		for _, k := range keys {
			v, err := FromAny(r[k])
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			pairs = append(pairs, O(k, v))
		}
		return NewObject(pairs...), nil
	}
	return nil, fmt.Errorf("unsupported type: %T", raw)
}

// ParseJSON decodes a JSON document into a Value, preserving object key
// order as written.
func ParseJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseToken(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

func parseToken(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '[':
			arr := Array{}
			for dec.More() {
				elem, err := parseToken(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, elem)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		case '{':
			var pairs []Pair
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				elem, err := parseToken(dec)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", key, err)
				}
				pairs = append(pairs, O(key, elem))
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return NewObject(pairs...), nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	default:
		return FromAny(t)
	}
}

// ParseJSONObject is ParseJSON restricted to a top-level object.
func ParseJSONObject(data []byte) (Object, error) {
	v, err := ParseJSON(data)
	if err != nil {
		return Object{}, err
	}
	obj, ok := v.(Object)
	if !ok {
		return Object{}, mismatch("object", v)
	}
	return obj, nil
}

// ToAny converts v to plain Go values suitable for encoding/json or yaml.
// Objects become maps and lose their key order; use MarshalJSON to keep it.
func ToAny(v Value) (any, error) {
	switch val := v.(type) {
	case nil, Null:
		return nil, nil
	case Bool:
		return bool(val), nil
	case I32:
		return int32(val), nil
	case I64:
		return int64(val), nil
	case F32:
		return float32(val), nil
	case F64:
		return float64(val), nil
	case String:
		return string(val), nil
	case ObjectID:
		return string(val), nil
	case DateTime:
		return val.Time().Format(time.RFC3339Nano), nil
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			a, err := ToAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = a
		}
		return out, nil
	case Object:
		out := make(map[string]any, val.Len())
		for _, k := range val.keys {
			a, err := ToAny(val.vals[k])
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			out[k] = a
		}
		return out, nil
	case PipelineRef:
		return nil, errors.New("pipeline is not representable as data")
	}
	return nil, fmt.Errorf("unsupported value: %T", v)
}

// MarshalJSON encodes v as JSON, keeping object insertion order.
func MarshalJSON(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeJSON encodes v into buf. With canonical set, object keys are sorted
// per RFC 8785 and strings are NFC normalized.
func writeJSON(buf *bytes.Buffer, v Value, canonical bool) error {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case I32:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case I64:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case F32:
		return writeFloat(buf, float64(val), 32)
	case F64:
		return writeFloat(buf, float64(val), 64)
	case String:
		return writeString(buf, string(val), canonical)
	case ObjectID:
		return writeString(buf, string(val), canonical)
	case DateTime:
		return writeString(buf, val.Time().Format(time.RFC3339Nano), canonical)
	case Array:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, elem, canonical); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case Object:
		keys := val.keys
		if canonical {
			keys = val.SortedKeys()
		}
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeString(buf, k, canonical); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.WriteByte(':')
			if err := writeJSON(buf, val.vals[k], canonical); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case PipelineRef:
		return errors.New("pipeline is not representable as JSON")
	default:
		return fmt.Errorf("unsupported value: %T", v)
	}
	return nil
}

func writeFloat(buf *bytes.Buffer, f float64, bits int) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("unsupported float: %v", f)
	}
	var data []byte
	var err error
	if bits == 32 {
		data, err = json.Marshal(float32(f))
	} else {
		data, err = json.Marshal(f)
	}
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

func writeString(buf *bytes.Buffer, s string, canonical bool) error {
	if canonical {
		data, err := marshalCanonicalString(s)
		if err != nil {
			return err
		}
		buf.Write(data)
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}
