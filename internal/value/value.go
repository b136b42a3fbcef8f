package value

import (
	"slices"
	"time"
	"unicode/utf16"
)

// Value is a sealed interface over the variants below.
type Value interface {
	value() // Sealed - only this package implements it
}

// Null is the absence of a value.
type Null struct{}

func (Null) value() {}

// Bool is a boolean value.
type Bool bool

func (Bool) value() {}

// I32 is a 32-bit signed integer.
type I32 int32

func (I32) value() {}

// I64 is a 64-bit signed integer.
type I64 int64

func (I64) value() {}

// F32 is a 32-bit float.
type F32 float32

func (F32) value() {}

// F64 is a 64-bit float.
type F64 float64

func (F64) value() {}

// String is a UTF-8 string.
type String string

func (String) value() {}

// DateTime is an instant, always held in UTC.
type DateTime time.Time

func (DateTime) value() {}

// NewDateTime wraps t, converting it to UTC.
func NewDateTime(t time.Time) DateTime {
	return DateTime(t.UTC())
}

// Time returns the underlying time.
func (d DateTime) Time() time.Time {
	return time.Time(d)
}

// ObjectID is an opaque record identifier.
type ObjectID string

func (ObjectID) value() {}

// Array is an ordered list of values.
type Array []Value

func (Array) value() {}

// Pipeline is the view of a pipeline that can be carried inside a Value.
// pipeline.Pipeline implements it; the indirection keeps this package a leaf.
type Pipeline interface {
	Names() []string
}

// PipelineRef carries a pipeline as data, e.g. the argument of bcryptVerify.
type PipelineRef struct {
	Pipeline Pipeline
}

func (PipelineRef) value() {}

// Pair is a key/value pair for ordered Object construction.
type Pair struct {
	Key   string
	Value Value
}

// O is a shorthand for Pair.
// Example: NewObject(O("name", String("ada")), O("age", I32(36)))
func O(key string, v Value) Pair {
	return Pair{Key: key, Value: v}
}

// Object is an ordered key->value map. Insertion order is preserved;
// overwriting an existing key keeps its original position.
// The zero Object is empty and ready to use.
type Object struct {
	keys []string
	vals map[string]Value
}

func (Object) value() {}

// NewObject builds an Object from pairs in order. Later duplicates overwrite
// earlier ones in place.
func NewObject(pairs ...Pair) Object {
	o := Object{
		keys: make([]string, 0, len(pairs)),
		vals: make(map[string]Value, len(pairs)),
	}
	for _, p := range pairs {
		if _, exists := o.vals[p.Key]; !exists {
			o.keys = append(o.keys, p.Key)
		}
		o.vals[p.Key] = p.Value
	}
	return o
}

// Len returns the number of keys.
func (o Object) Len() int {
	return len(o.keys)
}

// Get returns the value for key.
func (o Object) Get(key string) (Value, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// Has reports whether key is present.
func (o Object) Has(key string) bool {
	_, ok := o.vals[key]
	return ok
}

// Keys returns the keys in insertion order.
func (o Object) Keys() []string {
	return slices.Clone(o.keys)
}

// Range calls fn for every pair in insertion order until fn returns false.
func (o Object) Range(fn func(key string, v Value) bool) {
	for _, k := range o.keys {
		if !fn(k, o.vals[k]) {
			return
		}
	}
}

// With returns a copy of o with key set to v.
func (o Object) With(key string, v Value) Object {
	out := Object{
		keys: slices.Clone(o.keys),
		vals: make(map[string]Value, len(o.vals)+1),
	}
	for k, val := range o.vals {
		out.vals[k] = val
	}
	if _, exists := out.vals[key]; !exists {
		out.keys = append(out.keys, key)
	}
	out.vals[key] = v
	return out
}

// Without returns a copy of o with key removed.
func (o Object) Without(key string) Object {
	if !o.Has(key) {
		return o
	}
	out := Object{
		keys: make([]string, 0, len(o.keys)-1),
		vals: make(map[string]Value, len(o.vals)-1),
	}
	for _, k := range o.keys {
		if k == key {
			continue
		}
		out.keys = append(out.keys, k)
		out.vals[k] = o.vals[k]
	}
	return out
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's default string ordering is UTF-8 and differs for astral characters.
func (o Object) SortedKeys() []string {
	keys := slices.Clone(o.keys)
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// MarshalJSON implements json.Marshaler, preserving key order.
func (o Object) MarshalJSON() ([]byte, error) {
	return MarshalJSON(o)
}

// compareKeysRFC8785 compares strings by UTF-16 code units as RFC 8785 requires.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
