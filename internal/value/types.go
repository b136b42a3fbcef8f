package value

import "fmt"

// Type is the declared type of a record field. It drives wire decoding.
type Type string

const (
	TypeAny      Type = "any"
	TypeBool     Type = "bool"
	TypeI32      Type = "i32"
	TypeI64      Type = "i64"
	TypeF32      Type = "f32"
	TypeF64      Type = "f64"
	TypeString   Type = "string"
	TypeDateTime Type = "datetime"
	TypeObjectID Type = "objectId"
	TypeArray    Type = "array"
	TypeObject   Type = "object"
)

// ValidTypes lists every declarable field type.
var ValidTypes = map[Type]bool{
	TypeAny:      true,
	TypeBool:     true,
	TypeI32:      true,
	TypeI64:      true,
	TypeF32:      true,
	TypeF64:      true,
	TypeString:   true,
	TypeDateTime: true,
	TypeObjectID: true,
	TypeArray:    true,
	TypeObject:   true,
}

// ParseType validates a type name.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !ValidTypes[t] {
		return "", fmt.Errorf("unknown field type %q", s)
	}
	return t, nil
}

// Kind identifies a Value variant.
type Kind string

const (
	KindNull     Kind = "null"
	KindBool     Kind = "bool"
	KindI32      Kind = "i32"
	KindI64      Kind = "i64"
	KindF32      Kind = "f32"
	KindF64      Kind = "f64"
	KindString   Kind = "string"
	KindDateTime Kind = "datetime"
	KindObjectID Kind = "objectId"
	KindArray    Kind = "array"
	KindObject   Kind = "object"
	KindPipeline Kind = "pipeline"
)

// KindOf reports the variant of v. A nil interface is reported as null.
func KindOf(v Value) Kind {
	switch v.(type) {
	case nil, Null:
		return KindNull
	case Bool:
		return KindBool
	case I32:
		return KindI32
	case I64:
		return KindI64
	case F32:
		return KindF32
	case F64:
		return KindF64
	case String:
		return KindString
	case DateTime:
		return KindDateTime
	case ObjectID:
		return KindObjectID
	case Array:
		return KindArray
	case Object:
		return KindObject
	case PipelineRef:
		return KindPipeline
	}
	panic(fmt.Sprintf("value: unknown variant %T", v))
}

// Family groups kinds that can be ordered against each other.
type Family int

const (
	FamilyNull Family = iota
	FamilyBool
	FamilyNumeric
	FamilyString
	FamilyDateTime
	FamilyArray
	FamilyObject
	FamilyPipeline
)

func (f Family) String() string {
	switch f {
	case FamilyNull:
		return "null"
	case FamilyBool:
		return "bool"
	case FamilyNumeric:
		return "numeric"
	case FamilyString:
		return "string"
	case FamilyDateTime:
		return "datetime"
	case FamilyArray:
		return "array"
	case FamilyObject:
		return "object"
	case FamilyPipeline:
		return "pipeline"
	}
	return fmt.Sprintf("family(%d)", int(f))
}

// FamilyOf reports the family of v. ObjectID belongs to the string family.
func FamilyOf(v Value) Family {
	switch KindOf(v) {
	case KindBool:
		return FamilyBool
	case KindI32, KindI64, KindF32, KindF64:
		return FamilyNumeric
	case KindString, KindObjectID:
		return FamilyString
	case KindDateTime:
		return FamilyDateTime
	case KindArray:
		return FamilyArray
	case KindObject:
		return FamilyObject
	case KindPipeline:
		return FamilyPipeline
	}
	return FamilyNull
}
