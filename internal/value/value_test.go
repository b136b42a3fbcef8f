package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = Bool(true)
	var _ Value = I32(1)
	var _ Value = I64(1)
	var _ Value = F32(1.5)
	var _ Value = F64(1.5)
	var _ Value = String("s")
	var _ Value = NewDateTime(time.Now())
	var _ Value = ObjectID("id")
	var _ Value = Array{String("a")}
	var _ Value = NewObject(O("k", I64(1)))
	var _ Value = PipelineRef{}
}

func TestObjectPreservesInsertionOrder(t *testing.T) {
	obj := NewObject(O("zebra", I64(1)), O("alpha", I64(2)), O("mid", I64(3)))
	assert.Equal(t, []string{"zebra", "alpha", "mid"}, obj.Keys())

	// Overwriting keeps the original position.
	obj = obj.With("zebra", I64(9))
	assert.Equal(t, []string{"zebra", "alpha", "mid"}, obj.Keys())
	v, ok := obj.Get("zebra")
	require.True(t, ok)
	assert.Equal(t, I64(9), v)
}

func TestObjectWithIsCopy(t *testing.T) {
	orig := NewObject(O("a", I64(1)))
	next := orig.With("b", I64(2))

	assert.Equal(t, 1, orig.Len())
	assert.False(t, orig.Has("b"))
	assert.Equal(t, 2, next.Len())
}

func TestObjectWithout(t *testing.T) {
	obj := NewObject(O("a", I64(1)), O("b", I64(2)), O("c", I64(3)))
	out := obj.Without("b")

	assert.Equal(t, []string{"a", "c"}, out.Keys())
	assert.Equal(t, 3, obj.Len())
	assert.Equal(t, obj, obj.Without("missing"))
}

func TestZeroObjectUsable(t *testing.T) {
	var obj Object
	assert.Equal(t, 0, obj.Len())
	_, ok := obj.Get("x")
	assert.False(t, ok)

	obj = obj.With("x", Bool(true))
	assert.True(t, obj.Has("x"))
}

func TestObjectSortedKeysRFC8785Order(t *testing.T) {
	obj := NewObject(
		O("a", I64(1)),
		O("A", I64(2)),
		O("aa", I64(3)),
		O("aA", I64(4)),
		O("Aa", I64(5)),
		O("AA", I64(6)),
	)
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestCompareKeysRFC8785(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "a", 0},
		{"aa", "a", 1},
		{"a", "aa", -1},
		{"", "", 0},
		{"", "a", -1},
		// U+10000 encodes as a surrogate pair starting 0xD800 < 0xE000
		{"𐀀", "\uE000", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.expected, compareKeysRFC8785(tt.a, tt.b))
		})
	}
}

func TestKindAndFamily(t *testing.T) {
	tests := []struct {
		v      Value
		kind   Kind
		family Family
	}{
		{nil, KindNull, FamilyNull},
		{Null{}, KindNull, FamilyNull},
		{Bool(true), KindBool, FamilyBool},
		{I32(1), KindI32, FamilyNumeric},
		{F64(1), KindF64, FamilyNumeric},
		{String("x"), KindString, FamilyString},
		{ObjectID("x"), KindObjectID, FamilyString},
		{NewDateTime(time.Unix(0, 0)), KindDateTime, FamilyDateTime},
		{Array{}, KindArray, FamilyArray},
		{Object{}, KindObject, FamilyObject},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.v))
			assert.Equal(t, tt.family, FamilyOf(tt.v))
		})
	}
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("i32")
	require.NoError(t, err)
	assert.Equal(t, TypeI32, typ)

	_, err = ParseType("decimal")
	assert.Error(t, err)
}

func TestNewDateTimeIsUTC(t *testing.T) {
	loc := time.FixedZone("X", 3600)
	d := NewDateTime(time.Date(2024, 1, 1, 12, 0, 0, 0, loc))
	assert.Equal(t, time.UTC, d.Time().Location())
	assert.Equal(t, 11, d.Time().Hour())
}
