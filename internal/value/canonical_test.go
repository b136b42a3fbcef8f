package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", I64(42), "42"},
		{"negative i32", I32(-100), "-100"},
		{"float", F64(1.25), "1.25"},
		{"integral float", F64(3), "3"},
		{"null", Null{}, "null"},
		{"bool true", Bool(true), "true"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"array of ints", Array{I64(1), I64(2), I64(3)}, "[1,2,3]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortsKeys(t *testing.T) {
	obj := NewObject(
		O("zebra", I64(1)),
		O("alpha", NewObject(O("b", I64(1)), O("a", I64(2)))),
	)

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":{"a":2,"b":1},"zebra":1}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	obj := NewObject(O("\uE000", I64(1)), O("𐀀", I64(2)))

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"𐀀":2,"`+"\uE000"+`":1}`, string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(String("<a>&</a>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a>&</a>"`, string(result))
}

func TestMarshalCanonicalEscapes(t *testing.T) {
	result, err := MarshalCanonical(String("q\"b\\n\n\x01\u2028"))
	require.NoError(t, err)
	assert.Equal(t, `"q\"b\\n\n\u0001`+"\u2028"+`"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// e + combining acute normalizes to U+00E9
	decomposed, err := MarshalCanonical(String("e\u0301"))
	require.NoError(t, err)
	composed, err := MarshalCanonical(String("\u00e9"))
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestDigestStableAcrossKeyOrder(t *testing.T) {
	a := NewObject(O("x", I64(1)), O("y", String("two")))
	b := NewObject(O("y", String("two")), O("x", I64(1)))

	assert.Equal(t, MustDigest(DomainRecord, a), MustDigest(DomainRecord, b))
	assert.Len(t, MustDigest(DomainRecord, a), 64)
}

func TestDigestDomainSeparation(t *testing.T) {
	v := String("same")
	assert.NotEqual(t, MustDigest(DomainRecord, v), MustDigest(DomainSnapshot, v))
}

func TestDigestRejectsPipeline(t *testing.T) {
	_, err := Digest(DomainRecord, PipelineRef{})
	assert.Error(t, err)
}
