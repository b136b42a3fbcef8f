package modifiers

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

func mustModifier(t *testing.T, m pipeline.Modifier, err error) pipeline.Modifier {
	t.Helper()
	require.NoError(t, err)
	return m
}

func TestStringTransforms(t *testing.T) {
	replaceMod, replaceErr := RegexReplace(lit(value.String(`(\d+)`)), lit(value.String("<$1>")))
	replace := mustModifier(t, replaceMod, replaceErr)

	tests := []struct {
		name string
		m    pipeline.Modifier
		in   string
		want value.Value
	}{
		{"trim", Trim(), "  ab  ", value.String("ab")},
		{"lower", ToLowerCase(), "AbC", value.String("abc")},
		{"upper", ToUpperCase(), "AbC", value.String("ABC")},
		{"capitalize", Capitalize(), "élan vital", value.String("Élan vital")},
		{"capitalize empty", Capitalize(), "", value.String("")},
		{"title", ToTitleCase(), "the quick fox", value.String("The Quick Fox")},
		{"slugify", Slugify(), "  Héllo, Wörld! 2024 ", value.String("hello-world-2024")},
		{"append", Append(lit(value.String("!"))), "hi", value.String("hi!")},
		{"prepend", Prepend(lit(value.String("@"))), "ada", value.String("@ada")},
		{"regex replace", replace, "a1b22", value.String("a<1>b<22>")},
		{"pad start", PadStart(lit(value.I64(5)), lit(value.String("0"))), "42", value.String("00042")},
		{"pad end", PadEnd(lit(value.I64(4)), lit(value.String("."))), "ab", value.String("ab..")},
		{"pad no-op", PadStart(lit(value.I64(1)), lit(value.String("0"))), "42", value.String("42")},
		{"split", Split(lit(value.String(","))), "a,b", value.Array{value.String("a"), value.String("b")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(tt.m, value.String(tt.in))
			require.True(t, out.IsValue(), out.Reason())
			assert.Equal(t, tt.want, out.Value())
		})
	}
}

func TestStringTransformsRejectNonString(t *testing.T) {
	for _, m := range []pipeline.Modifier{Trim(), ToLowerCase(), Slugify(), Append(lit(value.String("x")))} {
		t.Run(m.Name(), func(t *testing.T) {
			out := run(m, value.I64(1))
			require.True(t, out.IsInvalid())
			assert.Equal(t, msgNotString, out.Reason())
		})
	}
}

func TestJoin(t *testing.T) {
	out := run(Join(lit(value.String("-"))), value.Array{value.String("a"), value.String("b")})
	require.True(t, out.IsValue())
	assert.Equal(t, value.String("a-b"), out.Value())

	out = run(Join(lit(value.String("-"))), value.Array{value.String("a"), value.I64(2)})
	require.True(t, out.IsInvalid())
	assert.Equal(t, "[1]", out.Path().String())
}

func TestPadRejectsMultiCharFill(t *testing.T) {
	out := run(PadStart(lit(value.I64(5)), lit(value.String("ab"))), value.String("x"))
	assert.True(t, out.IsInvalid())
}

func TestRegexReplaceRejectsBadPattern(t *testing.T) {
	_, err := RegexReplace(lit(value.String("(")), lit(value.String("")))
	assert.Error(t, err)
}

func TestRandomDigits(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	out := run(RandomDigits(lit(value.I64(6)), r), value.Null{})
	require.True(t, out.IsValue())

	s, ok := value.AsString(out.Value())
	require.True(t, ok)
	assert.Len(t, s, 6)
	assert.Regexp(t, `^\d{6}$`, s)

	// Same seed, same digits.
	again := run(RandomDigits(lit(value.I64(6)), rand.New(rand.NewPCG(1, 2))), value.Null{})
	assert.Equal(t, out.Value(), again.Value())
}

type fixedIDs string

func (f fixedIDs) Generate() string {
	return string(f)
}

func TestUUIDModifiers(t *testing.T) {
	out := run(UUID(nil), value.Null{})
	require.True(t, out.IsValue())
	assert.True(t, run(IsUUID(), out.Value()).IsValue())

	out = run(UUIDv7(nil), value.Null{})
	require.True(t, out.IsValue())
	assert.True(t, run(IsUUID(), out.Value()).IsValue())

	out = run(UUID(fixedIDs("id-1")), value.Null{})
	assert.Equal(t, value.String("id-1"), out.Value())
}
