package modifiers

import (
	"context"
	"math/rand/v2"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

// stringFunc builds a modifier that maps a string value through fn.
func stringFunc(name string, fn func(string) string) pipeline.Modifier {
	return pipeline.ValueFunc(name, func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		s, ok := c.Value().(value.String)
		if !ok {
			return c.Invalid(msgNotString)
		}
		return c.WithValue(value.String(fn(string(s))))
	})
}

// Trim removes leading and trailing whitespace.
func Trim() pipeline.Modifier { return stringFunc("trim", strings.TrimSpace) }

// ToLowerCase lowercases the string.
func ToLowerCase() pipeline.Modifier { return stringFunc("toLowerCase", strings.ToLower) }

// ToUpperCase uppercases the string.
func ToUpperCase() pipeline.Modifier { return stringFunc("toUpperCase", strings.ToUpper) }

// Capitalize uppercases the first letter and leaves the rest alone.
func Capitalize() pipeline.Modifier {
	return stringFunc("capitalize", func(s string) string {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError {
			return s
		}
		return string(unicode.ToUpper(r)) + s[size:]
	})
}

// ToTitleCase title-cases every word.
func ToTitleCase() pipeline.Modifier {
	return stringFunc("toTitleCase", func(s string) string {
		// A Caser is stateful; build one per call.
		return cases.Title(language.Und).String(s)
	})
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases, strips diacritics and joins words with hyphens.
func Slugify() pipeline.Modifier {
	return stringFunc("slugify", func(s string) string {
		t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
		stripped, _, err := transform.String(t, s)
		if err != nil {
			stripped = s
		}
		slug := slugSeparators.ReplaceAllString(strings.ToLower(stripped), "-")
		return strings.Trim(slug, "-")
	})
}

func affix(name string, arg pipeline.Argument, prepend bool) pipeline.Modifier {
	return pipeline.ValueFunc(name, func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		s, ok := c.Value().(value.String)
		if !ok {
			return c.Invalid(msgNotString)
		}
		extra, c, ok := resolveString(ctx, c, arg)
		if !ok {
			return c
		}
		if prepend {
			return c.WithValue(value.String(extra + string(s)))
		}
		return c.WithValue(value.String(string(s) + extra))
	})
}

// Append adds the argument to the end of the string.
func Append(arg pipeline.Argument) pipeline.Modifier { return affix("append", arg, false) }

// Prepend adds the argument to the start of the string.
func Prepend(arg pipeline.Argument) pipeline.Modifier { return affix("prepend", arg, true) }

// regexArg compiles literal patterns once and others on every call.
type regexArg struct {
	arg      pipeline.Argument
	compiled *regexp.Regexp
}

func newRegexArg(arg pipeline.Argument) (regexArg, error) {
	r := regexArg{arg: arg}
	if lit, ok := arg.Literal(); ok {
		if s, ok := value.AsString(lit); ok {
			re, err := regexp.Compile(s)
			if err != nil {
				return r, err
			}
			r.compiled = re
		}
	}
	return r, nil
}

func (r regexArg) resolve(ctx context.Context, c pipeline.Ctx) (*regexp.Regexp, pipeline.Ctx, bool) {
	if r.compiled != nil {
		return r.compiled, c, true
	}
	pattern, c, ok := resolveString(ctx, c, r.arg)
	if !ok {
		return nil, c, false
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, c.Invalid("Argument is not a valid regular expression."), false
	}
	return re, c, true
}

// RegexReplace replaces every match of pattern with replacement. The
// replacement may reference groups as $1.
func RegexReplace(pattern, replacement pipeline.Argument) (pipeline.Modifier, error) {
	re, err := newRegexArg(pattern)
	if err != nil {
		return nil, err
	}
	return pipeline.ValueFunc("regexReplace", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		s, ok := c.Value().(value.String)
		if !ok {
			return c.Invalid(msgNotString)
		}
		compiled, c, ok := re.resolve(ctx, c)
		if !ok {
			return c
		}
		repl, c, ok := resolveString(ctx, c, replacement)
		if !ok {
			return c
		}
		return c.WithValue(value.String(compiled.ReplaceAllString(string(s), repl)))
	}), nil
}

func pad(name string, width, char pipeline.Argument, start bool) pipeline.Modifier {
	return pipeline.ValueFunc(name, func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		s, ok := c.Value().(value.String)
		if !ok {
			return c.Invalid(msgNotString)
		}
		n, c, ok := resolveInt(ctx, c, width)
		if !ok {
			return c
		}
		fill, c, ok := resolveString(ctx, c, char)
		if !ok {
			return c
		}
		if utf8.RuneCountInString(fill) != 1 {
			return c.Invalid("Argument is not a single character.")
		}
		missing := n - utf8.RuneCountInString(string(s))
		if missing <= 0 {
			return c
		}
		padding := strings.Repeat(fill, missing)
		if start {
			return c.WithValue(value.String(padding + string(s)))
		}
		return c.WithValue(value.String(string(s) + padding))
	})
}

// PadStart left-pads the string with char up to width characters.
func PadStart(width, char pipeline.Argument) pipeline.Modifier {
	return pad("padStart", width, char, true)
}

// PadEnd right-pads the string with char up to width characters.
func PadEnd(width, char pipeline.Argument) pipeline.Modifier {
	return pad("padEnd", width, char, false)
}

// Split turns a string into an array of strings.
func Split(sep pipeline.Argument) pipeline.Modifier {
	return pipeline.ValueFunc("split", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		s, ok := c.Value().(value.String)
		if !ok {
			return c.Invalid(msgNotString)
		}
		separator, c, ok := resolveString(ctx, c, sep)
		if !ok {
			return c
		}
		parts := strings.Split(string(s), separator)
		out := make(value.Array, len(parts))
		for i, p := range parts {
			out[i] = value.String(p)
		}
		return c.WithValue(out)
	})
}

// Join turns an array of strings into a string.
func Join(sep pipeline.Argument) pipeline.Modifier {
	return pipeline.ValueFunc("join", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		arr, ok := c.Value().(value.Array)
		if !ok {
			return c.Invalid(msgNotArray)
		}
		separator, c, ok := resolveString(ctx, c, sep)
		if !ok {
			return c
		}
		parts := make([]string, len(arr))
		for i, elem := range arr {
			s, ok := value.AsString(elem)
			if !ok {
				return c.Index(i).Invalid(msgNotString)
			}
			parts[i] = s
		}
		return c.WithValue(value.String(strings.Join(parts, separator)))
	})
}

// RandomDigits replaces the value with a string of n random decimal digits.
// A nil r uses the global source.
func RandomDigits(n pipeline.Argument, r *rand.Rand) pipeline.Modifier {
	return pipeline.ValueFunc("randomDigits", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		count, c, ok := resolveInt(ctx, c, n)
		if !ok {
			return c
		}
		var b strings.Builder
		b.Grow(count)
		for range count {
			var d int
			if r != nil {
				d = r.IntN(10)
			} else {
				d = rand.IntN(10)
			}
			b.WriteByte(byte('0' + d))
		}
		return c.WithValue(value.String(b.String()))
	})
}

// UUID replaces the value with a new identifier from gen.
func UUID(gen IDGenerator) pipeline.Modifier {
	return generated("uuid", gen, UUIDv4Generator{})
}

// UUIDv7 replaces the value with a new time-sortable identifier from gen.
func UUIDv7(gen IDGenerator) pipeline.Modifier {
	return generated("uuidV7", gen, UUIDv7Generator{})
}

func generated(name string, gen, fallback IDGenerator) pipeline.Modifier {
	if gen == nil {
		gen = fallback
	}
	return pipeline.ValueFunc(name, func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		return c.WithValue(value.String(gen.Generate()))
	})
}
