package modifiers

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

var (
	emailPattern    = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}$`)
	hexColorPattern = regexp.MustCompile(`^[A-Fa-f0-9]{6}$`)
)

// stringCheck builds a validator over string values.
func stringCheck(name, reason string, ok func(string) bool) pipeline.Modifier {
	return pipeline.ValueFunc(name, func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		s, isString := c.Value().(value.String)
		if !isString {
			return c.Invalid(msgNotString)
		}
		if !ok(string(s)) {
			return c.Invalid(reason)
		}
		return c
	})
}

func allRunes(s string, pred func(rune) bool) bool {
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}

// IsEmail checks for a plausible email address.
func IsEmail() pipeline.Modifier {
	return stringCheck("isEmail", "Value is not email.", emailPattern.MatchString)
}

// IsAlphabetic checks that every character is a letter.
func IsAlphabetic() pipeline.Modifier {
	return stringCheck("isAlphabetic", "Value is not alphabetic.", func(s string) bool {
		return allRunes(s, unicode.IsLetter)
	})
}

// IsAlphanumeric checks that every character is a letter or digit.
func IsAlphanumeric() pipeline.Modifier {
	return stringCheck("isAlphanumeric", "Value is not alphanumeric.", func(s string) bool {
		return allRunes(s, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) })
	})
}

// IsNumeric checks that every character is a decimal digit.
func IsNumeric() pipeline.Modifier {
	return stringCheck("isNumeric", "Value is not numeric.", func(s string) bool {
		return s != "" && allRunes(s, unicode.IsDigit)
	})
}

// IsHexColor checks for a six digit hex color without the leading #.
func IsHexColor() pipeline.Modifier {
	return stringCheck("isHexColor", "String is not hex color.", hexColorPattern.MatchString)
}

// IsUUID checks for a hyphenated UUID.
func IsUUID() pipeline.Modifier {
	return stringCheck("isUUID", "Value is not UUID.", func(s string) bool {
		if len(s) != 36 {
			return false
		}
		_, err := uuid.Parse(s)
		return err == nil
	})
}

// IsSecurePassword requires at least 8 characters with an upper case
// letter, a lower case letter, a digit and a symbol.
func IsSecurePassword() pipeline.Modifier {
	return stringCheck("isSecurePassword", "Value is not secure password.", func(s string) bool {
		var upper, lower, digit, symbol bool
		count := 0
		for _, r := range s {
			count++
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			case unicode.IsPunct(r) || unicode.IsSymbol(r):
				symbol = true
			}
		}
		return count >= 8 && upper && lower && digit && symbol
	})
}

// RegexMatch checks the string against pattern.
func RegexMatch(pattern pipeline.Argument) (pipeline.Modifier, error) {
	re, err := newRegexArg(pattern)
	if err != nil {
		return nil, err
	}
	return pipeline.ValueFunc("regexMatch", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		s, ok := c.Value().(value.String)
		if !ok {
			return c.Invalid(msgNotString)
		}
		compiled, c, ok := re.resolve(ctx, c)
		if !ok {
			return c
		}
		if !compiled.MatchString(string(s)) {
			return c.Invalid("Value doesn't match regular expression.")
		}
		return c
	}), nil
}

// affixCheck compares the value with a resolved string argument.
func affixCheck(name, reason string, arg pipeline.Argument, ok func(v, a string) bool) pipeline.Modifier {
	return pipeline.ValueFunc(name, func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		s, isString := c.Value().(value.String)
		if !isString {
			return c.Invalid(msgNotString)
		}
		other, c, resolved := resolveString(ctx, c, arg)
		if !resolved {
			return c
		}
		if !ok(string(s), other) {
			return c.Invalid(reason)
		}
		return c
	})
}

// HasPrefix checks that the value starts with the argument.
func HasPrefix(arg pipeline.Argument) pipeline.Modifier {
	return affixCheck("hasPrefix", "Value does not have prefix.", arg, strings.HasPrefix)
}

// HasSuffix checks that the value ends with the argument.
func HasSuffix(arg pipeline.Argument) pipeline.Modifier {
	return affixCheck("hasSuffix", "Value does not have suffix.", arg, strings.HasSuffix)
}

// IsPrefixOf checks that the argument starts with the value.
func IsPrefixOf(arg pipeline.Argument) pipeline.Modifier {
	return affixCheck("isPrefixOf", "Value is not prefix.", arg, func(v, a string) bool {
		return strings.HasPrefix(a, v)
	})
}

// IsSuffixOf checks that the argument ends with the value.
func IsSuffixOf(arg pipeline.Argument) pipeline.Modifier {
	return affixCheck("isSuffixOf", "Value is not suffix.", arg, func(v, a string) bool {
		return strings.HasSuffix(a, v)
	})
}
