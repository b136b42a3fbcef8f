package modifiers

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

// BcryptSalt replaces a plaintext string with its bcrypt hash.
// A cost of 0 uses bcrypt.DefaultCost.
func BcryptSalt(cost int) pipeline.Modifier {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return pipeline.ValueFunc("bcryptSalt", func(_ context.Context, c pipeline.Ctx) pipeline.Ctx {
		s, ok := c.Value().(value.String)
		if !ok {
			return c.Invalid(msgNotString)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(s), cost)
		if err != nil {
			return c.Invalid(err.Error())
		}
		return c.WithValue(value.String(hash))
	})
}

// BcryptVerify checks the plaintext value against the hash produced by
// resolving arg, typically a pipeline reading the stored password field.
func BcryptVerify(arg pipeline.Argument) pipeline.Modifier {
	return pipeline.ValueFunc("bcryptVerify", func(ctx context.Context, c pipeline.Ctx) pipeline.Ctx {
		s, ok := c.Value().(value.String)
		if !ok {
			return c.Invalid(msgNotString)
		}
		hash, c, ok := resolveString(ctx, c, arg)
		if !ok {
			return c
		}
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(s))
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return c.Invalid("Value doesn't match.")
		case err != nil:
			return c.Invalid("Stored hash is invalid.")
		}
		return c
	})
}
