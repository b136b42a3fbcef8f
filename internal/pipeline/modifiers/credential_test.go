package modifiers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/strata/internal/pipeline"
	"github.com/roach88/strata/internal/value"
)

func TestBcryptSaltAndVerify(t *testing.T) {
	hashed := run(BcryptSalt(bcrypt.MinCost), value.String("s3cret!"))
	require.True(t, hashed.IsValue())

	hash, ok := value.AsString(hashed.Value())
	require.True(t, ok)
	assert.NotEqual(t, "s3cret!", hash)

	rec := &stubRecord{values: map[string]value.Value{"password": value.String(hash)}}
	verify := BcryptVerify(pipeline.Pipe(pipe(Self("password"))))

	out := runCtx(verify, pipeline.New(value.String("s3cret!")).WithRecord(rec))
	require.True(t, out.IsValue())
	assert.Equal(t, value.String("s3cret!"), out.Value())

	out = runCtx(verify, pipeline.New(value.String("wrong")).WithRecord(rec))
	require.True(t, out.IsInvalid())
	assert.Equal(t, "Value doesn't match.", out.Reason())
}

func TestBcryptVerifyBadHash(t *testing.T) {
	out := run(BcryptVerify(lit(value.String("not-a-hash"))), value.String("x"))
	require.True(t, out.IsInvalid())
	assert.Equal(t, "Stored hash is invalid.", out.Reason())
}

func TestBcryptSaltRejectsNonString(t *testing.T) {
	out := run(BcryptSalt(bcrypt.MinCost), value.I64(1))
	assert.Equal(t, msgNotString, out.Reason())
}
