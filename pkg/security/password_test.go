package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, h.Compare(hash, "s3cret-pass"))
	assert.ErrorIs(t, h.Compare(hash, "wrong-pass"), ErrPasswordMismatch)
}

func TestBcryptHasher_ShortPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestBcryptHasher_TooLong(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrHashingFailed)
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	h := NewBcryptHasher(0)

	assert.ErrorIs(t, h.Compare("not-a-hash", "s3cret-pass"), ErrPasswordMismatch)
}
