package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCipher_RoundTrip(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	c, err := NewTokenCipher(DeriveKeyFromPassphrase("gizli-parola", salt))
	require.NoError(t, err)

	sealed, err := c.Seal("refresh-token-value")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "refresh-token-value")

	plain, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "refresh-token-value", plain)
}

func TestTokenCipher_WrongPassphrase(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	right, err := NewTokenCipher(DeriveKeyFromPassphrase("dogru", salt))
	require.NoError(t, err)
	wrong, err := NewTokenCipher(DeriveKeyFromPassphrase("yanlis", salt))
	require.NoError(t, err)

	sealed, err := right.Seal("token")
	require.NoError(t, err)

	_, err = wrong.Open(sealed)
	assert.Error(t, err)
}

func TestDeriveKeyFromPassphrase_Deterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")
	a := DeriveKeyFromPassphrase("parola", salt)
	b := DeriveKeyFromPassphrase("parola", salt)
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
}

func TestDeriveKey(t *testing.T) {
	key, err := DeriveKey(strings.Repeat("ab", 32))
	require.NoError(t, err)
	assert.Len(t, key, 32)

	_, err = DeriveKey("abcd")
	assert.Error(t, err)

	_, err = DeriveKey("zz")
	assert.Error(t, err)
}

func TestTokenCipher_OpenGarbage(t *testing.T) {
	c, err := NewTokenCipher(make([]byte, 32))
	require.NoError(t, err)

	_, err = c.Open("!!!not-base64")
	assert.Error(t, err)

	_, err = c.Open("YWJj")
	assert.Error(t, err)
}
