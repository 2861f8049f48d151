package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Format(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=3,p=2$"))
	assert.Len(t, strings.Split(hash, "$"), 6)
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "each hash must carry its own salt")
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	ok, err := VerifyPassword("correct horse", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("battery staple", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = VerifyPassword("", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	cases := []string{
		"",
		"plain-text",
		"$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$",
		"$argon2id$v=19$m=65536,t=3,p=0$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=0,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=0,t=3,p=2$c2FsdA$aGFzaA",
	}
	for _, tc := range cases {
		ok, err := VerifyPassword("anything", tc)
		assert.False(t, ok, tc)
		assert.ErrorIs(t, err, ErrInvalidHash, tc)
	}
}
