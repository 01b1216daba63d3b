package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("password123")
	require.NoError(t, err)

	assert.NotEqual(t, "password123", hash)
	assert.True(t, CompareHashAndPassword(hash, "password123"))
	assert.False(t, CompareHashAndPassword(hash, "password124"))

	again, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")

	_, err = HashPassword(strings.Repeat("x", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestDummyPasswordHash(t *testing.T) {
	h := DummyPasswordHash()
	assert.Equal(t, h, DummyPasswordHash(), "computed once")

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost, "same work as a real account")

	assert.False(t, CompareHashAndPassword(h, "password123"))
	assert.False(t, CompareHashAndPassword(h, ""))
}
