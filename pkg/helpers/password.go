package helpers

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// bcrypt only reads the first 72 bytes, so longer passwords are refused.
const (
	MinPasswordLen   = 8
	MaxPasswordBytes = 72
)

var ErrPasswordTooLong = errors.New("password longer than 72 bytes")

// HashPassword hashes the plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var dummyHash = sync.OnceValue(func() string {
	b, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return string(b)
})

// DummyPasswordHash is a bcrypt hash of a random secret at the default cost.
// Comparing against it takes as long as checking a real account and never matches.
func DummyPasswordHash() string {
	return dummyHash()
}
