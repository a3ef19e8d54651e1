package middleware

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const minOperatorKeyLength = 8

var ErrOperatorKeyTooShort = errors.New("operator key too short")

// HashOperatorKey hashes a plaintext operator key using bcrypt.
func HashOperatorKey(key string) (string, error) {
	if len(key) < minOperatorKeyLength {
		return "", ErrOperatorKeyTooShort
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

// VerifyOperatorKey compares a plaintext key with the stored hash.
func VerifyOperatorKey(hash, key string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(key))
}
