package utils

import (
	"fmt"

	"github.com/matthewhartstonge/argon2"
)

const MinPasswordLength = 8

var ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	argon := argon2.DefaultConfig()
	encoded, err := argon.HashEncoded([]byte(password))
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(encoded), nil
}

// CheckPassword reports whether password matches the argon2 encoded hash.
// A malformed hash never matches.
func CheckPassword(encodedHash, password string) bool {
	if encodedHash == "" {
		return false
	}
	ok, err := argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
	if err != nil {
		return false
	}
	return ok
}
