package util

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Back-office account passwords. bcrypt only reads the first 72 bytes, so
// longer input is refused rather than silently truncated.
const (
	bcryptCost        = 12
	MinPasswordLength = 8
	MaxPasswordBytes  = 72
)

var ErrWeakPassword = errors.New("password must be between 8 and 72 bytes")

// CheckPasswordPolicy applies the staff password rules.
func CheckPasswordPolicy(password string) error {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordBytes {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword hashes a staff password after checking it against the policy.
func HashPassword(password string) (string, error) {
	if err := CheckPasswordPolicy(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
