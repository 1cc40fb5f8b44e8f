package auth

import (
	"errors"

	"github.com/antibyte/retrobasic/pkg/configuration"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidPassword is returned when the access password does not match.
var ErrInvalidPassword = errors.New("invalid password")

// PasswordRequired reports whether [Auth] password_hash is set.
func PasswordRequired() bool {
	return configuration.GetString("Auth", "password_hash", "") != ""
}

// CheckPassword compares password with [Auth] password_hash. Without a
// configured hash every password is accepted.
func CheckPassword(password string) error {
	hash := configuration.GetString("Auth", "password_hash", "")
	if hash == "" {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return err
	}
	return nil
}

// HashPassword returns the bcrypt hash to put into password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
