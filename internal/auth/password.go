package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const DefaultCost = 12

var ErrBadCreds = errors.New("invalid email or password")

func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	if cost == 0 {
		cost = DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword returns ErrBadCreds when password does not match hash.
func CheckPassword(hash, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return ErrBadCreds
	}
	return nil
}
