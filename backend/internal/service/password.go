package service

import (
	"errors"
	"fmt"

	"github.com/itchan-dev/anonboard/shared/domain"
	"golang.org/x/crypto/bcrypt"
)

func (b *Board) hashPassword(password domain.Password) (domain.PasswordHash, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.opts.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// checkPassword reports whether password matches hash. A mismatch is not an error.
func checkPassword(hash domain.PasswordHash, password domain.Password) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("compare password: %w", err)
}
