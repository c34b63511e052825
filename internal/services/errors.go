package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks rejected request input
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials is returned for a failed sign-in
	ErrInvalidCredentials = errors.New("Credenciales inválidas.")
)

func validationError(err error) error {
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// IsValidation reports whether err was caused by rejected input
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
