package services

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidInput wraps request values the domain rejects.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError lists every rule a registration request broke.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}
