package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateTitle     = errors.New("a post with this title already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrValidation         = errors.New("invalid input")
	ErrDelivery           = errors.New("message delivery failed")

	// The two login failures are told apart for the user but both match ErrInvalidCredentials.
	ErrEmailNotFound = fmt.Errorf("email not registered: %w", ErrInvalidCredentials)
	ErrWrongPassword = fmt.Errorf("wrong password: %w", ErrInvalidCredentials)
)

// isDuplicateKey recognises unique-index violations from any of the supported drivers.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
