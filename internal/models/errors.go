package models

import (
	"errors"
	"fmt"
)

// Базовые категории ошибок. HTTP-слой сопоставляет их со статусами 401/404/400.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
)

// Доменные ошибки планировщика и жизненного цикла пакетов.
var (
	ErrUserNotFound          = fmt.Errorf("user %w", ErrNotFound)
	ErrNoActivePackage       = fmt.Errorf("active package %w", ErrNotFound)
	ErrNoMenusForTier        = fmt.Errorf("menus for tier %w", ErrNotFound)
	ErrInvalidTierTransition = &ValidationError{Field: "tier", Message: "tier must be higher than the highest held package"}
)

// ValidationError описывает ошибку валидации конкретного поля запроса.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError создаёт ошибку валидации для поля field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %s: %s", e.Field, e.Message)
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
