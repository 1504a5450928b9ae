package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrDuplicateEmail     = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrDuplicateReview    = fmt.Errorf("%w: user already reviewed this game", ErrConflict)
	ErrAlreadyPurchased   = fmt.Errorf("%w: user already purchased this game", ErrConflict)
	ErrInvalidRating      = &ValidationError{Field: "rating", Message: fmt.Sprintf("rating must be between %d and %d", minRating, maxRating)}
)

// ValidationError describes a rejected input field. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError names the missing entity. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(entity string) error {
	return &NotFoundError{Entity: entity}
}

// translate maps GORM errors onto the service taxonomy.
func translate(err error, entity string, conflict error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		if conflict != nil {
			return conflict
		}
		return fmt.Errorf("%w: %s already exists", ErrConflict, entity)
	default:
		return err
	}
}
