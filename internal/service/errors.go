package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrValidation is returned for malformed or missing input, the caller
	// can correct and retry.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned both when a row is absent and when it is
	// excluded by the caller's tenant or visibility predicate, so that
	// existence never leaks across tenants.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller's grant is insufficient.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned on referential-integrity violations, e.g.
	// deleting an entity type still in use.
	ErrConflict = errors.New("conflict")
	// ErrIntegrity is returned when stored rows disagree with each other,
	// e.g. a synapse whose tenant does not match its endpoints. Never
	// silently repaired.
	ErrIntegrity = errors.New("integrity fault")
)

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func forbiddenf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

func conflictf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func integrityf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrIntegrity, fmt.Sprintf(format, args...))
}

// asNotFound maps the store's record-not-found onto the uniform ErrNotFound.
func asNotFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundf(format, args...)
	}
	return err
}
