package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrDuplicateRegistration signals that the same student, parent and phone already registered.
	ErrDuplicateRegistration = errors.New("registration already exists")
	// ErrSectionUnavailable signals an unknown or inactive section.
	ErrSectionUnavailable = errors.New("section unavailable")
	// ErrSectionFull signals that a section has no open slot.
	ErrSectionFull = errors.New("section is full")
	// ErrCapacityBelowEnrollment signals a capacity change smaller than the current enrollment.
	ErrCapacityBelowEnrollment = errors.New("capacity below current enrollment")
	// ErrInvalidAgeRange signals a minimum age above the maximum age.
	ErrInvalidAgeRange = errors.New("minimum age above maximum age")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
