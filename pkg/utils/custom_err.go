package utils

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPage     = errors.New("invalid page parameter")
	ErrInvalidPageSize = errors.New("invalid page size parameter")
	ErrDatabaseError   = errors.New("database error")
	ErrInvalidInput    = errors.New("invalid input")

	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailAlreadyExists  = errors.New("email already exists")
	ErrUnauthenticated     = errors.New("authentication required")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrMemorialNotFound    = errors.New("memorial not found")
	ErrPlanNotFound        = errors.New("plan not found")
	ErrContributionMissing = errors.New("contribution not found")
	ErrImageNotFound       = errors.New("gallery image not found")
	ErrSubscriberNotFound  = errors.New("subscriber not found")
	ErrInvalidTransition   = errors.New("contribution is not pending")
	ErrFeatureNotInPlan    = errors.New("feature not included in plan")
	ErrGalleryLimitReached = errors.New("gallery limit reached")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrExternalService     = errors.New("external service failure")
	ErrPaymentsDisabled    = errors.New("payments are not configured")
)

// ValidationError reports a bad value for a single input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// GalleryLimitError carries the ceiling that was hit.
type GalleryLimitError struct {
	Limit int
}

func (e *GalleryLimitError) Error() string {
	return fmt.Sprintf("Gallery limit reached (%d images max)", e.Limit)
}

func (e *GalleryLimitError) Unwrap() error {
	return ErrGalleryLimitReached
}
