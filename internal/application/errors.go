package application

import (
	"errors"

	"github.com/daniellescalera/user-management/internal/domain/repository"
)

var (
	ErrMissingField             = errors.New("required field missing")
	ErrValidation               = errors.New("validation failed")
	ErrInvalidCredentials       = errors.New("incorrect email or password")
	ErrEmailNotVerified         = errors.New("please verify your email address before logging in")
	ErrAccountLocked            = errors.New("account locked due to too many failed login attempts")
	ErrUnauthenticated          = errors.New("not authenticated")
	ErrForbidden                = errors.New("operation not permitted")
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
	ErrAlreadyVerified          = errors.New("email already verified")
	ErrStorageUnavailable       = errors.New("avatar storage not configured")

	// Re-exported so callers only depend on this package.
	ErrNotFound          = repository.ErrNotFound
	ErrDuplicateEmail    = repository.ErrDuplicateEmail
	ErrDuplicateNickname = repository.ErrDuplicateNickname
)

// ValidationError is a failed check on one input field. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Field + " " + e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// MissingFieldError names an absent required field. It matches ErrMissingField.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string { return e.Field + " is required" }

func (e *MissingFieldError) Is(target error) bool { return target == ErrMissingField }

// FieldOf extracts the offending field from a validation or missing-field error.
func FieldOf(err error) (field, message string, ok bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Field, ve.Message, true
	}
	var me *MissingFieldError
	if errors.As(err, &me) {
		return me.Field, "is required", true
	}
	return "", "", false
}
