package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/jackc/pgx/v5"
)

// Common service errors.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidationFailed  = errors.New("assignment validation failed")
	ErrSemesterRequired  = errors.New("semester is required")
	ErrNoCurrentSemester = errors.New("no current semester")
	ErrInvalidInput      = errors.New("invalid input")
	ErrTokenRevoked      = errors.New("token revoked")
)

// ValidationFailedError carries the result of a rejected assignment write.
type ValidationFailedError struct {
	Result *model.ValidationResult
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(e.Result.Errors, "; "))
}

func (e *ValidationFailedError) Unwrap() error { return ErrValidationFailed }

// notFound maps pgx.ErrNoRows onto ErrNotFound and leaves other errors untouched.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
