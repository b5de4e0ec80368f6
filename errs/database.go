package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrAlreadyExists = errors.New("already exists")
	ErrDatabaseQuery = errors.New("database query failed")
)

// Database & Storage Specific Errors
var (
	ErrUniqueConstraintViolation = errors.New("unique constraint violation")
	ErrForeignKeyConstraint      = errors.New("foreign key constraint violation")
)

// NewDatabaseError maps a store failure onto the API taxonomy. Only
// constraint violations keep a specific status; anything else becomes a
// generic 500 whose cause is logged but never sent to the client.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	details := fmt.Sprintf("Failed to %s %s", operation, entity)

	if cause != nil {
		switch {
		case errors.Is(cause, ErrUniqueConstraintViolation), isUniqueViolation(cause):
			return &ApiErr{
				StatusCode: http.StatusConflict,
				err:        fmt.Errorf("%s %w", entity, ErrAlreadyExists),
				Cause:      cause,
			}
		case errors.Is(cause, ErrForeignKeyConstraint):
			return &ApiErr{
				StatusCode: http.StatusBadRequest,
				err:        fmt.Errorf("invalid reference in %s", entity),
				Cause:      cause,
			}
		}
	}

	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrDatabaseQuery,
		Details:    details,
		Cause:      cause,
	}
}

// IsUniqueViolation reports whether err came from a unique index on either
// supported dialect.
func IsUniqueViolation(err error) bool {
	return errors.Is(err, ErrUniqueConstraintViolation) || isUniqueViolation(err)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}
