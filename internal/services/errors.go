package services

import (
	"errors"
	"fmt"
	"net/http"

	"campus-access-backend/internal/store"
)

type ServiceError struct {
	Status  int
	Code    string
	Message string
}

func (e ServiceError) Error() string {
	return e.Message
}

func ErrNotFound(msg string) error {
	return ServiceError{Status: http.StatusNotFound, Code: "not_found", Message: msg}
}

func ErrInvalidInput(msg string) error {
	return ServiceError{Status: http.StatusBadRequest, Code: "invalid_input", Message: msg}
}

// ErrConflict is reported as 400 to keep the public contract of the booking API.
func ErrConflict(msg string) error {
	return ServiceError{Status: http.StatusBadRequest, Code: "conflict", Message: msg}
}

func ErrForbidden(msg string) error {
	return ServiceError{Status: http.StatusForbidden, Code: "forbidden", Message: msg}
}

func ErrUnauthorized(msg string) error {
	return ServiceError{Status: http.StatusUnauthorized, Code: "auth_failed", Message: msg}
}

func ErrTooManyRequests(msg string) error {
	return ServiceError{Status: http.StatusTooManyRequests, Code: "too_many_requests", Message: msg}
}

func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// IsCode reports whether err carries a ServiceError with the given code.
func IsCode(err error, code string) bool {
	var svcErr ServiceError
	return errors.As(err, &svcErr) && svcErr.Code == code
}

// storeErr turns store sentinels into service errors and wraps anything else.
func storeErr(err error, notFound, conflict, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound) && notFound != "":
		return ErrNotFound(notFound)
	case errors.Is(err, store.ErrConflict) && conflict != "":
		return ErrConflict(conflict)
	}
	return WrapError(err, op)
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
