package api

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// DefaultErrorMessage is shown when the server gave no message of its own.
	DefaultErrorMessage = "Ошибка сервера"
	unreachableMessage  = "Нет связи с сервером"
)

// ErrNoToken is returned by authenticated calls made as a guest.
var ErrNoToken = errors.New("not signed in")

// Error is a non-2xx answer from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err means the token is missing, expired or
// rejected.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrNoToken) {
		return true
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
	}
	return false
}

// Message extracts the text to show the learner for err.
func Message(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return unreachableMessage
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return DefaultErrorMessage
}
