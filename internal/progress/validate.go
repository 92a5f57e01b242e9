package progress

import (
	"strings"
	"unicode/utf8"
)

// MinPasswordLen is the shortest password registration accepts.
const MinPasswordLen = 6

// ValidationError is a form problem caught before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Registration is the sign-up form.
type Registration struct {
	Username string
	Email    string
	Password string
	Confirm  string
}

// Validate checks the form in the order the fields are shown.
func (r Registration) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return &ValidationError{Field: "username", Message: "Введите имя пользователя"}
	}
	if !strings.Contains(r.Email, "@") {
		return &ValidationError{Field: "email", Message: "Введите корректный email"}
	}
	if r.Password != r.Confirm {
		return &ValidationError{Field: "confirm", Message: "Пароли не совпадают"}
	}
	if utf8.RuneCountInString(r.Password) < MinPasswordLen {
		return &ValidationError{Field: "password", Message: "Пароль должен быть не менее 6 символов"}
	}
	return nil
}

func validateLogin(username, password string) error {
	if strings.TrimSpace(username) == "" {
		return &ValidationError{Field: "username", Message: "Введите имя пользователя"}
	}
	if password == "" {
		return &ValidationError{Field: "password", Message: "Введите пароль"}
	}
	return nil
}
