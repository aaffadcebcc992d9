package domain

import (
	"errors"
	"strings"
)

var (
	ErrTodoNotFound       = errors.New("todo not found")
	ErrDuplicateTitle     = errors.New("a todo with that title already exists")
	ErrConcurrentUpdate   = errors.New("todo was modified or deleted concurrently")
	ErrUserExists         = errors.New("username or email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Validation messages shared by the entity and the factory validator.
const (
	MsgTitleRequired          = "Title is required."
	MsgTitleTooLong           = "Title cannot exceed 255 characters."
	MsgDueDateInPast          = "DueDate cannot be in the past."
	MsgDescriptionTooLong     = "Description cannot exceed 200 characters."
	MsgAdditionalDataTooLong  = "AdditionalData cannot exceed 500 characters."
	MsgInvalidPriority        = "Invalid Priority value."
	MsgInvalidStatus          = "Invalid Status value."
	MsgTodoNotFound           = "The todo does not exist."
	MsgTodoNotFoundOrNotOwned = "The todo does not exist or does not belong to the user."
	MsgTodoAlreadyDeleted     = "The todo does not exist or is already deleted."
)

// ValidationError carries every violation found, not just the first.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, " ")
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}
