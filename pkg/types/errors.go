package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInvalidBloodGroup   = errors.New("invalid blood group")
	ErrDonorNotFound       = errors.New("donor not found")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateDonorEmail = errors.New("a donor with this email already exists")
	ErrUsernameTaken       = errors.New("username already exist")
	ErrEmailTaken          = errors.New("email already exist")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrForbidden           = errors.New("forbidden")
)

const MsgRequiredFields = "Please fill in all required fields"

// ValidationError is returned when request input is incomplete or malformed.
// Fields maps an input field name to a user facing message.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message, Fields: map[string]string{}}
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = message
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}

	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// StoreError wraps a failure of the underlying persistence layer. Op names the
// operation that failed and is safe to log but not to show to callers.
type StoreError struct {
	Op  string
	Err error
}

func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
