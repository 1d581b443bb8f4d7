package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beyondbeauty/press/logger"
)

// ErrInvalidCredentials is the only failure a login caller ever sees, whatever
// the underlying reason.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError reports malformed or missing input, naming the fields.
type ValidationError struct {
	Fields []string
	Reason string
}

func NewValidationError(reason string, fields ...string) *ValidationError {
	return &ValidationError{Fields: fields, Reason: reason}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Reason, strings.Join(e.Fields, ", "))
}

type DuplicateSlugError struct {
	Slug string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("an article with the name %q already exists", e.Slug)
}

// DuplicateAccountError is returned when the email or username is taken.
// Field is empty when the collision was only caught by the unique index.
type DuplicateAccountError struct {
	Field string
}

func (e *DuplicateAccountError) Error() string {
	if e.Field == "" {
		return "an account with this email or username already exists"
	}
	return fmt.Sprintf("an account with this %s already exists", e.Field)
}

type NotFoundError struct {
	Entity string
	Key    any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// InvalidAssetError rejects an uploaded file. TooLarge distinguishes the size
// limit from a disallowed type.
type InvalidAssetError struct {
	Reason   string
	TooLarge bool
}

func (e *InvalidAssetError) Error() string {
	return "invalid image: " + e.Reason
}

// CryptoError wraps an operational failure of hashing or signing.
type CryptoError struct {
	Op  string
	Err error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// Recover must be deferred directly. It logs and returns the recovered value.
func Recover(msg string) any {
	panicErr := recover()
	if panicErr != nil {
		if msg != "" {
			logger.Error(msg, "panic:", panicErr)
		}
	}
	return panicErr
}
