package customerr

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNoRates              = errors.New("no exchange rate data available")
	ErrFromCurrencyNotFound = errors.New("'from' currency not found")
	ErrToCurrencyNotFound   = errors.New("'to' currency not found")
)

// ValidationError is a bad or missing request field.
type ValidationError struct {
	Field string
	Err   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Err)
}

// NotFoundError reports missing rate data. Code is empty when the store has no rows at all.
type NotFoundError struct {
	Code  string
	Cause error
}

func (e *NotFoundError) Error() string {
	if e.Code == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s: %s", e.Cause.Error(), e.Code)
}

func (e *NotFoundError) Unwrap() error {
	return e.Cause
}

// UpstreamError is a failure of the external rates feed.
type UpstreamError struct {
	Cause error
}

func (e *UpstreamError) Error() string {
	return "rates feed: " + e.Cause.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// PersistenceError is a failed store transaction. Nothing of it was committed.
type PersistenceError struct {
	Cause error
}

func (e *PersistenceError) Error() string {
	return "persistence: " + e.Cause.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

func Validation(field, msg string) error {
	return &ValidationError{Field: field, Err: msg}
}

func NotFound(code string, cause error) error {
	return &NotFoundError{Code: code, Cause: cause}
}

func Upstream(cause error) error {
	return &UpstreamError{Cause: cause}
}

func Persistence(cause error) error {
	return &PersistenceError{Cause: cause}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsUpstream(err error) bool {
	var target *UpstreamError
	return errors.As(err, &target)
}

func IsPersistence(err error) bool {
	var target *PersistenceError
	return errors.As(err, &target)
}
