// Package errors provides the unified error handling system for the
// website-to-chatbot service.
//
// Error Code Format: AABBCCC (7 digits)
//
//	AA  (00-99): Service/Module code - identifies the source service
//	BB  (00-99): Category code - identifies the error category
//	CCC (000-999): Sequence number - specific error within the category
//
// Service Codes (AA):
//
//	00: Common/Base errors
//	20: Bot ingestion service
//	21: Chat/retrieval service
//	90-99: Third-party provider errors
//
// Category Codes (BB):
//
//	00: Success
//	01: Request/Validation errors (400)
//	04: Resource not found errors (404)
//	05: Conflict errors (409)
//	06: Rate limiting errors (429)
//	07: Internal errors (500)
//	08: Database errors (500)
//	10: Network/upstream errors (502)
//
// Usage:
//
//	// Using predefined errors
//	return errors.ErrBotNotFound.WithMessagef("bot %s not found", botID)
//
//	// Wrapping underlying errors
//	return errors.ErrCrawlFailed.WithCause(err)
package errors

import (
	"fmt"
	"net/http"
	"sync"
)

// Errno represents a structured error with code and message.
type Errno struct {
	// Code is the unique error code
	Code int `json:"code"`

	// HTTP is the HTTP status code to return
	HTTP int `json:"-"`

	// Message is the user-facing error message
	Message string `json:"message"`

	// cause is the underlying error
	cause error
}

// Error implements the error interface.
func (e *Errno) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("errno %d: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("errno %d: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Errno) Unwrap() error {
	return e.cause
}

// WithCause creates a new Errno with the given cause.
func (e *Errno) WithCause(cause error) *Errno {
	return &Errno{
		Code:    e.Code,
		HTTP:    e.HTTP,
		Message: e.Message,
		cause:   cause,
	}
}

// WithMessage creates a new Errno with a custom message.
func (e *Errno) WithMessage(msg string) *Errno {
	return &Errno{
		Code:    e.Code,
		HTTP:    e.HTTP,
		Message: msg,
		cause:   e.cause,
	}
}

// WithMessagef creates a new Errno with a formatted message.
func (e *Errno) WithMessagef(format string, args ...interface{}) *Errno {
	return &Errno{
		Code:    e.Code,
		HTTP:    e.HTTP,
		Message: fmt.Sprintf(format, args...),
		cause:   e.cause,
	}
}

// HTTPStatus returns the HTTP status code.
func (e *Errno) HTTPStatus() int {
	if e.HTTP != 0 {
		return e.HTTP
	}
	return http.StatusInternalServerError
}

// Is checks if this error matches the target error code.
// Errnos derived via WithCause/WithMessage keep matching their parent.
func (e *Errno) Is(target error) bool {
	if t, ok := target.(*Errno); ok {
		return e.Code == t.Code
	}
	return false
}

// MakeCode builds an error code from service, category and sequence.
func MakeCode(service, category, seq int) int {
	return service*100000 + category*1000 + seq
}

// Service codes.
const (
	ServiceCommon = 0
	ServiceIngest = 20
	ServiceChat   = 21
	ServiceVendor = 90
)

// Category codes.
const (
	CategoryRequest  = 1
	CategoryNotFound = 4
	CategoryConflict = 5
	CategoryRate     = 6
	CategoryInternal = 7
	CategoryDatabase = 8
	CategoryUpstream = 10
)

// errnoRegistry stores all registered error codes for uniqueness validation.
var (
	errnoRegistry = make(map[int]*Errno)
	registryMu    sync.RWMutex
)

// Register registers an Errno and validates uniqueness.
// Panics if the code is already registered.
func Register(e *Errno) *Errno {
	registryMu.Lock()
	defer registryMu.Unlock()

	if existing, ok := errnoRegistry[e.Code]; ok {
		panic(fmt.Sprintf("errno code %d already registered: %s", e.Code, existing.Message))
	}
	errnoRegistry[e.Code] = e
	return e
}

// Lookup returns the registered Errno for the given code.
func Lookup(code int) (*Errno, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := errnoRegistry[code]
	return e, ok
}

// FromError converts any error to Errno.
// If err is already an Errno, returns it directly.
// Otherwise, wraps it as ErrInternal.
func FromError(err error) *Errno {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Errno); ok {
		return e
	}
	return ErrInternal.WithCause(err)
}

// IsCode checks if the error has the given error code, unwrapping as needed.
func IsCode(err error, code int) bool {
	for err != nil {
		if e, ok := err.(*Errno); ok && e.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// GetCode returns the error code from an error.
// Returns -1 if the error is not an Errno.
func GetCode(err error) int {
	if e, ok := err.(*Errno); ok {
		return e.Code
	}
	return -1
}
