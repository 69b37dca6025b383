package generator

import "fmt"

// Class partitions generator failures for retry policy decisions.
type Class string

const (
	// ClassOverloaded is an upstream capacity signal. Retryable.
	ClassOverloaded Class = "overloaded"
	// ClassRateLimited is an explicit rate-limit rejection. Retryable.
	ClassRateLimited Class = "rate_limited"
	// ClassAuth is an authentication or authorization failure. Terminal.
	ClassAuth Class = "auth"
	// ClassRejected is a permanent upstream rejection. Terminal.
	ClassRejected Class = "rejected"
	// ClassMalformed is output that could not be decoded or failed schema
	// validation. Terminal for a single attempt; the gateway retries it once
	// before giving up.
	ClassMalformed Class = "malformed"
	// ClassExhausted means the retry budget ran out. Terminal.
	ClassExhausted Class = "exhausted"
)

// Error is a classified generator failure.
type Error struct {
	Class   Class
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generator %s: %s: %v", e.Class, e.Message, e.Cause)
	}
	return fmt.Sprintf("generator %s: %s", e.Class, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches generator errors by class.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Class == t.Class
	}
	return false
}

func newError(class Class, message string, cause error) *Error {
	return &Error{Class: class, Message: message, Cause: cause}
}

// ClassOf extracts the failure class, or empty string for non-generator errors.
func ClassOf(err error) Class {
	if e, ok := err.(*Error); ok {
		return e.Class
	}
	return ""
}

// Retryable reports whether the failure may succeed on a later attempt.
func Retryable(err error) bool {
	switch ClassOf(err) {
	case ClassOverloaded, ClassRateLimited:
		return true
	default:
		return false
	}
}
