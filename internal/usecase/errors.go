package usecase

import "fmt"

type ErrorCode string

const (
	ErrorValidation ErrorCode = "VALIDATION_ERROR"
	ErrorUpstream   ErrorCode = "UPSTREAM_ERROR"
	ErrorTransport  ErrorCode = "TRANSPORT_ERROR"
	ErrorChatAPI    ErrorCode = "CHAT_API_ERROR"
	ErrorInternal   ErrorCode = "INTERNAL_ERROR"
)

// Error classifies a relay failure. Code tells callers which stage failed;
// Err keeps the underlying cause for errors.As and for the message shown to
// the caller.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Detail is the caller-facing description: the underlying error text when
// there is one, otherwise the reason.
func (e *Error) Detail() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Reason
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
