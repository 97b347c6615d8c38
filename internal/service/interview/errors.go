package interview

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorInvalidCredential  ErrorCode = "INVALID_CREDENTIAL"
	ErrorInvalidQuestions   ErrorCode = "INVALID_QUESTIONS"
	ErrorUnknownParticipant ErrorCode = "UNKNOWN_PARTICIPANT"
	ErrorInvalidMode        ErrorCode = "INVALID_MODE"
	ErrorNoPersonas         ErrorCode = "NO_PERSONAS"
	ErrorInterrupted        ErrorCode = "INTERRUPTED"
)

// Error aborts a whole run. No session is produced alongside it.
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
		return fmt.Sprintf("interview: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("interview: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// CodeOf extracts the run error code, or "" when err is not an *Error.
func CodeOf(err error) ErrorCode {
	var runErr *Error
	if errors.As(err, &runErr) {
		return runErr.Code
	}
	return ""
}
