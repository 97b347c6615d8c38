package ai

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the outward-visible category of a failed completion.
type ErrorKind string

const (
	ErrorAuth       ErrorKind = "auth"
	ErrorPermission ErrorKind = "permission"
	ErrorRateLimit  ErrorKind = "rate_limit"
	ErrorUnknown    ErrorKind = "unknown"
)

// CompletionError wraps a transport failure with its category.
type CompletionError struct {
	Kind ErrorKind
	Err  error
}

func (e *CompletionError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("ai: %s", e.Kind)
	}
	return fmt.Sprintf("ai: %s: %v", e.Kind, e.Err)
}

func (e *CompletionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Placeholder is the text recorded in place of an answer.
func (e *CompletionError) Placeholder() string {
	switch e.Kind {
	case ErrorAuth:
		return "[Error: invalid API key]"
	case ErrorPermission:
		return "[Error: no API permission]"
	case ErrorRateLimit:
		return "[Error: too many requests]"
	default:
		if e.Err == nil {
			return "[Error: unknown failure]"
		}
		return fmt.Sprintf("[Error: %s]", oneLine(e.Err.Error()))
	}
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// Classify maps err to a CompletionError. A structured HTTP status wins when it
// names one of the known categories; otherwise the error text is matched.
func Classify(err error) *CompletionError {
	if err == nil {
		return nil
	}
	var done *CompletionError
	if errors.As(err, &done) {
		return done
	}

	cause := rootCause(err)
	if kind, ok := kindFromStatus(err); ok {
		return &CompletionError{Kind: kind, Err: cause}
	}
	return &CompletionError{Kind: kindFromText(cause.Error()), Err: cause}
}

// The chain runtime wraps node failures as "[NodeRunError] <cause>" followed
// by a separator line and the node path.
const (
	runtimeTag       = "[NodeRunError] "
	runtimeSeparator = "\n------------------------"
	runtimePathLabel = "node path:"
)

// rootCause strips chain runtime wrappers so the transport error is kept.
func rootCause(err error) error {
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		if !strings.Contains(cur.Error(), runtimePathLabel) {
			return cur
		}
	}
	return err
}

// oneLine keeps placeholder text on a single line, dropping a runtime trailer
// when the wrapper could not be unwrapped.
func oneLine(msg string) string {
	if i := strings.Index(msg, runtimeSeparator); i >= 0 {
		msg = msg[:i]
	}
	msg = strings.TrimPrefix(msg, runtimeTag)
	return strings.Join(strings.Fields(msg), " ")
}

func kindFromStatus(err error) (ErrorKind, bool) {
	var coder httpStatusCoder
	if !errors.As(err, &coder) {
		return "", false
	}
	switch coder.HTTPStatusCode() {
	case 401:
		return ErrorAuth, true
	case 403:
		return ErrorPermission, true
	case 429:
		return ErrorRateLimit, true
	default:
		return "", false
	}
}

// kindFromText applies the substring rules in precedence order. Only the
// rate-limit phrase is matched case-insensitively.
func kindFromText(text string) ErrorKind {
	switch {
	case strings.Contains(text, "401") || strings.Contains(text, "No auth credentials"):
		return ErrorAuth
	case strings.Contains(text, "403") || strings.Contains(text, "Forbidden"):
		return ErrorPermission
	case strings.Contains(text, "429") || strings.Contains(strings.ToLower(text), "rate limit"):
		return ErrorRateLimit
	default:
		return ErrorUnknown
	}
}
