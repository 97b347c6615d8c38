package ai

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type statusErr struct{ code int }

func (e statusErr) Error() string       { return fmt.Sprintf("status %d", e.code) }
func (e statusErr) HTTPStatusCode() int { return e.code }

func TestClassifyText(t *testing.T) {
	cases := []struct {
		msg  string
		want ErrorKind
	}{
		{"Error code: 401 - unauthorized", ErrorAuth},
		{"No auth credentials found", ErrorAuth},
		{"got 403 from upstream", ErrorPermission},
		{"Forbidden", ErrorPermission},
		{"HTTP 429", ErrorRateLimit},
		{"Rate Limit exceeded", ErrorRateLimit},
		{"connection reset by peer", ErrorUnknown},
		// case-sensitive phrases stay unknown in lower case
		{"forbidden", ErrorUnknown},
		// precedence follows auth, permission, rate limit
		{"401 then 429", ErrorAuth},
	}
	for _, tc := range cases {
		got := Classify(errors.New(tc.msg))
		require.Equal(t, tc.want, got.Kind, "msg=%q", tc.msg)
	}
}

func TestClassifyPrefersStatusCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", statusErr{code: 429})
	require.Equal(t, ErrorRateLimit, Classify(err).Kind)

	// unmapped status falls back to text matching
	err = fmt.Errorf("body mentions 403: %w", statusErr{code: 500})
	require.Equal(t, ErrorPermission, Classify(err).Kind)
}

func TestClassifyKeepsExisting(t *testing.T) {
	orig := &CompletionError{Kind: ErrorAuth, Err: errors.New("x")}
	require.Same(t, orig, Classify(fmt.Errorf("outer: %w", orig)))
	require.Nil(t, Classify(nil))
}

func TestPlaceholder(t *testing.T) {
	require.Equal(t, "[Error: invalid API key]", (&CompletionError{Kind: ErrorAuth}).Placeholder())
	require.Equal(t, "[Error: no API permission]", (&CompletionError{Kind: ErrorPermission}).Placeholder())
	require.Equal(t, "[Error: too many requests]", (&CompletionError{Kind: ErrorRateLimit}).Placeholder())
	require.Equal(t, "[Error: boom]", Classify(errors.New("boom")).Placeholder())
}

// chainErr mimics how the chain runtime reports a failed node.
type chainErr struct {
	cause  error
	opaque bool
}

func (e chainErr) Error() string {
	return "[NodeRunError] " + e.cause.Error() + "\n------------------------\nnode path: [node_1]"
}

func (e chainErr) Unwrap() error {
	if e.opaque {
		return nil
	}
	return e.cause
}

func TestClassifyStripsChainRuntimeWrapper(t *testing.T) {
	cause := errors.New("openrouter: unexpected status 500: boom")
	got := Classify(chainErr{cause: cause})

	require.Equal(t, ErrorUnknown, got.Kind)
	require.Same(t, cause, got.Err)
	require.Equal(t, "[Error: openrouter: unexpected status 500: boom]", got.Placeholder())
}

func TestPlaceholderSingleLineWithoutUnwrap(t *testing.T) {
	got := Classify(chainErr{cause: errors.New("dial tcp: connection\nrefused"), opaque: true})

	require.Equal(t, ErrorUnknown, got.Kind)
	require.Equal(t, "[Error: dial tcp: connection refused]", got.Placeholder())
	require.NotContains(t, got.Placeholder(), "node path")
}

func TestClassifyKeepsStatusThroughChainWrapper(t *testing.T) {
	got := Classify(chainErr{cause: fmt.Errorf("request failed: %w", statusErr{code: 401})})
	require.Equal(t, ErrorAuth, got.Kind)
	require.Equal(t, "[Error: invalid API key]", got.Placeholder())
}
