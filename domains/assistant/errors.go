package assistant

import "errors"

// Gateway failure taxonomy. Everything except ErrAuth means the same thing
// to the orchestrator: the model is currently unusable.
var (
	// ErrAuth means invalid upstream credentials. Logged for the operator,
	// never retried, and indistinguishable from any other failure for users.
	ErrAuth = errors.New("model authentication rejected")

	// ErrUpstreamRateLimited is a 429 from the model provider.
	ErrUpstreamRateLimited = errors.New("model provider rate limited")

	// ErrColdStart is a 503 while the model is warming up.
	ErrColdStart = errors.New("model warming up")

	// ErrTimeout means no response arrived within the configured deadline.
	ErrTimeout = errors.New("model request timed out")

	// ErrEmptyResponse is a 200 with a blank payload.
	ErrEmptyResponse = errors.New("model returned empty response")

	// ErrTransientNetwork covers DNS and connection failures.
	ErrTransientNetwork = errors.New("model unreachable")
)
