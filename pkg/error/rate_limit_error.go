package error

import "net/http"

// RateLimitError carries the retry hint so the handler can emit a
// Retry-After header alongside the 429 body.
type RateLimitError struct {
	Message           string
	RetryAfterSeconds int
}

func (err RateLimitError) Error() string {
	return err.Message
}

func (err RateLimitError) ErrCode() string {
	return "RATE_LIMIT_EXCEEDED"
}

func (err RateLimitError) StatusCode() int {
	return http.StatusTooManyRequests
}
