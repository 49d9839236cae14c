package llm

import (
	"errors"
	"strings"
)

// ErrSkipped means no request slot could be acquired within the limiter's
// policy. It is not a transport failure: callers fall back to the rule
// analyzer and move on.
var ErrSkipped = errors.New("request skipped by rate limiter")

// isRateLimitErr matches throttle-class failures by message, which is all
// the API surface gives us reliably across transports.
func isRateLimitErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota")
}

// isModelUnavailableErr matches errors that mean the requested model name
// itself cannot be served, prompting a fallback to the next candidate.
func isModelUnavailableErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "404") ||
		strings.Contains(msg, "not found") ||
		strings.Contains(msg, "unsupported model") ||
		strings.Contains(msg, "does not exist") ||
		(strings.Contains(msg, "model") && strings.Contains(msg, "unavailable"))
}
