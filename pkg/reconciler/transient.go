package reconciler

import (
	"context"
	"errors"
	"strings"
)

// isTransient reports whether an error is worth retrying. Venue RPC
// errors arrive as opaque strings, so classification is by substring.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	msg := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"timed out",
		"temporary failure",
		"too many requests",
		"rate limit",
		"eof",
		"broken pipe",
		"502",
		"503",
		"504",
		"no such host",
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
