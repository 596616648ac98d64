// Package reliability classifies upstream failures for the provider
// fallback chain.
package reliability

import "time"

// IsKeyRotationStatus reports whether an HTTP status from the primary
// provider should burn the current credential and move to the next one
// in the pool (authorization failures and quota exhaustion).
func IsKeyRotationStatus(code int) bool {
	switch code {
	case 401, 402, 403, 429:
		return true
	default:
		return false
	}
}

// IsRetryableHTTPStatus classifies status codes worth handing to the
// next provider rather than surfacing.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// ExponentialBackoff computes a deterministic capped backoff duration.
func ExponentialBackoff(attempt int, base, cap time.Duration) time.Duration {
	if attempt <= 0 {
		return base
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cap {
			return cap
		}
	}
	return d
}
