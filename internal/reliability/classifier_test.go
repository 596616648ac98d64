package reliability

import (
	"testing"
	"time"
)

func TestIsKeyRotationStatus(t *testing.T) {
	for _, code := range []int{401, 402, 403, 429} {
		if !IsKeyRotationStatus(code) {
			t.Fatalf("status %d should rotate the key", code)
		}
	}
	for _, code := range []int{200, 400, 404, 500, 503} {
		if IsKeyRotationStatus(code) {
			t.Fatalf("status %d should not rotate the key", code)
		}
	}
}

func TestIsRetryableHTTPStatus(t *testing.T) {
	for _, code := range []int{429, 500, 502, 503, 504} {
		if !IsRetryableHTTPStatus(code) {
			t.Fatalf("status %d should be retryable", code)
		}
	}
	if IsRetryableHTTPStatus(400) {
		t.Fatalf("status 400 should not be retryable")
	}
}

func TestExponentialBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	cap := time.Second
	if got := ExponentialBackoff(0, base, cap); got != base {
		t.Fatalf("attempt 0 = %v, want %v", got, base)
	}
	if got := ExponentialBackoff(2, base, cap); got != 400*time.Millisecond {
		t.Fatalf("attempt 2 = %v, want 400ms", got)
	}
	if got := ExponentialBackoff(10, base, cap); got != cap {
		t.Fatalf("attempt 10 = %v, want cap %v", got, cap)
	}
}
