package api

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/panel/internal/resilience"
)

// StatusCode returns the HTTP status carried by an API error, or 0.
func StatusCode(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsTransient reports whether err is worth retrying: network failures,
// timeouts, rate limits, overload and server errors, and an open circuit.
// Anything else, including a malformed request, is a rejection.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return true
	}

	if code := StatusCode(err); code != 0 {
		switch {
		case code == http.StatusRequestTimeout,
			code == http.StatusConflict,
			code == http.StatusTooManyRequests,
			code >= 500:
			return true
		default:
			return false
		}
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// countsTowardBreaker reports whether err signals endpoint trouble rather
// than a bad request.
func countsTowardBreaker(err error) bool {
	return IsTransient(err) && !errors.Is(err, resilience.ErrCircuitOpen)
}

// BreakerConfig controls the circuit breaker around generation calls.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive endpoint failures that opens
	// the circuit. Zero disables the breaker.
	MaxFailures int
	Timeout     time.Duration
}

// NewBreaker returns a breaker that only counts endpoint failures.
func NewBreaker(cfg BreakerConfig) *resilience.Breaker {
	if cfg.MaxFailures <= 0 {
		return nil
	}
	return resilience.NewBreaker(cfg.MaxFailures, cfg.Timeout, countsTowardBreaker)
}
