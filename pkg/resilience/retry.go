package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"slices"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryPolicy controls how failed provider calls are retried. MaxAttempts
// counts the first try; the wait before retry n is BaseDelay * Factor^(n-1).
type RetryPolicy struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
	Factor      float64       `yaml:"factor"`

	RetryableStatus []int `yaml:"retryable_status"`
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,

		BaseDelay: 2 * time.Second,
		Factor:    2,

		RetryableStatus: []int{429, 500, 502, 503, 504},
	}
}

// StatusError carries an HTTP status from a provider response so the retry
// classifier can tell transient failures from fatal ones.
type StatusError struct {
	Code int

	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider returned status %d", e.Code)
	}

	return fmt.Sprintf("provider returned status %d: %s", e.Code, e.Message)
}

// Retryable classifies an error as transient. Statuses in RetryableStatus and
// network-level errors retry; context cancellation and everything else is
// fatal.
func (p RetryPolicy) Retryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError

	if errors.As(err, &statusErr) {
		return slices.Contains(p.RetryableStatus, statusErr.Code)
	}

	var netErr net.Error

	return errors.As(err, &netErr)
}

func (p RetryPolicy) backoff() retry.Backoff {
	attempt := 0

	var b retry.Backoff = retry.BackoffFunc(func() (time.Duration, bool) {
		delay := float64(p.BaseDelay) * math.Pow(p.Factor, float64(attempt))
		attempt++

		return time.Duration(delay), false
	})

	attempts := p.MaxAttempts

	if attempts < 1 {
		attempts = 1
	}

	return retry.WithMaxRetries(uint64(attempts-1), b)
}
