package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/docrelay/docrelay/pkg/resilience"

	"github.com/stretchr/testify/require"
)

func TestStatusErrorMessage(t *testing.T) {
	err := &resilience.StatusError{Code: 429}
	require.Equal(t, "provider returned status 429", err.Error())

	err = &resilience.StatusError{Code: 503, Message: "overloaded"}
	require.Equal(t, "provider returned status 503: overloaded", err.Error())
}

func TestRetryable(t *testing.T) {
	policy := resilience.DefaultRetryPolicy()

	tests := []struct {
		name string
		err  error

		retryable bool
	}{
		{
			name:      "nil",
			err:       nil,
			retryable: false,
		},
		{
			name:      "rate limited",
			err:       &resilience.StatusError{Code: 429},
			retryable: true,
		},
		{
			name:      "server error",
			err:       &resilience.StatusError{Code: 503},
			retryable: true,
		},
		{
			name:      "client error",
			err:       &resilience.StatusError{Code: 400},
			retryable: false,
		},
		{
			name:      "unauthorized",
			err:       &resilience.StatusError{Code: 401},
			retryable: false,
		},
		{
			name:      "wrapped status",
			err:       fmt.Errorf("call failed: %w", &resilience.StatusError{Code: 500}),
			retryable: true,
		},
		{
			name:      "network error",
			err:       &net.DNSError{Err: "timeout", IsTimeout: true},
			retryable: true,
		},
		{
			name:      "context canceled",
			err:       context.Canceled,
			retryable: false,
		},
		{
			name:      "deadline exceeded",
			err:       context.DeadlineExceeded,
			retryable: false,
		},
		{
			name:      "plain error",
			err:       errors.New("boom"),
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.retryable, policy.Retryable(tt.err))
		})
	}
}

func TestGuardRetriesTransientFailures(t *testing.T) {
	policy := resilience.RetryPolicy{
		MaxAttempts: 3,

		BaseDelay: time.Millisecond,
		Factor:    2,

		RetryableStatus: []int{503},
	}

	guard := resilience.NewGuard("fake", nil, policy)

	calls := 0

	err := guard.Do(context.Background(), func(ctx context.Context) error {
		calls++

		if calls < 3 {
			return &resilience.StatusError{Code: 503}
		}

		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestGuardExhaustsAttempts(t *testing.T) {
	policy := resilience.RetryPolicy{
		MaxAttempts: 2,

		BaseDelay: time.Millisecond,
		Factor:    2,

		RetryableStatus: []int{503},
	}

	guard := resilience.NewGuard("fake", nil, policy)

	calls := 0

	err := guard.Do(context.Background(), func(ctx context.Context) error {
		calls++

		return &resilience.StatusError{Code: 503}
	})

	require.Error(t, err)
	require.Equal(t, 2, calls)

	var statusErr *resilience.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, 503, statusErr.Code)
}

func TestGuardFatalErrorReturnsImmediately(t *testing.T) {
	guard := resilience.NewGuard("fake", nil, resilience.DefaultRetryPolicy())

	calls := 0
	boom := &resilience.StatusError{Code: 400}

	err := guard.Do(context.Background(), func(ctx context.Context) error {
		calls++

		return boom
	})

	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)
}

func TestGuardCancellationStopsRetries(t *testing.T) {
	policy := resilience.RetryPolicy{
		MaxAttempts: 10,

		BaseDelay: 50 * time.Millisecond,
		Factor:    2,

		RetryableStatus: []int{503},
	}

	guard := resilience.NewGuard("fake", nil, policy)

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0

	err := guard.Do(ctx, func(ctx context.Context) error {
		calls++
		cancel()

		return &resilience.StatusError{Code: 503}
	})

	require.Error(t, err)
	require.Equal(t, 1, calls)
}
