package resilience_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/docrelay/docrelay/pkg/resilience"

	"github.com/stretchr/testify/require"
)

func TestLimitersGet(t *testing.T) {
	limiters := resilience.NewLimiters(map[string]resilience.RateBudget{
		"azureai": {PerMinute: 60},
	})

	require.NotNil(t, limiters.Get("azureai"))
	require.Nil(t, limiters.Get("unknown"))
}

func TestLimiterCapacityDefaultsToPerMinute(t *testing.T) {
	limiters := resilience.NewLimiters(map[string]resilience.RateBudget{
		"azureai": {PerMinute: 60},
		"azuredi": {PerMinute: 30, Capacity: 5},
	})

	tokens := limiters.Tokens()

	require.InDelta(t, 60, tokens["azureai"], 1)
	require.InDelta(t, 5, tokens["azuredi"], 1)
}

func TestLimiterBurstThenWait(t *testing.T) {
	limiters := resilience.NewLimiters(map[string]resilience.RateBudget{
		// 100 tokens per second refill, bucket of 3.
		"fast": {PerMinute: 6000, Capacity: 3},
	})

	limiter := limiters.Get("fast")
	ctx := context.Background()

	start := time.Now()

	for range 3 {
		require.NoError(t, limiter.Wait(ctx))
	}

	// The burst drains without measurable delay.
	require.Less(t, time.Since(start), 5*time.Millisecond)

	start = time.Now()
	require.NoError(t, limiter.Wait(ctx))

	// The fourth acquisition waits for a refill.
	require.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestLimiterWaitCancellation(t *testing.T) {
	limiters := resilience.NewLimiters(map[string]resilience.RateBudget{
		"slow": {PerMinute: 1, Capacity: 1},
	})

	limiter := limiters.Get("slow")

	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	require.Error(t, limiter.Wait(ctx))
}

func TestLimiterConcurrentAccounting(t *testing.T) {
	limiters := resilience.NewLimiters(map[string]resilience.RateBudget{
		"shared": {PerMinute: 6000, Capacity: 50},
	})

	limiter := limiters.Get("shared")

	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if err := limiter.Wait(context.Background()); err != nil {
				t.Error(err)
			}
		}()
	}

	wg.Wait()

	// All 50 tokens consumed, none double-spent.
	require.LessOrEqual(t, limiter.Tokens(), 1.0)
}
