package resilience

import (
	"context"

	"github.com/docrelay/docrelay/pkg/logger"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("github.com/docrelay/docrelay/pkg/resilience")

// Guard wraps outbound provider calls with rate limiting and retry. Each
// attempt re-acquires a token before running, so retries pay the same budget
// cost as first tries.
type Guard struct {
	provider string

	limiter *rate.Limiter
	policy  RetryPolicy
}

// NewGuard builds a guard for one provider. A nil limiter disables rate
// gating (used for local providers).
func NewGuard(provider string, limiter *rate.Limiter, policy RetryPolicy) *Guard {
	return &Guard{
		provider: provider,

		limiter: limiter,
		policy:  policy,
	}
}

// Do runs op under the guard. Retryable failures wait per the policy and run
// again, up to MaxAttempts total; the last failure surfaces. Fatal failures
// surface immediately. Waiting suspends only the calling goroutine.
func (g *Guard) Do(ctx context.Context, op func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, "provider.call")
	defer span.End()

	span.SetAttributes(attribute.String("provider", g.provider))

	attempt := 0

	err := retry.Do(ctx, g.policy.backoff(), func(ctx context.Context) error {
		attempt++

		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		err := op(ctx)

		if err == nil {
			return nil
		}

		if !g.policy.Retryable(err) {
			return err
		}

		logger.FromContext(ctx).Warn("provider call failed, retrying",
			"provider", g.provider,
			"attempt", attempt,
			"max_attempts", g.policy.MaxAttempts,
			"error", err)

		return retry.RetryableError(err)
	})

	span.SetAttributes(attribute.Int("attempts", attempt))

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}

	return err
}
