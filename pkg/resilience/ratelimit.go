package resilience

import (
	"golang.org/x/time/rate"
)

// RateBudget describes one provider's call budget. PerMinute is the refill
// rate, Capacity the bucket size. The zero Capacity defaults to PerMinute,
// matching a bucket that starts full and holds one minute of traffic.
type RateBudget struct {
	PerMinute float64 `yaml:"per_minute"`
	Capacity  int     `yaml:"capacity"`
}

func (b RateBudget) limiter() *rate.Limiter {
	capacity := b.Capacity

	if capacity <= 0 {
		capacity = int(b.PerMinute)
	}

	if capacity <= 0 {
		capacity = 1
	}

	return rate.NewLimiter(rate.Limit(b.PerMinute/60.0), capacity)
}

// Limiters holds one token bucket per provider. Buckets live for the whole
// process and are shared by every request touching that provider; the map is
// read-only after New.
type Limiters struct {
	limiters map[string]*rate.Limiter
}

func NewLimiters(budgets map[string]RateBudget) *Limiters {
	limiters := make(map[string]*rate.Limiter, len(budgets))

	for name, budget := range budgets {
		limiters[name] = budget.limiter()
	}

	return &Limiters{
		limiters: limiters,
	}
}

// Get returns the bucket for a provider, or nil when no budget is configured
// (local providers make no outbound calls and are not gated).
func (l *Limiters) Get(provider string) *rate.Limiter {
	return l.limiters[provider]
}

// Tokens reports the currently available tokens per provider.
func (l *Limiters) Tokens() map[string]float64 {
	tokens := make(map[string]float64, len(l.limiters))

	for name, limiter := range l.limiters {
		tokens[name] = limiter.Tokens()
	}

	return tokens
}
