package llm

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitProvider admits requests through a token bucket so a batch
// generation fan-out cannot exceed the configured requests per minute.
type RateLimitProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit wraps p. A non-positive PerMinute returns p unchanged.
func WithRateLimit(p Provider, cfg RateLimitConfig) Provider {
	if cfg.PerMinute <= 0 {
		return p
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	every := time.Minute / time.Duration(cfg.PerMinute)
	return &RateLimitProvider{inner: p, limiter: rate.NewLimiter(rate.Every(every), burst)}
}

func (r *RateLimitProvider) Name() string    { return r.inner.Name() }
func (r *RateLimitProvider) ModelID() string { return r.inner.ModelID() }

func (r *RateLimitProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// Wait fails early when the deadline would pass before a token.
		return nil, &ErrRateLimit{Err: err}
	}
	return r.inner.Generate(ctx, req)
}
