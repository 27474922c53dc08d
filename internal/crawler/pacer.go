package crawler

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// pacer enforces the single global post-fetch delay. Unlike the per-host
// token buckets a politeness layer would usually build, this crawl has
// exactly one shared rate.Limiter for the whole run: spec calls for a
// global, not per-host, delay.
type pacer struct {
	limiter *rate.Limiter
}

func newPacer(delay time.Duration) *pacer {
	if delay <= 0 {
		return &pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &pacer{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Wait blocks until the next request is permitted under the global delay.
func (p *pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
