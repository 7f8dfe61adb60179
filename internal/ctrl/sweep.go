package ctrl

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
)

// Sweep deletes refresh tokens past expiry plus grace and failed login
// attempts that fell out of the rate-limit window.
func (c *Controller) Sweep(ctx context.Context) error {
	const op = "auth.Sweep.ctrl"

	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	defer span.Finish()

	now := c.now()
	tokens, err := c.repo.DeleteExpiredTokens(ctx, now.Add(-c.grace))
	if err != nil {
		return internal(err)
	}

	attempts, err := c.repo.DeleteStaleAttempts(ctx, now.Add(-c.limiter.window))
	if err != nil {
		return internal(err)
	}

	zap.L().Info(
		"sweep finished",
		zap.String("op", op),
		zap.Int64("tokens", tokens),
		zap.Int64("attempts", attempts),
	)
	return nil
}

// StartSweeper runs Sweep every interval until ctx is done.
func (c *Controller) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.Sweep(ctx); err != nil {
					zap.L().Error("sweep failed", zap.String("op", "auth.StartSweeper.ctrl"), zap.Error(err))
				}
			}
		}
	}()
}
