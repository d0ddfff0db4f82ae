package usecase

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	apperrors "storefront/internal/errors"
	"storefront/internal/infrastructure/database"
)

const defaultBaseBackoff = 50 * time.Millisecond

// retrier reruns a transaction that lost a lock conflict, backing off
// exponentially with ±20% jitter between attempts.
type retrier struct {
	maxAttempts int
	baseBackoff time.Duration
	logger      *zap.Logger
	isRetryable func(error) bool
}

func newRetrier(maxAttempts int, logger *zap.Logger) retrier {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return retrier{
		maxAttempts: maxAttempts,
		baseBackoff: defaultBaseBackoff,
		logger:      logger,
		isRetryable: database.IsRetryable,
	}
}

func (r retrier) do(ctx context.Context, operation string, fn func() error) error {
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !r.isRetryable(err) {
			return err
		}
		if attempt == r.maxAttempts {
			r.logger.Error("retries exhausted",
				zap.String("operation", operation),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			break
		}

		delay := r.backoff(attempt)
		r.logger.Warn("lock conflict detected, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", r.maxAttempts),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)
		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}

	return apperrors.NewDeadlockError("the request conflicted with concurrent updates, please retry")
}

func (r retrier) backoff(attempt int) time.Duration {
	base := r.baseBackoff << (attempt - 1)
	jitter := time.Duration((rand.Float64()*0.4 - 0.2) * float64(base))
	return base + jitter
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
