package sources

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/envutil"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

// RetryPolicy is the per-client retry budget: Attempts tries in total, with
// exponential waits between MinWait and MaxWait.
type RetryPolicy struct {
	Attempts uint
	MinWait  time.Duration
	MaxWait  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, MinWait: 2 * time.Second, MaxWait: 8 * time.Second}
}

// RetryPolicyFromEnv reads SOURCE_RETRY_ATTEMPTS, SOURCE_RETRY_MIN_MS and
// SOURCE_RETRY_MAX_MS.
func RetryPolicyFromEnv() RetryPolicy {
	def := DefaultRetryPolicy()
	p := RetryPolicy{
		MinWait: envutil.Millis("SOURCE_RETRY_MIN_MS", int(def.MinWait/time.Millisecond)),
		MaxWait: envutil.Millis("SOURCE_RETRY_MAX_MS", int(def.MaxWait/time.Millisecond)),
	}
	if n := envutil.Int("SOURCE_RETRY_ATTEMPTS", int(def.Attempts)); n > 0 {
		p.Attempts = uint(n)
	} else {
		p.Attempts = def.Attempts
	}
	return p.normalized()
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.Attempts == 0 {
		p.Attempts = 1
	}
	if p.MinWait <= 0 {
		p.MinWait = time.Millisecond
	}
	if p.MaxWait < p.MinWait {
		p.MaxWait = p.MinWait
	}
	return p
}

func (p RetryPolicy) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.MinWait
	b.MaxInterval = p.MaxWait
	b.Multiplier = 2
	b.RandomizationFactor = 0.2
	return b
}

// withRetry runs op under the policy. Not-found results, validation errors
// and context cancellation are permanent.
func withRetry[T any](ctx context.Context, p RetryPolicy, log *logger.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	p = p.normalized()
	return backoff.Retry(ctx, func() (T, error) {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if errors.Is(err, pgx.ErrNoRows) || domain.IsValidationError(err) ||
			errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(p.backOff()),
		backoff.WithMaxTries(p.Attempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			if log != nil {
				log.Debug("Source call failed, retrying", "op", op, "wait_ms", wait.Milliseconds(), "error", err)
			}
		}),
	)
}
