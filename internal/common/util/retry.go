package util

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
)

// RetryWithBackoff calls performAction up to maxAttempts times, doubling the wait between attempts from
// 100ms up to maxBackoff.  The last error is returned if every attempt fails, and ctx.Err() if ctx is done
// while waiting to retry.  If ctx is already done, performAction is not called at all.
func RetryWithBackoff(ctx context.Context, maxAttempts int, maxBackoff time.Duration, performAction func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	err := retry.Do(
		performAction,
		retry.Context(ctx),
		retry.Attempts(uint(maxAttempts)),
		retry.Delay(100*time.Millisecond),
		retry.MaxDelay(maxBackoff),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	if err == nil || ctx.Err() != nil {
		return err
	}
	return errors.WithMessagef(err, "giving up after %d attempts", maxAttempts)
}
