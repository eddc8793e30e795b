package initializers

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Purger removes expired one-time codes and reports how many were deleted.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// StartOTPCleanup runs the janitor every interval until ctx is cancelled.
// The returned channel is closed once the goroutine has exited.
func StartOTPCleanup(ctx context.Context, purger Purger, interval time.Duration, logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := purger.PurgeExpired(ctx)
				switch {
				case err != nil:
					logger.Warn("Janitor: purge failed", zap.Error(err))
				case n > 0:
					logger.Info("Janitor: cleaned expired codes", zap.Int64("deleted", n))
				default:
					logger.Debug("Janitor: no expired codes found")
				}
			}
		}
	}()
	return done
}
