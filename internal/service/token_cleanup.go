package service

import (
	"context"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"
)

type ResetTokenSweeper interface {
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// ResetTokenCleanup periodically clears reset tokens that expired without
// being used. Expired tokens are already rejected on lookup, this only keeps
// stale digests from lingering in the table. It stops when ctx is done, the
// returned function blocks until it has.
func ResetTokenCleanup(ctx context.Context, t time.Duration, users ResetTokenSweeper, now Clock) (wait func()) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Reset token cleanup attached", zap.Duration("tick_every", t))

	var wg conc.WaitGroup
	wg.Go(func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweepResetTokens(ctx, users, now())
			}
		}
	})

	return wg.Wait
}

func sweepResetTokens(ctx context.Context, users ResetTokenSweeper, now time.Time) {
	n, err := users.ClearExpiredResetTokens(ctx, now)
	if err != nil {
		zap.L().Error("Failed to clean up expired reset tokens", zap.Error(err))
		return
	}

	if n > 0 {
		zap.L().Debug("Cleaned up expired reset tokens", zap.Int64("count", n))
	}
}
