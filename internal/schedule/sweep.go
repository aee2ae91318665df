package schedule

import (
	"context"
	"log/slog"
	"time"
)

const processTimeout = 10 * time.Second

type Sweeper interface {
	SweepDanglingCodes(ctx context.Context) (int, error)
}

// StartDanglingCodeSweep periodically detaches users from dictionaries that were deleted
// without their members being updated. It blocks until ctx is done.
func StartDanglingCodeSweep(ctx context.Context, interval time.Duration, repo Sweeper, log *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "panic", "error", r)
		}
	}()

	log.InfoContext(ctx, "dangling code sweep schedule started", "interval", interval)
	defer log.InfoContext(ctx, "dangling code sweep schedule stopped")

	runIn := time.After(time.Second)
	for {
		select {
		case <-ctx.Done():
			return
		case <-runIn:
			runIn = time.After(interval)
			sweep(ctx, repo, log)
		}
	}
}

func sweep(ctx context.Context, repo Sweeper, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	cleared, err := repo.SweepDanglingCodes(ctx)
	if err != nil {
		log.ErrorContext(ctx, "failed to sweep dangling dictionary codes", "error", err)
		return
	}
	if cleared > 0 {
		log.InfoContext(ctx, "dangling dictionary codes cleared", "users", cleared)
	}
}
