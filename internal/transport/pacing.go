package transport

import (
	"context"
	"time"
)

// Sleep pauses for d or until ctx is done, whichever comes first.
// Used for cooperative pacing between chunk and batch requests.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
