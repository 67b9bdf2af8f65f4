// Package retry provides the backoff policy the allocator deliberately
// does not have: refused allocations are a control-flow signal, and the
// integration layer decides how long to wait them out.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/tracewire/tracewire/snowflake"
)

// Settings configures the retry policy.
type Settings struct {
	// MaxAttempts bounds the total number of allocation calls.
	// Zero selects 3.
	MaxAttempts int

	// Wait is the pause between attempts; one millisecond clears both
	// sequence exhaustion and small clock regressions. Zero selects 1ms.
	Wait time.Duration
}

// Allocator is the slice of snowflake.Allocator this package drives.
type Allocator interface {
	Next(groupID, machineID uint64) (uint64, error)
}

// Allocate calls Next until it succeeds, the policy is spent, or the
// context ends. ErrInvalidIdentity returns immediately: no amount of
// waiting fixes an identity that does not fit its bit width.
func Allocate(ctx context.Context, a Allocator, groupID, machineID uint64, settings Settings) (uint64, error) {
	if settings.MaxAttempts == 0 {
		settings.MaxAttempts = 3
	}
	if settings.Wait == 0 {
		settings.Wait = time.Millisecond
	}

	var err error
	for attempt := 0; attempt < settings.MaxAttempts; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(settings.Wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return 0, ctx.Err()
			case <-timer.C:
			}
		}

		var id uint64
		id, err = a.Next(groupID, machineID)
		if err == nil {
			return id, nil
		}
		if errors.Is(err, snowflake.ErrInvalidIdentity) {
			return 0, err
		}
	}
	return 0, err
}
