// Package locker provides locks for coordinating work across service
// instances.
package locker

import (
	"context"
	"time"
)

// DistributedLocker provides lock capabilities across service instances.
// Implementations must be safe for concurrent use.
//
//	acquired, err := l.Acquire(ctx, "analysis:run:platformer", 15*time.Minute)
//	if err != nil {
//	    return err
//	}
//	if !acquired {
//	    return domain.ErrAnalysisInProgress
//	}
//	defer l.Release(ctx, "analysis:run:platformer")
type DistributedLocker interface {
	// Acquire tries once to take the lock for key. It returns false when
	// someone else holds it. The lock expires after ttl.
	//
	// Use the operation timeout as ttl for mutual exclusion, or the
	// cooldown period for rate limiting.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees a lock held by this instance. Releasing a lock the
	// caller does not hold is a no-op.
	Release(ctx context.Context, key string) error
}
