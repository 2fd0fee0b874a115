package locker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLocker implements DistributedLocker with Redsync (Redlock).
// Keys are namespaced with an optional prefix.
type RedisLocker struct {
	rs      *redsync.Redsync
	prefix  string
	logger  *zap.Logger
	mutexes map[string]*redsync.Mutex
	mu      sync.Mutex
}

// Option configures a RedisLocker.
type Option func(*RedisLocker)

// WithKeyPrefix namespaces every lock key as "<prefix>:lock:<key>".
func WithKeyPrefix(prefix string) Option {
	return func(r *RedisLocker) {
		r.prefix = prefix
	}
}

// NewRedisLocker creates a Redis-based distributed locker.
func NewRedisLocker(client redis.UniversalClient, logger *zap.Logger, opts ...Option) *RedisLocker {
	r := &RedisLocker{
		rs:      redsync.New(goredis.NewPool(client)),
		logger:  logger,
		mutexes: make(map[string]*redsync.Mutex),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *RedisLocker) name(key string) string {
	if r.prefix == "" {
		return key
	}

	return r.prefix + ":lock:" + key
}

// Acquire tries once to take the lock. Contention returns (false, nil);
// only Redis or context failures are errors.
func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	mutex := r.rs.NewMutex(
		r.name(key),
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if isTaken(err) {
			r.logger.Debug("lock already held", zap.String("key", key))
			return false, nil
		}

		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	r.mu.Lock()
	r.mutexes[key] = mutex
	r.mu.Unlock()

	r.logger.Debug("lock acquired",
		zap.String("key", key),
		zap.Duration("ttl", ttl),
	)

	return true, nil
}

// isTaken reports lock contention. Redsync signals it either as ErrFailed
// or as an ErrTaken listing the nodes that hold the lock.
func isTaken(err error) bool {
	if errors.Is(err, redsync.ErrFailed) {
		return true
	}

	var taken *redsync.ErrTaken
	if errors.As(err, &taken) {
		return true
	}

	return strings.Contains(err.Error(), "lock already taken")
}

// Release releases a lock this instance holds. Keys it does not hold are a
// no-op.
func (r *RedisLocker) Release(ctx context.Context, key string) error {
	r.mu.Lock()
	mutex, exists := r.mutexes[key]
	delete(r.mutexes, key)
	r.mu.Unlock()

	if !exists {
		r.logger.Debug("lock not owned by this instance", zap.String("key", key))
		return nil
	}

	ok, err := mutex.UnlockContext(ctx)
	if err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}

	if ok {
		r.logger.Debug("lock released", zap.String("key", key))
	} else {
		r.logger.Debug("lock expired before release", zap.String("key", key))
	}

	return nil
}
