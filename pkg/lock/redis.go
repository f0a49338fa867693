package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/constants"
	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
)

// RedisOptions configures a Redis locker.
type RedisOptions struct {
	// TTL is how long a lock lives if its holder dies. Defaults to
	// constants.LockTTL. A held lock is refreshed every TTL/2, so an apply
	// may outlive the TTL.
	TTL time.Duration

	// Wait bounds how long Obtain retries a busy lock. Zero tries once.
	Wait time.Duration

	// RetryInterval is the pause between attempts. Defaults to
	// constants.LockRetryInterval.
	RetryInterval time.Duration
}

// Redis is a Locker shared by every process that talks to one Redis.
type Redis struct {
	client *redislock.Client
	opts   RedisOptions
}

// NewRedis returns a Redis locker using client.
func NewRedis(client redis.UniversalClient, opts RedisOptions) *Redis {
	if opts.TTL <= 0 {
		opts.TTL = constants.LockTTL
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = constants.LockRetryInterval
	}
	return &Redis{client: redislock.New(client), opts: opts}
}

// Dial connects to Redis at addr and checks the connection.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return client, nil
}

// Obtain implements Locker.
func (r *Redis) Obtain(ctx context.Context, key string) (Lock, error) {
	strategy := redislock.NoRetry()
	if r.opts.Wait > 0 {
		strategy = redislock.LimitRetry(
			redislock.LinearBackoff(r.opts.RetryInterval),
			int(r.opts.Wait/r.opts.RetryInterval),
		)
	}

	l, err := r.client.Obtain(ctx, key, r.opts.TTL, &redislock.Options{RetryStrategy: strategy})
	if err == redislock.ErrNotObtained {
		return nil, errors.NewLockError(key, errors.ErrLockNotObtained)
	} else if err != nil {
		return nil, errors.NewLockError(key, err)
	}
	held := &redisLock{lock: l, key: key, stop: make(chan struct{}), done: make(chan struct{})}
	go held.keepAlive(context.WithoutCancel(ctx), r.opts.TTL)
	return held, nil
}

type redisLock struct {
	lock     *redislock.Lock
	key      string
	released bool
	stop     chan struct{}
	done     chan struct{}
}

// keepAlive extends the lock until it is released or a refresh fails.
func (l *redisLock) keepAlive(ctx context.Context, ttl time.Duration) {
	defer close(l.done)

	interval := ttl / 2
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			rctx, cancel := context.WithTimeout(ctx, interval)
			err := l.lock.Refresh(rctx, ttl, nil)
			cancel()
			if err != nil {
				// Release reports the lost lock.
				return
			}
		}
	}
}

func (l *redisLock) Release(ctx context.Context) error {
	if l.released {
		return nil
	}
	l.released = true
	close(l.stop)
	<-l.done
	if err := l.lock.Release(ctx); err != nil {
		return errors.NewLockError(l.key, err)
	}
	return nil
}
