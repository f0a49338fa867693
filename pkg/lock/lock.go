// Package lock provides the serialization point for catalog applies: at
// most one apply per lock key runs at a time.
package lock

import (
	"context"
	"sync"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
)

// Lock is a held lock.
type Lock interface {
	// Release frees the lock. Releasing twice is a no-op.
	Release(ctx context.Context) error
}

// Locker obtains named locks.
type Locker interface {
	// Obtain blocks until the lock is held, the context ends, or the
	// locker gives up. A lock held elsewhere yields an error matching
	// errors.ErrLockNotObtained.
	Obtain(ctx context.Context, key string) (Lock, error)
}

// Local is an in-process Locker. Waiting honors context cancellation.
type Local struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocal returns an in-process locker.
func NewLocal() *Local {
	return &Local{slots: make(map[string]chan struct{})}
}

func (l *Local) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

// Obtain implements Locker.
func (l *Local) Obtain(ctx context.Context, key string) (Lock, error) {
	ch := l.slot(key)
	select {
	case ch <- struct{}{}:
		return &localLock{ch: ch}, nil
	case <-ctx.Done():
		return nil, errors.NewLockError(key, errors.Join(errors.ErrLockNotObtained, ctx.Err()))
	}
}

type localLock struct {
	once sync.Once
	ch   chan struct{}
}

func (l *localLock) Release(context.Context) error {
	l.once.Do(func() { <-l.ch })
	return nil
}

// Nop returns a Locker that never blocks.
func Nop() Locker {
	return nopLocker{}
}

type nopLocker struct{}

func (nopLocker) Obtain(context.Context, string) (Lock, error) { return nopLock{}, nil }

type nopLock struct{}

func (nopLock) Release(context.Context) error { return nil }
