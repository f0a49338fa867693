package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asmaakhaledtwfeek/DuBox--sub005/pkg/errors"
)

func TestLocal(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()

	held, err := l.Obtain(ctx, "apply")
	require.NoError(t, err)

	// Another key is independent.
	other, err := l.Obtain(ctx, "other")
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = l.Obtain(waitCtx, "apply")
	assert.True(t, errors.IsLockNotObtained(err))

	require.NoError(t, held.Release(ctx))
	require.NoError(t, held.Release(ctx), "double release")

	again, err := l.Obtain(ctx, "apply")
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestLocal_WaitsForRelease(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()

	held, err := l.Obtain(ctx, "apply")
	require.NoError(t, err)

	obtained := make(chan error, 1)
	go func() {
		lk, err := l.Obtain(ctx, "apply")
		if err == nil {
			err = lk.Release(ctx)
		}
		obtained <- err
	}()

	select {
	case <-obtained:
		t.Fatal("second obtain succeeded while the lock was held")
	case <-time.After(20 * time.Millisecond):
	}

	require.NoError(t, held.Release(ctx))
	select {
	case err := <-obtained:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second obtain did not proceed after release")
	}
}

func TestNop(t *testing.T) {
	ctx := context.Background()
	a, err := Nop().Obtain(ctx, "apply")
	require.NoError(t, err)
	b, err := Nop().Obtain(ctx, "apply")
	require.NoError(t, err)
	assert.NoError(t, a.Release(ctx))
	assert.NoError(t, b.Release(ctx))
}

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := Dial(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func TestRedis(t *testing.T) {
	ctx := context.Background()
	client, mr := setupRedis(t)
	l := NewRedis(client, RedisOptions{TTL: time.Minute})

	held, err := l.Obtain(ctx, "wircatalog:apply")
	require.NoError(t, err)
	assert.True(t, mr.Exists("wircatalog:apply"))

	_, err = l.Obtain(ctx, "wircatalog:apply")
	require.Error(t, err)
	assert.True(t, errors.IsLockNotObtained(err))

	require.NoError(t, held.Release(ctx))
	assert.False(t, mr.Exists("wircatalog:apply"))

	again, err := l.Obtain(ctx, "wircatalog:apply")
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))
}

func TestRedis_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	client, mr := setupRedis(t)
	l := NewRedis(client, RedisOptions{TTL: time.Second})

	held, err := l.Obtain(ctx, "wircatalog:apply")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	next, err := l.Obtain(ctx, "wircatalog:apply")
	require.NoError(t, err, "an expired lock is free")

	// The first holder lost the lock; releasing it reports that.
	err = held.Release(ctx)
	assert.Error(t, err)
	require.NoError(t, next.Release(ctx))
}

func TestRedis_RefreshesHeldLock(t *testing.T) {
	ctx := context.Background()
	client, mr := setupRedis(t)
	l := NewRedis(client, RedisOptions{TTL: time.Second})

	held, err := l.Obtain(ctx, "wircatalog:apply")
	require.NoError(t, err)

	// Redis time passes beyond the TTL while the holder is still working.
	for range 3 {
		mr.FastForward(400 * time.Millisecond)
		time.Sleep(600 * time.Millisecond)
	}
	assert.True(t, mr.Exists("wircatalog:apply"))

	_, err = l.Obtain(ctx, "wircatalog:apply")
	assert.True(t, errors.IsLockNotObtained(err))

	require.NoError(t, held.Release(ctx))
	assert.False(t, mr.Exists("wircatalog:apply"))
}

func TestRedis_Retry(t *testing.T) {
	ctx := context.Background()
	client, _ := setupRedis(t)
	l := NewRedis(client, RedisOptions{TTL: time.Minute, Wait: 2 * time.Second, RetryInterval: 10 * time.Millisecond})

	held, err := l.Obtain(ctx, "wircatalog:apply")
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = held.Release(ctx)
	}()

	next, err := l.Obtain(ctx, "wircatalog:apply")
	require.NoError(t, err)
	require.NoError(t, next.Release(ctx))
}

func TestDial_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Dial(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
