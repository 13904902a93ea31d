package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"auction-marketplace/internal/auctionerrors"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func exerciseMutualExclusion(t *testing.T, l Locker) {
	t.Helper()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "auction-1")
			require.NoError(t, err)
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), maxInside)
}

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	t.Parallel()
	k := NewKeyedMutex()
	exerciseMutualExclusion(t, k)
	require.Equal(t, 0, k.Len(), "entries are released")
}

func TestKeyedMutex_DifferentKeysDoNotContend(t *testing.T) {
	t.Parallel()
	k := NewKeyedMutex()

	unlockA, err := k.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := k.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestKeyedMutex_ContextCancelled(t *testing.T) {
	t.Parallel()
	k := NewKeyedMutex()

	unlock, err := k.Lock(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = k.Lock(ctx, "a")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock() // second call is a no-op
	require.Equal(t, 0, k.Len())
}

func TestRedisLocker_SerializesSameKey(t *testing.T) {
	redis := miniredis.RunT(t)
	l, err := NewRedisLocker(redis.Addr(), "", "test:lock", time.Second)
	require.NoError(t, err)
	defer l.Close()

	exerciseMutualExclusion(t, l)
	require.False(t, redis.Exists("test:lock:auction-1"), "key is released")
}

func TestRedisLocker_TimesOutWhileHeld(t *testing.T) {
	redis := miniredis.RunT(t)
	l, err := NewRedisLocker(redis.Addr(), "", "test:lock", time.Minute)
	require.NoError(t, err)
	defer l.Close()

	unlock, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "a")
	require.ErrorIs(t, err, auctionerrors.ErrLockNotAcquired)
}

func TestRedisLocker_ReleaseKeepsForeignToken(t *testing.T) {
	redis := miniredis.RunT(t)
	l, err := NewRedisLocker(redis.Addr(), "", "test:lock", time.Minute)
	require.NoError(t, err)
	defer l.Close()

	unlock, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)

	// simulate expiry and takeover by another holder
	require.NoError(t, redis.Set("test:lock:a", "someone-else"))
	unlock()

	got, err := redis.Get("test:lock:a")
	require.NoError(t, err)
	require.Equal(t, "someone-else", got)
}

func TestNewRedisLocker_RequiresAddr(t *testing.T) {
	l, err := NewRedisLocker("", "", "", 0)
	require.Error(t, err)
	require.Nil(t, l)
}
