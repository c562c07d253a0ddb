package lock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/garsonhq/backend-garson/internal/lock"
)

func newLocker(t *testing.T) lock.Locker {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return lock.Locker{R: client, RetryBackoff: 5 * time.Millisecond}
}

func TestWithLockSerialisesWriters(t *testing.T) {
	locker := newLocker(t)
	key := lock.BillKey(uuid.New())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var mu sync.Mutex
	var order []string
	firstHolding := make(chan struct{})
	releaseFirst := make(chan struct{})
	done := make(chan struct{}, 2)

	go func() {
		defer func() { done <- struct{}{} }()
		err := locker.WithLock(ctx, key, 200*time.Millisecond, func(context.Context) error {
			mu.Lock()
			order = append(order, "first")
			mu.Unlock()
			close(firstHolding)
			<-releaseFirst
			return nil
		})
		require.NoError(t, err)
	}()

	<-firstHolding

	go func() {
		defer func() { done <- struct{}{} }()
		err := locker.WithLock(ctx, key, 200*time.Millisecond, func(context.Context) error {
			mu.Lock()
			order = append(order, "second")
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)
	}()

	close(releaseFirst)
	<-done
	<-done

	require.Equal(t, []string{"first", "second"}, order)
}

func TestWithLockReleasedAfterCallbackError(t *testing.T) {
	locker := newLocker(t)
	key := lock.BillKey(uuid.New())
	ctx := context.Background()

	err := locker.WithLock(ctx, key, time.Second, func(context.Context) error {
		return context.DeadlineExceeded
	})
	require.Error(t, err)

	// the lock must be free again immediately
	acquired := false
	err = locker.WithLock(ctx, key, time.Second, func(context.Context) error {
		acquired = true
		return nil
	})
	require.NoError(t, err)
	require.True(t, acquired)
}

func TestWithLockHonoursContextCancellation(t *testing.T) {
	locker := newLocker(t)
	key := lock.BillKey(uuid.New())

	hold := make(chan struct{})
	holding := make(chan struct{})
	go func() {
		_ = locker.WithLock(context.Background(), key, time.Second, func(context.Context) error {
			close(holding)
			<-hold
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := locker.WithLock(ctx, key, time.Second, func(context.Context) error { return nil })
	require.ErrorIs(t, err, context.DeadlineExceeded)
	close(hold)
}
