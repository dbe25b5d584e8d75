package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aldaque/storyloom/internal/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newTestClient(t)

	locker := redis.NewLocker(client, "test:lock:")
	ctx := context.Background()
	key := "story-one"

	// 1. Acquire Lock
	unlock, err := locker.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock)

	assert.True(t, mr.Exists("test:lock:lock:story-one"), "Lock key should be set in Redis")

	// 2. Release Lock
	err = unlock(ctx)
	assert.NoError(t, err)

	assert.False(t, mr.Exists("test:lock:lock:story-one"), "Lock key should be removed after unlock")
}

func TestRedisLocker_UncontendedAcquiresImmediately(t *testing.T) {
	_, client := newTestClient(t)

	locker := redis.NewLocker(client, "test:lock:")

	// Well under the 100ms retry interval: a free lock must be taken on the
	// first attempt, not after a poll tick.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	unlock, err := locker.Lock(ctx, "fresh-story", 5*time.Second)
	require.NoError(t, err)
	assert.NoError(t, unlock(context.Background()))
}

func TestRedisLocker_Contention(t *testing.T) {
	_, client := newTestClient(t)

	locker1 := redis.NewLocker(client, "test:lock:")
	locker2 := redis.NewLocker(client, "test:lock:") // Same prefix -> contention
	ctx := context.Background()
	key := "shared-story"

	// 1. Client 1 acquires lock
	unlock1, err := locker1.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, unlock1)

	// 2. Client 2 polls for the lock; with client 1 holding it, the attempt
	// must end with the context deadline.
	ctxTimeout, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	_, err = locker2.Lock(ctxTimeout, key, 5*time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// 3. After release, client 2 can acquire.
	require.NoError(t, unlock1(ctx))

	unlock2, err := locker2.Lock(ctx, key, 5*time.Second)
	require.NoError(t, err)
	assert.NoError(t, unlock2(ctx))
}
