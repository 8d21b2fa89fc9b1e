package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerSerializesSameSession(t *testing.T) {
	locker := NewLocalLocker()
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "s1")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		second, err := locker.Lock(ctx, "s1")
		if err == nil {
			close(acquired)
			_ = second(ctx)
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while the first is held")
	case <-time.After(50 * time.Millisecond):
	}

	other, err := locker.Lock(ctx, "s2")
	require.NoError(t, err, "other sessions must not block")
	require.NoError(t, other(ctx))

	require.NoError(t, unlock(ctx))
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired")
	}
}

func TestLocalLockerHonoursContext(t *testing.T) {
	locker := NewLocalLocker()
	unlock, err := locker.Lock(context.Background(), "s1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "s1")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(context.Background()))
	require.NoError(t, unlock(context.Background()), "double unlock is a no-op")

	locker.mu.Lock()
	assert.Empty(t, locker.locks)
	locker.mu.Unlock()
}

func TestRedisLockerAcquireAndRelease(t *testing.T) {
	store := newFakeRedis()
	locker, err := NewRedisLocker(store, RedisLockerConfig{TTL: time.Second, Retries: 2, RetryInterval: time.Millisecond})
	require.NoError(t, err)

	ctx := context.Background()
	unlock, err := locker.Lock(ctx, "s1")
	require.NoError(t, err)
	_, held := store.get(store.CartLockKey("s1"))
	assert.True(t, held)

	_, err = locker.Lock(ctx, "s1")
	require.ErrorIs(t, err, ErrLockNotAcquired)
	assert.Equal(t, 4, store.setNXCalls, "one initial attempt plus two retries for the second caller")

	require.NoError(t, unlock(ctx))
	_, held = store.get(store.CartLockKey("s1"))
	assert.False(t, held)

	again, err := locker.Lock(ctx, "s1")
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestRedisLockerReleaseKeepsForeignOwner(t *testing.T) {
	store := newFakeRedis()
	locker, err := NewRedisLocker(store, RedisLockerConfig{})
	require.NoError(t, err)

	ctx := context.Background()
	unlock, err := locker.Lock(ctx, "s1")
	require.NoError(t, err)

	// Simulate expiry followed by another instance taking the lock.
	store.set(store.CartLockKey("s1"), "someone-else")
	require.NoError(t, unlock(ctx))

	owner, held := store.get(store.CartLockKey("s1"))
	assert.True(t, held)
	assert.Equal(t, "someone-else", owner)
}

func TestRedisLockerReleaseErrorIsReported(t *testing.T) {
	store := newFakeRedis()
	locker, err := NewRedisLocker(store, RedisLockerConfig{})
	require.NoError(t, err)

	ctx := context.Background()
	unlock, err := locker.Lock(ctx, "s1")
	require.NoError(t, err)

	store.mu.Lock()
	store.err = errors.New("redis down")
	store.mu.Unlock()
	err = unlock(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestRedisLockerSurfacesStoreErrors(t *testing.T) {
	store := newFakeRedis()
	store.err = errors.New("redis down")
	locker, err := NewRedisLocker(store, RedisLockerConfig{Retries: 5, RetryInterval: time.Millisecond})
	require.NoError(t, err)

	_, err = locker.Lock(context.Background(), "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	assert.Equal(t, 1, store.setNXCalls, "store errors are not retried")
}

func TestNewRedisLockerRequiresStore(t *testing.T) {
	_, err := NewRedisLocker(nil, RedisLockerConfig{})
	require.Error(t, err)
}

// fakeRedis implements documentStore and lockStore in memory.
type fakeRedis struct {
	mu         sync.Mutex
	data       map[string]string
	ttls       map[string]time.Duration
	setNXCalls int
	err        error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	return v, ok
}

func (f *fakeRedis) set(key, value string) {
	f.mu.Lock()
	f.data[key] = value
	f.mu.Unlock()
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	default:
		return errors.New("unsupported value type")
	}
	f.ttls[key] = ttl
	return nil
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setNXCalls++
	if f.err != nil {
		return false, f.err
	}
	if _, exists := f.data[key]; exists {
		return false, nil
	}
	f.data[key] = value.(string)
	f.ttls[key] = ttl
	return true, nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, key := range keys {
		delete(f.data, key)
		delete(f.ttls, key)
	}
	return nil
}

func (f *fakeRedis) DeleteIfValue(_ context.Context, key, value string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	if v, ok := f.data[key]; ok && v == value {
		delete(f.data, key)
		delete(f.ttls, key)
		return true, nil
	}
	return false, nil
}

func (f *fakeRedis) CartKey(sessionID string) string {
	return "am:cart:" + sessionID
}

func (f *fakeRedis) CartLockKey(sessionID string) string {
	return "am:lock:cart:" + sessionID
}
