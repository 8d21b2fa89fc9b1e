package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
)

const (
	defaultLockTTL           = 5 * time.Second
	defaultLockRetryInterval = 25 * time.Millisecond
)

// ErrLockNotAcquired is returned when a session lock stays busy past the retry budget.
var ErrLockNotAcquired = errors.New("cart session lock not acquired")

// Unlock releases a held session lock.
type Unlock func(ctx context.Context) error

// SessionLocker serializes read-modify-write cycles on one cart session.
type SessionLocker interface {
	Lock(ctx context.Context, sessionID string) (Unlock, error)
}

// LocalLocker is an in-process keyed mutex. Entries are dropped once no
// caller holds or waits on them.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localLock
}

type localLock struct {
	sem  chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: map[string]*localLock{}}
}

func (l *LocalLocker) Lock(ctx context.Context, sessionID string) (Unlock, error) {
	l.mu.Lock()
	entry, ok := l.locks[sessionID]
	if !ok {
		entry = &localLock{sem: make(chan struct{}, 1)}
		l.locks[sessionID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(sessionID, entry)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-entry.sem
			l.release(sessionID, entry)
		})
		return nil
	}, nil
}

func (l *LocalLocker) release(sessionID string, entry *localLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, sessionID)
	}
}

// lockStore defines the operations used by RedisLocker.
type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	DeleteIfValue(ctx context.Context, key, value string) (bool, error)
	CartLockKey(sessionID string) string
}

// RedisLockerConfig tunes lock expiry and acquisition retries.
type RedisLockerConfig struct {
	TTL           time.Duration
	Retries       uint64
	RetryInterval time.Duration
}

// RedisLocker implements SessionLocker with Redis SETNX + TTL so several API
// instances can share one cart backend.
type RedisLocker struct {
	store    lockStore
	ttl      time.Duration
	retries  uint64
	interval time.Duration
}

func NewRedisLocker(store lockStore, cfg RedisLockerConfig) (*RedisLocker, error) {
	if store == nil {
		return nil, errors.New("redis client required for cart locks")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultLockTTL
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaultLockRetryInterval
	}
	return &RedisLocker{
		store:    store,
		ttl:      cfg.TTL,
		retries:  cfg.Retries,
		interval: cfg.RetryInterval,
	}, nil
}

// Lock polls SETNX at a constant interval until it owns the key, the retry
// budget runs out, or ctx is done.
func (l *RedisLocker) Lock(ctx context.Context, sessionID string) (Unlock, error) {
	key := l.store.CartLockKey(sessionID)
	owner := uuid.NewString()

	backoff := retry.WithMaxRetries(l.retries, retry.NewConstant(l.interval))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		ok, err := l.store.SetNX(ctx, key, owner, l.ttl)
		if err != nil {
			return fmt.Errorf("setnx: %w", err)
		}
		if !ok {
			return retry.RetryableError(ErrLockNotAcquired)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		return l.release(ctx, key, owner)
	}, nil
}

// release frees the lock only if the owner value still matches; the compare
// and delete run as one script so an expired lease is never deleted from
// under its next owner.
func (l *RedisLocker) release(ctx context.Context, key, owner string) error {
	if _, err := l.store.DeleteIfValue(ctx, key, owner); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}
