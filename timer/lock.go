package timer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// ErrLockHeld is returned when another instance already runs the room's timer
var ErrLockHeld = errors.New("room timer is held by another instance")

// Locker guards a room timer across processes
type Locker interface {
	Acquire(ctx context.Context, roomID int64) (Lease, error)
}

// Lease is a held room lock
type Lease interface {
	Release(ctx context.Context) error
}

// NoopLocker grants every lock; used when a single instance runs the timers
type NoopLocker struct{}

// Acquire always succeeds
func (NoopLocker) Acquire(context.Context, int64) (Lease, error) {
	return noopLease{}, nil
}

type noopLease struct{}

func (noopLease) Release(context.Context) error { return nil }

var (
	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

	refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)
)

// RedisLocker holds room locks as expiring Redis keys. A lease refreshes its
// key every ttl/3 until released, so a crashed holder frees the room after ttl.
type RedisLocker struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisLocker creates a locker storing keys under prefix
func NewRedisLocker(client *redis.Client, prefix string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (l *RedisLocker) key(roomID int64) string {
	return fmt.Sprintf("%s:room:%d:timer", l.prefix, roomID)
}

// Acquire takes the room lock or returns ErrLockHeld
func (l *RedisLocker) Acquire(ctx context.Context, roomID int64) (Lease, error) {
	key := l.key(roomID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire timer lock for room %d: %w", roomID, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	lease := &redisLease{
		client: l.client,
		key:    key,
		token:  token,
		ttl:    l.ttl,
		stop:   make(chan struct{}),
	}
	lease.wg.Add(1)
	go lease.keepAlive()
	return lease, nil
}

type redisLease struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration

	once sync.Once
	stop chan struct{}
	wg   sync.WaitGroup
}

func (l *redisLease) keepAlive() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), l.ttl/3)
			n, err := refreshScript.Run(ctx, l.client, []string{l.key}, l.token, l.ttl.Milliseconds()).Int()
			cancel()
			if err != nil {
				log.WithError(err).WithField("key", l.key).Warn("Failed to refresh timer lock")
				continue
			}
			if n == 0 {
				log.WithField("key", l.key).Warn("Timer lock lost")
				return
			}
		}
	}
}

// Release deletes the key if this lease still owns it
func (l *redisLease) Release(ctx context.Context) error {
	l.once.Do(func() { close(l.stop) })
	l.wg.Wait()

	if _, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int(); err != nil {
		return fmt.Errorf("failed to release timer lock %s: %w", l.key, err)
	}
	return nil
}
