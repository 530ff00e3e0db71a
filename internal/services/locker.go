package services

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Locker guards the auto-assign sweep so that one replica runs it at a time
type Locker interface {
	// TryLock returns ok=false when another holder owns the lock. release
	// is non-nil only when ok is true.
	TryLock(ctx context.Context, ttl time.Duration) (release func(), ok bool, err error)
}

// LocalLocker is used when no Redis is configured. It always succeeds.
type LocalLocker struct{}

// TryLock always grants the lock
func (LocalLocker) TryLock(context.Context, time.Duration) (func(), bool, error) {
	return func() {}, true, nil
}

// redisLockClient is the subset of *redis.Client the lock needs
type redisLockClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// releaseScript deletes the key only while it still holds our token
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisLocker implements Locker with SET NX PX and a token-checked release
type RedisLocker struct {
	client redisLockClient
	key    string
}

// NewRedisLocker creates a lock stored under key
func NewRedisLocker(client redisLockClient, key string) *RedisLocker {
	return &RedisLocker{client: client, key: key}
}

// NewRedisClient parses a redis:// URL
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

// TryLock acquires the lock for ttl
func (l *RedisLocker) TryLock(ctx context.Context, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, l.key, token, ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		l.client.Eval(ctx, releaseScript, []string{l.key}, token)
	}
	return release, true, nil
}
