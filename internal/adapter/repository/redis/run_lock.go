package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock implements usecase.RunLock with a single Redis key, so pipeline
// runs stay single-flight across server replicas and CLI invocations.
type RunLock struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewRunLock creates a lock on key. ttl bounds how long a crashed holder can
// block other runs and must exceed the longest expected run.
func NewRunLock(client redis.Cmdable, key string, ttl time.Duration) *RunLock {
	return &RunLock{
		client: client,
		key:    "lock:" + key,
		ttl:    ttl,
	}
}

// TryAcquire takes the lock without waiting.
func (l *RunLock) TryAcquire(ctx context.Context) (func(context.Context) error, bool, error) {
	token, err := newToken()
	if err != nil {
		return nil, false, err
	}

	acquired, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !acquired {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{l.key}, token).Err()
	}

	return release, true, nil
}

func newToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
