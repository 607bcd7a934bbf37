package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Hirdyansh9/Orderbook/internal/logging"
)

// ErrScanInProgress is returned when another process holds the scan lock.
var ErrScanInProgress = errors.New("notification scan already in progress")

// ScanLock serialises scans. Acquire returns a release func on success.
type ScanLock interface {
	Acquire(ctx context.Context) (release func(), err error)
}

type localLock struct {
	mu sync.Mutex
}

// NewLocalLock serialises scans inside one process; a second caller waits.
func NewLocalLock() ScanLock {
	return &localLock{}
}

func (l *localLock) Acquire(context.Context) (func(), error) {
	l.mu.Lock()
	return l.mu.Unlock, nil
}

// Deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLock serialises scans across replicas with SET NX PX. A contended
// Acquire fails fast with ErrScanInProgress.
type RedisLock struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
	logger *logging.Logger
}

func NewRedisLock(client redis.Cmdable, key string, ttl time.Duration, logger *logging.Logger) *RedisLock {
	return &RedisLock{client: client, key: key, ttl: ttl, logger: logger}
}

func (l *RedisLock) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire scan lock: %w", err)
	}
	if !ok {
		return nil, ErrScanInProgress
	}
	return func() {
		if err := releaseScript.Run(context.Background(), l.client, []string{l.key}, token).Err(); err != nil {
			l.logger.WithError(err).Warn("Release scan lock failed")
		}
	}, nil
}
