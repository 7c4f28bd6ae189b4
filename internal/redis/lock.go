package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("tenant lock not acquired")
)

// Locker guards critical sections that mutate a tenant's slot calendar.
// Slot writes for the same tenant must not interleave, otherwise two
// concurrent inserts can both pass the overlap check before either commits.
type Locker interface {
	WithTenantLock(ctx context.Context, tenantID uuid.UUID, fn func(ctx context.Context) error) error
}

type redisTenantLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTenantLocker creates a locker that uses a per tenant Redis key
func NewRedisTenantLocker(client *redis.Client, ttl time.Duration) Locker {
	return &redisTenantLocker{
		client: client,
		ttl:    ttl,
	}
}

func (l *redisTenantLocker) WithTenantLock(ctx context.Context, tenantID uuid.UUID, fn func(ctx context.Context) error) error {
	key := fmt.Sprintf("lock:tenant:%s", tenantID.String())
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire tenant lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_ = l.release(ctx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *redisTenantLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release tenant lock: %w", err)
	}
	return nil
}
