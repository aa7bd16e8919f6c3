package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	customError "github.com/segyhp/loan-tracker/pkg/errors"
	"github.com/segyhp/loan-tracker/pkg/logger"
)

const keyPrefix = "loan-tracker:lock:loan:"

// releaseTimeout bounds the unlock call, which runs after the request context may be gone.
const releaseTimeout = 2 * time.Second

// unlockScript deletes the key only while it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker serializes work on a single loan across processes.
type Locker interface {
	// Acquire takes the loan's lock or fails with errors.ErrLoanLocked when
	// someone else holds it. The returned release func is safe to call once.
	Acquire(ctx context.Context, loanID uuid.UUID) (release func(), err error)
}

type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewRedisLocker(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisLocker {
	return &RedisLocker{
		client: client,
		ttl:    ttl,
		logger: log,
	}
}

func Key(loanID uuid.UUID) string {
	return fmt.Sprintf("%s%s", keyPrefix, loanID)
}

func (l *RedisLocker) Acquire(ctx context.Context, loanID uuid.UUID) (func(), error) {
	key := Key(loanID)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, customError.WrapCacheError(err)
	}
	if !ok {
		return nil, customError.WrapLoanLocked(loanID.String())
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
		defer cancel()

		if err := unlockScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("failed to release loan lock", map[string]interface{}{
				"loan_id": loanID.String(),
				"error":   err.Error(),
			})
		}
	}

	return release, nil
}
