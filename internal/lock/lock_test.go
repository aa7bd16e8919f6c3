package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/segyhp/loan-tracker/pkg/errors"
	"github.com/segyhp/loan-tracker/pkg/logger"
)

func newTestLocker(t *testing.T, ttl time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisLocker(client, ttl, logger.NewTestLogger(t)), mr
}

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	locker, mr := newTestLocker(t, 10*time.Second)
	loanID := uuid.New()

	release, err := locker.Acquire(context.Background(), loanID)
	require.NoError(t, err)
	require.NotNil(t, release)

	assert.True(t, mr.Exists(Key(loanID)))
	assert.Equal(t, 10*time.Second, mr.TTL(Key(loanID)))

	release()
	assert.False(t, mr.Exists(Key(loanID)))
}

func TestRedisLocker_SecondAcquireIsRefused(t *testing.T) {
	locker, _ := newTestLocker(t, 10*time.Second)
	loanID := uuid.New()

	release, err := locker.Acquire(context.Background(), loanID)
	require.NoError(t, err)
	defer release()

	_, err = locker.Acquire(context.Background(), loanID)
	require.Error(t, err)
	assert.ErrorIs(t, err, customError.ErrLoanLocked)
	assert.Equal(t, customError.ErrCodeLoanLocked, customError.Code(err))

	other, err := locker.Acquire(context.Background(), uuid.New())
	require.NoError(t, err, "locks are per loan")
	other()
}

func TestRedisLocker_ReacquireAfterRelease(t *testing.T) {
	locker, _ := newTestLocker(t, 10*time.Second)
	loanID := uuid.New()

	release, err := locker.Acquire(context.Background(), loanID)
	require.NoError(t, err)
	release()

	release, err = locker.Acquire(context.Background(), loanID)
	require.NoError(t, err)
	release()
}

func TestRedisLocker_ExpiredLockIsNotStolenBack(t *testing.T) {
	locker, mr := newTestLocker(t, time.Second)
	loanID := uuid.New()

	staleRelease, err := locker.Acquire(context.Background(), loanID)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	freshRelease, err := locker.Acquire(context.Background(), loanID)
	require.NoError(t, err)

	// the first holder's release must not drop the second holder's lock
	staleRelease()
	assert.True(t, mr.Exists(Key(loanID)))

	freshRelease()
	assert.False(t, mr.Exists(Key(loanID)))
}

func TestRedisLocker_RedisUnavailable(t *testing.T) {
	locker, mr := newTestLocker(t, time.Second)
	mr.Close()

	release, err := locker.Acquire(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Nil(t, release)
	assert.Equal(t, customError.ErrCodeCacheError, customError.Code(err))
}
