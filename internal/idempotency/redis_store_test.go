package idempotency

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopbill/internal/config"
	"shopbill/internal/domain"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "idempotency:invoice:abc", resultKey("abc"))
	assert.Equal(t, "idempotency:invoice:abc:lock", lockKey("abc"))
}

// Runs against a live Redis when BILLING_TEST_REDIS_ADDR is set.
func TestRedisStore_Lifecycle(t *testing.T) {
	addr := os.Getenv("BILLING_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("BILLING_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	cfg := config.RedisConfig{Addr: addr, IdempotencyTTL: time.Minute, LockTTL: 5 * time.Second}
	rdb, err := NewRedisClient(ctx, &cfg)
	require.NoError(t, err)
	defer rdb.Close()

	store := NewRedisStore(rdb, cfg)
	key := uuid.NewString()
	defer rdb.Del(ctx, resultKey(key), lockKey(key))

	existing, release, err := store.Acquire(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, existing)
	require.NotNil(t, release)

	_, _, err = store.Acquire(ctx, key)
	assert.ErrorIs(t, err, domain.ErrDuplicateSubmission)

	invoiceID := uuid.New()
	require.NoError(t, store.Complete(ctx, key, invoiceID))
	release()

	existing, release, err = store.Acquire(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, invoiceID, existing)
	assert.Nil(t, release)
}
