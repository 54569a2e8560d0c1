package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/redis"
)

// Requiere un Redis real: REDIS_TEST_ADDR=localhost:6379 go test ./internal/infrastructure/redis/...
func newLocker(t *testing.T, wait time.Duration) *redis.Locker {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR no definido")
	}
	rdb, err := redis.NewClient(context.Background(), addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return redis.NewLocker(rdb, 5*time.Second, wait)
}

func TestLocker_ClaveOcupadaDevuelveConflicto(t *testing.T) {
	l := newLocker(t, 100*time.Millisecond)
	key := entity.StockKey{ProductID: "test-" + time.Now().Format("150405.000000"), LocationID: "L1"}

	release, err := l.Lock(context.Background(), []entity.StockKey{key})
	require.NoError(t, err)

	_, err = l.Lock(context.Background(), []entity.StockKey{key})
	assert.ErrorIs(t, err, domain.ErrConflict)

	release()
	release2, err := l.Lock(context.Background(), []entity.StockKey{key})
	require.NoError(t, err)
	release2()
}

func TestLocker_SinClavesNoTocaRedis(t *testing.T) {
	l := redis.NewLocker(nil, time.Second, time.Second)
	release, err := l.Lock(context.Background(), nil)
	require.NoError(t, err)
	release()
}
