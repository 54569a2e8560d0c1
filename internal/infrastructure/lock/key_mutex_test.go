package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/lock"
)

var (
	keyA = entity.StockKey{ProductID: "P1", LocationID: "A"}
	keyB = entity.StockKey{ProductID: "P1", LocationID: "B"}
)

func TestKeyMutex_SerializaMismaClave(t *testing.T) {
	m := lock.NewKeyMutex()
	var inside, maxInside int32
	var g errgroup.Group
	for i := 0; i < 20; i++ {
		g.Go(func() error {
			release, err := m.Lock(context.Background(), []entity.StockKey{keyA})
			if err != nil {
				return err
			}
			defer release()
			n := atomic.AddInt32(&inside, 1)
			for {
				cur := atomic.LoadInt32(&maxInside)
				if n <= cur || atomic.CompareAndSwapInt32(&maxInside, cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, m.Size(), "las entradas se limpian al liberar")
}

func TestKeyMutex_ClavesDistintasNoSeBloquean(t *testing.T) {
	m := lock.NewKeyMutex()
	releaseA, err := m.Lock(context.Background(), []entity.StockKey{keyA})
	require.NoError(t, err)
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	releaseB, err := m.Lock(ctx, []entity.StockKey{keyB})
	require.NoError(t, err)
	releaseB()
}

func TestKeyMutex_CancelacionLiberaLoTomado(t *testing.T) {
	m := lock.NewKeyMutex()
	releaseB, err := m.Lock(context.Background(), []entity.StockKey{keyB})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Lock(ctx, []entity.StockKey{keyA, keyB})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// keyA quedó libre
	releaseA, err := m.Lock(context.Background(), []entity.StockKey{keyA})
	require.NoError(t, err)
	releaseA()
	releaseB()
	assert.Equal(t, 0, m.Size())
}

func TestKeyMutex_ReleaseIdempotente(t *testing.T) {
	m := lock.NewKeyMutex()
	release, err := m.Lock(context.Background(), []entity.StockKey{keyA, keyB})
	require.NoError(t, err)
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() { defer wg.Done(); release() }()
	}
	wg.Wait()
	assert.Equal(t, 0, m.Size())
}
