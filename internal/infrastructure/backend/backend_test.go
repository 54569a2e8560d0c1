package backend_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/backend"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/lock"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

func TestOpen_MemoriaSinRedisUsaKeyMutex(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.StoreMemory}}
	b, err := backend.Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer b.Close()

	assert.NotNil(t, b.TxRunner)
	assert.NotNil(t, b.Stocks)
	assert.NotNil(t, b.Ledger)
	assert.NotNil(t, b.Documents)
	assert.NotNil(t, b.Warehouses)
	assert.IsType(t, &lock.KeyMutex{}, b.Locker)
}

func TestOpen_DriverDesconocido(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "sqlite"}}
	_, err := backend.Open(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "sqlite")
}

func TestOpen_RedisInalcanzable_Falla(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreConfig{Driver: config.StoreMemory},
		Redis: config.RedisConfig{Addr: "127.0.0.1:1"},
	}
	_, err := backend.Open(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "redis ping")
}
