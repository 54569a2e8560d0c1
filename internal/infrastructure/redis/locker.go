package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

const keyPrefix = "stock-lock:"

// Locker locks distribuidos por (producto, ubicación) sobre Redis, para varias instancias del API.
// Cada clave es un lock independiente con TTL; se toman en el orden recibido.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewLocker construye el locker. ttl es la vida máxima de cada lock y wait cuánto se espera
// por una clave ocupada antes de responder conflicto.
func NewLocker(rdb goredis.UniversalClient, ttl, wait time.Duration) *Locker {
	return &Locker{
		client: redislock.New(rdb),
		ttl:    ttl,
		wait:   wait,
		retry:  25 * time.Millisecond,
	}
}

// Lock toma todas las claves o ninguna.
func (l *Locker) Lock(ctx context.Context, keys []entity.StockKey) (func(), error) {
	if len(keys) == 0 {
		return func() {}, nil
	}
	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	held := make([]*redislock.Lock, 0, len(keys))
	release := func() {
		// Se libera con un contexto propio: el del request puede estar cancelado.
		relCtx, relCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer relCancel()
		for i := len(held) - 1; i >= 0; i-- {
			_ = held[i].Release(relCtx)
		}
	}
	opts := &redislock.Options{RetryStrategy: redislock.LinearBackoff(l.retry)}
	for _, k := range keys {
		lk, err := l.client.Obtain(waitCtx, keyPrefix+k.String(), l.ttl, opts)
		if err != nil {
			release()
			if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: %s ocupado", domain.ErrConflict, k)
			}
			return nil, fmt.Errorf("redis lock %s: %w", k, err)
		}
		held = append(held, lk)
	}
	return release, nil
}

// NewClient abre el cliente Redis y verifica la conexión con PING.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 50,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}
