// Package backend arma el almacenamiento y los locks según la configuración.
package backend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/lock"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/redis"
	"github.com/jhoicas/stock-ledger-api/pkg/config"
)

// Backend repositorios de lectura, TxRunner y KeyLocker listos para los casos de uso.
type Backend struct {
	TxRunner   inventory.TxRunner
	Locker     inventory.KeyLocker
	Stocks     repository.StockRepository
	Ledger     repository.LedgerRepository
	Documents  repository.DocumentRepository
	Warehouses repository.WarehouseRepository

	closers []func() error
}

// Open abre el backend configurado en STORE_DRIVER y, si REDIS_ADDR está definido, los locks en Redis.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backend, error) {
	b := &Backend{}
	switch cfg.Store.Driver {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		b.closers = append(b.closers, func() error { pool.Close(); return nil })
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, "up"); err != nil {
				pool.Close()
				return nil, fmt.Errorf("migraciones: %w", err)
			}
			log.Info().Msg("migraciones aplicadas")
		}
		b.TxRunner = postgres.NewTxRunner(pool)
		b.Stocks = postgres.NewStockRepository(pool)
		b.Ledger = postgres.NewLedgerRepository(pool)
		b.Documents = postgres.NewDocumentRepository(pool)
		b.Warehouses = postgres.NewWarehouseRepository(pool)
	case config.StoreMemory:
		store := memory.NewStore()
		b.TxRunner = store
		b.Stocks = store.Stocks()
		b.Ledger = store.Ledger()
		b.Documents = store.Documents()
		b.Warehouses = store.Warehouses()
		log.Warn().Msg("backend en memoria: los datos se pierden al reiniciar")
	default:
		return nil, fmt.Errorf("STORE_DRIVER %q no soportado", cfg.Store.Driver)
	}

	if cfg.Redis.Enabled() {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, multierr.Append(err, b.Close())
		}
		b.closers = append(b.closers, rdb.Close)
		b.Locker = redis.NewLocker(rdb, cfg.Redis.LockTTL, cfg.Redis.LockWait)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("locks distribuidos en Redis")
	} else {
		b.Locker = lock.NewKeyMutex()
	}
	return b, nil
}

// Close libera conexiones en orden inverso a la apertura.
func (b *Backend) Close() error {
	var errs error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, b.closers[i]())
	}
	b.closers = nil
	return errs
}
