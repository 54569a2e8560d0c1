package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/authz"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/lock"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/pkg/metrics"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entorno de test: backend en memoria + locks en proceso
// ──────────────────────────────────────────────────────────────────────────────

const (
	whA = "WH-A"
	whB = "WH-B"
)

var (
	ctx     = context.Background()
	admin   = entity.Actor{UserID: "admin-1", Role: entity.RoleAdmin}
	manager = entity.Actor{UserID: "mgr-1", Role: entity.RoleInventoryManager}
	staff   = entity.Actor{UserID: "staff-1", Role: entity.RoleWarehouseStaff}
)

type env struct {
	store    *memory.Store
	executor *inventory.MovementExecutor
	docs     *inventory.DocumentService
	queries  *inventory.QueryService
	locker   *lock.KeyMutex
	metrics  *metrics.InventoryMetrics
	reg      *prometheus.Registry
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: whA, Code: "A", Name: "Bodega A"}))
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: whB, Code: "B", Name: "Bodega B"}))

	reg := prometheus.NewRegistry()
	m := metrics.NewInventoryMetrics(reg)
	locker := lock.NewKeyMutex()
	az := authz.NewStaticAuthorizer()
	executor := inventory.NewMovementExecutor(store, locker, m, zerolog.Nop())
	return &env{
		store:    store,
		executor: executor,
		docs: inventory.NewDocumentService(store, locker, executor, az,
			store.Documents(), store.Stocks(), store.Warehouses(), m, zerolog.Nop()),
		queries: inventory.NewQueryService(store, az, store.Stocks(), store.Ledger()),
		locker:  locker,
		metrics: m,
		reg:     reg,
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func key(product, location string) entity.StockKey {
	return entity.StockKey{ProductID: product, LocationID: location}
}

// position devuelve (onHand, reserved) de un par.
func (e *env) position(t *testing.T, k entity.StockKey) (decimal.Decimal, decimal.Decimal) {
	t.Helper()
	st, err := e.queries.GetStockPosition(ctx, admin, k)
	require.NoError(t, err)
	return st.OnHand, st.Reserved
}

func (e *env) ledger(t *testing.T, filter entity.LedgerFilter) []*entity.LedgerEntry {
	t.Helper()
	seq, err := e.queries.QueryLedger(ctx, admin, filter)
	require.NoError(t, err)
	var out []*entity.LedgerEntry
	for entry, err := range seq {
		require.NoError(t, err)
		out = append(out, entry)
	}
	return out
}

func (e *env) requireConsistent(t *testing.T) {
	t.Helper()
	report, err := e.queries.Reconcile(ctx, admin)
	require.NoError(t, err)
	require.Truef(t, report.Consistent(), "discrepancias: %+v", report.Discrepancies)
}

// seed recibe qty del producto en la ubicación vía el ejecutor.
func (e *env) seed(t *testing.T, product, location, qty string) {
	t.Helper()
	_, err := e.executor.Execute(ctx, entity.DocumentRef{ID: "seed", Number: "RCP-SEED", Kind: entity.KindReceipt, Actor: admin.UserID},
		[]entity.Movement{{ProductID: product, LocationID: location, LedgerType: entity.LedgerReceipt, OnHandDelta: d(qty)}})
	require.NoError(t, err)
}

// counter suma todas las series de la métrica name en el registrador del entorno.
func (e *env) counter(t *testing.T, name string) float64 {
	t.Helper()
	families, err := e.reg.Gather()
	require.NoError(t, err)
	total := 0.0
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

// barrierDocs hace esperar cada GetByID hasta que parties lectores hayan leído,
// así todos parten de la misma versión del documento antes de que alguno confirme.
type barrierDocs struct {
	repository.DocumentRepository
	wg *sync.WaitGroup
}

func (b barrierDocs) GetByID(ctx context.Context, id string) (entity.Document, error) {
	doc, err := b.DocumentRepository.GetByID(ctx, id)
	b.wg.Done()
	b.wg.Wait()
	return doc, err
}

// racingDocs servicio de documentos sobre el mismo store cuyos lectores se sincronizan en una barrera.
func (e *env) racingDocs(parties int) *inventory.DocumentService {
	wg := &sync.WaitGroup{}
	wg.Add(parties)
	return inventory.NewDocumentService(e.store, e.locker, e.executor, authz.NewStaticAuthorizer(),
		barrierDocs{DocumentRepository: e.store.Documents(), wg: wg},
		e.store.Stocks(), e.store.Warehouses(), e.metrics, zerolog.Nop())
}
