package inventory_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	domaininv "github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
)

var refDelivery = entity.DocumentRef{ID: "doc-1", Number: "DEL-2026-001", Kind: entity.KindDelivery, Actor: "user-1"}

func TestExecute_RecepcionCreaPosicionYAsiento(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "P1", whA, "10")

	onHand, reserved := e.position(t, key("P1", whA))
	assert.True(t, onHand.Equal(d("10")))
	assert.True(t, reserved.IsZero())

	entries := e.ledger(t, entity.LedgerFilter{ProductID: "P1"})
	require.Len(t, entries, 1)
	assert.True(t, entries[0].QuantityDelta.Equal(d("10")))
	assert.True(t, entries[0].BalanceAfter.Equal(d("10")))
	assert.Equal(t, "RCP-SEED", entries[0].DocumentNumber)
	e.requireConsistent(t)
}

func TestExecute_StockInsuficienteNoEscribeNada(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "P1", whA, "10")
	e.seed(t, "P2", whA, "3")

	_, err := e.executor.Execute(ctx, refDelivery, []entity.Movement{
		{ProductID: "P1", LocationID: whA, LedgerType: entity.LedgerDelivery, OnHandDelta: d("-4")},
		{ProductID: "P2", LocationID: whA, LedgerType: entity.LedgerDelivery, OnHandDelta: d("-5")},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	onHand, _ := e.position(t, key("P1", whA))
	assert.True(t, onHand.Equal(d("10")), "el lote es todo o nada")
	assert.Empty(t, e.ledger(t, entity.LedgerFilter{DocumentID: refDelivery.ID}))
	e.requireConsistent(t)
}

func TestExecute_MovimientosSobreMismaClaveSeAcumulan(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "P1", whA, "10")

	entries, err := e.executor.Execute(ctx, refDelivery, []entity.Movement{
		{ProductID: "P1", LocationID: whA, LedgerType: entity.LedgerDelivery, OnHandDelta: d("-6")},
		{ProductID: "P1", LocationID: whA, LedgerType: entity.LedgerDelivery, OnHandDelta: d("-4")},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].BalanceAfter.Equal(d("4")))
	assert.True(t, entries[1].BalanceAfter.Equal(d("0")))

	_, err = e.executor.Execute(ctx, refDelivery, []entity.Movement{
		{ProductID: "P1", LocationID: whA, LedgerType: entity.LedgerDelivery, OnHandDelta: d("-1")},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestExecute_ReservaNoGeneraAsiento(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "P1", whA, "10")

	entries, err := e.executor.Execute(ctx, refDelivery, []entity.Movement{
		{ProductID: "P1", LocationID: whA, LedgerType: entity.LedgerDelivery, ReservedDelta: d("7")},
	})
	require.NoError(t, err)
	assert.Empty(t, entries)

	onHand, reserved := e.position(t, key("P1", whA))
	assert.True(t, onHand.Equal(d("10")))
	assert.True(t, reserved.Equal(d("7")))

	// Disponible 3: no se puede sacar 4 sin liberar reserva.
	_, err = e.executor.Execute(ctx, refDelivery, []entity.Movement{
		{ProductID: "P1", LocationID: whA, LedgerType: entity.LedgerDelivery, OnHandDelta: d("-4")},
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Liberar más de lo reservado es una violación de invariante.
	_, err = e.executor.Execute(ctx, refDelivery, []entity.Movement{
		{ProductID: "P1", LocationID: whA, LedgerType: entity.LedgerDelivery, ReservedDelta: d("-8")},
	})
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
	assert.Equal(t, 1.0, e.counter(t, "stock_invariant_violations_total"))
	assert.Equal(t, 1.0, e.counter(t, "stock_ledger_entries_total"), "solo el asiento del seed")
}

func TestExecute_ExpectOnHandDistintoEsConflicto(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "P1", whA, "10")

	_, err := e.executor.Execute(ctx, entity.DocumentRef{ID: "adj", Kind: entity.KindAdjustment}, []entity.Movement{
		{ProductID: "P1", LocationID: whA, LedgerType: entity.LedgerAdjustment, OnHandDelta: d("-2"), ExpectOnHand: dp("9")},
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestExecute_DivergenciaStockKardexEsViolacion(t *testing.T) {
	e := newEnv(t)
	e.seed(t, "P1", whA, "10")

	// Alguien tocó la tabla de stock por fuera del ejecutor.
	require.NoError(t, e.store.Stocks().Upsert(ctx, &entity.Stock{ProductID: "P1", LocationID: whA, OnHand: d("12"), Reserved: d("0")}))

	_, err := e.executor.Execute(ctx, refDelivery, []entity.Movement{
		{ProductID: "P1", LocationID: whA, LedgerType: entity.LedgerDelivery, OnHandDelta: d("-1")},
	})
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	report, err := e.queries.Reconcile(ctx, admin)
	require.NoError(t, err)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, key("P1", whA), report.Discrepancies[0].Key)
}

func TestExecute_MovimientoMalFormado(t *testing.T) {
	e := newEnv(t)
	_, err := e.executor.Execute(ctx, refDelivery, []entity.Movement{
		{ProductID: "P1", LocationID: whA, LedgerType: entity.LedgerDelivery},
		{ProductID: "", LocationID: whA, LedgerType: entity.LedgerDelivery, OnHandDelta: d("1")},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	entries, err := e.executor.Execute(ctx, refDelivery, nil)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// ──────────────────────────────────────────────────────────────────────────────
// Secuencias aleatorias sobre un mismo par
// ──────────────────────────────────────────────────────────────────────────────

// TestExecute_SecuenciasAleatoriasCuadranConElKardex aplica lotes aleatorios de un movimiento
// sobre P1@WH-A y verifica que OnHand, el último BalanceAfter y el replay del kardex coinciden
// con la suma de los deltas aceptados. Los rechazados no dejan rastro.
func TestExecute_SecuenciasAleatoriasCuadranConElKardex(t *testing.T) {
	for _, seed := range []uint64{1, 7, 42, 2026} {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			e := newEnv(t)
			rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
			k := key("P1", whA)
			ref := entity.DocumentRef{ID: "doc-rand", Number: "ADJ-RAND", Kind: entity.KindAdjustment, Actor: admin.UserID}

			sum, reserved := decimal.Zero, decimal.Zero
			accepted := 0
			for range 300 {
				m := entity.Movement{ProductID: k.ProductID, LocationID: k.LocationID, LedgerType: entity.LedgerAdjustment}
				if rng.IntN(4) == 0 {
					// reserva o libera sin tocar existencias; nunca libera más de lo reservado
					r := decimal.New(int64(rng.IntN(80)+1), -1)
					if rng.IntN(2) == 0 && reserved.GreaterThanOrEqual(r) {
						r = r.Neg()
					}
					m.ReservedDelta = r
				} else {
					m.OnHandDelta = decimal.New(int64(rng.IntN(400)-150), -1)
					if m.OnHandDelta.IsZero() {
						continue
					}
				}

				nextOnHand, nextReserved := sum.Add(m.OnHandDelta), reserved.Add(m.ReservedDelta)
				_, err := e.executor.Execute(ctx, ref, []entity.Movement{m})
				if nextOnHand.IsNegative() || nextReserved.GreaterThan(nextOnHand) {
					require.ErrorIs(t, err, domain.ErrInsufficientStock)
					continue
				}
				require.NoError(t, err)
				sum, reserved = nextOnHand, nextReserved
				if !m.OnHandDelta.IsZero() {
					accepted++
				}
			}

			onHand, gotReserved := e.position(t, k)
			assert.True(t, onHand.Equal(sum), "onHand %s, suma %s", onHand, sum)
			assert.True(t, gotReserved.Equal(reserved), "reservado %s, esperado %s", gotReserved, reserved)

			entries := e.ledger(t, entity.LedgerFilter{ProductID: k.ProductID, LocationID: k.LocationID})
			require.Len(t, entries, accepted)
			total := decimal.Zero
			for _, entry := range entries {
				total = total.Add(entry.QuantityDelta)
			}
			assert.True(t, total.Equal(sum))
			if accepted > 0 {
				assert.True(t, entries[len(entries)-1].BalanceAfter.Equal(sum))
			}

			balances, err := domaininv.Replay(e.store.Ledger().Query(ctx, entity.LedgerFilter{}))
			require.NoError(t, err)
			assert.True(t, balances[k].Equal(sum), "replay %s, suma %s", balances[k], sum)
			assert.Zero(t, e.counter(t, "stock_invariant_violations_total"))
		})
	}
}
