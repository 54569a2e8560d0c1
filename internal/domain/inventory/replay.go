package inventory

import (
	"fmt"
	"iter"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Replay reconstruye el OnHand de cada partición sumando los deltas del kardex, y verifica
// en el camino que cada BalanceAfter sea el saldo anterior más el delta.
// Espera los asientos en orden ascendente por partición, como los entrega LedgerRepository.Query.
func Replay(entries iter.Seq2[*entity.LedgerEntry, error]) (map[entity.StockKey]decimal.Decimal, error) {
	balances := make(map[entity.StockKey]decimal.Decimal)
	for e, err := range entries {
		if err != nil {
			return nil, err
		}
		if err := CheckChain(balances[e.Key()], e); err != nil {
			return nil, err
		}
		balances[e.Key()] = e.BalanceAfter
	}
	return balances, nil
}

// CheckChain valida un asiento contra el saldo previo de su partición.
func CheckChain(prev decimal.Decimal, e *entity.LedgerEntry) error {
	if e.QuantityDelta.IsZero() {
		return fmt.Errorf("%w: asiento %s con delta cero", domain.ErrInvariantViolation, e.ID)
	}
	if want := prev.Add(e.QuantityDelta); !want.Equal(e.BalanceAfter) {
		return fmt.Errorf("%w: asiento %s en %s: saldo %s, esperado %s",
			domain.ErrInvariantViolation, e.ID, e.Key(), e.BalanceAfter, want)
	}
	return nil
}

// Discrepancy diferencia entre el kardex reproducido y la posición materializada.
type Discrepancy struct {
	Key              entity.StockKey
	LedgerBalance    decimal.Decimal
	StockOnHand      decimal.Decimal
	ExpectedReserved decimal.Decimal
	StockReserved    decimal.Decimal
}

// Compare cruza saldos del kardex, posiciones y reservas esperadas (PickedQty de despachos abiertos).
// reserved puede ser nil para omitir la revisión de reservas.
func Compare(ledger map[entity.StockKey]decimal.Decimal, stocks []*entity.Stock, reserved map[entity.StockKey]decimal.Decimal) []Discrepancy {
	var out []Discrepancy
	seen := make(map[entity.StockKey]struct{}, len(stocks))
	for _, s := range stocks {
		k := s.Key()
		seen[k] = struct{}{}
		bal := ledger[k]
		res := s.Reserved
		if reserved != nil {
			res = reserved[k]
		}
		if !bal.Equal(s.OnHand) || !res.Equal(s.Reserved) {
			out = append(out, Discrepancy{Key: k, LedgerBalance: bal, StockOnHand: s.OnHand, ExpectedReserved: res, StockReserved: s.Reserved})
		}
	}
	keys := make([]entity.StockKey, 0)
	for k := range ledger {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	for k := range reserved {
		if _, ok := seen[k]; !ok {
			if _, inLedger := ledger[k]; !inLedger && !reserved[k].IsZero() {
				keys = append(keys, k)
			}
		}
	}
	entity.SortKeys(keys)
	for _, k := range keys {
		if ledger[k].IsZero() && reserved[k].IsZero() {
			continue
		}
		out = append(out, Discrepancy{Key: k, LedgerBalance: ledger[k], StockOnHand: decimal.Zero, ExpectedReserved: reserved[k], StockReserved: decimal.Zero})
	}
	return out
}
