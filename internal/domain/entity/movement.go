package entity

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Movement cambio solicitado (aún no aplicado) sobre un par (producto, ubicación).
// ExpectOnHand, si no es nil, es una precondición: el OnHand actual debe coincidir al aplicar.
type Movement struct {
	ProductID     string
	LocationID    string
	LedgerType    LedgerDocumentType
	OnHandDelta   decimal.Decimal
	ReservedDelta decimal.Decimal
	ExpectOnHand  *decimal.Decimal
}

// Key partición afectada.
func (m Movement) Key() StockKey {
	return StockKey{ProductID: m.ProductID, LocationID: m.LocationID}
}

// IsZero un movimiento sin efecto alguno.
func (m Movement) IsZero() bool {
	return m.OnHandDelta.IsZero() && m.ReservedDelta.IsZero()
}

// DocumentRef referencia al documento que causa un lote de movimientos.
type DocumentRef struct {
	ID     string
	Number string
	Kind   DocumentKind
	Actor  string
}

// MovementKeys devuelve las claves distintas de un lote, ordenadas.
func MovementKeys(movements []Movement) []StockKey {
	seen := make(map[StockKey]struct{}, len(movements))
	keys := make([]StockKey, 0, len(movements))
	for _, m := range movements {
		k := m.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	SortKeys(keys)
	return keys
}

// SortKeys ordena claves con StockKey.Less.
func SortKeys(keys []StockKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}
