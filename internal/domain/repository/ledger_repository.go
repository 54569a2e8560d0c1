package repository

import (
	"context"
	"iter"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LedgerRepository puerto del kardex: solo inserción y lectura.
type LedgerRepository interface {
	// Append inserta el asiento. Devuelve domain.ErrInvariantViolation si BalanceAfter
	// no es el saldo anterior de la partición más QuantityDelta. Asigna Seq.
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	// LastBalance saldo del último asiento de la partición (cero si no hay asientos).
	LastBalance(ctx context.Context, key entity.StockKey) (decimal.Decimal, error)
	// Query recorre los asientos en orden ascendente (CreatedAt, Seq). La secuencia es perezosa
	// y de solo lectura; un error corta la iteración.
	Query(ctx context.Context, filter entity.LedgerFilter) iter.Seq2[*entity.LedgerEntry, error]
	// Keys particiones con al menos un asiento.
	Keys(ctx context.Context) ([]entity.StockKey, error)
}
