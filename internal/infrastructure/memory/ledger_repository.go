package memory

import (
	"context"
	"iter"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// LedgerRepo kardex en memoria (slice de solo inserción).
type LedgerRepo struct {
	s  *Store
	tx *tx
}

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

func (r *LedgerRepo) balance(k entity.StockKey) decimal.Decimal {
	if r.tx != nil {
		if v, ok := r.tx.balances[k]; ok {
			return v
		}
	}
	return r.s.balances[k]
}

// Append valida la cadena de saldos y agrega el asiento con el siguiente Seq.
func (r *LedgerRepo) Append(_ context.Context, e *entity.LedgerEntry) error {
	var err error
	r.s.write(r.tx, func() {
		if err = inventory.CheckChain(r.balance(e.Key()), e); err != nil {
			return
		}
		c := *e
		if r.tx != nil {
			r.tx.lastSeq++
			c.Seq = r.tx.lastSeq
			r.tx.ledger = append(r.tx.ledger, &c)
			r.tx.balances[c.Key()] = c.BalanceAfter
		} else {
			r.s.lastSeq++
			c.Seq = r.s.lastSeq
			r.s.ledger = append(r.s.ledger, &c)
			r.s.balances[c.Key()] = c.BalanceAfter
		}
		e.Seq = c.Seq
	})
	return err
}

// LastBalance saldo del último asiento del par.
func (r *LedgerRepo) LastBalance(_ context.Context, key entity.StockKey) (decimal.Decimal, error) {
	var out decimal.Decimal
	r.s.read(r.tx, func() { out = r.balance(key) })
	return out, nil
}

// Query recorre una foto del kardex tomada al iniciar la iteración. Los asientos son
// inmutables, así que se leen sin lock una vez tomada la foto.
func (r *LedgerRepo) Query(ctx context.Context, f entity.LedgerFilter) iter.Seq2[*entity.LedgerEntry, error] {
	return func(yield func(*entity.LedgerEntry, error) bool) {
		var committed, staged []*entity.LedgerEntry
		r.s.read(r.tx, func() {
			committed = r.s.ledger
			if r.tx != nil {
				staged = r.tx.ledger
			}
		})
		n := 0
		for _, part := range [][]*entity.LedgerEntry{committed, staged} {
			for _, e := range part {
				if err := ctx.Err(); err != nil {
					yield(nil, err)
					return
				}
				if !f.Matches(e) {
					continue
				}
				c := *e
				if !yield(&c, nil) {
					return
				}
				n++
				if f.Limit > 0 && n >= f.Limit {
					return
				}
			}
		}
	}
}

// Keys particiones con asientos, ordenadas.
func (r *LedgerRepo) Keys(_ context.Context) ([]entity.StockKey, error) {
	var keys []entity.StockKey
	r.s.read(r.tx, func() {
		seen := make(map[entity.StockKey]struct{}, len(r.s.balances))
		for k := range r.s.balances {
			seen[k] = struct{}{}
		}
		if r.tx != nil {
			for k := range r.tx.balances {
				seen[k] = struct{}{}
			}
		}
		keys = make([]entity.StockKey, 0, len(seen))
		for k := range seen {
			keys = append(keys, k)
		}
	})
	entity.SortKeys(keys)
	return keys, nil
}
