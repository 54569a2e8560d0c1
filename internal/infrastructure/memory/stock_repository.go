package memory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// StockRepo posiciones de stock en memoria.
type StockRepo struct {
	s  *Store
	tx *tx
}

var _ repository.StockRepository = (*StockRepo)(nil)

func (r *StockRepo) lookup(k entity.StockKey) (entity.Stock, bool) {
	if r.tx != nil {
		if v, ok := r.tx.stocks[k]; ok {
			return v, true
		}
	}
	v, ok := r.s.stocks[k]
	return v, ok
}

// Get devuelve una copia de la posición; nil si no existe.
func (r *StockRepo) Get(_ context.Context, key entity.StockKey) (*entity.Stock, error) {
	var out *entity.Stock
	r.s.read(r.tx, func() {
		if v, ok := r.lookup(key); ok {
			out = &v
		}
	})
	return out, nil
}

// GetForUpdate igual a Get: la transacción en memoria ya es exclusiva.
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.Stock, error) {
	return r.Get(ctx, key)
}

// Upsert guarda la posición (en la tx si la hay).
func (r *StockRepo) Upsert(_ context.Context, st *entity.Stock) error {
	r.s.write(r.tx, func() {
		if r.tx != nil {
			r.tx.stocks[st.Key()] = *st
			return
		}
		r.s.stocks[st.Key()] = *st
	})
	return nil
}

// List posiciones ordenadas por clave.
func (r *StockRepo) List(_ context.Context, productID, locationID string) ([]*entity.Stock, error) {
	var out []*entity.Stock
	r.s.read(r.tx, func() {
		keys := make([]entity.StockKey, 0, len(r.s.stocks))
		seen := make(map[entity.StockKey]struct{}, len(r.s.stocks))
		add := func(k entity.StockKey) {
			if _, ok := seen[k]; ok {
				return
			}
			if (productID != "" && k.ProductID != productID) || (locationID != "" && k.LocationID != locationID) {
				return
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		for k := range r.s.stocks {
			add(k)
		}
		if r.tx != nil {
			for k := range r.tx.stocks {
				add(k)
			}
		}
		entity.SortKeys(keys)
		out = make([]*entity.Stock, 0, len(keys))
		for _, k := range keys {
			v, _ := r.lookup(k)
			out = append(out, &v)
		}
	})
	return out, nil
}
