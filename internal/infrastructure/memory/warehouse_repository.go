package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct {
	s *Store
}

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// Create guarda la bodega; código repetido → domain.ErrDuplicate.
func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.warehouses {
		if existing.ID == w.ID || existing.Code == w.Code {
			return fmt.Errorf("%w: bodega %s", domain.ErrDuplicate, w.Code)
		}
	}
	c := *w
	r.s.warehouses[w.ID] = &c
	return nil
}

// GetByID nil, nil si no existe.
func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	w, ok := r.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	c := *w
	return &c, nil
}

// List ordenadas por código.
func (r *WarehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	r.s.mu.RLock()
	out := make([]*entity.Warehouse, 0, len(r.s.warehouses))
	for _, w := range r.s.warehouses {
		c := *w
		out = append(out, &c)
	}
	r.s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	if offset < 0 {
		offset = 0
	}
	if offset >= len(out) {
		return []*entity.Warehouse{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
