package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// DocumentRepo documentos en memoria. Se guardan y entregan copias (Clone) para que
// nadie mute el estado del store por fuera de Update.
type DocumentRepo struct {
	s  *Store
	tx *tx
}

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

func (r *DocumentRepo) lookup(id string) entity.Document {
	if r.tx != nil {
		if d, ok := r.tx.docs[id]; ok {
			return d
		}
	}
	return r.s.docs[id]
}

func (r *DocumentRepo) all() map[string]entity.Document {
	out := make(map[string]entity.Document, len(r.s.docs))
	for id, d := range r.s.docs {
		out[id] = d
	}
	if r.tx != nil {
		for id, d := range r.tx.docs {
			out[id] = d
		}
	}
	return out
}

func (r *DocumentRepo) put(d entity.Document) {
	if r.tx != nil {
		r.tx.docs[d.Header().ID] = d
		return
	}
	r.s.docs[d.Header().ID] = d
}

// Create guarda el documento con Version 1.
func (r *DocumentRepo) Create(_ context.Context, doc entity.Document) error {
	var err error
	r.s.write(r.tx, func() {
		h := doc.Header()
		for _, d := range r.all() {
			if d.Header().ID == h.ID || d.Header().Number == h.Number {
				err = fmt.Errorf("%w: documento %s", domain.ErrDuplicate, h.Number)
				return
			}
		}
		h.Version = 1
		r.put(doc.Clone())
	})
	return err
}

// GetByID devuelve una copia; nil, nil si no existe.
func (r *DocumentRepo) GetByID(_ context.Context, id string) (entity.Document, error) {
	var out entity.Document
	r.s.read(r.tx, func() {
		if d := r.lookup(id); d != nil {
			out = d.Clone()
		}
	})
	return out, nil
}

// Update compare-and-swap por versión.
func (r *DocumentRepo) Update(_ context.Context, doc entity.Document, expectedVersion int64) error {
	var err error
	r.s.write(r.tx, func() {
		h := doc.Header()
		cur := r.lookup(h.ID)
		if cur == nil {
			err = domain.ErrNotFound
			return
		}
		if v := cur.Header().Version; v != expectedVersion {
			err = fmt.Errorf("%w: %s cambió (versión %d, esperada %d)", domain.ErrConflict, h.Number, v, expectedVersion)
			return
		}
		h.Version = expectedVersion + 1
		r.put(doc.Clone())
	})
	return err
}

// List filtra y pagina; orden por fecha de creación y número. Limit 0 = sin límite.
func (r *DocumentRepo) List(_ context.Context, f entity.DocumentFilter) ([]entity.Document, error) {
	var out []entity.Document
	r.s.read(r.tx, func() {
		for _, d := range r.all() {
			if matchesDocument(f, d) {
				out = append(out, d)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		hi, hj := out[i].Header(), out[j].Header()
		if !hi.CreatedAt.Equal(hj.CreatedAt) {
			return hi.CreatedAt.Before(hj.CreatedAt)
		}
		return hi.Number < hj.Number
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []entity.Document{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	for i := range out {
		out[i] = out[i].Clone()
	}
	return out, nil
}

func matchesDocument(f entity.DocumentFilter, d entity.Document) bool {
	h := d.Header()
	if f.Kind != "" && d.Kind() != f.Kind {
		return false
	}
	if f.Status != "" && d.StatusName() != f.Status {
		return false
	}
	if f.WarehouseID != "" {
		found := false
		for _, w := range d.Warehouses() {
			if w == f.WarehouseID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.From != nil && h.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && h.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

// NextSequence consecutivo por prefijo y año. No participa de la tx: los números no son
// correlativos sin huecos, solo únicos.
func (r *DocumentRepo) NextSequence(_ context.Context, prefix string, year int) (int64, error) {
	var n int64
	r.s.write(r.tx, func() {
		key := fmt.Sprintf("%s-%d", prefix, year)
		r.s.sequences[key]++
		n = r.s.sequences[key]
	})
	return n, nil
}
