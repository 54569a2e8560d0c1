package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `product_id, location_id, on_hand, reserved, updated_at`

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	if err := row.Scan(&s.ProductID, &s.LocationID, &s.OnHand, &s.Reserved, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Get obtiene la posición de un par; nil, nil si nunca tuvo movimientos.
func (r *StockRepo) Get(ctx context.Context, key entity.StockKey) (*entity.Stock, error) {
	query := `SELECT ` + stockColumns + ` FROM stock WHERE product_id = $1 AND location_id = $2`
	s, err := scanStock(r.q.QueryRow(ctx, query, key.ProductID, key.LocationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// GetForUpdate bloquea el par hasta el fin de la transacción. Primero toma un advisory lock
// de transacción sobre la clave (cubre pares que aún no tienen fila) y luego la fila con FOR UPDATE.
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.Stock, error) {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key.String()); err != nil {
		return nil, fmt.Errorf("advisory lock %s: %w", key, err)
	}
	query := `SELECT ` + stockColumns + ` FROM stock WHERE product_id = $1 AND location_id = $2 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, key.ProductID, key.LocationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, nil
}

// Upsert inserta o actualiza la posición del par.
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.Stock) error {
	query := `
		INSERT INTO stock (product_id, location_id, on_hand, reserved, updated_at)
		VALUES ($1, $2, $3, $4, COALESCE($5::timestamptz, now()))
		ON CONFLICT (product_id, location_id)
		DO UPDATE SET on_hand = EXCLUDED.on_hand, reserved = EXCLUDED.reserved, updated_at = EXCLUDED.updated_at`
	var updatedAt any
	if !stock.UpdatedAt.IsZero() {
		updatedAt = stock.UpdatedAt
	}
	_, err := r.q.Exec(ctx, query, stock.ProductID, stock.LocationID, stock.OnHand, stock.Reserved, updatedAt)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// List posiciones ordenadas por (producto, ubicación); filtros vacíos no aplican.
func (r *StockRepo) List(ctx context.Context, productID, locationID string) ([]*entity.Stock, error) {
	var w where
	if productID != "" {
		w.add("product_id = $%d", productID)
	}
	if locationID != "" {
		w.add("location_id = $%d", locationID)
	}
	query := `SELECT ` + stockColumns + ` FROM stock` + w.String() + ` ORDER BY product_id, location_id`
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.Stock
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
