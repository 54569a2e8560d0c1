package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar la posición de stock por (producto, ubicación).
// Usado dentro de transacciones para garantizar consistencia.
type StockRepository interface {
	// Get devuelve nil, nil si el par nunca tuvo movimientos.
	Get(ctx context.Context, key entity.StockKey) (*entity.Stock, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, key entity.StockKey) (*entity.Stock, error)
	Upsert(ctx context.Context, stock *entity.Stock) error
	// List posiciones existentes; productID o locationID vacíos no filtran.
	List(ctx context.Context, productID, locationID string) ([]*entity.Stock, error)
}
