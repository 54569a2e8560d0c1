package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// DocumentRepository puerto de persistencia de documentos con concurrencia optimista.
type DocumentRepository interface {
	// Create guarda el documento con Version = 1. Número repetido → domain.ErrDuplicate.
	Create(ctx context.Context, doc entity.Document) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (entity.Document, error)
	// Update guarda solo si la versión persistida es expectedVersion; si no, domain.ErrConflict.
	// Incrementa Version en el documento recibido.
	Update(ctx context.Context, doc entity.Document, expectedVersion int64) error
	List(ctx context.Context, filter entity.DocumentFilter) ([]entity.Document, error)
	// NextSequence consecutivo por prefijo y año (RCP, 2026 → 1, 2, 3...).
	NextSequence(ctx context.Context, prefix string, year int) (int64, error)
}
