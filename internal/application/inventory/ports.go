package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit. Garantiza que stock, kardex y documento
// avancen juntos o no avancen.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		ledgerRepo repository.LedgerRepository,
		docRepo repository.DocumentRepository,
	) error) error
}

// KeyLocker serializa el acceso por (producto, ubicación). Las claves llegan ordenadas y la
// implementación debe tomarlas en ese orden. release libera todas las tomadas.
type KeyLocker interface {
	Lock(ctx context.Context, keys []entity.StockKey) (release func(), err error)
}

// Authorizer decide si un rol puede ejecutar una acción sobre un módulo.
type Authorizer interface {
	CanPerform(role, module, action string) bool
}
