package inventory

import (
	"context"
	"iter"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/application/authz"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// QueryService consultas de solo lectura sobre stock y kardex.
type QueryService struct {
	txRunner   TxRunner
	authz      Authorizer
	stockRepo  repository.StockRepository
	ledgerRepo repository.LedgerRepository
}

// NewQueryService construye el servicio de consultas.
func NewQueryService(txRunner TxRunner, az Authorizer, stockRepo repository.StockRepository, ledgerRepo repository.LedgerRepository) *QueryService {
	return &QueryService{txRunner: txRunner, authz: az, stockRepo: stockRepo, ledgerRepo: ledgerRepo}
}

// GetStockPosition posición de un par; cero si nunca tuvo movimientos.
func (s *QueryService) GetStockPosition(ctx context.Context, actor entity.Actor, key entity.StockKey) (*entity.Stock, error) {
	if !s.authz.CanPerform(actor.Role, authz.ModuleStock, authz.ActionView) {
		return nil, domain.ErrForbidden
	}
	return PositionOf(ctx, s.stockRepo, key.ProductID, key.LocationID)
}

// PositionOf lee la posición sin autorización; un par ausente se devuelve en cero.
func PositionOf(ctx context.Context, stockRepo repository.StockRepository, productID, locationID string) (*entity.Stock, error) {
	st, err := stockRepo.Get(ctx, entity.StockKey{ProductID: productID, LocationID: locationID})
	if err != nil {
		return nil, err
	}
	if st == nil {
		return entity.NewStock(productID, locationID), nil
	}
	return st, nil
}

// QueryLedger secuencia perezosa de asientos en orden ascendente.
func (s *QueryService) QueryLedger(ctx context.Context, actor entity.Actor, filter entity.LedgerFilter) (iter.Seq2[*entity.LedgerEntry, error], error) {
	if !s.authz.CanPerform(actor.Role, authz.ModuleLedger, authz.ActionView) {
		return nil, domain.ErrForbidden
	}
	return s.ledgerRepo.Query(ctx, filter), nil
}

// ReconcileReport resultado de cruzar kardex, posiciones y reservas de despachos abiertos.
type ReconcileReport struct {
	Partitions    int
	Discrepancies []inventory.Discrepancy
}

// Consistent informa si no hubo diferencias.
func (r ReconcileReport) Consistent() bool { return len(r.Discrepancies) == 0 }

// Reconcile reproduce todo el kardex y lo compara con las posiciones materializadas.
// La reserva esperada de cada par es la suma de PickedQty de los despachos abiertos.
// Lee todo dentro de una transacción para trabajar sobre una foto coherente.
func (s *QueryService) Reconcile(ctx context.Context, actor entity.Actor) (*ReconcileReport, error) {
	if !s.authz.CanPerform(actor.Role, authz.ModuleStock, authz.ActionVerify) {
		return nil, domain.ErrForbidden
	}
	var report *ReconcileReport
	err := s.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		ledgerRepo repository.LedgerRepository,
		docRepo repository.DocumentRepository,
	) error {
		r, err := Reconcile(ctx, stockRepo, ledgerRepo, docRepo)
		report = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Reconcile verificación sin autorización, usada también por stockctl.
func Reconcile(ctx context.Context, stockRepo repository.StockRepository, ledgerRepo repository.LedgerRepository, docRepo repository.DocumentRepository) (*ReconcileReport, error) {
	balances, err := inventory.Replay(ledgerRepo.Query(ctx, entity.LedgerFilter{}))
	if err != nil {
		return nil, err
	}
	stocks, err := stockRepo.List(ctx, "", "")
	if err != nil {
		return nil, err
	}
	reserved, err := openReservations(ctx, docRepo)
	if err != nil {
		return nil, err
	}
	partitions := make(map[entity.StockKey]struct{}, len(stocks)+len(balances))
	for _, st := range stocks {
		partitions[st.Key()] = struct{}{}
	}
	for k := range balances {
		partitions[k] = struct{}{}
	}
	return &ReconcileReport{
		Partitions:    len(partitions),
		Discrepancies: inventory.Compare(balances, stocks, reserved),
	}, nil
}

func openReservations(ctx context.Context, docRepo repository.DocumentRepository) (map[entity.StockKey]decimal.Decimal, error) {
	docs, err := docRepo.List(ctx, entity.DocumentFilter{Kind: entity.KindDelivery})
	if err != nil {
		return nil, err
	}
	reserved := make(map[entity.StockKey]decimal.Decimal)
	for _, doc := range docs {
		d, ok := doc.(*entity.Delivery)
		if !ok || !d.HoldsReservation() {
			continue
		}
		for _, l := range d.Lines {
			k := entity.StockKey{ProductID: l.ProductID, LocationID: l.LocationID}
			reserved[k] = reserved[k].Add(l.PickedQty)
		}
	}
	return reserved, nil
}
