package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/jhoicas/stock-ledger-api/internal/application/authz"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/metrics"
)

// DocumentService casos de uso de documentos: creación, transiciones y consulta.
// Una transición calcula los movimientos sobre una copia del documento, toma los locks de
// las claves afectadas y en una sola transacción aplica el lote y guarda el documento (CAS por versión).
type DocumentService struct {
	txRunner      TxRunner
	locker        KeyLocker
	executor      *MovementExecutor
	authz         Authorizer
	docRepo       repository.DocumentRepository
	stockRepo     repository.StockRepository
	warehouseRepo repository.WarehouseRepository
	metrics       *metrics.InventoryMetrics
	log           zerolog.Logger
	now           func() time.Time
}

// NewDocumentService construye el servicio. Los repositorios recibidos son de lectura (fuera de tx).
func NewDocumentService(
	txRunner TxRunner,
	locker KeyLocker,
	executor *MovementExecutor,
	az Authorizer,
	docRepo repository.DocumentRepository,
	stockRepo repository.StockRepository,
	warehouseRepo repository.WarehouseRepository,
	m *metrics.InventoryMetrics,
	log zerolog.Logger,
) *DocumentService {
	return &DocumentService{
		txRunner:      txRunner,
		locker:        locker,
		executor:      executor,
		authz:         az,
		docRepo:       docRepo,
		stockRepo:     stockRepo,
		warehouseRepo: warehouseRepo,
		metrics:       m,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// CreateDocument crea un documento de la variante indicada en su estado inicial.
// En ajustes, SystemQuantity de cada línea es la foto del OnHand actual.
func (s *DocumentService) CreateDocument(ctx context.Context, actor entity.Actor, kind entity.DocumentKind, in dto.CreateDocumentRequest) (entity.Document, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: tipo de documento %q", domain.ErrValidation, kind)
	}
	if !s.authz.CanPerform(actor.Role, kind.Module(), authz.ActionCreate) {
		return nil, domain.ErrForbidden
	}
	if err := s.checkWarehouses(ctx, kind, in); err != nil {
		return nil, err
	}

	now := s.now()
	seq, err := s.docRepo.NextSequence(ctx, kind.Prefix(), now.Year())
	if err != nil {
		return nil, err
	}
	h := entity.DocumentHeader{
		ID:          uuid.New().String(),
		Number:      fmt.Sprintf("%s-%d-%03d", kind.Prefix(), now.Year(), seq),
		WarehouseID: in.WarehouseID,
		Notes:       in.Notes,
		CreatedBy:   actor.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	doc, err := s.build(ctx, kind, h, in)
	if err != nil {
		return nil, err
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}
	s.log.Info().
		Str("document_id", h.ID).
		Str("document_number", h.Number).
		Str("user_id", actor.UserID).
		Msg("documento creado")
	return doc, nil
}

func (s *DocumentService) checkWarehouses(ctx context.Context, kind entity.DocumentKind, in dto.CreateDocumentRequest) error {
	ids := []string{in.WarehouseID}
	if kind == entity.KindTransfer {
		if in.DestinationWarehouseID == "" {
			return fmt.Errorf("%w: destination_warehouse_id requerido", domain.ErrValidation)
		}
		ids = append(ids, in.DestinationWarehouseID)
	}
	var errs error
	for _, id := range ids {
		wh, err := s.warehouseRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if wh == nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: la bodega %q no existe", domain.ErrValidation, id))
		}
	}
	return errs
}

func (s *DocumentService) build(ctx context.Context, kind entity.DocumentKind, h entity.DocumentHeader, in dto.CreateDocumentRequest) (entity.Document, error) {
	switch kind {
	case entity.KindReceipt:
		lines := make([]entity.ReceiptLineInput, 0, len(in.Lines))
		for _, l := range in.Lines {
			lines = append(lines, entity.ReceiptLineInput{ProductID: l.ProductID, LocationID: l.LocationID, ExpectedQuantity: l.Quantity})
		}
		return entity.NewReceipt(h, in.SupplierName, in.ExpectedDate, lines)
	case entity.KindDelivery:
		lines := make([]entity.DeliveryLineInput, 0, len(in.Lines))
		for _, l := range in.Lines {
			lines = append(lines, entity.DeliveryLineInput{ProductID: l.ProductID, LocationID: l.LocationID, OrderedQty: l.Quantity})
		}
		return entity.NewDelivery(h, in.CustomerName, in.ScheduledDate, lines)
	case entity.KindTransfer:
		lines := make([]entity.TransferLineInput, 0, len(in.Lines))
		for _, l := range in.Lines {
			lines = append(lines, entity.TransferLineInput{
				ProductID:             l.ProductID,
				SourceLocationID:      l.LocationID,
				DestinationLocationID: l.DestinationLocationID,
				RequestedQty:          l.Quantity,
			})
		}
		return entity.NewTransfer(h, in.DestinationWarehouseID, in.ScheduledDate, lines)
	case entity.KindAdjustment:
		return s.buildAdjustment(ctx, h, in)
	}
	return nil, fmt.Errorf("%w: tipo de documento %q", domain.ErrValidation, kind)
}

func (s *DocumentService) buildAdjustment(ctx context.Context, h entity.DocumentHeader, in dto.CreateDocumentRequest) (entity.Document, error) {
	reason := entity.AdjustmentReason(in.Reason)
	if in.Reason == "" {
		reason = entity.ReasonCycleCount
	}
	lines := make([]entity.AdjustmentLineInput, 0, len(in.Lines))
	var errs error
	for i, l := range in.Lines {
		if l.CountedQuantity == nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: línea %d: counted_quantity requerido", domain.ErrValidation, i+1))
			continue
		}
		loc := l.LocationID
		if loc == "" {
			loc = h.WarehouseID
		}
		system := decimal.Zero
		st, err := s.stockRepo.Get(ctx, entity.StockKey{ProductID: l.ProductID, LocationID: loc})
		if err != nil {
			return nil, err
		}
		if st != nil {
			system = st.OnHand
		}
		lines = append(lines, entity.AdjustmentLineInput{
			ProductID:       l.ProductID,
			LocationID:      loc,
			SystemQuantity:  system,
			CountedQuantity: *l.CountedQuantity,
		})
	}
	if errs != nil {
		return nil, errs
	}
	return entity.NewAdjustment(h, reason, lines)
}

// Transition ejecuta una transición con nombre sobre el documento. Documento, stock y kardex
// avanzan juntos o no avanzan. Si otra transición ganó la carrera responde domain.ErrConflict:
// la versión leída se verifica dentro de la transacción antes de aplicar movimientos.
func (s *DocumentService) Transition(ctx context.Context, actor entity.Actor, id string, name entity.Transition, in dto.TransitionRequest) (result entity.Document, err error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrNotFound
	}
	kind := doc.Kind()
	defer func() {
		s.metrics.IncTransition(string(kind), string(name), transitionResult(err))
	}()

	if !s.authz.CanPerform(actor.Role, kind.Module(), authz.TransitionAction(kind, name)) {
		return nil, domain.ErrForbidden
	}
	version := doc.Header().Version
	if in.ExpectedVersion != nil && *in.ExpectedVersion != version {
		return nil, fmt.Errorf("%w: versión %d, esperada %d", domain.ErrConflict, version, *in.ExpectedVersion)
	}

	next := doc.Clone()
	movements, err := next.Apply(name, toTransitionInput(actor, in, s.now()))
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, entity.MovementKeys(movements))
	if err != nil {
		return nil, err
	}
	defer release()

	ref := entity.Ref(next, actor.UserID)
	err = s.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		ledgerRepo repository.LedgerRepository,
		docRepo repository.DocumentRepository,
	) error {
		// El CAS va primero: quien leyó una versión vieja sale con ErrConflict antes de mover stock.
		if err := docRepo.Update(ctx, next, version); err != nil {
			return err
		}
		_, err := s.executor.ExecuteInTx(ctx, stockRepo, ledgerRepo, ref, movements)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("document_id", id).
		Str("document_number", ref.Number).
		Str("transition", string(name)).
		Str("status", next.StatusName()).
		Int("movements", len(movements)).
		Str("user_id", actor.UserID).
		Msg("transición aplicada")
	return next, nil
}

func toTransitionInput(actor entity.Actor, in dto.TransitionRequest, now time.Time) entity.TransitionInput {
	lines := make([]entity.LineQuantity, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, entity.LineQuantity{LineID: l.LineID, Quantity: l.Quantity})
	}
	return entity.TransitionInput{
		Lines:          lines,
		TrackingNumber: in.TrackingNumber,
		Actor:          actor.UserID,
		At:             now,
	}
}

func transitionResult(err error) string {
	if errors.Is(err, domain.ErrForbidden) {
		return "forbidden"
	}
	if errors.Is(err, domain.ErrInvalidTransition) {
		return "invalid_transition"
	}
	return resultLabel(err)
}

// GetDocument obtiene un documento por ID. El tipo debe coincidir si se indica.
func (s *DocumentService) GetDocument(ctx context.Context, actor entity.Actor, kind entity.DocumentKind, id string) (entity.Document, error) {
	if !s.authz.CanPerform(actor.Role, kind.Module(), authz.ActionView) {
		return nil, domain.ErrForbidden
	}
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.Kind() != kind {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

// ListDocuments lista documentos de una variante con filtros y paginación.
func (s *DocumentService) ListDocuments(ctx context.Context, actor entity.Actor, filter entity.DocumentFilter) ([]entity.Document, error) {
	if !filter.Kind.IsValid() {
		return nil, fmt.Errorf("%w: tipo de documento %q", domain.ErrValidation, filter.Kind)
	}
	if !s.authz.CanPerform(actor.Role, filter.Kind.Module(), authz.ActionView) {
		return nil, domain.ErrForbidden
	}
	return s.docRepo.List(ctx, filter)
}
