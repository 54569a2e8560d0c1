package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
	"github.com/jhoicas/stock-ledger-api/pkg/metrics"
)

// MovementExecutor es el único camino que modifica stock. Aplica un lote de movimientos
// de forma atómica: valida todo contra las posiciones actuales antes de escribir nada,
// actualiza posiciones y agrega un asiento de kardex por cada cambio de OnHand.
type MovementExecutor struct {
	txRunner TxRunner
	locker   KeyLocker
	metrics  *metrics.InventoryMetrics
	log      zerolog.Logger
	now      func() time.Time
}

// NewMovementExecutor construye el ejecutor. metrics puede ser nil.
func NewMovementExecutor(txRunner TxRunner, locker KeyLocker, m *metrics.InventoryMetrics, log zerolog.Logger) *MovementExecutor {
	return &MovementExecutor{
		txRunner: txRunner,
		locker:   locker,
		metrics:  m,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Execute toma los locks de las claves, abre su propia transacción y aplica el lote.
func (e *MovementExecutor) Execute(ctx context.Context, ref entity.DocumentRef, movements []entity.Movement) ([]*entity.LedgerEntry, error) {
	release, err := e.locker.Lock(ctx, entity.MovementKeys(movements))
	if err != nil {
		return nil, err
	}
	defer release()

	var entries []*entity.LedgerEntry
	err = e.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		ledgerRepo repository.LedgerRepository,
		_ repository.DocumentRepository,
	) error {
		var runErr error
		entries, runErr = e.ExecuteInTx(ctx, stockRepo, ledgerRepo, ref, movements)
		return runErr
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ExecuteInTx aplica el lote con repositorios de la transacción del llamador.
// El llamador ya tiene los locks de las claves y decide Commit/Rollback.
func (e *MovementExecutor) ExecuteInTx(
	ctx context.Context,
	stockRepo repository.StockRepository,
	ledgerRepo repository.LedgerRepository,
	ref entity.DocumentRef,
	movements []entity.Movement,
) (entries []*entity.LedgerEntry, err error) {
	start := time.Now()
	defer func() {
		e.metrics.ObserveBatch(string(ref.Kind), resultLabel(err), time.Since(start))
		if errors.Is(err, domain.ErrInvariantViolation) {
			e.metrics.IncInvariantViolation()
			e.log.Error().Err(err).
				Str("document_id", ref.ID).
				Str("document_number", ref.Number).
				Str("document_kind", string(ref.Kind)).
				Msg("violación de invariante de inventario; lote abortado")
		}
	}()

	if len(movements) == 0 {
		return nil, nil
	}
	var shapeErrs error
	for _, m := range movements {
		shapeErrs = multierr.Append(shapeErrs, inventory.ValidateMovement(m))
	}
	if shapeErrs != nil {
		return nil, shapeErrs
	}

	// 1. Bloquea filas en orden de clave y verifica que stock y kardex no hayan divergido.
	keys := entity.MovementKeys(movements)
	positions := make(map[entity.StockKey]entity.Stock, len(keys))
	for _, k := range keys {
		s, err := stockRepo.GetForUpdate(ctx, k)
		if err != nil {
			return nil, err
		}
		if s == nil {
			s = entity.NewStock(k.ProductID, k.LocationID)
		}
		balance, err := ledgerRepo.LastBalance(ctx, k)
		if err != nil {
			return nil, err
		}
		if !balance.Equal(s.OnHand) {
			return nil, fmt.Errorf("%w: %s tiene %s en stock y %s en kardex",
				domain.ErrInvariantViolation, k, s.OnHand, balance)
		}
		positions[k] = *s
	}

	// 2. Valida todo el lote contra la posición en curso; nada se escribe si algo falla.
	now := e.now()
	for _, m := range movements {
		k := m.Key()
		next, err := inventory.ApplyMovement(positions[k], m)
		if err != nil {
			return nil, err
		}
		next.UpdatedAt = now
		positions[k] = next
		if m.OnHandDelta.IsZero() {
			continue
		}
		entries = append(entries, &entity.LedgerEntry{
			ID:             uuid.New().String(),
			ProductID:      m.ProductID,
			LocationID:     m.LocationID,
			DocumentType:   m.LedgerType,
			DocumentID:     ref.ID,
			DocumentNumber: ref.Number,
			QuantityDelta:  m.OnHandDelta,
			BalanceAfter:   next.OnHand,
			CreatedAt:      now,
			CreatedBy:      ref.Actor,
		})
	}

	// 3. Aplica.
	for _, k := range keys {
		s := positions[k]
		if err := stockRepo.Upsert(ctx, &s); err != nil {
			return nil, err
		}
	}
	for _, entry := range entries {
		if err := ledgerRepo.Append(ctx, entry); err != nil {
			return nil, err
		}
		e.metrics.AddLedgerEntries(string(entry.DocumentType), 1)
	}
	return entries, nil
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvariantViolation):
		return "invariant_violation"
	}
	return "error"
}
