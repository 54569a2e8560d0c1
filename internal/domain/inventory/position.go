package inventory

import (
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ApplyMovement calcula la posición resultante de aplicar m sobre pos (servicio de dominio puro).
// No muta pos. Reglas, en orden:
//   - ExpectOnHand distinto del OnHand actual → ErrConflict
//   - Reserved < 0 → ErrInvariantViolation (se libera más de lo reservado)
//   - OnHand < 0 → ErrInsufficientStock
//   - Reserved > OnHand (disponible negativo) → ErrInsufficientStock
func ApplyMovement(pos entity.Stock, m entity.Movement) (entity.Stock, error) {
	if m.ExpectOnHand != nil && !pos.OnHand.Equal(*m.ExpectOnHand) {
		return pos, fmt.Errorf("%w: %s tiene %s en existencia, se esperaba %s",
			domain.ErrConflict, pos.Key(), pos.OnHand, m.ExpectOnHand)
	}
	next := pos
	next.OnHand = pos.OnHand.Add(m.OnHandDelta)
	next.Reserved = pos.Reserved.Add(m.ReservedDelta)

	switch {
	case next.Reserved.IsNegative():
		return pos, fmt.Errorf("%w: reserva negativa en %s (reservado %s, delta %s)",
			domain.ErrInvariantViolation, pos.Key(), pos.Reserved, m.ReservedDelta)
	case next.OnHand.IsNegative():
		return pos, fmt.Errorf("%w: %s tiene %s, se solicitan %s",
			domain.ErrInsufficientStock, pos.Key(), pos.OnHand, m.OnHandDelta.Neg())
	case next.Available().IsNegative():
		return pos, fmt.Errorf("%w: %s disponible %s, reservado %s",
			domain.ErrInsufficientStock, pos.Key(), pos.Available(), next.Reserved)
	}
	return next, nil
}

// ValidateMovement revisa la forma del movimiento (sin mirar stock).
func ValidateMovement(m entity.Movement) error {
	switch {
	case m.ProductID == "" || m.LocationID == "":
		return fmt.Errorf("%w: movimiento sin product_id o location_id", domain.ErrValidation)
	case m.IsZero():
		return fmt.Errorf("%w: movimiento vacío en %s", domain.ErrValidation, m.Key())
	case !m.OnHandDelta.IsZero() && !m.LedgerType.IsValid():
		return fmt.Errorf("%w: tipo de asiento %q no válido", domain.ErrValidation, m.LedgerType)
	}
	return nil
}
