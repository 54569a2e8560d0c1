package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// AdjustmentStatus estados de un ajuste de inventario.
type AdjustmentStatus string

const (
	AdjustmentDraft    AdjustmentStatus = "draft"
	AdjustmentApproved AdjustmentStatus = "approved"
	AdjustmentRejected AdjustmentStatus = "rejected"
)

// AdjustmentReason motivo del ajuste.
type AdjustmentReason string

const (
	ReasonCycleCount AdjustmentReason = "cycle_count"
	ReasonDamage     AdjustmentReason = "damage"
	ReasonLoss       AdjustmentReason = "loss"
	ReasonFound      AdjustmentReason = "found"
	ReasonCorrection AdjustmentReason = "correction"
	ReasonOther      AdjustmentReason = "other"
)

// IsValid informa si el motivo es uno de los conocidos.
func (r AdjustmentReason) IsValid() bool {
	switch r {
	case ReasonCycleCount, ReasonDamage, ReasonLoss, ReasonFound, ReasonCorrection, ReasonOther:
		return true
	}
	return false
}

// AdjustmentLine conteo físico contra la foto del sistema tomada al crear el ajuste.
type AdjustmentLine struct {
	ID              string
	ProductID       string
	LocationID      string
	SystemQuantity  decimal.Decimal
	CountedQuantity decimal.Decimal
}

// Difference counted - system (positivo = sobrante).
func (l AdjustmentLine) Difference() decimal.Decimal {
	return l.CountedQuantity.Sub(l.SystemQuantity)
}

// AdjustmentLineInput datos de creación; SystemQuantity lo llena el servicio desde el stock actual.
type AdjustmentLineInput struct {
	ProductID       string
	LocationID      string
	SystemQuantity  decimal.Decimal
	CountedQuantity decimal.Decimal
}

// Adjustment documento de ajuste (conteo cíclico, daño, pérdida...).
type Adjustment struct {
	DocumentHeader
	Status     AdjustmentStatus
	Reason     AdjustmentReason
	ApprovedBy string
	ApprovedAt *time.Time
	RejectedBy string
	RejectedAt *time.Time
	Lines      []AdjustmentLine
}

var _ Document = (*Adjustment)(nil)

// NewAdjustment crea el ajuste en estado draft. Cada par (producto, ubicación) aparece una sola vez.
func NewAdjustment(h DocumentHeader, reason AdjustmentReason, lines []AdjustmentLineInput) (*Adjustment, error) {
	errs := validateHeader(h)
	if !reason.IsValid() {
		errs = multierr.Append(errs, validationf("motivo de ajuste %q no válido", reason))
	}
	if len(lines) == 0 {
		errs = multierr.Append(errs, validationf("se requiere al menos una línea"))
	}
	a := &Adjustment{
		DocumentHeader: h,
		Status:         AdjustmentDraft,
		Reason:         reason,
		Lines:          make([]AdjustmentLine, 0, len(lines)),
	}
	seen := make(map[StockKey]struct{}, len(lines))
	for i, in := range lines {
		loc := locationOr(in.LocationID, h.WarehouseID)
		if in.ProductID == "" {
			errs = multierr.Append(errs, validationf("línea %d: product_id requerido", i+1))
		}
		if in.CountedQuantity.IsNegative() {
			errs = multierr.Append(errs, validationf("línea %d: counted_quantity no puede ser negativo", i+1))
		}
		k := StockKey{ProductID: in.ProductID, LocationID: loc}
		if _, dup := seen[k]; dup {
			errs = multierr.Append(errs, validationf("línea %d: %s repetido en el ajuste", i+1, k))
		}
		seen[k] = struct{}{}
		a.Lines = append(a.Lines, AdjustmentLine{
			ID:              newLineID(),
			ProductID:       in.ProductID,
			LocationID:      loc,
			SystemQuantity:  in.SystemQuantity,
			CountedQuantity: in.CountedQuantity,
		})
	}
	if errs != nil {
		return nil, errs
	}
	return a, nil
}

func (a *Adjustment) Kind() DocumentKind      { return KindAdjustment }
func (a *Adjustment) Header() *DocumentHeader { return &a.DocumentHeader }
func (a *Adjustment) StatusName() string      { return string(a.Status) }
func (a *Adjustment) Warehouses() []string    { return []string{a.WarehouseID} }
func (a *Adjustment) IsTerminal() bool {
	return a.Status == AdjustmentApproved || a.Status == AdjustmentRejected
}

// AllowedTransitions transiciones válidas desde el estado actual.
func (a *Adjustment) AllowedTransitions() []Transition {
	switch a.Status {
	case AdjustmentDraft:
		return []Transition{TransitionApprove, TransitionReject}
	}
	return nil
}

// Clone copia profunda.
func (a *Adjustment) Clone() Document {
	c := *a
	c.DocumentHeader = a.cloneHeader()
	c.Lines = append([]AdjustmentLine(nil), a.Lines...)
	return &c
}

// Apply ejecuta la transición y devuelve los movimientos de stock que produce.
// Al aprobar, cada movimiento exige que el OnHand siga igual a la foto del sistema;
// si el stock cambió desde la creación el ejecutor responde con conflicto.
func (a *Adjustment) Apply(name Transition, in TransitionInput) ([]Movement, error) {
	from := string(a.Status)
	var movements []Movement
	switch {
	case name == TransitionApprove && a.Status == AdjustmentDraft:
		for _, line := range a.Lines {
			diff := line.Difference()
			if diff.IsZero() {
				continue
			}
			expect := line.SystemQuantity
			movements = append(movements, Movement{
				ProductID:    line.ProductID,
				LocationID:   line.LocationID,
				LedgerType:   LedgerAdjustment,
				OnHandDelta:  diff,
				ExpectOnHand: &expect,
			})
		}
		a.Status = AdjustmentApproved
		at := in.At
		a.ApprovedAt = &at
		a.ApprovedBy = in.Actor
	case name == TransitionReject && a.Status == AdjustmentDraft:
		a.Status = AdjustmentRejected
		at := in.At
		a.RejectedAt = &at
		a.RejectedBy = in.Actor
	default:
		return nil, invalidTransition(name, from)
	}
	a.record(name, from, string(a.Status), in.Actor, in.At)
	return movements, nil
}

// NetDifference suma de diferencias del ajuste.
func (a *Adjustment) NetDifference() decimal.Decimal {
	total := decimal.Zero
	for _, l := range a.Lines {
		total = total.Add(l.Difference())
	}
	return total
}
