package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// ReceiptStatus estados de una entrada de mercancía.
type ReceiptStatus string

const (
	ReceiptDraft     ReceiptStatus = "draft"
	ReceiptPending   ReceiptStatus = "pending"
	ReceiptDone      ReceiptStatus = "done"
	ReceiptCancelled ReceiptStatus = "cancelled"
)

// ReceiptLine línea de entrada. ReceivedQuantity queda en 0 hasta validar.
type ReceiptLine struct {
	ID               string
	ProductID        string
	LocationID       string
	ExpectedQuantity decimal.Decimal
	ReceivedQuantity decimal.Decimal
}

// Shortfall faltante frente a lo esperado (recepción parcial); nunca negativo.
func (l ReceiptLine) Shortfall() decimal.Decimal {
	d := l.ExpectedQuantity.Sub(l.ReceivedQuantity)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ReceiptLineInput datos para crear una línea.
type ReceiptLineInput struct {
	ProductID        string
	LocationID       string
	ExpectedQuantity decimal.Decimal
}

// Receipt documento de entrada (proveedor → bodega).
type Receipt struct {
	DocumentHeader
	Status       ReceiptStatus
	SupplierName string
	ExpectedDate *time.Time
	ReceivedDate *time.Time
	ValidatedBy  string
	Lines        []ReceiptLine
}

var _ Document = (*Receipt)(nil)

// NewReceipt crea la entrada en estado draft.
func NewReceipt(h DocumentHeader, supplierName string, expectedDate *time.Time, lines []ReceiptLineInput) (*Receipt, error) {
	errs := validateHeader(h)
	if len(lines) == 0 {
		errs = multierr.Append(errs, validationf("se requiere al menos una línea"))
	}
	r := &Receipt{
		DocumentHeader: h,
		Status:         ReceiptDraft,
		SupplierName:   supplierName,
		ExpectedDate:   expectedDate,
		Lines:          make([]ReceiptLine, 0, len(lines)),
	}
	for i, in := range lines {
		if in.ProductID == "" {
			errs = multierr.Append(errs, validationf("línea %d: product_id requerido", i+1))
		}
		if !in.ExpectedQuantity.IsPositive() {
			errs = multierr.Append(errs, validationf("línea %d: expected_quantity debe ser mayor que 0", i+1))
		}
		r.Lines = append(r.Lines, ReceiptLine{
			ID:               newLineID(),
			ProductID:        in.ProductID,
			LocationID:       locationOr(in.LocationID, h.WarehouseID),
			ExpectedQuantity: in.ExpectedQuantity,
			ReceivedQuantity: decimal.Zero,
		})
	}
	if errs != nil {
		return nil, errs
	}
	return r, nil
}

func (r *Receipt) Kind() DocumentKind      { return KindReceipt }
func (r *Receipt) Header() *DocumentHeader { return &r.DocumentHeader }
func (r *Receipt) StatusName() string      { return string(r.Status) }
func (r *Receipt) Warehouses() []string    { return []string{r.WarehouseID} }
func (r *Receipt) IsTerminal() bool {
	return r.Status == ReceiptDone || r.Status == ReceiptCancelled
}

// AllowedTransitions transiciones válidas desde el estado actual.
func (r *Receipt) AllowedTransitions() []Transition {
	switch r.Status {
	case ReceiptDraft:
		return []Transition{TransitionConfirm, TransitionValidate, TransitionCancel}
	case ReceiptPending:
		return []Transition{TransitionValidate, TransitionCancel}
	}
	return nil
}

// Clone copia profunda.
func (r *Receipt) Clone() Document {
	c := *r
	c.DocumentHeader = r.cloneHeader()
	c.Lines = append([]ReceiptLine(nil), r.Lines...)
	return &c
}

// Apply ejecuta la transición y devuelve los movimientos de stock que produce.
func (r *Receipt) Apply(name Transition, in TransitionInput) ([]Movement, error) {
	from := string(r.Status)
	var movements []Movement
	switch {
	case name == TransitionConfirm && r.Status == ReceiptDraft:
		r.Status = ReceiptPending
	case name == TransitionValidate && (r.Status == ReceiptDraft || r.Status == ReceiptPending):
		m, err := r.validate(in)
		if err != nil {
			return nil, err
		}
		movements = m
		r.Status = ReceiptDone
		at := in.At
		r.ReceivedDate = &at
		r.ValidatedBy = in.Actor
	case name == TransitionCancel && (r.Status == ReceiptDraft || r.Status == ReceiptPending):
		r.Status = ReceiptCancelled
	default:
		return nil, invalidTransition(name, from)
	}
	r.record(name, from, string(r.Status), in.Actor, in.At)
	return movements, nil
}

// validate fija ReceivedQuantity (por defecto = esperado) y arma un movimiento +recibido por línea.
// Una línea recibida en 0 no genera movimiento: el faltante queda visible en Shortfall.
func (r *Receipt) validate(in TransitionInput) ([]Movement, error) {
	ids := make([]string, len(r.Lines))
	for i, l := range r.Lines {
		ids[i] = l.ID
	}
	qty, err := resolveLineQuantities(ids, in.Lines, false)
	if err != nil {
		return nil, err
	}
	movements := make([]Movement, 0, len(r.Lines))
	for i := range r.Lines {
		line := &r.Lines[i]
		received := line.ExpectedQuantity
		if q := qty[line.ID]; q != nil {
			received = *q
		}
		line.ReceivedQuantity = received
		if received.IsZero() {
			continue
		}
		movements = append(movements, Movement{
			ProductID:   line.ProductID,
			LocationID:  line.LocationID,
			LedgerType:  LedgerReceipt,
			OnHandDelta: received,
		})
	}
	return movements, nil
}
