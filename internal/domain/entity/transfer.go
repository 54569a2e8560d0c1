package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// TransferStatus estados de un traslado entre bodegas.
type TransferStatus string

const (
	TransferDraft     TransferStatus = "draft"
	TransferScheduled TransferStatus = "scheduled"
	TransferInTransit TransferStatus = "in_transit"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// TransferLine línea de traslado: received ≤ shipped ≤ requested.
type TransferLine struct {
	ID                    string
	ProductID             string
	SourceLocationID      string
	DestinationLocationID string
	RequestedQty          decimal.Decimal
	ShippedQty            decimal.Decimal
	ReceivedQty           decimal.Decimal
}

// InTransitLoss diferencia despachado - recibido. Solo tiene sentido con el traslado completado.
func (l TransferLine) InTransitLoss() decimal.Decimal {
	return l.ShippedQty.Sub(l.ReceivedQty)
}

// TransferLineInput datos para crear una línea.
type TransferLineInput struct {
	ProductID             string
	SourceLocationID      string
	DestinationLocationID string
	RequestedQty          decimal.Decimal
}

// Transfer documento de traslado. WarehouseID del encabezado es la bodega origen.
type Transfer struct {
	DocumentHeader
	DestinationWarehouseID string
	Status                 TransferStatus
	ScheduledDate          *time.Time
	ShippedDate            *time.Time
	ReceivedDate           *time.Time
	Lines                  []TransferLine
}

var _ Document = (*Transfer)(nil)

// NewTransfer crea el traslado en estado draft.
func NewTransfer(h DocumentHeader, destinationWarehouseID string, scheduledDate *time.Time, lines []TransferLineInput) (*Transfer, error) {
	errs := validateHeader(h)
	if destinationWarehouseID == "" {
		errs = multierr.Append(errs, validationf("destination_warehouse_id requerido"))
	}
	if len(lines) == 0 {
		errs = multierr.Append(errs, validationf("se requiere al menos una línea"))
	}
	t := &Transfer{
		DocumentHeader:         h,
		DestinationWarehouseID: destinationWarehouseID,
		Status:                 TransferDraft,
		ScheduledDate:          scheduledDate,
		Lines:                  make([]TransferLine, 0, len(lines)),
	}
	for i, in := range lines {
		src := locationOr(in.SourceLocationID, h.WarehouseID)
		dst := locationOr(in.DestinationLocationID, destinationWarehouseID)
		if in.ProductID == "" {
			errs = multierr.Append(errs, validationf("línea %d: product_id requerido", i+1))
		}
		if !in.RequestedQty.IsPositive() {
			errs = multierr.Append(errs, validationf("línea %d: requested_qty debe ser mayor que 0", i+1))
		}
		if src == dst {
			errs = multierr.Append(errs, validationf("línea %d: origen y destino no pueden ser la misma ubicación", i+1))
		}
		t.Lines = append(t.Lines, TransferLine{
			ID:                    newLineID(),
			ProductID:             in.ProductID,
			SourceLocationID:      src,
			DestinationLocationID: dst,
			RequestedQty:          in.RequestedQty,
			ShippedQty:            decimal.Zero,
			ReceivedQty:           decimal.Zero,
		})
	}
	if errs != nil {
		return nil, errs
	}
	return t, nil
}

func (t *Transfer) Kind() DocumentKind      { return KindTransfer }
func (t *Transfer) Header() *DocumentHeader { return &t.DocumentHeader }
func (t *Transfer) StatusName() string      { return string(t.Status) }
func (t *Transfer) Warehouses() []string    { return []string{t.WarehouseID, t.DestinationWarehouseID} }
func (t *Transfer) IsTerminal() bool {
	return t.Status == TransferCompleted || t.Status == TransferCancelled
}

// AllowedTransitions transiciones válidas desde el estado actual.
func (t *Transfer) AllowedTransitions() []Transition {
	switch t.Status {
	case TransferDraft:
		return []Transition{TransitionSchedule, TransitionShip, TransitionCancel}
	case TransferScheduled:
		return []Transition{TransitionShip, TransitionCancel}
	case TransferInTransit:
		return []Transition{TransitionReceive}
	}
	return nil
}

// Clone copia profunda.
func (t *Transfer) Clone() Document {
	c := *t
	c.DocumentHeader = t.cloneHeader()
	c.Lines = append([]TransferLine(nil), t.Lines...)
	return &c
}

func (t *Transfer) lineIDs() []string {
	ids := make([]string, len(t.Lines))
	for i, l := range t.Lines {
		ids[i] = l.ID
	}
	return ids
}

// Apply ejecuta la transición y devuelve los movimientos de stock que produce.
// Un traslado en tránsito ya no se puede cancelar: la mercancía salió del origen.
func (t *Transfer) Apply(name Transition, in TransitionInput) ([]Movement, error) {
	from := string(t.Status)
	var (
		movements []Movement
		err       error
	)
	switch {
	case name == TransitionSchedule && t.Status == TransferDraft:
		t.Status = TransferScheduled
	case name == TransitionShip && (t.Status == TransferDraft || t.Status == TransferScheduled):
		if movements, err = t.ship(in); err != nil {
			return nil, err
		}
		t.Status = TransferInTransit
		at := in.At
		t.ShippedDate = &at
	case name == TransitionReceive && t.Status == TransferInTransit:
		if movements, err = t.receive(in); err != nil {
			return nil, err
		}
		t.Status = TransferCompleted
		at := in.At
		t.ReceivedDate = &at
	case name == TransitionCancel && (t.Status == TransferDraft || t.Status == TransferScheduled):
		t.Status = TransferCancelled
	default:
		return nil, invalidTransition(name, from)
	}
	t.record(name, from, string(t.Status), in.Actor, in.At)
	return movements, nil
}

// ship descuenta lo despachado en origen. Por defecto se despacha lo solicitado.
func (t *Transfer) ship(in TransitionInput) ([]Movement, error) {
	qty, err := resolveLineQuantities(t.lineIDs(), in.Lines, false)
	if err != nil {
		return nil, err
	}
	var errs error
	movements := make([]Movement, 0, len(t.Lines))
	for i := range t.Lines {
		line := &t.Lines[i]
		shipped := line.RequestedQty
		if q := qty[line.ID]; q != nil {
			shipped = *q
		}
		if shipped.GreaterThan(line.RequestedQty) {
			errs = multierr.Append(errs, validationf("línea %q: shipped %s supera lo solicitado %s", line.ID, shipped, line.RequestedQty))
			continue
		}
		line.ShippedQty = shipped
		if shipped.IsZero() {
			continue
		}
		movements = append(movements, Movement{
			ProductID:   line.ProductID,
			LocationID:  line.SourceLocationID,
			LedgerType:  LedgerTransferOut,
			OnHandDelta: shipped.Neg(),
		})
	}
	if errs != nil {
		return nil, errs
	}
	if len(movements) == 0 {
		return nil, validationf("nada que despachar")
	}
	return movements, nil
}

// receive acredita en destino lo recibido. Por defecto se recibe lo despachado.
func (t *Transfer) receive(in TransitionInput) ([]Movement, error) {
	qty, err := resolveLineQuantities(t.lineIDs(), in.Lines, false)
	if err != nil {
		return nil, err
	}
	var errs error
	movements := make([]Movement, 0, len(t.Lines))
	for i := range t.Lines {
		line := &t.Lines[i]
		received := line.ShippedQty
		if q := qty[line.ID]; q != nil {
			received = *q
		}
		if received.GreaterThan(line.ShippedQty) {
			errs = multierr.Append(errs, validationf("línea %q: received %s supera lo despachado %s", line.ID, received, line.ShippedQty))
			continue
		}
		line.ReceivedQty = received
		if received.IsZero() {
			continue
		}
		movements = append(movements, Movement{
			ProductID:   line.ProductID,
			LocationID:  line.DestinationLocationID,
			LedgerType:  LedgerTransferIn,
			OnHandDelta: received,
		})
	}
	if errs != nil {
		return nil, errs
	}
	return movements, nil
}

// TotalInTransitLoss suma de pérdidas en tránsito de todas las líneas.
func (t *Transfer) TotalInTransitLoss() decimal.Decimal {
	if t.Status != TransferCompleted {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, l := range t.Lines {
		total = total.Add(l.InTransitLoss())
	}
	return total
}
