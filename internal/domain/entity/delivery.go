package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// DeliveryStatus estados de un despacho a cliente.
type DeliveryStatus string

const (
	DeliveryDraft     DeliveryStatus = "draft"
	DeliveryPicking   DeliveryStatus = "picking"
	DeliveryPacking   DeliveryStatus = "packing"
	DeliveryReady     DeliveryStatus = "ready"
	DeliveryShipped   DeliveryStatus = "shipped"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryCancelled DeliveryStatus = "cancelled"
)

// DeliveryLine línea de despacho. Se cumple siempre shipped ≤ packed ≤ picked ≤ ordered.
// PickedQty es lo que está reservado en stock mientras el despacho siga abierto.
type DeliveryLine struct {
	ID         string
	ProductID  string
	LocationID string
	OrderedQty decimal.Decimal
	PickedQty  decimal.Decimal
	PackedQty  decimal.Decimal
	ShippedQty decimal.Decimal
}

// Unshipped pedido que no salió (para reportes de backorder).
func (l DeliveryLine) Unshipped() decimal.Decimal {
	return l.OrderedQty.Sub(l.ShippedQty)
}

// DeliveryLineInput datos para crear una línea.
type DeliveryLineInput struct {
	ProductID  string
	LocationID string
	OrderedQty decimal.Decimal
}

// Delivery documento de despacho (bodega → cliente).
type Delivery struct {
	DocumentHeader
	Status         DeliveryStatus
	CustomerName   string
	ScheduledDate  *time.Time
	ShippedDate    *time.Time
	DeliveredDate  *time.Time
	TrackingNumber string
	Lines          []DeliveryLine
}

var _ Document = (*Delivery)(nil)

// NewDelivery crea el despacho en estado draft.
func NewDelivery(h DocumentHeader, customerName string, scheduledDate *time.Time, lines []DeliveryLineInput) (*Delivery, error) {
	errs := validateHeader(h)
	if len(lines) == 0 {
		errs = multierr.Append(errs, validationf("se requiere al menos una línea"))
	}
	d := &Delivery{
		DocumentHeader: h,
		Status:         DeliveryDraft,
		CustomerName:   customerName,
		ScheduledDate:  scheduledDate,
		Lines:          make([]DeliveryLine, 0, len(lines)),
	}
	for i, in := range lines {
		if in.ProductID == "" {
			errs = multierr.Append(errs, validationf("línea %d: product_id requerido", i+1))
		}
		if !in.OrderedQty.IsPositive() {
			errs = multierr.Append(errs, validationf("línea %d: ordered_qty debe ser mayor que 0", i+1))
		}
		d.Lines = append(d.Lines, DeliveryLine{
			ID:         newLineID(),
			ProductID:  in.ProductID,
			LocationID: locationOr(in.LocationID, h.WarehouseID),
			OrderedQty: in.OrderedQty,
			PickedQty:  decimal.Zero,
			PackedQty:  decimal.Zero,
			ShippedQty: decimal.Zero,
		})
	}
	if errs != nil {
		return nil, errs
	}
	return d, nil
}

func (d *Delivery) Kind() DocumentKind      { return KindDelivery }
func (d *Delivery) Header() *DocumentHeader { return &d.DocumentHeader }
func (d *Delivery) StatusName() string      { return string(d.Status) }
func (d *Delivery) Warehouses() []string    { return []string{d.WarehouseID} }
func (d *Delivery) IsTerminal() bool {
	return d.Status == DeliveryDelivered || d.Status == DeliveryCancelled
}

// AllowedTransitions transiciones válidas desde el estado actual.
func (d *Delivery) AllowedTransitions() []Transition {
	switch d.Status {
	case DeliveryDraft:
		return []Transition{TransitionStartPicking, TransitionCancel}
	case DeliveryPicking:
		return []Transition{TransitionSavePicking, TransitionSavePacking, TransitionCancel}
	case DeliveryPacking:
		return []Transition{TransitionSavePacking, TransitionMarkReady, TransitionCancel}
	case DeliveryReady:
		return []Transition{TransitionShip, TransitionCancel}
	case DeliveryShipped:
		return []Transition{TransitionDeliver}
	}
	return nil
}

// Clone copia profunda.
func (d *Delivery) Clone() Document {
	c := *d
	c.DocumentHeader = d.cloneHeader()
	c.Lines = append([]DeliveryLine(nil), d.Lines...)
	return &c
}

func (d *Delivery) lineIDs() []string {
	ids := make([]string, len(d.Lines))
	for i, l := range d.Lines {
		ids[i] = l.ID
	}
	return ids
}

// Apply ejecuta la transición y devuelve los movimientos de stock que produce.
func (d *Delivery) Apply(name Transition, in TransitionInput) ([]Movement, error) {
	from := string(d.Status)
	var (
		movements []Movement
		err       error
	)
	switch {
	case name == TransitionStartPicking && d.Status == DeliveryDraft:
		d.Status = DeliveryPicking
	case name == TransitionSavePicking && d.Status == DeliveryPicking:
		if movements, err = d.savePicking(in); err != nil {
			return nil, err
		}
	case name == TransitionSavePacking && (d.Status == DeliveryPicking || d.Status == DeliveryPacking):
		if err = d.savePacking(in); err != nil {
			return nil, err
		}
		d.Status = DeliveryPacking
	case name == TransitionMarkReady && d.Status == DeliveryPacking:
		if !d.hasPacked() {
			return nil, validationf("no hay líneas empacadas")
		}
		d.Status = DeliveryReady
	case name == TransitionShip && d.Status == DeliveryReady:
		movements = d.ship()
		d.Status = DeliveryShipped
		if in.TrackingNumber != "" {
			d.TrackingNumber = in.TrackingNumber
		}
		at := in.At
		d.ShippedDate = &at
	case name == TransitionDeliver && d.Status == DeliveryShipped:
		d.Status = DeliveryDelivered
		at := in.At
		d.DeliveredDate = &at
	case name == TransitionCancel && !d.IsTerminal() && d.Status != DeliveryShipped:
		movements = d.releaseReservations()
		d.Status = DeliveryCancelled
	default:
		return nil, invalidTransition(name, from)
	}
	d.record(name, from, string(d.Status), in.Actor, in.At)
	return movements, nil
}

// savePicking fija PickedQty. Solo puede crecer y nunca supera lo pedido; el incremento se reserva.
func (d *Delivery) savePicking(in TransitionInput) ([]Movement, error) {
	qty, err := resolveLineQuantities(d.lineIDs(), in.Lines, true)
	if err != nil {
		return nil, err
	}
	var errs error
	var movements []Movement
	for i := range d.Lines {
		line := &d.Lines[i]
		q, ok := qty[line.ID]
		if !ok {
			continue
		}
		switch {
		case q.GreaterThan(line.OrderedQty):
			errs = multierr.Append(errs, validationf("línea %q: picked %s supera lo pedido %s", line.ID, q, line.OrderedQty))
			continue
		case q.LessThan(line.PickedQty):
			errs = multierr.Append(errs, validationf("línea %q: picked no puede disminuir (%s → %s)", line.ID, line.PickedQty, q))
			continue
		}
		inc := q.Sub(line.PickedQty)
		line.PickedQty = *q
		if inc.IsZero() {
			continue
		}
		movements = append(movements, Movement{
			ProductID:     line.ProductID,
			LocationID:    line.LocationID,
			LedgerType:    LedgerDelivery,
			OnHandDelta:   decimal.Zero,
			ReservedDelta: inc,
		})
	}
	if errs != nil {
		return nil, errs
	}
	return movements, nil
}

// savePacking fija PackedQty (monótono, ≤ picked). No toca stock.
func (d *Delivery) savePacking(in TransitionInput) error {
	qty, err := resolveLineQuantities(d.lineIDs(), in.Lines, true)
	if err != nil {
		return err
	}
	var errs error
	for i := range d.Lines {
		line := &d.Lines[i]
		q, ok := qty[line.ID]
		if !ok {
			continue
		}
		switch {
		case q.GreaterThan(line.PickedQty):
			errs = multierr.Append(errs, validationf("línea %q: packed %s supera lo alistado %s", line.ID, q, line.PickedQty))
			continue
		case q.LessThan(line.PackedQty):
			errs = multierr.Append(errs, validationf("línea %q: packed no puede disminuir (%s → %s)", line.ID, line.PackedQty, q))
			continue
		}
		line.PackedQty = *q
	}
	return errs
}

func (d *Delivery) hasPacked() bool {
	for _, l := range d.Lines {
		if l.PackedQty.IsPositive() {
			return true
		}
	}
	return false
}

// ship saca lo empacado de bodega y libera toda la reserva de la línea.
// Lo alistado que no se empacó vuelve a quedar disponible.
func (d *Delivery) ship() []Movement {
	movements := make([]Movement, 0, len(d.Lines))
	for i := range d.Lines {
		line := &d.Lines[i]
		line.ShippedQty = line.PackedQty
		if line.PackedQty.IsZero() && line.PickedQty.IsZero() {
			continue
		}
		movements = append(movements, Movement{
			ProductID:     line.ProductID,
			LocationID:    line.LocationID,
			LedgerType:    LedgerDelivery,
			OnHandDelta:   line.PackedQty.Neg(),
			ReservedDelta: line.PickedQty.Neg(),
		})
	}
	return movements
}

func (d *Delivery) releaseReservations() []Movement {
	var movements []Movement
	for _, line := range d.Lines {
		if line.PickedQty.IsZero() {
			continue
		}
		movements = append(movements, Movement{
			ProductID:     line.ProductID,
			LocationID:    line.LocationID,
			LedgerType:    LedgerDelivery,
			OnHandDelta:   decimal.Zero,
			ReservedDelta: line.PickedQty.Neg(),
		})
	}
	return movements
}

// HoldsReservation informa si el despacho mantiene reservado lo alistado (picking, packing o ready).
func (d *Delivery) HoldsReservation() bool {
	return d.Status == DeliveryPicking || d.Status == DeliveryPacking || d.Status == DeliveryReady
}

// OpenReservation cantidad que este despacho mantiene reservada en la clave dada.
func (d *Delivery) OpenReservation(key StockKey) decimal.Decimal {
	if !d.HoldsReservation() {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, l := range d.Lines {
		if l.ProductID == key.ProductID && l.LocationID == key.LocationID {
			total = total.Add(l.PickedQty)
		}
	}
	return total
}
