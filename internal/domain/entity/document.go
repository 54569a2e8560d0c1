package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

// DocumentKind variante de documento de inventario.
type DocumentKind string

// Variantes de documento.
const (
	KindReceipt    DocumentKind = "receipt"
	KindDelivery   DocumentKind = "delivery"
	KindTransfer   DocumentKind = "transfer"
	KindAdjustment DocumentKind = "adjustment"
)

// IsValid informa si la variante existe.
func (k DocumentKind) IsValid() bool {
	switch k {
	case KindReceipt, KindDelivery, KindTransfer, KindAdjustment:
		return true
	}
	return false
}

// Prefix prefijo del consecutivo humano (RCP-2026-001).
func (k DocumentKind) Prefix() string {
	switch k {
	case KindReceipt:
		return "RCP"
	case KindDelivery:
		return "DEL"
	case KindTransfer:
		return "TRF"
	case KindAdjustment:
		return "ADJ"
	}
	return "DOC"
}

// Module nombre del módulo en la matriz de permisos.
func (k DocumentKind) Module() string {
	switch k {
	case KindReceipt:
		return "receipts"
	case KindDelivery:
		return "deliveries"
	case KindTransfer:
		return "transfers"
	case KindAdjustment:
		return "adjustments"
	}
	return ""
}

// Transition nombre de una transición de ciclo de vida.
type Transition string

// Transiciones conocidas (cada variante acepta un subconjunto).
const (
	TransitionConfirm      Transition = "confirm"
	TransitionValidate     Transition = "validate"
	TransitionStartPicking Transition = "start_picking"
	TransitionSavePicking  Transition = "save_picking"
	TransitionSavePacking  Transition = "save_packing"
	TransitionMarkReady    Transition = "mark_ready"
	TransitionShip         Transition = "ship"
	TransitionDeliver      Transition = "deliver"
	TransitionSchedule     Transition = "schedule"
	TransitionReceive      Transition = "receive"
	TransitionApprove      Transition = "approve"
	TransitionReject       Transition = "reject"
	TransitionCancel       Transition = "cancel"
)

// LineQuantity cantidad informada por el llamador para una línea. Quantity nil = valor por defecto de la transición.
type LineQuantity struct {
	LineID   string
	Quantity *decimal.Decimal
}

// TransitionInput carga útil de una transición.
type TransitionInput struct {
	Lines          []LineQuantity
	TrackingNumber string
	Actor          string
	At             time.Time
}

// StatusChange hito del ciclo de vida: quién ejecutó qué transición y cuándo.
type StatusChange struct {
	Transition Transition
	From       string
	To         string
	Actor      string
	At         time.Time
}

// DocumentHeader campos comunes a todas las variantes.
// WarehouseID es la bodega del documento (origen en traslados).
type DocumentHeader struct {
	ID          string
	Number      string
	WarehouseID string
	Notes       string
	Version     int64
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	History     []StatusChange
}

func (h *DocumentHeader) record(t Transition, from, to, actor string, at time.Time) {
	h.History = append(h.History, StatusChange{Transition: t, From: from, To: to, Actor: actor, At: at})
	h.UpdatedAt = at
}

func (h DocumentHeader) cloneHeader() DocumentHeader {
	c := h
	c.History = append([]StatusChange(nil), h.History...)
	return c
}

// Document contrato común de las cuatro variantes: tiene líneas, estado y transiciones
// que producen movimientos. Apply muta el receptor; el llamador trabaja sobre un Clone
// y solo persiste el resultado si el ejecutor de movimientos confirma.
type Document interface {
	Kind() DocumentKind
	Header() *DocumentHeader
	StatusName() string
	IsTerminal() bool
	Warehouses() []string
	AllowedTransitions() []Transition
	Apply(name Transition, in TransitionInput) ([]Movement, error)
	Clone() Document
}

// Ref referencia usada por el ejecutor y el kardex.
func Ref(d Document, actor string) DocumentRef {
	h := d.Header()
	return DocumentRef{ID: h.ID, Number: h.Number, Kind: d.Kind(), Actor: actor}
}

// DocumentFilter filtros para listar documentos.
type DocumentFilter struct {
	Kind        DocumentKind
	Status      string
	WarehouseID string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

func invalidTransition(name Transition, status string) error {
	return fmt.Errorf("%w: %q desde %q", domain.ErrInvalidTransition, name, status)
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, fmt.Sprintf(format, args...))
}

func newLineID() string {
	return uuid.New().String()
}

// resolveLineQuantities valida la carga útil contra los IDs de línea del documento.
// Acumula todos los problemas (línea desconocida, duplicada, cantidad negativa) en un solo error.
func resolveLineQuantities(lineIDs []string, in []LineQuantity, requireQty bool) (map[string]*decimal.Decimal, error) {
	known := make(map[string]struct{}, len(lineIDs))
	for _, id := range lineIDs {
		known[id] = struct{}{}
	}
	out := make(map[string]*decimal.Decimal, len(in))
	var errs error
	for _, lq := range in {
		if _, ok := known[lq.LineID]; !ok {
			errs = multierr.Append(errs, validationf("línea %q no pertenece al documento", lq.LineID))
			continue
		}
		if _, dup := out[lq.LineID]; dup {
			errs = multierr.Append(errs, validationf("línea %q repetida", lq.LineID))
			continue
		}
		if lq.Quantity == nil {
			if requireQty {
				errs = multierr.Append(errs, validationf("línea %q: cantidad requerida", lq.LineID))
			}
			out[lq.LineID] = nil
			continue
		}
		if lq.Quantity.IsNegative() {
			errs = multierr.Append(errs, validationf("línea %q: cantidad negativa", lq.LineID))
			continue
		}
		q := *lq.Quantity
		out[lq.LineID] = &q
	}
	if errs != nil {
		return nil, errs
	}
	return out, nil
}

func locationOr(locationID, warehouseID string) string {
	if locationID != "" {
		return locationID
	}
	return warehouseID
}

func validateHeader(h DocumentHeader) error {
	var errs error
	if h.ID == "" {
		errs = multierr.Append(errs, validationf("id requerido"))
	}
	if h.Number == "" {
		errs = multierr.Append(errs, validationf("número de documento requerido"))
	}
	if h.WarehouseID == "" {
		errs = multierr.Append(errs, validationf("warehouse_id requerido"))
	}
	return errs
}
