package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// CreateDocumentRequest body para POST /api/{receipts|deliveries|transfers|adjustments}.
// Los campos que no aplican a la variante se ignoran.
type CreateDocumentRequest struct {
	WarehouseID            string              `json:"warehouse_id" validate:"required,max=64"`
	DestinationWarehouseID string              `json:"destination_warehouse_id,omitempty" validate:"omitempty,max=64"`
	Notes                  string              `json:"notes,omitempty" validate:"max=1000"`
	SupplierName           string              `json:"supplier_name,omitempty" validate:"max=200"`
	CustomerName           string              `json:"customer_name,omitempty" validate:"max=200"`
	Reason                 string              `json:"reason,omitempty" validate:"omitempty,oneof=cycle_count damage loss found correction other"`
	ExpectedDate           *time.Time          `json:"expected_date,omitempty"`
	ScheduledDate          *time.Time          `json:"scheduled_date,omitempty"`
	Lines                  []CreateLineRequest `json:"lines" validate:"required,min=1,max=500,dive"`
}

// CreateLineRequest línea de creación. Quantity es lo esperado, pedido o solicitado según la variante;
// en ajustes se usa CountedQuantity.
type CreateLineRequest struct {
	ProductID             string           `json:"product_id" validate:"required,max=64"`
	LocationID            string           `json:"location_id,omitempty" validate:"max=64"`
	DestinationLocationID string           `json:"destination_location_id,omitempty" validate:"max=64"`
	Quantity              decimal.Decimal  `json:"quantity"`
	CountedQuantity       *decimal.Decimal `json:"counted_quantity,omitempty"`
}

// TransitionRequest body para POST /api/{modulo}/:id/:transition.
// ExpectedVersion, si viene, debe coincidir con la versión actual del documento.
type TransitionRequest struct {
	ExpectedVersion *int64                  `json:"expected_version,omitempty"`
	TrackingNumber  string                  `json:"tracking_number,omitempty" validate:"max=100"`
	Lines           []TransitionLineRequest `json:"lines,omitempty" validate:"max=500,dive"`
}

// TransitionLineRequest cantidad por línea; Quantity nil toma el valor por defecto de la transición.
type TransitionLineRequest struct {
	LineID   string           `json:"line_id" validate:"required"`
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
}

// ListDocumentsRequest filtros de listado. Fechas en RFC3339.
type ListDocumentsRequest struct {
	PageRequest
	Status      string `query:"status" validate:"max=32"`
	WarehouseID string `query:"warehouse_id" validate:"max=64"`
	From        string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To          string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// DocumentLineResponse línea de documento; solo se llenan las cantidades de la variante.
type DocumentLineResponse struct {
	ID                    string           `json:"id"`
	ProductID             string           `json:"product_id"`
	LocationID            string           `json:"location_id"`
	DestinationLocationID string           `json:"destination_location_id,omitempty"`
	ExpectedQuantity      *decimal.Decimal `json:"expected_quantity,omitempty"`
	ReceivedQuantity      *decimal.Decimal `json:"received_quantity,omitempty"`
	Shortfall             *decimal.Decimal `json:"shortfall,omitempty"`
	OrderedQty            *decimal.Decimal `json:"ordered_qty,omitempty"`
	PickedQty             *decimal.Decimal `json:"picked_qty,omitempty"`
	PackedQty             *decimal.Decimal `json:"packed_qty,omitempty"`
	ShippedQty            *decimal.Decimal `json:"shipped_qty,omitempty"`
	RequestedQty          *decimal.Decimal `json:"requested_qty,omitempty"`
	ReceivedQty           *decimal.Decimal `json:"received_qty,omitempty"`
	InTransitLoss         *decimal.Decimal `json:"in_transit_loss,omitempty"`
	SystemQuantity        *decimal.Decimal `json:"system_quantity,omitempty"`
	CountedQuantity       *decimal.Decimal `json:"counted_quantity,omitempty"`
	Difference            *decimal.Decimal `json:"difference,omitempty"`
}

// StatusChangeResponse hito del ciclo de vida.
type StatusChangeResponse struct {
	Transition string    `json:"transition"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	Actor      string    `json:"actor"`
	At         time.Time `json:"at"`
}

// DocumentResponse salida común de las cuatro variantes.
type DocumentResponse struct {
	ID                     string                 `json:"id"`
	Number                 string                 `json:"number"`
	Kind                   string                 `json:"kind"`
	Status                 string                 `json:"status"`
	Version                int64                  `json:"version"`
	WarehouseID            string                 `json:"warehouse_id"`
	DestinationWarehouseID string                 `json:"destination_warehouse_id,omitempty"`
	Notes                  string                 `json:"notes,omitempty"`
	SupplierName           string                 `json:"supplier_name,omitempty"`
	CustomerName           string                 `json:"customer_name,omitempty"`
	TrackingNumber         string                 `json:"tracking_number,omitempty"`
	Reason                 string                 `json:"reason,omitempty"`
	ExpectedDate           *time.Time             `json:"expected_date,omitempty"`
	ScheduledDate          *time.Time             `json:"scheduled_date,omitempty"`
	ReceivedDate           *time.Time             `json:"received_date,omitempty"`
	ShippedDate            *time.Time             `json:"shipped_date,omitempty"`
	DeliveredDate          *time.Time             `json:"delivered_date,omitempty"`
	ValidatedBy            string                 `json:"validated_by,omitempty"`
	ApprovedBy             string                 `json:"approved_by,omitempty"`
	ApprovedAt             *time.Time             `json:"approved_at,omitempty"`
	RejectedBy             string                 `json:"rejected_by,omitempty"`
	RejectedAt             *time.Time             `json:"rejected_at,omitempty"`
	CreatedBy              string                 `json:"created_by"`
	CreatedAt              time.Time              `json:"created_at"`
	UpdatedAt              time.Time              `json:"updated_at"`
	AllowedTransitions     []string               `json:"allowed_transitions"`
	Lines                  []DocumentLineResponse `json:"lines"`
	History                []StatusChangeResponse `json:"history"`
}

// DocumentListResponse lista paginada de documentos.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

func ptr(v decimal.Decimal) *decimal.Decimal { return &v }

// ToDocumentResponse mapea cualquier variante de documento.
func ToDocumentResponse(doc entity.Document) DocumentResponse {
	h := doc.Header()
	out := DocumentResponse{
		ID:                 h.ID,
		Number:             h.Number,
		Kind:               string(doc.Kind()),
		Status:             doc.StatusName(),
		Version:            h.Version,
		WarehouseID:        h.WarehouseID,
		Notes:              h.Notes,
		CreatedBy:          h.CreatedBy,
		CreatedAt:          h.CreatedAt,
		UpdatedAt:          h.UpdatedAt,
		AllowedTransitions: make([]string, 0),
		Lines:              make([]DocumentLineResponse, 0),
		History:            make([]StatusChangeResponse, 0, len(h.History)),
	}
	for _, t := range doc.AllowedTransitions() {
		out.AllowedTransitions = append(out.AllowedTransitions, string(t))
	}
	for _, c := range h.History {
		out.History = append(out.History, StatusChangeResponse{
			Transition: string(c.Transition), From: c.From, To: c.To, Actor: c.Actor, At: c.At,
		})
	}

	switch d := doc.(type) {
	case *entity.Receipt:
		out.SupplierName = d.SupplierName
		out.ExpectedDate = d.ExpectedDate
		out.ReceivedDate = d.ReceivedDate
		out.ValidatedBy = d.ValidatedBy
		for _, l := range d.Lines {
			out.Lines = append(out.Lines, DocumentLineResponse{
				ID: l.ID, ProductID: l.ProductID, LocationID: l.LocationID,
				ExpectedQuantity: ptr(l.ExpectedQuantity),
				ReceivedQuantity: ptr(l.ReceivedQuantity),
				Shortfall:        ptr(l.Shortfall()),
			})
		}
	case *entity.Delivery:
		out.CustomerName = d.CustomerName
		out.ScheduledDate = d.ScheduledDate
		out.ShippedDate = d.ShippedDate
		out.DeliveredDate = d.DeliveredDate
		out.TrackingNumber = d.TrackingNumber
		for _, l := range d.Lines {
			out.Lines = append(out.Lines, DocumentLineResponse{
				ID: l.ID, ProductID: l.ProductID, LocationID: l.LocationID,
				OrderedQty: ptr(l.OrderedQty),
				PickedQty:  ptr(l.PickedQty),
				PackedQty:  ptr(l.PackedQty),
				ShippedQty: ptr(l.ShippedQty),
			})
		}
	case *entity.Transfer:
		out.DestinationWarehouseID = d.DestinationWarehouseID
		out.ScheduledDate = d.ScheduledDate
		out.ShippedDate = d.ShippedDate
		out.ReceivedDate = d.ReceivedDate
		for _, l := range d.Lines {
			line := DocumentLineResponse{
				ID: l.ID, ProductID: l.ProductID,
				LocationID:            l.SourceLocationID,
				DestinationLocationID: l.DestinationLocationID,
				RequestedQty:          ptr(l.RequestedQty),
				ShippedQty:            ptr(l.ShippedQty),
				ReceivedQty:           ptr(l.ReceivedQty),
			}
			if d.Status == entity.TransferCompleted {
				line.InTransitLoss = ptr(l.InTransitLoss())
			}
			out.Lines = append(out.Lines, line)
		}
	case *entity.Adjustment:
		out.Reason = string(d.Reason)
		out.ApprovedBy = d.ApprovedBy
		out.ApprovedAt = d.ApprovedAt
		out.RejectedBy = d.RejectedBy
		out.RejectedAt = d.RejectedAt
		for _, l := range d.Lines {
			out.Lines = append(out.Lines, DocumentLineResponse{
				ID: l.ID, ProductID: l.ProductID, LocationID: l.LocationID,
				SystemQuantity:  ptr(l.SystemQuantity),
				CountedQuantity: ptr(l.CountedQuantity),
				Difference:      ptr(l.Difference()),
			})
		}
	}
	return out
}
