package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockPositionResponse posición de un producto en una ubicación.
type StockPositionResponse struct {
	ProductID  string          `json:"product_id"`
	LocationID string          `json:"location_id"`
	OnHand     decimal.Decimal `json:"on_hand"`
	Reserved   decimal.Decimal `json:"reserved"`
	Available  decimal.Decimal `json:"available"`
	UpdatedAt  *time.Time      `json:"updated_at,omitempty"`
}

// ToStockPositionResponse mapea la posición; UpdatedAt se omite en pares sin movimientos.
func ToStockPositionResponse(s *entity.Stock) StockPositionResponse {
	out := StockPositionResponse{
		ProductID:  s.ProductID,
		LocationID: s.LocationID,
		OnHand:     s.OnHand,
		Reserved:   s.Reserved,
		Available:  s.Available(),
	}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// LedgerQueryRequest filtros de GET /api/ledger. Fechas en RFC3339.
type LedgerQueryRequest struct {
	ProductID    string `query:"product_id"`
	LocationID   string `query:"location_id"`
	DocumentType string `query:"document_type" validate:"omitempty,oneof=receipt delivery transfer_in transfer_out adjustment"`
	DocumentID   string `query:"document_id"`
	From         string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To           string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Limit        int    `query:"limit" validate:"min=0,max=1000"`
}

// LedgerEntryResponse asiento del kardex.
type LedgerEntryResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	LocationID     string          `json:"location_id"`
	DocumentType   string          `json:"document_type"`
	DocumentID     string          `json:"document_id"`
	DocumentNumber string          `json:"document_number"`
	QuantityDelta  decimal.Decimal `json:"quantity_delta"`
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	CreatedAt      time.Time       `json:"created_at"`
	CreatedBy      string          `json:"created_by"`
}

// ToLedgerEntryResponse mapea el asiento.
func ToLedgerEntryResponse(e *entity.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:             e.ID,
		ProductID:      e.ProductID,
		LocationID:     e.LocationID,
		DocumentType:   string(e.DocumentType),
		DocumentID:     e.DocumentID,
		DocumentNumber: e.DocumentNumber,
		QuantityDelta:  e.QuantityDelta,
		BalanceAfter:   e.BalanceAfter,
		CreatedAt:      e.CreatedAt,
		CreatedBy:      e.CreatedBy,
	}
}

// LedgerListResponse resultado de la consulta del kardex.
type LedgerListResponse struct {
	Items []LedgerEntryResponse `json:"items"`
}

// DiscrepancyResponse diferencia entre kardex y posición.
type DiscrepancyResponse struct {
	ProductID        string          `json:"product_id"`
	LocationID       string          `json:"location_id"`
	LedgerBalance    decimal.Decimal `json:"ledger_balance"`
	StockOnHand      decimal.Decimal `json:"stock_on_hand"`
	ExpectedReserved decimal.Decimal `json:"expected_reserved"`
	StockReserved    decimal.Decimal `json:"stock_reserved"`
}

// ReconcileResponse resultado de la verificación kardex vs stock.
type ReconcileResponse struct {
	Consistent    bool                  `json:"consistent"`
	Partitions    int                   `json:"partitions"`
	Discrepancies []DiscrepancyResponse `json:"discrepancies"`
}
