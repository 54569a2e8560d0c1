package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerDocumentType tipo de documento que originó un asiento del kardex.
type LedgerDocumentType string

// Tipos de asiento del kardex.
const (
	LedgerReceipt     LedgerDocumentType = "receipt"
	LedgerDelivery    LedgerDocumentType = "delivery"
	LedgerTransferIn  LedgerDocumentType = "transfer_in"
	LedgerTransferOut LedgerDocumentType = "transfer_out"
	LedgerAdjustment  LedgerDocumentType = "adjustment"
)

// IsValid informa si el tipo es uno de los conocidos.
func (t LedgerDocumentType) IsValid() bool {
	switch t {
	case LedgerReceipt, LedgerDelivery, LedgerTransferIn, LedgerTransferOut, LedgerAdjustment:
		return true
	}
	return false
}

// LedgerEntry asiento inmutable del kardex: un cambio de OnHand en un par (producto, ubicación).
// Seq desempata asientos creados en el mismo instante dentro de la partición.
type LedgerEntry struct {
	ID             string
	Seq            int64
	ProductID      string
	LocationID     string
	DocumentType   LedgerDocumentType
	DocumentID     string
	DocumentNumber string
	QuantityDelta  decimal.Decimal
	BalanceAfter   decimal.Decimal
	CreatedAt      time.Time
	CreatedBy      string
}

// Key partición del asiento.
func (e *LedgerEntry) Key() StockKey {
	return StockKey{ProductID: e.ProductID, LocationID: e.LocationID}
}

// LedgerFilter filtros de consulta del kardex; campos vacíos no filtran.
type LedgerFilter struct {
	ProductID    string
	LocationID   string
	DocumentType LedgerDocumentType
	DocumentID   string
	From         *time.Time
	To           *time.Time
	Limit        int
}

// Matches evalúa el filtro contra un asiento (usado por el backend en memoria).
func (f LedgerFilter) Matches(e *LedgerEntry) bool {
	if f.ProductID != "" && e.ProductID != f.ProductID {
		return false
	}
	if f.LocationID != "" && e.LocationID != f.LocationID {
		return false
	}
	if f.DocumentType != "" && e.DocumentType != f.DocumentType {
		return false
	}
	if f.DocumentID != "" && e.DocumentID != f.DocumentID {
		return false
	}
	if f.From != nil && e.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && e.CreatedAt.After(*f.To) {
		return false
	}
	return true
}
