package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock representa la posición actual de un producto en una ubicación (tabla materializada).
// Available no se persiste: siempre es OnHand - Reserved.
type Stock struct {
	ProductID  string
	LocationID string
	OnHand     decimal.Decimal
	Reserved   decimal.Decimal
	UpdatedAt  time.Time
}

// NewStock devuelve la posición vacía para un par nunca visto.
func NewStock(productID, locationID string) *Stock {
	return &Stock{ProductID: productID, LocationID: locationID, OnHand: decimal.Zero, Reserved: decimal.Zero}
}

// Available cantidad libre (no reservada).
func (s *Stock) Available() decimal.Decimal {
	return s.OnHand.Sub(s.Reserved)
}

// Key identifica el par (producto, ubicación).
func (s *Stock) Key() StockKey {
	return StockKey{ProductID: s.ProductID, LocationID: s.LocationID}
}

// StockKey clave de partición del stock y del kardex.
type StockKey struct {
	ProductID  string
	LocationID string
}

// String forma canónica usada para locks y logs.
func (k StockKey) String() string {
	return k.ProductID + "@" + k.LocationID
}

// Less orden total usado para tomar locks siempre en el mismo orden (evita deadlocks).
func (k StockKey) Less(o StockKey) bool {
	if k.ProductID != o.ProductID {
		return k.ProductID < o.ProductID
	}
	return k.LocationID < o.LocationID
}
