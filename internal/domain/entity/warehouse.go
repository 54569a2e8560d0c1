package entity

import "time"

// Warehouse bodega donde se almacena inventario. Sus ubicaciones se identifican con
// LocationID; por defecto una línea usa el ID de la bodega como ubicación.
type Warehouse struct {
	ID        string
	Code      string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
