package entity

// Roles válidos. Los permisos por rol viven en la matriz estática de authz.
const (
	RoleAdmin            = "admin"
	RoleInventoryManager = "inventory_manager"
	RoleWarehouseStaff   = "warehouse_staff"
)

// IsValidRole informa si el rol es uno de los conocidos.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleInventoryManager, RoleWarehouseStaff:
		return true
	}
	return false
}

// Actor quien ejecuta una operación (tomado del JWT).
type Actor struct {
	UserID string
	Role   string
}
