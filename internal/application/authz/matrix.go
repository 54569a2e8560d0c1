package authz

import "github.com/jhoicas/stock-ledger-api/internal/domain/entity"

// Módulos de la matriz de permisos.
const (
	ModuleReceipts    = "receipts"
	ModuleDeliveries  = "deliveries"
	ModuleTransfers   = "transfers"
	ModuleAdjustments = "adjustments"
	ModuleLedger      = "ledger"
	ModuleStock       = "stock"
	ModuleWarehouses  = "warehouses"
)

// Acciones de la matriz de permisos.
const (
	ActionCreate  = "create"
	ActionEdit    = "edit"
	ActionApprove = "approve"
	ActionCancel  = "cancel"
	ActionView    = "view"
	ActionVerify  = "verify"
)

type actions map[string]bool

func allow(names ...string) actions {
	a := make(actions, len(names))
	for _, n := range names {
		a[n] = true
	}
	return a
}

// matrix rol → módulo → acciones permitidas. Lo que no aparece está denegado.
var matrix = map[string]map[string]actions{
	entity.RoleAdmin: {
		ModuleReceipts:    allow(ActionCreate, ActionEdit, ActionApprove, ActionCancel, ActionView),
		ModuleDeliveries:  allow(ActionCreate, ActionEdit, ActionCancel, ActionView),
		ModuleTransfers:   allow(ActionCreate, ActionEdit, ActionCancel, ActionView),
		ModuleAdjustments: allow(ActionCreate, ActionEdit, ActionApprove, ActionCancel, ActionView),
		ModuleLedger:      allow(ActionView),
		ModuleStock:       allow(ActionView, ActionVerify),
		ModuleWarehouses:  allow(ActionCreate, ActionView),
	},
	entity.RoleInventoryManager: {
		ModuleReceipts:    allow(ActionCreate, ActionEdit, ActionApprove, ActionCancel, ActionView),
		ModuleDeliveries:  allow(ActionCreate, ActionEdit, ActionCancel, ActionView),
		ModuleTransfers:   allow(ActionCreate, ActionEdit, ActionCancel, ActionView),
		ModuleAdjustments: allow(ActionCreate, ActionEdit, ActionApprove, ActionView),
		ModuleLedger:      allow(ActionView),
		ModuleStock:       allow(ActionView),
		ModuleWarehouses:  allow(ActionView),
	},
	entity.RoleWarehouseStaff: {
		ModuleReceipts:    allow(ActionCreate, ActionEdit, ActionApprove, ActionView),
		ModuleDeliveries:  allow(ActionCreate, ActionEdit, ActionView),
		ModuleTransfers:   allow(ActionCreate, ActionEdit, ActionView),
		ModuleAdjustments: allow(ActionCreate, ActionView),
		ModuleLedger:      allow(ActionView),
		ModuleStock:       allow(ActionView),
		ModuleWarehouses:  allow(ActionView),
	},
}

// StaticAuthorizer implementa inventory.Authorizer sobre la matriz fija.
type StaticAuthorizer struct{}

// NewStaticAuthorizer devuelve el autorizador de matriz fija.
func NewStaticAuthorizer() StaticAuthorizer { return StaticAuthorizer{} }

// CanPerform informa si role puede ejecutar action en module.
func (StaticAuthorizer) CanPerform(role, module, action string) bool {
	return matrix[role][module][action]
}

// TransitionAction acción de la matriz que exige una transición de documento.
func TransitionAction(kind entity.DocumentKind, t entity.Transition) string {
	switch t {
	case entity.TransitionCancel:
		return ActionCancel
	case entity.TransitionApprove, entity.TransitionReject:
		return ActionApprove
	case entity.TransitionValidate:
		if kind == entity.KindReceipt {
			return ActionApprove
		}
	}
	return ActionEdit
}
