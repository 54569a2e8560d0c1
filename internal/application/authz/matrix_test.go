package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger-api/internal/application/authz"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func TestCanPerform(t *testing.T) {
	a := authz.NewStaticAuthorizer()
	tests := []struct {
		role, module, action string
		want                 bool
	}{
		{entity.RoleAdmin, authz.ModuleAdjustments, authz.ActionApprove, true},
		{entity.RoleInventoryManager, authz.ModuleAdjustments, authz.ActionApprove, true},
		{entity.RoleWarehouseStaff, authz.ModuleAdjustments, authz.ActionApprove, false},
		{entity.RoleWarehouseStaff, authz.ModuleAdjustments, authz.ActionCreate, true},
		{entity.RoleWarehouseStaff, authz.ModuleReceipts, authz.ActionApprove, true},
		{entity.RoleWarehouseStaff, authz.ModuleDeliveries, authz.ActionCancel, false},
		{entity.RoleInventoryManager, authz.ModuleWarehouses, authz.ActionCreate, false},
		{entity.RoleAdmin, authz.ModuleWarehouses, authz.ActionCreate, true},
		{entity.RoleAdmin, authz.ModuleStock, authz.ActionVerify, true},
		{entity.RoleInventoryManager, authz.ModuleStock, authz.ActionVerify, false},
		{"desconocido", authz.ModuleLedger, authz.ActionView, false},
		{entity.RoleAdmin, "modulo-inexistente", authz.ActionView, false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, a.CanPerform(tc.role, tc.module, tc.action), "%s/%s/%s", tc.role, tc.module, tc.action)
	}
}

func TestTransitionAction(t *testing.T) {
	assert.Equal(t, authz.ActionApprove, authz.TransitionAction(entity.KindReceipt, entity.TransitionValidate))
	assert.Equal(t, authz.ActionEdit, authz.TransitionAction(entity.KindReceipt, entity.TransitionConfirm))
	assert.Equal(t, authz.ActionApprove, authz.TransitionAction(entity.KindAdjustment, entity.TransitionApprove))
	assert.Equal(t, authz.ActionApprove, authz.TransitionAction(entity.KindAdjustment, entity.TransitionReject))
	assert.Equal(t, authz.ActionCancel, authz.TransitionAction(entity.KindDelivery, entity.TransitionCancel))
	assert.Equal(t, authz.ActionEdit, authz.TransitionAction(entity.KindTransfer, entity.TransitionShip))
}
