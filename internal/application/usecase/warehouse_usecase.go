package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/internal/application/authz"
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// Authorizer decide si un rol puede ejecutar una acción sobre un módulo.
type Authorizer interface {
	CanPerform(role, module, action string) bool
}

// WarehouseUseCase casos de uso para bodegas (alta y consulta).
type WarehouseUseCase struct {
	repo  repository.WarehouseRepository
	authz Authorizer
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repo repository.WarehouseRepository, az Authorizer) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo, authz: az}
}

// Create crea una nueva bodega. El código se normaliza a mayúsculas y debe ser único.
func (uc *WarehouseUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateWarehouseRequest) (*dto.WarehouseResponse, error) {
	if !uc.authz.CanPerform(actor.Role, authz.ModuleWarehouses, authz.ActionCreate) {
		return nil, domain.ErrForbidden
	}
	code := strings.ToUpper(strings.TrimSpace(in.Code))
	if code == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: code y name son obligatorios", domain.ErrValidation)
	}
	now := time.Now().UTC()
	warehouse := &entity.Warehouse{
		ID:        uuid.New().String(),
		Code:      code,
		Name:      strings.TrimSpace(in.Name),
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, warehouse); err != nil {
		return nil, err
	}
	return toWarehouseResponse(warehouse), nil
}

// GetByID obtiene una bodega por ID; nil, nil si no existe.
func (uc *WarehouseUseCase) GetByID(ctx context.Context, actor entity.Actor, id string) (*dto.WarehouseResponse, error) {
	if !uc.authz.CanPerform(actor.Role, authz.ModuleWarehouses, authz.ActionView) {
		return nil, domain.ErrForbidden
	}
	warehouse, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, nil
	}
	return toWarehouseResponse(warehouse), nil
}

// List lista bodegas con paginación.
func (uc *WarehouseUseCase) List(ctx context.Context, actor entity.Actor, limit, offset int) (*dto.WarehouseListResponse, error) {
	if !uc.authz.CanPerform(actor.Role, authz.ModuleWarehouses, authz.ActionView) {
		return nil, domain.ErrForbidden
	}
	req := dto.PageRequest{Limit: limit, Offset: offset}
	fetched, err := uc.repo.List(ctx, req.FetchLimit(), offset)
	if err != nil {
		return nil, err
	}
	list, page := dto.TrimPage(req, fetched)
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{
		Items: items,
		Page:  page,
	}, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:        w.ID,
		Code:      w.Code,
		Name:      w.Name,
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
