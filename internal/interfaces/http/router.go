package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	WarehouseUC *usecase.WarehouseUseCase
	Documents   *inventory.DocumentService
	Queries     *inventory.QueryService
	JWTSecret   string
	Metrics     nethttp.Handler // Prometheus; nil no expone /metrics
}

// documentRoutes ruta base de cada variante de documento.
var documentRoutes = []struct {
	path string
	kind entity.DocumentKind
}{
	{"/receipts", entity.KindReceipt},
	{"/deliveries", entity.KindDelivery},
	{"/transfers", entity.KindTransfer},
	{"/adjustments", entity.KindAdjustment},
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	// Todo /api requiere Bearer Token; los permisos por módulo los decide la matriz de authz.
	protected := app.Group("/api",
		AuthMiddleware(deps.JWTSecret),
		RequireRole(entity.RoleAdmin, entity.RoleInventoryManager, entity.RoleWarehouseStaff),
	)
	protected.Get("/me", Me)

	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)

	for _, r := range documentRoutes {
		h := NewDocumentHandler(deps.Documents, r.kind)
		g := protected.Group(r.path)
		g.Post("/", h.Create)
		g.Get("/", h.List)
		g.Get("/:id", h.GetByID)
		g.Post("/:id/:transition", h.Transition)
	}

	stockHandler := NewStockHandler(deps.Queries)
	protected.Get("/stock/reconcile", stockHandler.Reconcile)
	protected.Get("/stock/:productId/:locationId", stockHandler.GetPosition)
	protected.Get("/ledger", stockHandler.QueryLedger)
}
