package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// DocumentHandler rutas de una variante de documento (receipts, deliveries, transfers, adjustments).
type DocumentHandler struct {
	svc  *inventory.DocumentService
	kind entity.DocumentKind
}

// NewDocumentHandler construye el handler para la variante indicada.
func NewDocumentHandler(svc *inventory.DocumentService, kind entity.DocumentKind) *DocumentHandler {
	return &DocumentHandler{svc: svc, kind: kind}
}

// Create godoc
// @Summary      Crear documento en borrador
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        module  path  string  true  "receipts | deliveries | transfers | adjustments"
// @Param        body    body  dto.CreateDocumentRequest  true  "Cabecera y líneas"
// @Success      201     {object}  dto.DocumentResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Router       /api/{module} [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDocumentRequest
	if ok, err := parseBody(c, &in, false); !ok {
		return err
	}
	doc, err := h.svc.CreateDocument(c.UserContext(), GetActor(c), h.kind, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToDocumentResponse(doc))
}

// GetByID godoc
// @Summary      Obtener documento
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        module  path  string  true  "receipts | deliveries | transfers | adjustments"
// @Param        id      path  string  true  "ID del documento"
// @Success      200     {object}  dto.DocumentResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/{module}/{id} [get]
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	doc, err := h.svc.GetDocument(c.UserContext(), GetActor(c), h.kind, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToDocumentResponse(doc))
}

// List godoc
// @Summary      Listar documentos
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        module        path   string  true   "receipts | deliveries | transfers | adjustments"
// @Param        status        query  string  false  "Estado"
// @Param        warehouse_id  query  string  false  "Bodega (origen o destino)"
// @Param        from          query  string  false  "Creado desde (RFC3339)"
// @Param        to            query  string  false  "Creado hasta (RFC3339)"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200           {object}  dto.DocumentListResponse
// @Router       /api/{module} [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	var q dto.ListDocumentsRequest
	if ok, err := parseQuery(c, &q, q.DefaultPage); !ok {
		return err
	}
	filter := entity.DocumentFilter{
		Kind:        h.kind,
		Status:      q.Status,
		WarehouseID: q.WarehouseID,
		From:        parseTime(q.From),
		To:          parseTime(q.To),
		Limit:       q.FetchLimit(),
		Offset:      q.Offset,
	}
	fetched, err := h.svc.ListDocuments(c.UserContext(), GetActor(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	docs, page := dto.TrimPage(q.PageRequest, fetched)
	items := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		items = append(items, dto.ToDocumentResponse(d))
	}
	return c.JSON(dto.DocumentListResponse{
		Items: items,
		Page:  page,
	})
}

// Transition godoc
// @Summary      Ejecutar transición de estado
// @Description  confirm, validate, start_picking, save_picking, save_packing, mark_ready, ship, deliver,
// @Description  schedule, receive, approve, reject, cancel (según la variante y el estado actual).
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        module      path  string  true   "receipts | deliveries | transfers | adjustments"
// @Param        id          path  string  true   "ID del documento"
// @Param        transition  path  string  true   "Nombre de la transición"
// @Param        body        body  dto.TransitionRequest  false  "Cantidades por línea, versión esperada"
// @Success      200         {object}  dto.DocumentResponse
// @Failure      400         {object}  dto.ErrorResponse
// @Failure      403         {object}  dto.ErrorResponse
// @Failure      404         {object}  dto.ErrorResponse
// @Failure      409         {object}  dto.ErrorResponse
// @Router       /api/{module}/{id}/{transition} [post]
func (h *DocumentHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if ok, err := parseBody(c, &in, true); !ok {
		return err
	}
	ctx, actor := c.UserContext(), GetActor(c)
	// La ruta fija la variante: un ID de otra variante es 404.
	if _, err := h.svc.GetDocument(ctx, actor, h.kind, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	doc, err := h.svc.Transition(ctx, actor, c.Params("id"), entity.Transition(c.Params("transition")), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToDocumentResponse(doc))
}

// parseTime RFC3339 ya validado por el DTO; vacío = nil.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}
