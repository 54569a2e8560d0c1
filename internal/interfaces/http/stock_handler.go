package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

const (
	defaultLedgerLimit = 100
	maxLedgerLimit     = 1000
)

// StockHandler consultas de posiciones, kardex y verificación.
type StockHandler struct {
	queries *inventory.QueryService
}

// NewStockHandler construye el handler.
func NewStockHandler(queries *inventory.QueryService) *StockHandler {
	return &StockHandler{queries: queries}
}

// GetPosition godoc
// @Summary      Posición de stock
// @Description  OnHand, Reserved y Available de un producto en una ubicación. Un par sin movimientos responde ceros.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId   path  string  true  "Producto"
// @Param        locationId  path  string  true  "Ubicación"
// @Success      200  {object}  dto.StockPositionResponse
// @Router       /api/stock/{productId}/{locationId} [get]
func (h *StockHandler) GetPosition(c *fiber.Ctx) error {
	key := entity.StockKey{ProductID: c.Params("productId"), LocationID: c.Params("locationId")}
	st, err := h.queries.GetStockPosition(c.UserContext(), GetActor(c), key)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToStockPositionResponse(st))
}

// QueryLedger godoc
// @Summary      Consultar kardex
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id     query  string  false  "Producto"
// @Param        location_id    query  string  false  "Ubicación"
// @Param        document_type  query  string  false  "receipt | delivery | transfer_in | transfer_out | adjustment"
// @Param        document_id    query  string  false  "Documento"
// @Param        from           query  string  false  "Desde (RFC3339)"
// @Param        to             query  string  false  "Hasta (RFC3339)"
// @Param        limit          query  int     false  "Límite"  default(100)
// @Success      200  {object}  dto.LedgerListResponse
// @Router       /api/ledger [get]
func (h *StockHandler) QueryLedger(c *fiber.Ctx) error {
	var q dto.LedgerQueryRequest
	if ok, err := parseQuery(c, &q, nil); !ok {
		return err
	}
	limit := q.Limit
	if limit == 0 {
		limit = defaultLedgerLimit
	}
	filter := entity.LedgerFilter{
		ProductID:    q.ProductID,
		LocationID:   q.LocationID,
		DocumentType: entity.LedgerDocumentType(q.DocumentType),
		DocumentID:   q.DocumentID,
		From:         parseTime(q.From),
		To:           parseTime(q.To),
		Limit:        min(limit, maxLedgerLimit),
	}
	seq, err := h.queries.QueryLedger(c.UserContext(), GetActor(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	items := make([]dto.LedgerEntryResponse, 0)
	for e, err := range seq {
		if err != nil {
			return respondError(c, err)
		}
		items = append(items, dto.ToLedgerEntryResponse(e))
	}
	return c.JSON(dto.LedgerListResponse{Items: items})
}

// Reconcile godoc
// @Summary      Verificar kardex contra stock
// @Description  Reproduce el kardex y lo compara con las posiciones y las reservas de despachos abiertos.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/stock/reconcile [get]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	report, err := h.queries.Reconcile(c.UserContext(), GetActor(c))
	if err != nil {
		return respondError(c, err)
	}
	out := dto.ReconcileResponse{
		Consistent:    report.Consistent(),
		Partitions:    report.Partitions,
		Discrepancies: make([]dto.DiscrepancyResponse, 0, len(report.Discrepancies)),
	}
	for _, d := range report.Discrepancies {
		out.Discrepancies = append(out.Discrepancies, dto.DiscrepancyResponse{
			ProductID:        d.Key.ProductID,
			LocationID:       d.Key.LocationID,
			LedgerBalance:    d.LedgerBalance,
			StockOnHand:      d.StockOnHand,
			ExpectedReserved: d.ExpectedReserved,
			StockReserved:    d.StockReserved,
		})
	}
	return c.JSON(out)
}
