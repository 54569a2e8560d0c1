package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
)

// Los tokens los emite el proveedor de identidad; aquí solo se expone lo que trae el JWT.

// Me godoc
// @Summary      Identidad del token
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ActorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/me [get]
func Me(c *fiber.Ctx) error {
	return c.JSON(dto.ActorResponse{UserID: GetUserID(c), Role: GetRole(c)})
}
