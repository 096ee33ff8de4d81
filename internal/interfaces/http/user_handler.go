package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-admin/internal/application/auth"
)

// UserHandler listados de usuarios (solo revisores).
type UserHandler struct {
	uc *auth.AuthUseCase
}

// NewUserHandler construye el handler de usuarios.
func NewUserHandler(uc *auth.AuthUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	return h.list(c, auth.ScopeAll)
}

// Managers godoc
// @Summary      Managers disponibles
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users/managers [get]
func (h *UserHandler) Managers(c *fiber.Ctx) error {
	return h.list(c, auth.ScopeManagers)
}

// Staff godoc
// @Summary      Staff disponible
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users/staff [get]
func (h *UserHandler) Staff(c *fiber.Ctx) error {
	return h.list(c, auth.ScopeStaff)
}

func (h *UserHandler) list(c *fiber.Ctx, scope auth.UserScope) error {
	out, err := h.uc.Users(c.UserContext(), GetSession(c), scope)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
