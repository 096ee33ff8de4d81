package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-admin/internal/application/dto"
	"github.com/jhoicas/inventario-admin/internal/domain/access"
)

// Navigation godoc
// @Summary      Decisión de navegación
// @Description  Indica si el cliente puede mostrar la ruta o a dónde debe redirigir según la sesión y el rol. No exige sesión.
// @Tags         navigation
// @Produce      json
// @Param        path  query  string  true  "ruta del cliente, p. ej. /suppliers/review"
// @Success      200  {object}  dto.NavigationResponse
// @Router       /api/navigation [get]
func Navigation(c *fiber.Ctx) error {
	var who *access.Principal
	if sess := GetSession(c); sess != nil {
		who = access.PrincipalOf(&sess.User)
	}
	p := c.Query("path", access.HomePath)
	d := access.Resolve(p, who)
	return c.JSON(dto.NavigationResponse{
		Path:     access.Normalize(p),
		Allowed:  d.Allowed,
		Redirect: d.Redirect,
	})
}
