package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-admin/internal/application/dto"
	"github.com/jhoicas/inventario-admin/internal/domain/review"
)

// LocalKind key del tipo de entidad revisable en Fiber.
const LocalKind = "review_kind"

// RequireKind valida el parámetro :kind de las rutas de revisión (categories, products,
// suppliers) y lo deja en c.Locals. Responde 404 UNKNOWN_KIND si no es un tablero conocido.
func RequireKind() fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := review.ParseKind(c.Params("kind"))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Code:    "UNKNOWN_KIND",
				Message: "el tablero '" + c.Params("kind") + "' no existe",
			})
		}
		c.Locals(LocalKind, kind)
		return c.Next()
	}
}

// GetKind devuelve el tipo de entidad (después de RequireKind).
func GetKind(c *fiber.Ctx) review.Kind {
	k, _ := c.Locals(LocalKind).(review.Kind)
	return k
}
