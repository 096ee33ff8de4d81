package http

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-admin/internal/application/dto"
	"github.com/jhoicas/inventario-admin/internal/domain"
	"github.com/jhoicas/inventario-admin/internal/domain/access"
	"github.com/jhoicas/inventario-admin/internal/infrastructure/backend"
)

// writeError traduce un error de caso de uso a la respuesta HTTP. Los errores del backend se
// devuelven con su mensaje literal.
func writeError(c *fiber.Ctx, err error) error {
	var verr *dto.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Fields: verr.Fields})
	}
	// Con sesión abierta, un 401/403 del backend significa que su access token ya no sirve o que
	// el rol no alcanza: el cliente debe ir a login o a la página de no autorizado.
	if GetSession(c) != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			c.Locals(localUpstreamRejected, true)
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "LOGIN_REQUIRED", Message: messageOf(err), Redirect: access.LoginPath})
		case errors.Is(err, domain.ErrForbidden):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: messageOf(err), Redirect: access.UnauthorizedPath})
		}
	}
	if apiErr, ok := backend.AsAPIError(err); ok {
		status := apiErr.StatusCode
		if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
			status = fiber.StatusBadGateway
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: "BACKEND", Message: apiErr.Message})
	}
	switch {
	case errors.Is(err, domain.ErrRejectReasonShort):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: err.Error(), Fields: map[string]string{"reason": err.Error()},
		})
	case errors.Is(err, domain.ErrConfirmation):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "CONFIRMATION_REQUIRED", Message: err.Error()})
	case errors.Is(err, domain.ErrSessionExpired):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "LOGIN_REQUIRED", Message: err.Error(), Redirect: access.LoginPath})
	case errors.Is(err, domain.ErrReviewerRequired):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error(), Redirect: access.UnauthorizedPath})
	case errors.Is(err, domain.ErrActionNotAllowed), errors.Is(err, domain.ErrNotPending), errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ACTION_NOT_ALLOWED", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

// messageOf prefiere el mensaje literal del backend.
func messageOf(err error) string {
	if apiErr, ok := backend.AsAPIError(err); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// bind lee el cuerpo JSON y valida sus etiquetas. Si devuelve false la respuesta de error ya
// quedó escrita.
func bind(c *fiber.Ctx, in any) (bool, error) {
	if err := c.BodyParser(in); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return false, writeError(c, err)
	}
	return true, nil
}
