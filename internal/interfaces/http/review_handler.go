package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-admin/internal/application/approval"
	"github.com/jhoicas/inventario-admin/internal/application/dto"
	"github.com/jhoicas/inventario-admin/internal/domain/repository"
)

// ReviewHandler tableros de revisión de categorías, productos y proveedores.
type ReviewHandler struct {
	svc *approval.Service
}

// NewReviewHandler construye el handler de revisión.
func NewReviewHandler(svc *approval.Service) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// List godoc
// @Summary      Listar solicitudes
// @Description  Página del tablero con filtros del lado servidor. Orden: PENDING primero, luego APPROVED/ACTIVE y al final REJECTED/INACTIVE; dentro de cada grupo, más recientes primero.
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        kind         path   string  true   "categories | products | suppliers"
// @Param        search       query  string  false  "texto libre (nombre, email, quien envió)"
// @Param        status       query  string  false  "PENDING | APPROVED | REJECTED"
// @Param        activity     query  string  false  "ACTIVE | INACTIVE"
// @Param        requestType  query  string  false  "CREATE | UPDATE | STATUS_CHANGE"
// @Param        page         query  int     false  "página (desde 1)"
// @Param        size         query  int     false  "tamaño de página (máx 100)"
// @Success      200  {object}  dto.ReviewListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/reviews/{kind} [get]
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	var in dto.ListReviewsRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	in.Normalize()
	if err := dto.Validate(&in); err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.List(c.UserContext(), actorOf(c), GetKind(c), in.Query())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Detail godoc
// @Summary      Detalle de una solicitud
// @Description  Registro vigente con su vista de diferencias (valores anteriores y propuestos).
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path  string  true  "categories | products | suppliers"
// @Param        id    path  string  true  "ID del registro"
// @Success      200  {object}  dto.ReviewDetailResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/reviews/{kind}/{id} [get]
func (h *ReviewHandler) Detail(c *fiber.Ctx) error {
	out, err := h.svc.Detail(c.UserContext(), actorOf(c), GetKind(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Enviar alta
// @Description  Crea una solicitud CREATE pendiente de revisión. El cuerpo depende del tipo de entidad.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path  string  true  "categories | products | suppliers"
// @Param        body  body  object  true  "dto.CategoryForm | dto.ProductForm | dto.SupplierForm"
// @Success      201  {object}  dto.ReviewDetailResponse
// @Success      202  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reviews/{kind} [post]
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	form, ok, err := h.form(c)
	if !ok {
		return err
	}
	out, err := h.svc.SubmitCreate(c.UserContext(), actorOf(c), GetKind(c), form)
	if err != nil {
		return writeError(c, err)
	}
	return respondDetail(c, fiber.StatusCreated, out)
}

// Update godoc
// @Summary      Enviar edición
// @Description  Propone cambios sobre un registro editable; quedan como pendingChanges hasta su revisión.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path  string  true  "categories | products | suppliers"
// @Param        id    path  string  true  "ID del registro"
// @Param        body  body  object  true  "dto.CategoryForm | dto.ProductForm | dto.SupplierForm"
// @Success      200  {object}  dto.ReviewDetailResponse
// @Success      202  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reviews/{kind}/{id} [put]
func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	form, ok, err := h.form(c)
	if !ok {
		return err
	}
	out, err := h.svc.SubmitUpdate(c.UserContext(), actorOf(c), GetKind(c), c.Params("id"), form)
	if err != nil {
		return writeError(c, err)
	}
	return respondDetail(c, fiber.StatusOK, out)
}

// respondDetail devuelve el registro actualizado. Si el backend aceptó la acción pero el registro
// no se pudo leer, responde 202 y el cliente recarga el listado.
func respondDetail(c *fiber.Ctx, status int, out *dto.ReviewDetailResponse) error {
	if out == nil {
		return c.Status(fiber.StatusAccepted).JSON(dto.MessageResponse{Message: "solicitud procesada; recargue el listado"})
	}
	return c.Status(status).JSON(out)
}

func (h *ReviewHandler) form(c *fiber.Ctx) (dto.Form, bool, error) {
	form, err := dto.NewForm(GetKind(c))
	if err != nil {
		return nil, false, writeError(c, err)
	}
	if err := c.BodyParser(form); err != nil {
		return nil, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	return form, true, nil
}

// Toggle godoc
// @Summary      Activar / desactivar
// @Description  Envía una solicitud STATUS_CHANGE. Requiere confirm=true.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path  string              true  "categories | products | suppliers"
// @Param        id    path  string              true  "ID del registro"
// @Param        body  body  dto.ConfirmRequest  true  "confirmación"
// @Success      200  {object}  dto.ReviewDetailResponse
// @Success      202  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reviews/{kind}/{id}/toggle [post]
func (h *ReviewHandler) Toggle(c *fiber.Ctx) error {
	var in dto.ConfirmRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.svc.ToggleActivity(c.UserContext(), actorOf(c), GetKind(c), c.Params("id"), in.Confirm)
	if err != nil {
		return writeError(c, err)
	}
	return respondDetail(c, fiber.StatusOK, out)
}

// Approve godoc
// @Summary      Aprobar solicitud
// @Description  Solo ADMIN o MANAGER. Requiere confirm=true y que la solicitud siga PENDING.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path  string              true  "categories | products | suppliers"
// @Param        id    path  string              true  "ID del registro"
// @Param        body  body  dto.ConfirmRequest  true  "confirmación"
// @Success      200  {object}  dto.ReviewDetailResponse
// @Success      202  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reviews/{kind}/{id}/approve [post]
func (h *ReviewHandler) Approve(c *fiber.Ctx) error {
	var in dto.ConfirmRequest
	if ok, err := bind(c, &in); !ok {
		return err
	}
	out, err := h.svc.Approve(c.UserContext(), actorOf(c), GetKind(c), c.Params("id"), in.Confirm)
	if err != nil {
		return writeError(c, err)
	}
	return respondDetail(c, fiber.StatusOK, out)
}

// Reject godoc
// @Summary      Rechazar solicitud
// @Description  Solo ADMIN o MANAGER. El motivo debe tener al menos 10 caracteres.
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path  string             true  "categories | products | suppliers"
// @Param        id    path  string             true  "ID del registro"
// @Param        body  body  dto.RejectRequest  true  "motivo"
// @Success      200  {object}  dto.ReviewDetailResponse
// @Success      202  {object}  dto.MessageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/reviews/{kind}/{id}/reject [post]
func (h *ReviewHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.svc.Reject(c.UserContext(), actorOf(c), GetKind(c), c.Params("id"), in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return respondDetail(c, fiber.StatusOK, out)
}

// Report godoc
// @Summary      Reporte PDF de la cola
// @Description  Mismos filtros del listado; hasta 100 solicitudes.
// @Tags         reviews
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        kind         path   string  true   "categories | products | suppliers"
// @Param        search       query  string  false  "texto libre"
// @Param        status       query  string  false  "PENDING | APPROVED | REJECTED"
// @Param        activity     query  string  false  "ACTIVE | INACTIVE"
// @Param        requestType  query  string  false  "CREATE | UPDATE | STATUS_CHANGE"
// @Success      200  {file}    binary
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reviews/{kind}/report [get]
func (h *ReviewHandler) Report(c *fiber.Ctx) error {
	var in dto.ListReviewsRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	in.Normalize()
	if err := dto.Validate(&in); err != nil {
		return writeError(c, err)
	}
	kind := GetKind(c)
	pdf, err := h.svc.Report(c.UserContext(), actorOf(c), kind, in.Query())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="revision-%s.pdf"`, kind))
	return c.Send(pdf)
}

// History godoc
// @Summary      Bitácora de revisión
// @Tags         reviews
// @Produce      json
// @Security     BearerAuth
// @Param        kind      query  string  false  "categories | products | suppliers"
// @Param        entityId  query  string  false  "ID del registro"
// @Param        limit     query  int     false  "máximo de entradas (por defecto 50)"
// @Param        offset    query  int     false  "desplazamiento"
// @Success      200  {array}   dto.ReviewLogResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/reviews/history [get]
func (h *ReviewHandler) History(c *fiber.Ctx) error {
	var in dto.HistoryRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if err := dto.Validate(&in); err != nil {
		return writeError(c, err)
	}
	out, err := h.svc.History(c.UserContext(), repository.ReviewLogFilter{
		Kind:     in.Kind,
		EntityID: in.EntityID,
		Limit:    in.Limit,
		Offset:   in.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ActiveCategories godoc
// @Summary      Categorías activas
// @Description  Opciones del selector de categoría del formulario de productos.
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   dto.CategoryOption
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/categories/active [get]
func (h *ReviewHandler) ActiveCategories(c *fiber.Ctx) error {
	out, err := h.svc.ActiveCategories(c.UserContext(), actorOf(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
