package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-admin/internal/domain/entity"
	"github.com/jhoicas/inventario-admin/internal/domain/review"
)

// ListReviewsRequest filtros y paginación de un tablero de revisión (query params).
type ListReviewsRequest struct {
	Search   string `query:"search" json:"search" validate:"max=100"`
	Status   string `query:"status" json:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
	Activity string `query:"activity" json:"activity" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	Type     string `query:"requestType" json:"requestType" validate:"omitempty,oneof=CREATE UPDATE STATUS_CHANGE"`
	Page     int    `query:"page" json:"page" validate:"gte=0"`
	Size     int    `query:"size" json:"size" validate:"gte=0,lte=100"`
}

// Normalize pasa a mayúsculas los filtros enumerados antes de validar.
func (r *ListReviewsRequest) Normalize() {
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
	r.Activity = strings.ToUpper(strings.TrimSpace(r.Activity))
	r.Type = strings.ToUpper(strings.TrimSpace(r.Type))
}

// Query convierte el request en la consulta del dominio.
func (r ListReviewsRequest) Query() review.Query {
	return review.Query{
		Search:   r.Search,
		Status:   review.Status(r.Status),
		Activity: review.Activity(r.Activity),
		Type:     review.RequestType(r.Type),
		Page:     r.Page,
		Size:     r.Size,
	}.Normalized()
}

// SubmitterResponse quien envió la solicitud.
type SubmitterResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ChangeRequestResponse fila de un tablero de revisión.
type ChangeRequestResponse struct {
	ID           string             `json:"id"`
	Kind         review.Kind        `json:"kind"`
	Name         string             `json:"name"`
	Email        string             `json:"email,omitempty"`
	Status       review.Status      `json:"status"`
	Activity     review.Activity    `json:"activity"`
	RequestType  review.RequestType `json:"requestType"`
	TypeLabel    string             `json:"typeLabel"`
	SubmittedBy  SubmitterResponse  `json:"submittedBy"`
	Fields       map[string]string  `json:"fields"`
	Pending      map[string]string  `json:"pendingChanges"`
	RejectedNote string             `json:"rejectedNote,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
	Permissions  review.Permissions `json:"permissions"`
}

// NewChangeRequestResponse arma la fila con los permisos calculados por el guard.
func NewChangeRequestResponse(r review.ChangeRequest) ChangeRequestResponse {
	return ChangeRequestResponse{
		ID:           r.ID,
		Kind:         r.Kind,
		Name:         r.Name(),
		Email:        r.Email(),
		Status:       r.Status,
		Activity:     r.Activity,
		RequestType:  r.Type(),
		TypeLabel:    review.TypeLabel(r.Type()),
		SubmittedBy:  SubmitterResponse{Name: r.SubmittedBy.Name, Email: r.SubmittedBy.Email},
		Fields:       r.Fields,
		Pending:      r.Pending,
		RejectedNote: r.RejectedNote,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		Permissions:  review.Evaluate(r),
	}
}

// ReviewListResponse página de un tablero de revisión.
type ReviewListResponse struct {
	Kind      review.Kind             `json:"kind"`
	Items     []ChangeRequestResponse `json:"items"`
	Query     review.Query            `json:"query"`
	Page      PageResponse            `json:"page"`
	FetchedAt time.Time               `json:"fetchedAt"`
}

// ReviewDetailResponse contenido del modal de revisión.
type ReviewDetailResponse struct {
	Request ChangeRequestResponse `json:"request"`
	Diff    review.DiffView       `json:"diff"`
}

// ConfirmRequest paso de confirmación explícita (sí/no) de aprobaciones y cambios de actividad.
type ConfirmRequest struct {
	Confirm bool `json:"confirm"`
}

// RejectRequest justificación obligatoria del rechazo.
type RejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// HistoryRequest filtros de la bitácora de revisión.
type HistoryRequest struct {
	Kind     string `query:"kind" json:"kind" validate:"omitempty,oneof=categories products suppliers"`
	EntityID string `query:"entityId" json:"entityId" validate:"max=64"`
	Limit    int    `query:"limit" json:"limit" validate:"gte=0,lte=200"`
	Offset   int    `query:"offset" json:"offset" validate:"gte=0"`
}

// ReviewLogResponse entrada de la bitácora.
type ReviewLogResponse struct {
	ID         string              `json:"id"`
	Kind       string              `json:"kind"`
	EntityID   string              `json:"entityId"`
	EntityName string              `json:"entityName"`
	Action     entity.ReviewAction `json:"action"`
	ActorID    string              `json:"actorId"`
	ActorName  string              `json:"actorName"`
	Note       string              `json:"note,omitempty"`
	Price      string              `json:"price,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
}

// NewReviewLogResponse convierte una entrada de la bitácora.
func NewReviewLogResponse(l *entity.ReviewLog) ReviewLogResponse {
	out := ReviewLogResponse{
		ID:         l.ID,
		Kind:       l.Kind,
		EntityID:   l.EntityID,
		EntityName: l.EntityName,
		Action:     l.Action,
		ActorID:    l.ActorID,
		ActorName:  l.ActorName,
		Note:       l.Note,
		CreatedAt:  l.CreatedAt,
	}
	if l.Price != nil {
		out.Price = l.Price.StringFixed(2)
	}
	return out
}

// CategoryOption categoría activa para el selector del formulario de productos.
type CategoryOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Form formulario de alta o edición de una entidad revisable.
type Form interface {
	// Payload cuerpo que se envía al backend.
	Payload() map[string]any
	// Title nombre de la entidad, para la bitácora.
	Title() string
}

// NewForm devuelve el formulario vacío del tipo de entidad.
func NewForm(kind review.Kind) (Form, error) {
	switch kind {
	case review.KindCategory:
		return &CategoryForm{}, nil
	case review.KindProduct:
		return &ProductForm{}, nil
	case review.KindSupplier:
		return &SupplierForm{}, nil
	}
	return nil, fmt.Errorf("formulario desconocido para %q", kind)
}

// CategoryForm alta/edición de categoría.
type CategoryForm struct {
	Name             string `json:"name" validate:"required,max=120"`
	Description      string `json:"description" validate:"omitempty,max=500"`
	StorageCondition string `json:"storageCondition" validate:"required,max=60"`
}

func (f *CategoryForm) Payload() map[string]any {
	return map[string]any{
		"name":             strings.TrimSpace(f.Name),
		"description":      strings.TrimSpace(f.Description),
		"storageCondition": strings.TrimSpace(f.StorageCondition),
	}
}

func (f *CategoryForm) Title() string { return strings.TrimSpace(f.Name) }

// ProductForm alta/edición de producto. Precio y temperaturas aceptan número o texto numérico.
type ProductForm struct {
	Name           string      `json:"name" validate:"required,max=120"`
	SKU            string      `json:"sku" validate:"required,max=40"`
	CategoryID     string      `json:"categoryId" validate:"required"`
	SupplierID     string      `json:"supplierId" validate:"omitempty,max=64"`
	Unit           string      `json:"unit" validate:"required,max=20"`
	Price          json.Number `json:"price" validate:"required,decimal"`
	MinTemperature json.Number `json:"minTemperature" validate:"omitempty,decimal"`
	MaxTemperature json.Number `json:"maxTemperature" validate:"omitempty,decimal"`
}

func (f *ProductForm) Payload() map[string]any {
	out := map[string]any{
		"name":       strings.TrimSpace(f.Name),
		"sku":        strings.TrimSpace(f.SKU),
		"categoryId": f.CategoryID,
		"unit":       strings.TrimSpace(f.Unit),
		"price":      numeric(f.Price),
	}
	if f.SupplierID != "" {
		out["supplierId"] = f.SupplierID
	}
	if f.MinTemperature != "" {
		out["minTemperature"] = numeric(f.MinTemperature)
	}
	if f.MaxTemperature != "" {
		out["maxTemperature"] = numeric(f.MaxTemperature)
	}
	return out
}

func (f *ProductForm) Title() string { return strings.TrimSpace(f.Name) }

// PriceValue precio del formulario; nil si no es un número.
func (f *ProductForm) PriceValue() *decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(f.Price.String()))
	if err != nil {
		return nil
	}
	return &d
}

// numeric normaliza un número del formulario; el backend recibe un número JSON.
func numeric(n json.Number) json.Number {
	d, err := decimal.NewFromString(strings.TrimSpace(n.String()))
	if err != nil {
		return n
	}
	return json.Number(d.String())
}

// SupplierForm alta/edición de proveedor.
type SupplierForm struct {
	Name          string `json:"name" validate:"required,max=120"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,max=20"`
	Address       string `json:"address" validate:"omitempty,max=200"`
	ContactPerson string `json:"contactPerson" validate:"omitempty,max=120"`
	TaxCode       string `json:"taxCode" validate:"required,max=20"`
}

func (f *SupplierForm) Payload() map[string]any {
	return map[string]any{
		"name":          strings.TrimSpace(f.Name),
		"email":         strings.TrimSpace(f.Email),
		"phone":         strings.TrimSpace(f.Phone),
		"address":       strings.TrimSpace(f.Address),
		"contactPerson": strings.TrimSpace(f.ContactPerson),
		"taxCode":       strings.TrimSpace(f.TaxCode),
	}
}

func (f *SupplierForm) Title() string { return strings.TrimSpace(f.Name) }
