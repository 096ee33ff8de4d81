package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/jhoicas/inventario-admin/internal/application/approval"
	"github.com/jhoicas/inventario-admin/internal/application/state"
	"github.com/jhoicas/inventario-admin/internal/domain/entity"
	"github.com/jhoicas/inventario-admin/internal/domain/review"
)

var _ approval.Gateway = (*ProductService)(nil)

// ProductService endpoints /products del backend.
type ProductService struct {
	c *Client
}

// NewProductService construye el servicio.
func NewProductService(c *Client) *ProductService {
	return &ProductService{c: c}
}

// Kind tipo de entidad que sirve.
func (s *ProductService) Kind() review.Kind { return review.KindProduct }

// List GET /products con paginación y filtros como query params.
func (s *ProductService) List(ctx context.Context, token string, q review.Query) ([]review.ChangeRequest, state.PageInfo, error) {
	var raw json.RawMessage
	if err := s.c.Do(ctx, http.MethodGet, "/products", listQuery(q), token, nil, &raw); err != nil {
		return nil, state.PageInfo{}, err
	}
	return decodeChangeRequests[entity.Product](review.KindProduct, raw)
}

// Get GET /products/{id}.
func (s *ProductService) Get(ctx context.Context, token, id string) (review.ChangeRequest, error) {
	var raw json.RawMessage
	if err := s.c.Do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, token, nil, &raw); err != nil {
		return review.ChangeRequest{}, err
	}
	return decodeChangeRequest[entity.Product](review.KindProduct, raw)
}

// Approve PUT /products/approve/{id} con {userId}.
func (s *ProductService) Approve(ctx context.Context, token, id, reviewerID string) error {
	body := map[string]string{"userId": reviewerID}
	return s.c.Do(ctx, http.MethodPut, "/products/approve/"+url.PathEscape(id), nil, token, body, nil)
}

// Reject PUT /products/reject/{id} con {userId, note}.
func (s *ProductService) Reject(ctx context.Context, token, id, reviewerID, reason string) error {
	body := map[string]string{"userId": reviewerID, "note": reason}
	return s.c.Do(ctx, http.MethodPut, "/products/reject/"+url.PathEscape(id), nil, token, body, nil)
}

// SubmitCreate POST /products.
func (s *ProductService) SubmitCreate(ctx context.Context, token string, payload any) (review.ChangeRequest, error) {
	return submit[entity.Product](ctx, s.c, review.KindProduct, http.MethodPost, "/products", token, payload)
}

// SubmitUpdate PUT /products/{id}.
func (s *ProductService) SubmitUpdate(ctx context.Context, token, id string, payload any) (review.ChangeRequest, error) {
	return submit[entity.Product](ctx, s.c, review.KindProduct, http.MethodPut, "/products/"+url.PathEscape(id), token, payload)
}

// SubmitStatusChange PUT /products/status/{id}.
func (s *ProductService) SubmitStatusChange(ctx context.Context, token, id string, to review.Activity) (review.ChangeRequest, error) {
	return submit[entity.Product](ctx, s.c, review.KindProduct, http.MethodPut, "/products/status/"+url.PathEscape(id), token, statusBody(to))
}
