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

var (
	_ approval.Gateway    = (*CategoryService)(nil)
	_ approval.FullLister = (*CategoryService)(nil)
)

// CategoryService endpoints /categories del backend.
type CategoryService struct {
	c *Client
}

// NewCategoryService construye el servicio.
func NewCategoryService(c *Client) *CategoryService {
	return &CategoryService{c: c}
}

// Kind tipo de entidad que sirve.
func (s *CategoryService) Kind() review.Kind { return review.KindCategory }

// ListPage GET /categories/list: listado paginado sin filtros.
func (s *CategoryService) ListPage(ctx context.Context, token string, page, size int) ([]review.ChangeRequest, state.PageInfo, error) {
	var raw json.RawMessage
	q := listQuery(review.Query{Page: page, Size: size})
	if err := s.c.Do(ctx, http.MethodGet, "/categories/list", q, token, nil, &raw); err != nil {
		return nil, state.PageInfo{}, err
	}
	return decodeChangeRequests[entity.Category](review.KindCategory, raw)
}

// List GET /categories/filter: búsqueda, filtros y paginación del lado servidor.
// Sin filtros usa /categories/list.
func (s *CategoryService) List(ctx context.Context, token string, q review.Query) ([]review.ChangeRequest, state.PageInfo, error) {
	q = q.Normalized()
	if unfiltered(q) {
		return s.ListPage(ctx, token, q.Page, q.Size)
	}
	var raw json.RawMessage
	if err := s.c.Do(ctx, http.MethodGet, "/categories/filter", listQuery(q), token, nil, &raw); err != nil {
		return nil, state.PageInfo{}, err
	}
	return decodeChangeRequests[entity.Category](review.KindCategory, raw)
}

// Active GET /categories/active: categorías aprobadas y activas (selector de productos).
func (s *CategoryService) Active(ctx context.Context, token string) ([]entity.Category, error) {
	var raw []json.RawMessage
	if err := s.c.Do(ctx, http.MethodGet, "/categories/active", nil, token, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]entity.Category, 0, len(raw))
	for _, item := range raw {
		var rec struct {
			entity.Category
			MongoID string `json:"_id"`
		}
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, err
		}
		if rec.ID == "" {
			rec.ID = rec.MongoID
		}
		out = append(out, rec.Category)
	}
	return out, nil
}

// All GET /categories: todas las categorías sin paginar.
func (s *CategoryService) All(ctx context.Context, token string) ([]review.ChangeRequest, error) {
	var raw json.RawMessage
	if err := s.c.Do(ctx, http.MethodGet, "/categories", nil, token, nil, &raw); err != nil {
		return nil, err
	}
	items, _, err := decodeChangeRequests[entity.Category](review.KindCategory, raw)
	return items, err
}

// Get GET /categories/{id}.
func (s *CategoryService) Get(ctx context.Context, token, id string) (review.ChangeRequest, error) {
	var raw json.RawMessage
	if err := s.c.Do(ctx, http.MethodGet, "/categories/"+url.PathEscape(id), nil, token, nil, &raw); err != nil {
		return review.ChangeRequest{}, err
	}
	return decodeChangeRequest[entity.Category](review.KindCategory, raw)
}

// Approve PUT /categories/approve/{id} con {userId}.
func (s *CategoryService) Approve(ctx context.Context, token, id, reviewerID string) error {
	body := map[string]string{"userId": reviewerID}
	return s.c.Do(ctx, http.MethodPut, "/categories/approve/"+url.PathEscape(id), nil, token, body, nil)
}

// Reject PUT /categories/reject/{id} con {userId, note}.
func (s *CategoryService) Reject(ctx context.Context, token, id, reviewerID, reason string) error {
	body := map[string]string{"userId": reviewerID, "note": reason}
	return s.c.Do(ctx, http.MethodPut, "/categories/reject/"+url.PathEscape(id), nil, token, body, nil)
}

// SubmitCreate POST /categories: abre una solicitud CREATE.
func (s *CategoryService) SubmitCreate(ctx context.Context, token string, payload any) (review.ChangeRequest, error) {
	return submit[entity.Category](ctx, s.c, review.KindCategory, http.MethodPost, "/categories", token, payload)
}

// SubmitUpdate PUT /categories/{id}: abre una solicitud UPDATE.
func (s *CategoryService) SubmitUpdate(ctx context.Context, token, id string, payload any) (review.ChangeRequest, error) {
	return submit[entity.Category](ctx, s.c, review.KindCategory, http.MethodPut, "/categories/"+url.PathEscape(id), token, payload)
}

// SubmitStatusChange PUT /categories/status/{id}: abre una solicitud STATUS_CHANGE.
func (s *CategoryService) SubmitStatusChange(ctx context.Context, token, id string, to review.Activity) (review.ChangeRequest, error) {
	return submit[entity.Category](ctx, s.c, review.KindCategory, http.MethodPut, "/categories/status/"+url.PathEscape(id), token, statusBody(to))
}
