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

var _ approval.Gateway = (*SupplierService)(nil)

// SupplierService endpoints /suppliers del backend.
type SupplierService struct {
	c *Client
}

// NewSupplierService construye el servicio.
func NewSupplierService(c *Client) *SupplierService {
	return &SupplierService{c: c}
}

// Kind tipo de entidad que sirve.
func (s *SupplierService) Kind() review.Kind { return review.KindSupplier }

// List GET /suppliers/filter. La cola de pendientes sin otros filtros sale de /suppliers/pending,
// que no pagina: la página se corta aquí.
func (s *SupplierService) List(ctx context.Context, token string, q review.Query) ([]review.ChangeRequest, state.PageInfo, error) {
	q = q.Normalized()
	if q.Status == review.StatusPending && unfiltered(review.Query{Search: q.Search, Activity: q.Activity, Type: q.Type}) {
		items, err := s.Pending(ctx, token)
		if err != nil {
			return nil, state.PageInfo{}, err
		}
		page, info := localPage(items, q)
		return page, info, nil
	}
	var raw json.RawMessage
	if err := s.c.Do(ctx, http.MethodGet, "/suppliers/filter", listQuery(q), token, nil, &raw); err != nil {
		return nil, state.PageInfo{}, err
	}
	return decodeChangeRequests[entity.Supplier](review.KindSupplier, raw)
}

// Pending GET /suppliers/pending: cola de proveedores por revisar.
func (s *SupplierService) Pending(ctx context.Context, token string) ([]review.ChangeRequest, error) {
	var raw json.RawMessage
	if err := s.c.Do(ctx, http.MethodGet, "/suppliers/pending", nil, token, nil, &raw); err != nil {
		return nil, err
	}
	items, _, err := decodeChangeRequests[entity.Supplier](review.KindSupplier, raw)
	return items, err
}

// Get GET /suppliers/{id}.
func (s *SupplierService) Get(ctx context.Context, token, id string) (review.ChangeRequest, error) {
	var raw json.RawMessage
	if err := s.c.Do(ctx, http.MethodGet, "/suppliers/"+url.PathEscape(id), nil, token, nil, &raw); err != nil {
		return review.ChangeRequest{}, err
	}
	return decodeChangeRequest[entity.Supplier](review.KindSupplier, raw)
}

// Approve PUT /suppliers/approve/{id}. El backend toma el revisor del token.
func (s *SupplierService) Approve(ctx context.Context, token, id, _ string) error {
	return s.c.Do(ctx, http.MethodPut, "/suppliers/approve/"+url.PathEscape(id), nil, token, map[string]string{}, nil)
}

// Reject PUT /suppliers/reject/{id} con {rejectedNote}.
func (s *SupplierService) Reject(ctx context.Context, token, id, _, reason string) error {
	body := map[string]string{"rejectedNote": reason}
	return s.c.Do(ctx, http.MethodPut, "/suppliers/reject/"+url.PathEscape(id), nil, token, body, nil)
}

// SubmitCreate POST /suppliers.
func (s *SupplierService) SubmitCreate(ctx context.Context, token string, payload any) (review.ChangeRequest, error) {
	return submit[entity.Supplier](ctx, s.c, review.KindSupplier, http.MethodPost, "/suppliers", token, payload)
}

// SubmitUpdate PUT /suppliers/{id}.
func (s *SupplierService) SubmitUpdate(ctx context.Context, token, id string, payload any) (review.ChangeRequest, error) {
	return submit[entity.Supplier](ctx, s.c, review.KindSupplier, http.MethodPut, "/suppliers/"+url.PathEscape(id), token, payload)
}

// SubmitStatusChange PUT /suppliers/status/{id}.
func (s *SupplierService) SubmitStatusChange(ctx context.Context, token, id string, to review.Activity) (review.ChangeRequest, error) {
	return submit[entity.Supplier](ctx, s.c, review.KindSupplier, http.MethodPut, "/suppliers/status/"+url.PathEscape(id), token, statusBody(to))
}
