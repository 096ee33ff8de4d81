// Package approval casos de uso de los tableros de revisión: listado, detalle, aprobación,
// rechazo, cambio de actividad y envío de solicitudes de alta y edición.
package approval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-admin/internal/application/dto"
	"github.com/jhoicas/inventario-admin/internal/application/state"
	"github.com/jhoicas/inventario-admin/internal/domain"
	"github.com/jhoicas/inventario-admin/internal/domain/entity"
	"github.com/jhoicas/inventario-admin/internal/domain/repository"
	"github.com/jhoicas/inventario-admin/internal/domain/review"
	"github.com/jhoicas/inventario-admin/pkg/logger"
)

// ReportMaxItems tope de filas del reporte PDF.
const ReportMaxItems = review.MaxPageSize

// Service casos de uso de revisión. logs y report son opcionales.
type Service struct {
	gateways   map[review.Kind]Gateway
	categories CategoryCatalog
	registry   *state.Registry
	logs       repository.ReviewLogRepository
	report     ReportRenderer
	log        *logger.Logger
	now        func() time.Time
}

// Deps dependencias del servicio.
type Deps struct {
	Gateways   []Gateway
	Categories CategoryCatalog
	Registry   *state.Registry
	Logs       repository.ReviewLogRepository
	Report     ReportRenderer
	Log        *logger.Logger
	Now        func() time.Time
}

// NewService construye el servicio de revisión.
func NewService(d Deps) *Service {
	s := &Service{
		gateways:   make(map[review.Kind]Gateway, len(d.Gateways)),
		categories: d.Categories,
		registry:   d.Registry,
		logs:       d.Logs,
		report:     d.Report,
		log:        d.Log,
		now:        d.Now,
	}
	for _, g := range d.Gateways {
		s.gateways[g.Kind()] = g
	}
	if s.registry == nil {
		s.registry = state.NewRegistry()
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	s.log = s.log.Named("approval")
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) gateway(kind review.Kind) (Gateway, error) {
	g, ok := s.gateways[kind]
	if !ok {
		return nil, fmt.Errorf("%w: tipo de entidad %q", domain.ErrNotFound, kind)
	}
	return g, nil
}

// List obtiene una página del backend (filtros y paginación del lado servidor), reaplica el
// filtro/orden local y la guarda en el tablero de la sesión. Si mientras tanto el tablero cambió
// (otra carga o una transición), el resultado se devuelve al llamador pero no se guarda.
func (s *Service) List(ctx context.Context, actor Actor, kind review.Kind, q review.Query) (*dto.ReviewListResponse, error) {
	g, err := s.gateway(kind)
	if err != nil {
		return nil, err
	}
	q = q.Normalized()
	ws := s.registry.Hydrate(actor.SessionID)
	ticket := ws.Begin(kind, q)

	items, page, err := g.List(ctx, actor.Token, q)
	if err != nil {
		ws.Abort(ticket)
		return nil, err
	}
	items = review.Apply(items, q)
	fetchedAt := s.now()
	if !ws.Commit(ticket, items, page, fetchedAt) {
		s.log.Debug().Str("kind", string(kind)).Msg("respuesta de listado obsoleta descartada")
	}
	return listResponse(kind, q, items, page, fetchedAt), nil
}

func listResponse(kind review.Kind, q review.Query, items []review.ChangeRequest, page state.PageInfo, at time.Time) *dto.ReviewListResponse {
	out := &dto.ReviewListResponse{
		Kind:      kind,
		Items:     make([]dto.ChangeRequestResponse, 0, len(items)),
		Query:     q,
		Page:      dto.PageResponse{Page: page.Page, Size: page.Size, Total: page.Total, TotalPages: page.TotalPages},
		FetchedAt: at,
	}
	for _, r := range items {
		out.Items = append(out.Items, dto.NewChangeRequestResponse(r))
	}
	return out
}

// Detail abre el modal de revisión: obtiene el registro vigente y calcula su vista de diferencias.
func (s *Service) Detail(ctx context.Context, actor Actor, kind review.Kind, id string) (*dto.ReviewDetailResponse, error) {
	g, err := s.gateway(kind)
	if err != nil {
		return nil, err
	}
	ws := s.registry.Hydrate(actor.SessionID)
	ticket := ws.Current(kind)
	r, err := g.Get(ctx, actor.Token, id)
	if err != nil {
		return nil, err
	}
	ws.Open(ticket, r)
	return detailResponse(r), nil
}

func detailResponse(r review.ChangeRequest) *dto.ReviewDetailResponse {
	return &dto.ReviewDetailResponse{
		Request: dto.NewChangeRequestResponse(r),
		Diff:    review.ResolveDiffView(r),
	}
}

// Approve aprueba una solicitud pendiente. Requiere confirmación explícita y vuelve a consultar
// el registro para verificar que siga PENDING antes de llamar al backend.
func (s *Service) Approve(ctx context.Context, actor Actor, kind review.Kind, id string, confirmed bool) (*dto.ReviewDetailResponse, error) {
	if !confirmed {
		return nil, domain.ErrConfirmation
	}
	g, err := s.gateway(kind)
	if err != nil {
		return nil, err
	}
	current, err := g.Get(ctx, actor.Token, id)
	if err != nil {
		return nil, err
	}
	if err := review.CheckApproval(current, actor.User.ID); err != nil {
		return nil, s.stale(ctx, actor, kind, err)
	}
	if err := g.Approve(ctx, actor.Token, id, actor.User.ID); err != nil {
		return nil, s.rejected(ctx, actor, kind, err)
	}
	s.record(ctx, actor, current, entity.ActionApprove, "")
	return s.afterTransition(ctx, actor, g, id)
}

// Reject rechaza una solicitud pendiente. El motivo se valida antes de cualquier llamada.
func (s *Service) Reject(ctx context.Context, actor Actor, kind review.Kind, id, reason string) (*dto.ReviewDetailResponse, error) {
	if err := review.CheckReason(reason); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	g, err := s.gateway(kind)
	if err != nil {
		return nil, err
	}
	current, err := g.Get(ctx, actor.Token, id)
	if err != nil {
		return nil, err
	}
	if err := review.CheckRejection(current, reason); err != nil {
		return nil, s.stale(ctx, actor, kind, err)
	}
	if err := g.Reject(ctx, actor.Token, id, actor.User.ID, reason); err != nil {
		return nil, s.rejected(ctx, actor, kind, err)
	}
	s.record(ctx, actor, current, entity.ActionReject, reason)
	return s.afterTransition(ctx, actor, g, id)
}

// ToggleActivity envía una solicitud STATUS_CHANGE hacia el estado opuesto. La entidad no cambia
// hasta que un revisor la apruebe.
func (s *Service) ToggleActivity(ctx context.Context, actor Actor, kind review.Kind, id string, confirmed bool) (*dto.ReviewDetailResponse, error) {
	if !confirmed {
		return nil, domain.ErrConfirmation
	}
	g, err := s.gateway(kind)
	if err != nil {
		return nil, err
	}
	current, err := g.Get(ctx, actor.Token, id)
	if err != nil {
		return nil, err
	}
	if err := review.CheckToggle(current); err != nil {
		return nil, err
	}
	to := current.Activity.Toggle()
	if _, err := g.SubmitStatusChange(ctx, actor.Token, id, to); err != nil {
		return nil, s.rejected(ctx, actor, kind, err)
	}
	s.record(ctx, actor, current, entity.ActionToggle, string(current.Activity)+" → "+string(to))
	return s.afterTransition(ctx, actor, g, id)
}

// SubmitCreate envía una solicitud de alta.
func (s *Service) SubmitCreate(ctx context.Context, actor Actor, kind review.Kind, form dto.Form) (*dto.ReviewDetailResponse, error) {
	if err := dto.Validate(form); err != nil {
		return nil, err
	}
	g, err := s.gateway(kind)
	if err != nil {
		return nil, err
	}
	created, err := g.SubmitCreate(ctx, actor.Token, form.Payload())
	if err != nil {
		return nil, err
	}
	entry := created
	if entry.Kind == "" {
		entry.Kind = kind
	}
	if entry.Fields == nil {
		entry.Fields = review.Snapshot{"name": form.Title()}
	}
	s.record(ctx, actor, withFormPrice(entry, form), entity.ActionSubmitCreate, "")
	s.registry.Hydrate(actor.SessionID).Invalidate(kind)
	s.refresh(ctx, actor, kind)
	if created.ID == "" {
		return nil, nil
	}
	return detailResponse(created), nil
}

// SubmitUpdate envía una solicitud de edición. El registro debe admitir edición en su estado actual.
func (s *Service) SubmitUpdate(ctx context.Context, actor Actor, kind review.Kind, id string, form dto.Form) (*dto.ReviewDetailResponse, error) {
	if err := dto.Validate(form); err != nil {
		return nil, err
	}
	g, err := s.gateway(kind)
	if err != nil {
		return nil, err
	}
	current, err := g.Get(ctx, actor.Token, id)
	if err != nil {
		return nil, err
	}
	if err := review.CheckEdit(current); err != nil {
		return nil, err
	}
	if _, err := g.SubmitUpdate(ctx, actor.Token, id, form.Payload()); err != nil {
		return nil, s.rejected(ctx, actor, kind, err)
	}
	s.record(ctx, actor, withFormPrice(current, form), entity.ActionSubmitUpdate, "")
	return s.afterTransition(ctx, actor, g, id)
}

// ActiveCategories categorías disponibles para el formulario de productos.
func (s *Service) ActiveCategories(ctx context.Context, actor Actor) ([]dto.CategoryOption, error) {
	if s.categories == nil {
		return nil, fmt.Errorf("catálogo de categorías no configurado")
	}
	cats, err := s.categories.Active(ctx, actor.Token)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryOption, 0, len(cats))
	for _, c := range cats {
		out = append(out, dto.CategoryOption{ID: c.ID, Name: c.Name})
	}
	return out, nil
}

// Report genera el PDF de la cola de revisión con los mismos filtros y orden del tablero.
func (s *Service) Report(ctx context.Context, actor Actor, kind review.Kind, q review.Query) ([]byte, error) {
	if s.report == nil {
		return nil, fmt.Errorf("generador de reportes no configurado")
	}
	g, err := s.gateway(kind)
	if err != nil {
		return nil, err
	}
	q = q.Normalized()
	q.Page, q.Size = 1, ReportMaxItems
	items, err := s.reportItems(ctx, actor, g, q)
	if err != nil {
		return nil, err
	}
	items = review.Apply(items, q)
	if len(items) > ReportMaxItems {
		items = items[:ReportMaxItems]
	}
	return s.report.RenderQueue(ReportMeta{
		Kind:        kind,
		Query:       q,
		GeneratedBy: actor.User.DisplayName(),
		GeneratedAt: s.now(),
	}, items)
}

// reportItems usa la colección completa cuando el gateway la ofrece; los filtros se aplican aquí.
func (s *Service) reportItems(ctx context.Context, actor Actor, g Gateway, q review.Query) ([]review.ChangeRequest, error) {
	if full, ok := g.(FullLister); ok {
		return full.All(ctx, actor.Token)
	}
	items, _, err := g.List(ctx, actor.Token, q)
	return items, err
}

// History bitácora de decisiones, más recientes primero. Sin bitácora configurada devuelve vacío.
func (s *Service) History(ctx context.Context, f repository.ReviewLogFilter) ([]dto.ReviewLogResponse, error) {
	out := []dto.ReviewLogResponse{}
	if s.logs == nil {
		return out, nil
	}
	if f.Limit <= 0 {
		f.Limit = 50
	}
	entries, err := s.logs.List(ctx, f)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		out = append(out, dto.NewReviewLogResponse(e))
	}
	return out, nil
}

// afterTransition invalida el detalle, recarga el listado y devuelve el registro tal como quedó
// en el backend.
func (s *Service) afterTransition(ctx context.Context, actor Actor, g Gateway, id string) (*dto.ReviewDetailResponse, error) {
	s.registry.Hydrate(actor.SessionID).Invalidate(g.Kind())
	s.refresh(ctx, actor, g.Kind())
	updated, err := g.Get(ctx, actor.Token, id)
	if err != nil {
		// La acción ya se aplicó; sin el registro actualizado el cliente recarga el listado.
		s.log.Warn().Err(err).Str("kind", string(g.Kind())).Str("id", id).Msg("releer registro tras transición")
		return nil, nil
	}
	return detailResponse(updated), nil
}

// rejected procesa un error del backend en una acción. Un conflicto (estado obsoleto) es
// autoritativo: se invalida y recarga el tablero antes de devolver el error.
func (s *Service) rejected(ctx context.Context, actor Actor, kind review.Kind, err error) error {
	if errors.Is(err, domain.ErrConflict) {
		s.settle(ctx, actor, kind)
	}
	return err
}

// stale si el registro ya no está pendiente, el tablero local está desactualizado y se recarga.
func (s *Service) stale(ctx context.Context, actor Actor, kind review.Kind, err error) error {
	if errors.Is(err, domain.ErrNotPending) {
		s.settle(ctx, actor, kind)
	}
	return err
}

// settle descarta el estado local del tablero y lo recarga.
func (s *Service) settle(ctx context.Context, actor Actor, kind review.Kind) {
	s.registry.Hydrate(actor.SessionID).Invalidate(kind)
	s.refresh(ctx, actor, kind)
}

// refresh recarga el listado con la última consulta del tablero. Los errores solo se registran.
func (s *Service) refresh(ctx context.Context, actor Actor, kind review.Kind) {
	q := s.registry.Hydrate(actor.SessionID).Snapshot(kind).Query
	if _, err := s.List(ctx, actor, kind, q); err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("recargar listado tras transición")
	}
}

// record agrega la acción a la bitácora. Un fallo no deshace la decisión ya aplicada.
func (s *Service) record(ctx context.Context, actor Actor, r review.ChangeRequest, action entity.ReviewAction, note string) {
	if s.logs == nil {
		return
	}
	entry := &entity.ReviewLog{
		ID:         uuid.NewString(),
		Kind:       string(r.Kind),
		EntityID:   r.ID,
		EntityName: r.Name(),
		Action:     action,
		ActorID:    actor.User.ID,
		ActorName:  actor.User.DisplayName(),
		Note:       note,
		Price:      priceOf(r),
		CreatedAt:  s.now(),
	}
	if err := s.logs.Record(ctx, entry); err != nil {
		s.log.Error().Err(err).
			Str("kind", entry.Kind).
			Str("entity_id", entry.EntityID).
			Str("action", string(action)).
			Msg("registrar bitácora de revisión")
	}
}

// priceOf precio vigente de un producto; nil para otras entidades.
func priceOf(r review.ChangeRequest) *decimal.Decimal {
	if r.Kind != review.KindProduct {
		return nil
	}
	for _, src := range []review.Snapshot{r.Pending, r.Fields} {
		if v, ok := src.Value("price"); ok {
			if d, err := decimal.NewFromString(v); err == nil {
				return &d
			}
		}
	}
	return nil
}

// withFormPrice usa el precio del formulario de producto como precio propuesto.
func withFormPrice(r review.ChangeRequest, form dto.Form) review.ChangeRequest {
	pf, ok := form.(*dto.ProductForm)
	if !ok {
		return r
	}
	price := pf.PriceValue()
	if price == nil {
		return r
	}
	out := r
	out.Pending = r.Pending.Clone()
	if out.Pending == nil {
		out.Pending = review.Snapshot{}
	}
	out.Pending["price"] = price.StringFixed(2)
	if _, ok := out.Fields.Value("name"); !ok {
		if _, has := out.Pending.Value("name"); !has {
			out.Pending["name"] = pf.Title()
		}
	}
	return out
}
