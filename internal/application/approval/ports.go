package approval

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-admin/internal/application/state"
	"github.com/jhoicas/inventario-admin/internal/domain/entity"
	"github.com/jhoicas/inventario-admin/internal/domain/review"
)

// Gateway servicio del backend para un tipo de entidad revisable.
type Gateway interface {
	Kind() review.Kind
	List(ctx context.Context, token string, q review.Query) ([]review.ChangeRequest, state.PageInfo, error)
	Get(ctx context.Context, token, id string) (review.ChangeRequest, error)
	Approve(ctx context.Context, token, id, reviewerID string) error
	Reject(ctx context.Context, token, id, reviewerID, reason string) error
	SubmitCreate(ctx context.Context, token string, payload any) (review.ChangeRequest, error)
	SubmitUpdate(ctx context.Context, token, id string, payload any) (review.ChangeRequest, error)
	SubmitStatusChange(ctx context.Context, token, id string, to review.Activity) (review.ChangeRequest, error)
}

// FullLister gateway que además entrega la colección completa sin paginar.
type FullLister interface {
	All(ctx context.Context, token string) ([]review.ChangeRequest, error)
}

// CategoryCatalog categorías activas para el selector del formulario de productos.
type CategoryCatalog interface {
	Active(ctx context.Context, token string) ([]entity.Category, error)
}

// ReportMeta encabezado del reporte de la cola de revisión.
type ReportMeta struct {
	Kind        review.Kind
	Query       review.Query
	GeneratedBy string
	GeneratedAt time.Time
}

// ReportRenderer genera el PDF de una cola de revisión.
type ReportRenderer interface {
	RenderQueue(meta ReportMeta, items []review.ChangeRequest) ([]byte, error)
}

// Actor usuario con sesión que ejecuta la acción.
type Actor struct {
	SessionID string
	Token     string
	User      entity.User
}
