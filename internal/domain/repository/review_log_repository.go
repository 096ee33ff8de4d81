package repository

import (
	"context"

	"github.com/jhoicas/inventario-admin/internal/domain/entity"
)

// ReviewLogFilter filtros del historial. Campos vacíos no filtran.
type ReviewLogFilter struct {
	Kind     string
	EntityID string
	Limit    int
	Offset   int
}

// ReviewLogRepository puerto de persistencia de la bitácora de revisión.
type ReviewLogRepository interface {
	Record(ctx context.Context, log *entity.ReviewLog) error
	List(ctx context.Context, f ReviewLogFilter) ([]*entity.ReviewLog, error)
}
