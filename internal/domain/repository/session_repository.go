package repository

import (
	"context"

	"github.com/jhoicas/inventario-admin/internal/domain/entity"
)

// SessionRepository almacenamiento de sesiones de consola.
// Get devuelve domain.ErrSessionExpired si la sesión no existe o venció.
type SessionRepository interface {
	Save(ctx context.Context, s *entity.Session) error
	Get(ctx context.Context, id string) (*entity.Session, error)
	Delete(ctx context.Context, id string) error
}
