package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-admin/internal/domain"
	"github.com/jhoicas/inventario-admin/internal/domain/entity"
	"github.com/jhoicas/inventario-admin/internal/domain/repository"
)

var _ repository.ReviewLogRepository = (*ReviewLogRepo)(nil)

// maxHistory tope de filas por consulta del historial.
const maxHistory = 200

const reviewLogSchema = `
CREATE TABLE IF NOT EXISTS review_logs (
	id          UUID PRIMARY KEY,
	kind        TEXT NOT NULL,
	entity_id   TEXT NOT NULL,
	entity_name TEXT NOT NULL DEFAULT '',
	action      TEXT NOT NULL,
	actor_id    TEXT NOT NULL,
	actor_name  TEXT NOT NULL DEFAULT '',
	note        TEXT NOT NULL DEFAULT '',
	price       NUMERIC(14,2),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS review_logs_kind_entity_idx ON review_logs (kind, entity_id, created_at DESC);`

// ReviewLogRepo bitácora de revisión sobre PostgreSQL (usable con pool o tx).
type ReviewLogRepo struct {
	q Querier
}

// NewReviewLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReviewLogRepository(q Querier) *ReviewLogRepo {
	return &ReviewLogRepo{q: q}
}

// EnsureSchema crea la tabla si no existe.
func (r *ReviewLogRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, reviewLogSchema); err != nil {
		return fmt.Errorf("crear tabla review_logs: %w", err)
	}
	return nil
}

// Record inserta una entrada.
func (r *ReviewLogRepo) Record(ctx context.Context, l *entity.ReviewLog) error {
	switch {
	case l == nil:
		return fmt.Errorf("%w: entrada vacía", domain.ErrInvalidInput)
	case l.ID == "" || l.Kind == "" || l.EntityID == "":
		return fmt.Errorf("%w: id, kind y entity_id son requeridos", domain.ErrInvalidInput)
	case l.Action == "" || l.ActorID == "":
		return fmt.Errorf("%w: acción y actor son requeridos", domain.ErrInvalidInput)
	}
	query := `
		INSERT INTO review_logs (id, kind, entity_id, entity_name, action, actor_id, actor_name, note, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.Kind, l.EntityID, l.EntityName, string(l.Action), l.ActorID, l.ActorName, l.Note,
		l.Price, l.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: entrada %s duplicada", domain.ErrConflict, l.ID)
		}
		return fmt.Errorf("insert review_log: %w", err)
	}
	return nil
}

// List entradas más recientes primero.
func (r *ReviewLogRepo) List(ctx context.Context, f repository.ReviewLogFilter) ([]*entity.ReviewLog, error) {
	query, args := buildHistoryQuery(f)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list review_logs: %w", err)
	}
	defer rows.Close()

	var out []*entity.ReviewLog
	for rows.Next() {
		var (
			l      entity.ReviewLog
			action string
			price  decimal.NullDecimal
		)
		if err := rows.Scan(&l.ID, &l.Kind, &l.EntityID, &l.EntityName, &action, &l.ActorID, &l.ActorName, &l.Note, &price, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review_log: %w", err)
		}
		l.Action = entity.ReviewAction(action)
		if price.Valid {
			p := price.Decimal
			l.Price = &p
		}
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows review_logs: %w", err)
	}
	return out, nil
}

// buildHistoryQuery arma el SELECT con los filtros presentes.
func buildHistoryQuery(f repository.ReviewLogFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.Kind != "" {
		args = append(args, f.Kind)
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if f.EntityID != "" {
		args = append(args, f.EntityID)
		where = append(where, fmt.Sprintf("entity_id = $%d", len(args)))
	}
	limit := f.Limit
	if limit <= 0 || limit > maxHistory {
		limit = maxHistory
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var b strings.Builder
	b.WriteString(`SELECT id::text, kind, entity_id, entity_name, action, actor_id, actor_name, note, price, created_at FROM review_logs`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	args = append(args, limit, offset)
	fmt.Fprintf(&b, " ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return b.String(), args
}
