package review

import (
	"strings"
	"time"

	"github.com/jhoicas/inventario-admin/internal/domain"
)

// Submit abre una nueva solicitud sobre el registro. Falla si ya hay una pendiente.
// Para CREATE, r puede venir vacío salvo ID y Kind.
func Submit(r ChangeRequest, change Change, proposed Snapshot, by Submitter, now time.Time) (ChangeRequest, error) {
	if r.Status == StatusPending || r.HasPending() {
		return r, domain.ErrConflict
	}
	out := r
	out.Change = change
	out.Status = StatusPending
	out.Pending = proposed.Clone()
	if out.Pending == nil {
		out.Pending = Snapshot{}
	}
	out.SubmittedBy = by
	out.RejectedNote = ""
	out.UpdatedAt = now
	if change.Type() == TypeCreate {
		out.CreatedAt = now
		out.Activity = ActivityActive
	}
	return out, nil
}

// ApplyApproval resultado de aprobar: los cambios propuestos se vuelcan sobre la entidad.
func ApplyApproval(r ChangeRequest, now time.Time) (ChangeRequest, error) {
	if r.Status != StatusPending {
		return r, domain.ErrNotPending
	}
	out := r
	previous := r.Fields.Clone()
	fields := r.Fields.Clone()
	if fields == nil {
		fields = Snapshot{}
	}
	for k, v := range r.Pending {
		fields[k] = v
	}
	switch c := r.Change.(type) {
	case UpdateChange:
		c.Previous = previous
		out.Change = c
	case StatusChange:
		out.Activity = c.To
	}
	out.Fields = fields
	out.Pending = nil
	out.Status = StatusApproved
	out.RejectedNote = ""
	out.UpdatedAt = now
	return out, nil
}

// ApplyRejection resultado de rechazar: la entidad no cambia y queda la nota.
func ApplyRejection(r ChangeRequest, note string, now time.Time) (ChangeRequest, error) {
	if r.Status != StatusPending {
		return r, domain.ErrNotPending
	}
	if len([]rune(strings.TrimSpace(note))) < MinRejectReasonLength {
		return r, domain.ErrRejectReasonShort
	}
	out := r
	out.Pending = nil
	out.Status = StatusRejected
	out.RejectedNote = strings.TrimSpace(note)
	out.UpdatedAt = now
	return out, nil
}
