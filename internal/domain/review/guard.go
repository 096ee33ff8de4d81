package review

import (
	"strings"

	"github.com/jhoicas/inventario-admin/internal/domain"
)

// MinRejectReasonLength longitud mínima (en caracteres) del motivo de rechazo.
const MinRejectReasonLength = 10

// Permissions acciones habilitadas para un registro en su estado actual.
type Permissions struct {
	Edit           bool `json:"edit"`
	ToggleActivity bool `json:"toggleActivity"`
	Approve        bool `json:"approve"`
	Reject         bool `json:"reject"`
}

// Evaluate calcula qué acciones permite el registro. Las mismas reglas aplican a
// categorías, productos y proveedores.
func Evaluate(r ChangeRequest) Permissions {
	return Permissions{
		Edit:           CheckEdit(r) == nil,
		ToggleActivity: CheckToggle(r) == nil,
		Approve:        r.Status == StatusPending,
		Reject:         r.Status == StatusPending,
	}
}

// CheckEdit un registro en revisión, una creación rechazada (nunca confirmada) o uno con
// cambios propuestos no se edita.
func CheckEdit(r ChangeRequest) error {
	switch {
	case r.Status == StatusPending:
		return domain.ErrActionNotAllowed
	case r.Status == StatusRejected && r.Type() == TypeCreate:
		return domain.ErrActionNotAllowed
	case r.HasPending():
		return domain.ErrActionNotAllowed
	}
	return nil
}

// CheckToggle solo se activa/desactiva una entidad aprobada sin cambios propuestos.
func CheckToggle(r ChangeRequest) error {
	if r.Status != StatusApproved || r.HasPending() {
		return domain.ErrActionNotAllowed
	}
	return nil
}

// CheckApproval valida una aprobación antes de enviarla al backend.
// r debe ser el estado más reciente obtenido del backend.
func CheckApproval(r ChangeRequest, reviewerID string) error {
	if r.Status != StatusPending {
		return domain.ErrNotPending
	}
	if strings.TrimSpace(reviewerID) == "" {
		return domain.ErrReviewerRequired
	}
	return nil
}

// CheckRejection valida un rechazo antes de enviarlo al backend.
func CheckRejection(r ChangeRequest, reason string) error {
	if err := CheckReason(reason); err != nil {
		return err
	}
	if r.Status != StatusPending {
		return domain.ErrNotPending
	}
	return nil
}

// CheckReason valida solo el texto del motivo de rechazo.
func CheckReason(reason string) error {
	if len([]rune(strings.TrimSpace(reason))) < MinRejectReasonLength {
		return domain.ErrRejectReasonShort
	}
	return nil
}
