// Package review modela las solicitudes de cambio (creación, actualización y cambio de estado)
// de categorías, productos y proveedores, y las reglas puras que la consola aplica sobre ellas:
// vista de diferencias, permisos de acciones y filtrado/ordenamiento de listados.
package review

import (
	"fmt"
	"strings"
	"time"
)

// Kind tipo de entidad revisable; coincide con el segmento de ruta del backend.
type Kind string

const (
	KindCategory Kind = "categories"
	KindProduct  Kind = "products"
	KindSupplier Kind = "suppliers"
)

// Kinds todas las entidades revisables, en orden de menú.
var Kinds = []Kind{KindCategory, KindProduct, KindSupplier}

// ParseKind valida un segmento de ruta.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("tipo de entidad desconocido: %q", s)
}

// Status estado de aprobación.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Activity estado de actividad, ortogonal al de aprobación.
type Activity string

const (
	ActivityActive   Activity = "ACTIVE"
	ActivityInactive Activity = "INACTIVE"
)

// Toggle devuelve el estado opuesto. Un valor vacío se trata como ACTIVE.
func (a Activity) Toggle() Activity {
	if a == ActivityInactive {
		return ActivityActive
	}
	return ActivityInactive
}

// RequestType tipo de solicitud; fijo desde su creación.
type RequestType string

const (
	TypeCreate       RequestType = "CREATE"
	TypeUpdate       RequestType = "UPDATE"
	TypeStatusChange RequestType = "STATUS_CHANGE"
)

// Snapshot valores de presentación de una entidad, indexados por la llave del campo.
type Snapshot map[string]string

// Value devuelve el valor del campo si existe y no está en blanco.
func (s Snapshot) Value(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}

// Clone copia superficial; nil se conserva.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Submitter quien envió la solicitud; solo se usa para mostrar y buscar.
type Submitter struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Change variante de la solicitud según su tipo. Cada variante lleva solo lo que necesita.
type Change interface {
	Type() RequestType
	isChange()
}

// CreateChange solicitud de alta. Mientras no se aprueba, los valores viven en Pending.
type CreateChange struct{}

// UpdateChange solicitud de modificación de campos.
// Previous es la instantánea anterior al commit que algunos registros aprobados conservan.
type UpdateChange struct {
	Previous Snapshot
}

// StatusChange solicitud de activar o desactivar una entidad ya aprobada.
type StatusChange struct {
	From Activity
	To   Activity
}

func (CreateChange) Type() RequestType { return TypeCreate }
func (UpdateChange) Type() RequestType { return TypeUpdate }
func (StatusChange) Type() RequestType { return TypeStatusChange }

func (CreateChange) isChange() {}
func (UpdateChange) isChange() {}
func (StatusChange) isChange() {}

// ChangeRequest registro revisable (categoría, producto o proveedor) con su solicitud vigente.
type ChangeRequest struct {
	ID           string
	Kind         Kind
	Status       Status
	Activity     Activity
	Fields       Snapshot // valores confirmados de la entidad
	Pending      Snapshot // cambios propuestos; nil si no hay solicitud en curso
	Change       Change
	SubmittedBy  Submitter
	CreatedAt    time.Time
	UpdatedAt    time.Time
	RejectedNote string
}

// Type tipo de la solicitud; vacío si el registro no trae variante.
func (r ChangeRequest) Type() RequestType {
	if r.Change == nil {
		return ""
	}
	return r.Change.Type()
}

// HasPending indica si hay cambios propuestos sin resolver.
func (r ChangeRequest) HasPending() bool {
	return r.Pending != nil
}

// Name nombre de la entidad: el confirmado o, si aún no existe, el propuesto.
func (r ChangeRequest) Name() string {
	if v, ok := r.Fields.Value("name"); ok {
		return v
	}
	if v, ok := r.Pending.Value("name"); ok {
		return v
	}
	return ""
}

// Email correo de la entidad (solo proveedores lo tienen).
func (r ChangeRequest) Email() string {
	if v, ok := r.Fields.Value("email"); ok {
		return v
	}
	v, _ := r.Pending.Value("email")
	return v
}

// CheckInvariants verifica las reglas que todo registro bien formado cumple.
func (r ChangeRequest) CheckInvariants() error {
	if r.Change == nil {
		return fmt.Errorf("solicitud %s sin tipo", r.ID)
	}
	if r.Status == StatusRejected && strings.TrimSpace(r.RejectedNote) == "" {
		return fmt.Errorf("solicitud %s rechazada sin nota", r.ID)
	}
	if r.Status != StatusPending && r.HasPending() {
		return fmt.Errorf("solicitud %s en estado %s con cambios pendientes", r.ID, r.Status)
	}
	return nil
}
