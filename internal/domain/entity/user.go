package entity

import "strings"

// Roles válidos para User.
const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleStaff   = "STAFF"
)

// User representa un usuario del backend de bodega tal como lo ve la consola.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

// NormalizedRole devuelve el rol en mayúsculas (el backend no siempre es consistente).
func (u *User) NormalizedRole() string {
	if u == nil {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(u.Role))
}

// IsReviewer indica si el usuario puede aprobar o rechazar solicitudes.
func (u *User) IsReviewer() bool {
	switch u.NormalizedRole() {
	case RoleAdmin, RoleManager:
		return true
	}
	return false
}

// DisplayName nombre a mostrar: nombre completo o, en su defecto, el email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if strings.TrimSpace(u.FullName) != "" {
		return u.FullName
	}
	return u.Email
}
