// Package access decide la navegación del cliente según la sesión y el rol.
package access

import (
	"path"
	"strings"

	"github.com/jhoicas/inventario-admin/internal/domain/entity"
)

// Rutas de redirección.
const (
	HomePath         = "/"
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

var publicPaths = map[string]bool{
	"/login":           true,
	"/register":        true,
	"/forgot-password": true,
	"/verify-otp":      true,
	"/reset-password":  true,
	"/unauthorized":    true,
}

// guestOnly rutas que un usuario con sesión no necesita ver.
var guestOnly = map[string]bool{
	"/login":    true,
	"/register": true,
}

// Principal usuario con sesión; nil = sin sesión.
type Principal struct {
	UserID string
	Role   string
}

// PrincipalOf construye el principal de un usuario.
func PrincipalOf(u *entity.User) *Principal {
	if u == nil {
		return nil
	}
	return &Principal{UserID: u.ID, Role: u.NormalizedRole()}
}

// IsReviewer indica si el principal puede aprobar o rechazar.
func (p *Principal) IsReviewer() bool {
	if p == nil {
		return false
	}
	u := entity.User{Role: p.Role}
	return u.IsReviewer()
}

// Decision resultado de la compuerta. Redirect vacío cuando Allowed.
type Decision struct {
	Allowed  bool
	Redirect string
}

func allow() Decision             { return Decision{Allowed: true} }
func redirect(to string) Decision { return Decision{Redirect: to} }

// Resolve aplica la tabla de decisión a una ruta del cliente:
//   - rutas públicas siempre pasan; con sesión, /login y /register redirigen al inicio.
//   - sin sesión, cualquier otra ruta redirige a /login.
//   - las rutas de revisión y de usuarios requieren ADMIN o MANAGER; si no, /unauthorized.
func Resolve(p string, who *Principal) Decision {
	clean := Normalize(p)
	if publicPaths[clean] {
		if who != nil && guestOnly[clean] {
			return redirect(HomePath)
		}
		return allow()
	}
	if who == nil {
		return redirect(LoginPath)
	}
	if IsReviewerRoute(clean) && !who.IsReviewer() {
		return redirect(UnauthorizedPath)
	}
	return allow()
}

// IsReviewerRoute rutas reservadas a revisores: /<entidad>/review... y /users...
func IsReviewerRoute(p string) bool {
	clean := Normalize(p)
	if clean == "/users" || strings.HasPrefix(clean, "/users/") {
		return true
	}
	segments := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	return len(segments) >= 2 && strings.HasPrefix(segments[1], "review")
}

// Normalize limpia la ruta: sin query, sin barra final, en minúsculas.
func Normalize(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
