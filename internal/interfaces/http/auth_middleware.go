package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-admin/internal/application/approval"
	"github.com/jhoicas/inventario-admin/internal/application/dto"
	"github.com/jhoicas/inventario-admin/internal/domain/access"
	"github.com/jhoicas/inventario-admin/internal/domain/entity"
	"github.com/jhoicas/inventario-admin/pkg/logger"
)

// Locals keys de la sesión en Fiber.
const (
	LocalSession = "session"
	LocalToken   = "console_token"

	localUpstreamRejected = "upstream_rejected"
)

// sessionCloser cierra una sesión persistida. Lo implementa *auth.AuthUseCase.
type sessionCloser interface {
	Logout(ctx context.Context, sessionID string) error
}

// sessionResolver es el contrato mínimo que necesita el middleware para resolver la sesión.
// Lo implementa *auth.AuthUseCase.
type sessionResolver interface {
	Resolve(ctx context.Context, token string) (*entity.Session, error)
}

// AuthMiddleware valida el token de la consola (Bearer o cookie de sesión), carga la sesión
// persistida en c.Locals y responde 401 LOGIN_REQUIRED si no hay sesión válida.
func AuthMiddleware(resolver sessionResolver, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerOrCookie(c, cookieName)
		if !ok {
			return loginRequired(c, "sesión requerida")
		}
		sess, err := resolver.Resolve(c.UserContext(), token)
		if err != nil {
			return loginRequired(c, "sesión inválida o expirada")
		}
		c.Locals(LocalSession, sess)
		c.Locals(LocalToken, token)
		return c.Next()
	}
}

// CloseRejectedSession cierra la sesión de la consola cuando el backend rechazó su access token
// (401) durante la petición y borra la cookie. Debe usarse DESPUÉS de AuthMiddleware.
func CloseRejectedSession(closer sessionCloser, cookieName string, secure bool, log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		err := c.Next()
		rejected, _ := c.Locals(localUpstreamRejected).(bool)
		sess := GetSession(c)
		if !rejected || sess == nil {
			return err
		}
		if lerr := closer.Logout(c.UserContext(), sess.ID); lerr != nil {
			log.Error().Err(lerr).Str("session_id", sess.ID).Msg("cerrar sesión rechazada por el backend")
		}
		if cookieName != "" {
			c.Cookie(&fiber.Cookie{
				Name:     cookieName,
				Value:    "",
				Path:     "/",
				Expires:  time.Unix(0, 0),
				HTTPOnly: true,
				Secure:   secure,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}
		return err
	}
}

// OptionalAuth carga la sesión si el token es válido y continúa sin ella en caso contrario.
func OptionalAuth(resolver sessionResolver, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearerOrCookie(c, cookieName); ok {
			if sess, err := resolver.Resolve(c.UserContext(), token); err == nil {
				c.Locals(LocalSession, sess)
				c.Locals(LocalToken, token)
			}
		}
		return c.Next()
	}
}

// bearerOrCookie obtiene el token del header Authorization o, si no viene, de la cookie.
func bearerOrCookie(c *fiber.Ctx, cookieName string) (string, bool) {
	if header := c.Get(fiber.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		token := strings.TrimSpace(parts[1])
		return token, token != ""
	}
	if cookieName == "" {
		return "", false
	}
	token := strings.TrimSpace(c.Cookies(cookieName))
	return token, token != ""
}

// RequireRole verifica que el usuario de la sesión tenga alguno de los roles permitidos.
// Debe usarse DESPUÉS de AuthMiddleware.
func RequireRole(allowed ...string) fiber.Handler {
	set := make(map[string]bool, len(allowed))
	for _, r := range allowed {
		set[strings.ToUpper(r)] = true
	}
	return func(c *fiber.Ctx) error {
		sess := GetSession(c)
		if sess == nil {
			return loginRequired(c, "sesión requerida")
		}
		if !set[sess.User.NormalizedRole()] {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:     "FORBIDDEN",
				Message:  "su rol no tiene acceso a esta sección",
				Redirect: access.UnauthorizedPath,
			})
		}
		return c.Next()
	}
}

// RequireReviewer atajo de RequireRole para ADMIN y MANAGER.
func RequireReviewer() fiber.Handler {
	return RequireRole(entity.RoleAdmin, entity.RoleManager)
}

func loginRequired(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Code:     "LOGIN_REQUIRED",
		Message:  msg,
		Redirect: access.LoginPath,
	})
}

// GetSession devuelve la sesión del contexto (después del middleware de auth).
func GetSession(c *fiber.Ctx) *entity.Session {
	s, _ := c.Locals(LocalSession).(*entity.Session)
	return s
}

// GetUserID devuelve el ID del usuario de la sesión.
func GetUserID(c *fiber.Ctx) string {
	if s := GetSession(c); s != nil {
		return s.User.ID
	}
	return ""
}

// GetRole devuelve el rol normalizado del usuario de la sesión.
func GetRole(c *fiber.Ctx) string {
	if s := GetSession(c); s != nil {
		return s.User.NormalizedRole()
	}
	return ""
}

// actorOf arma el actor de los casos de uso de revisión.
func actorOf(c *fiber.Ctx) approval.Actor {
	s := GetSession(c)
	if s == nil {
		return approval.Actor{}
	}
	return approval.Actor{SessionID: s.ID, Token: s.AccessToken, User: s.User}
}
