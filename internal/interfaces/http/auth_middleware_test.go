package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-admin/internal/domain"
	"github.com/jhoicas/inventario-admin/internal/domain/entity"
	apphttp "github.com/jhoicas/inventario-admin/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const testCookie = "console_session"

// fakeResolver resuelve tokens fijos a sesiones.
type fakeResolver map[string]*entity.Session

func (f fakeResolver) Resolve(_ context.Context, token string) (*entity.Session, error) {
	if s, ok := f[token]; ok {
		return s, nil
	}
	return nil, domain.ErrSessionExpired
}

func sessionFor(role string) *entity.Session {
	return &entity.Session{
		ID:          "sess-" + role,
		User:        entity.User{ID: "u-" + role, Email: role + "@bodega.test", Role: role},
		AccessToken: "upstream-" + role,
	}
}

var resolver = fakeResolver{
	"tok-admin":   sessionFor("admin"),
	"tok-manager": sessionFor("MANAGER"),
	"tok-staff":   sessionFor("STAFF"),
}

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para resolver la sesión y cargar locals
//   - RequireRole para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(allowedRoles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/protected",
		apphttp.AuthMiddleware(resolver, testCookie),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":      true,
				"role":    apphttp.GetRole(c),
				"user_id": apphttp.GetUserID(c),
			})
		},
	)
	return app
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

// El rol de la sesión se compara sin importar mayúsculas.
func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	app := buildTestApp("ADMIN")
	resp := doRequest(t, app, "Bearer tok-admin")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "ADMIN", body["role"])
	assert.Equal(t, "u-admin", body["user_id"])
}

func TestRequireRole_ManagerAccedeRutaDeRevisores(t *testing.T) {
	app := buildTestApp("ADMIN", "MANAGER")
	resp := doRequest(t, app, "Bearer tok-manager")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRequireRole_StaffBloqueadoEnRutaDeRevisores(t *testing.T) {
	app := buildTestApp("ADMIN", "MANAGER")
	resp := doRequest(t, app, "Bearer tok-staff")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "FORBIDDEN", body["code"])
	assert.Equal(t, "/unauthorized", body["redirect"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinToken_Retorna401(t *testing.T) {
	app := buildTestApp("ADMIN")
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "LOGIN_REQUIRED", body["code"])
	assert.Equal(t, "/login", body["redirect"])
}

func TestAuthMiddleware_TokenDesconocido_Retorna401(t *testing.T) {
	app := buildTestApp("ADMIN")
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_EsquemaNoBearer_Retorna401(t *testing.T) {
	app := buildTestApp("ADMIN")
	resp := doRequest(t, app, "Basic tok-admin")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_AceptaCookieDeSesion(t *testing.T) {
	app := buildTestApp("STAFF")
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "tok-staff"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOptionalAuth_ContinuaSinSesion(t *testing.T) {
	app := fiber.New()
	app.Get("/nav", apphttp.OptionalAuth(resolver, testCookie), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"has_session": apphttp.GetSession(c) != nil})
	})

	for token, want := range map[string]bool{"": false, "Bearer nope": false, "Bearer tok-staff": true} {
		req := httptest.NewRequest(http.MethodGet, "/nav", nil)
		if token != "" {
			req.Header.Set("Authorization", token)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		var body map[string]bool
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, want, body["has_session"], "token %q", token)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireKind
// ──────────────────────────────────────────────────────────────────────────────

func TestRequireKind(t *testing.T) {
	app := fiber.New()
	app.Get("/boards/:kind", apphttp.RequireKind(), func(c *fiber.Ctx) error {
		return c.SendString(string(apphttp.GetKind(c)))
	})

	req := httptest.NewRequest(http.MethodGet, "/boards/suppliers", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "suppliers", string(raw))

	req = httptest.NewRequest(http.MethodGet, "/boards/warehouses", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_KIND", decodeError(t, resp)["code"])
}
