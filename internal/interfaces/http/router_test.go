package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-admin/internal/application/approval"
	"github.com/jhoicas/inventario-admin/internal/application/auth"
	"github.com/jhoicas/inventario-admin/internal/application/dto"
	"github.com/jhoicas/inventario-admin/internal/application/state"
	"github.com/jhoicas/inventario-admin/internal/domain"
	"github.com/jhoicas/inventario-admin/internal/domain/entity"
	"github.com/jhoicas/inventario-admin/internal/domain/review"
	"github.com/jhoicas/inventario-admin/internal/infrastructure/backend"
	consoleredis "github.com/jhoicas/inventario-admin/internal/infrastructure/redis"
	apphttp "github.com/jhoicas/inventario-admin/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Backend falso
// ──────────────────────────────────────────────────────────────────────────────

// stubUsers usuarios del backend indexados por email.
type stubUsers struct {
	byEmail map[string]entity.User
}

func (s *stubUsers) Login(_ context.Context, email, _ string) (auth.Credentials, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return auth.Credentials{}, &backend.APIError{StatusCode: http.StatusUnauthorized, Message: "Email o contraseña incorrectos"}
	}
	return auth.Credentials{AccessToken: "upstream-" + u.ID, User: u}, nil
}

func (s *stubUsers) Register(context.Context, dto.RegisterRequest) error { return nil }
func (s *stubUsers) ResetPassword(context.Context, string) error         { return nil }
func (s *stubUsers) VerifyOTP(context.Context, string, string) error     { return nil }
func (s *stubUsers) ChangePassword(context.Context, dto.ChangePasswordRequest) error {
	return nil
}

func (s *stubUsers) ChangePasswordSetting(context.Context, string, dto.PasswordSettingRequest) error {
	return nil
}

func (s *stubUsers) ViewProfile(_ context.Context, token string) (entity.User, error) {
	for _, u := range s.byEmail {
		if "upstream-"+u.ID == token {
			return u, nil
		}
	}
	return entity.User{}, domain.ErrUnauthorized
}

func (s *stubUsers) UpdateProfile(_ context.Context, _ string, in dto.UpdateProfileRequest) (entity.User, error) {
	return entity.User{FullName: in.FullName, Phone: in.Phone, Address: in.Address}, nil
}

func (s *stubUsers) ManagersAvailable(context.Context, string) ([]entity.User, error) {
	return []entity.User{s.byEmail["marta@bodega.test"]}, nil
}

func (s *stubUsers) StaffAvailable(context.Context, string) ([]entity.User, error) {
	return []entity.User{s.byEmail["sergio@bodega.test"]}, nil
}

func (s *stubUsers) List(context.Context, string) ([]entity.User, error) {
	out := make([]entity.User, 0, len(s.byEmail))
	for _, u := range s.byEmail {
		out = append(out, u)
	}
	return out, nil
}

// stubCategories tablero de categorías en memoria.
type stubCategories struct {
	mu      sync.Mutex
	records map[string]review.ChangeRequest
	getErr  error
	listErr error
	// rereadErr hace fallar las lecturas posteriores a una aprobación.
	rereadErr error
	approved  bool
}

func (s *stubCategories) Kind() review.Kind { return review.KindCategory }

func (s *stubCategories) List(_ context.Context, _ string, q review.Query) ([]review.ChangeRequest, state.PageInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, state.PageInfo{}, s.listErr
	}
	out := make([]review.ChangeRequest, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	return out, state.PageInfo{Page: q.Page, Size: q.Size, Total: len(out), TotalPages: 1}, nil
}

func (s *stubCategories) Get(_ context.Context, _ string, id string) (review.ChangeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return review.ChangeRequest{}, s.getErr
	}
	if s.approved && s.rereadErr != nil {
		return review.ChangeRequest{}, s.rereadErr
	}
	r, ok := s.records[id]
	if !ok {
		return review.ChangeRequest{}, &backend.APIError{StatusCode: http.StatusNotFound, Message: "Categoría no encontrada"}
	}
	return r, nil
}

func (s *stubCategories) Approve(_ context.Context, _ string, id, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := review.ApplyApproval(s.records[id], time.Now())
	if err != nil {
		return err
	}
	s.records[id] = next
	s.approved = true
	return nil
}

func (s *stubCategories) Reject(_ context.Context, _ string, id, _ string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := review.ApplyRejection(s.records[id], reason, time.Now())
	if err != nil {
		return err
	}
	s.records[id] = next
	return nil
}

func (s *stubCategories) SubmitCreate(context.Context, string, any) (review.ChangeRequest, error) {
	return review.ChangeRequest{}, nil
}

func (s *stubCategories) SubmitUpdate(context.Context, string, string, any) (review.ChangeRequest, error) {
	return review.ChangeRequest{}, nil
}

func (s *stubCategories) SubmitStatusChange(context.Context, string, string, review.Activity) (review.ChangeRequest, error) {
	return review.ChangeRequest{}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type consoleApp struct {
	app        *fiber.App
	categories *stubCategories
}

func newConsoleApp(t *testing.T) *consoleApp {
	t.Helper()
	mr := miniredis.RunT(t)
	client := consoleredis.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })

	users := &stubUsers{byEmail: map[string]entity.User{
		"marta@bodega.test":  {ID: "u-manager", Email: "marta@bodega.test", FullName: "Marta", Role: "MANAGER", IsActive: true},
		"sergio@bodega.test": {ID: "u-staff", Email: "sergio@bodega.test", FullName: "Sergio", Role: "STAFF", IsActive: true},
	}}
	categories := &stubCategories{records: map[string]review.ChangeRequest{
		"c1": {
			ID:          "c1",
			Kind:        review.KindCategory,
			Status:      review.StatusPending,
			Activity:    review.ActivityActive,
			Pending:     review.Snapshot{"name": "Congelados", "storageCondition": "congelado"},
			Change:      review.CreateChange{},
			SubmittedBy: review.Submitter{Name: "Sergio", Email: "sergio@bodega.test"},
			CreatedAt:   time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
		},
	}}

	registry := state.NewRegistry()
	authUC := auth.NewAuthUseCase(users, consoleredis.NewSessionStore(client, "session-secret", time.Hour), registry,
		auth.JWTConfig{Secret: "jwt-secret", ExpMinutes: 60, Issuer: "inventario-admin-test"}, nil)
	reviews := approval.NewService(approval.Deps{
		Gateways: []approval.Gateway{categories},
		Registry: registry,
	})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:     authUC,
		Reviews:    reviews,
		CookieName: testCookie,
	})
	return &consoleApp{app: app, categories: categories}
}

func (a *consoleApp) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func (a *consoleApp) login(t *testing.T, email string) string {
	t.Helper()
	resp, raw := a.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: "secreto123"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out.Token
}

func errorOf(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var out dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth y perfil
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_LoginEntregaCookieYToken(t *testing.T) {
	a := newConsoleApp(t)
	resp, raw := a.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "marta@bodega.test", Password: "secreto123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.NotEmpty(t, out.Token)
	assert.True(t, out.User.Reviewer)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == testCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, out.Token, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestRouter_LoginValidaCampos(t *testing.T) {
	a := newConsoleApp(t)
	resp, raw := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "no-es-email"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := errorOf(t, raw)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Fields, "email")
	assert.Contains(t, e.Fields, "password")
}

// El mensaje del backend llega al cliente sin cambios.
func TestRouter_LoginCredencialesInvalidasMensajeLiteral(t *testing.T) {
	a := newConsoleApp(t)
	resp, raw := a.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "nadie@bodega.test", Password: "secreto123"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	e := errorOf(t, raw)
	assert.Equal(t, "BACKEND", e.Code)
	assert.Equal(t, "Email o contraseña incorrectos", e.Message)
}

func TestRouter_MeYLogout(t *testing.T) {
	a := newConsoleApp(t)
	token := a.login(t, "sergio@bodega.test")

	resp, raw := a.do(t, http.MethodGet, "/api/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var me dto.UserResponse
	require.NoError(t, json.Unmarshal(raw, &me))
	assert.Equal(t, "STAFF", me.Role)
	assert.False(t, me.Reviewer)

	resp, _ = a.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = a.do(t, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "LOGIN_REQUIRED", errorOf(t, raw).Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Navegación y roles
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_Navigation(t *testing.T) {
	a := newConsoleApp(t)
	staff := a.login(t, "sergio@bodega.test")
	manager := a.login(t, "marta@bodega.test")

	cases := []struct {
		name     string
		token    string
		path     string
		allowed  bool
		redirect string
	}{
		{"sin sesión a revisión", "", "/suppliers/review", false, "/login"},
		{"sin sesión a login", "", "/login", true, ""},
		{"staff a revisión", staff, "/suppliers/review", false, "/unauthorized"},
		{"manager a revisión", manager, "/suppliers/review", true, ""},
		{"staff a login", staff, "/login", false, "/"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := a.do(t, http.MethodGet, "/api/navigation?path="+tc.path, tc.token, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var out dto.NavigationResponse
			require.NoError(t, json.Unmarshal(raw, &out))
			assert.Equal(t, tc.allowed, out.Allowed)
			assert.Equal(t, tc.redirect, out.Redirect)
		})
	}
}

func TestRouter_UsuariosSoloRevisores(t *testing.T) {
	a := newConsoleApp(t)

	resp, raw := a.do(t, http.MethodGet, "/api/users/managers", a.login(t, "sergio@bodega.test"), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "/unauthorized", errorOf(t, raw).Redirect)

	resp, raw = a.do(t, http.MethodGet, "/api/users/managers", a.login(t, "marta@bodega.test"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var users []dto.UserResponse
	require.NoError(t, json.Unmarshal(raw, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "u-manager", users[0].ID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tableros de revisión
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_ListadoDeRevision(t *testing.T) {
	a := newConsoleApp(t)
	resp, raw := a.do(t, http.MethodGet, "/api/reviews/categories?status=pending", a.login(t, "marta@bodega.test"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var out dto.ReviewListResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Congelados", out.Items[0].Name)
	assert.Equal(t, review.StatusPending, out.Query.Status)
}

func TestRouter_ListadoFiltroInvalido(t *testing.T) {
	a := newConsoleApp(t)
	resp, raw := a.do(t, http.MethodGet, "/api/reviews/categories?status=archivado", a.login(t, "marta@bodega.test"), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorOf(t, raw).Fields, "status")
}

func TestRouter_TableroDesconocido(t *testing.T) {
	a := newConsoleApp(t)
	resp, raw := a.do(t, http.MethodGet, "/api/reviews/warehouses", a.login(t, "marta@bodega.test"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "UNKNOWN_KIND", errorOf(t, raw).Code)
}

func TestRouter_ApproveStaffProhibido(t *testing.T) {
	a := newConsoleApp(t)
	resp, _ := a.do(t, http.MethodPost, "/api/reviews/categories/c1/approve", a.login(t, "sergio@bodega.test"), dto.ConfirmRequest{Confirm: true})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, review.StatusPending, a.categories.records["c1"].Status)
}

func TestRouter_ApproveSinConfirmacion(t *testing.T) {
	a := newConsoleApp(t)
	resp, raw := a.do(t, http.MethodPost, "/api/reviews/categories/c1/approve", a.login(t, "marta@bodega.test"), dto.ConfirmRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "CONFIRMATION_REQUIRED", errorOf(t, raw).Code)
}

func TestRouter_ApproveConfirmado(t *testing.T) {
	a := newConsoleApp(t)
	resp, raw := a.do(t, http.MethodPost, "/api/reviews/categories/c1/approve", a.login(t, "marta@bodega.test"), dto.ConfirmRequest{Confirm: true})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var out dto.ReviewDetailResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, review.StatusApproved, out.Request.Status)
	assert.True(t, out.Request.Permissions.ToggleActivity)
}

func TestRouter_ApproveDosVecesNoPermitido(t *testing.T) {
	a := newConsoleApp(t)
	token := a.login(t, "marta@bodega.test")
	resp, _ := a.do(t, http.MethodPost, "/api/reviews/categories/c1/approve", token, dto.ConfirmRequest{Confirm: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw := a.do(t, http.MethodPost, "/api/reviews/categories/c1/approve", token, dto.ConfirmRequest{Confirm: true})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ACTION_NOT_ALLOWED", errorOf(t, raw).Code)
}

func TestRouter_ApproveSinRegistroReleidoResponde202(t *testing.T) {
	a := newConsoleApp(t)
	a.categories.rereadErr = &backend.APIError{StatusCode: http.StatusInternalServerError, Message: "Internal server error"}

	resp, raw := a.do(t, http.MethodPost, "/api/reviews/categories/c1/approve", a.login(t, "marta@bodega.test"), dto.ConfirmRequest{Confirm: true})
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(raw))

	var out dto.MessageResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.NotEmpty(t, out.Message)
	assert.NotEqual(t, "null", string(raw))
}

func TestRouter_RejectMotivoCorto(t *testing.T) {
	a := newConsoleApp(t)
	resp, raw := a.do(t, http.MethodPost, "/api/reviews/categories/c1/reject", a.login(t, "marta@bodega.test"), dto.RejectRequest{Reason: "no"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	e := errorOf(t, raw)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Fields, "reason")
}

func TestRouter_Reject(t *testing.T) {
	a := newConsoleApp(t)
	resp, raw := a.do(t, http.MethodPost, "/api/reviews/categories/c1/reject", a.login(t, "marta@bodega.test"),
		dto.RejectRequest{Reason: "la condición de almacenamiento no aplica"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var out dto.ReviewDetailResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, review.StatusRejected, out.Request.Status)
	assert.Equal(t, "la condición de almacenamiento no aplica", out.Request.RejectedNote)
}

func TestRouter_DetalleNoEncontradoMensajeDelBackend(t *testing.T) {
	a := newConsoleApp(t)
	resp, raw := a.do(t, http.MethodGet, "/api/reviews/categories/zz", a.login(t, "marta@bodega.test"), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	e := errorOf(t, raw)
	assert.Equal(t, "BACKEND", e.Code)
	assert.Equal(t, "Categoría no encontrada", e.Message)
}

func TestRouter_ErrorInternoDelBackendEs502(t *testing.T) {
	a := newConsoleApp(t)
	a.categories.getErr = &backend.APIError{StatusCode: http.StatusInternalServerError, Message: "Internal server error"}
	resp, raw := a.do(t, http.MethodGet, "/api/reviews/categories/c1", a.login(t, "marta@bodega.test"), nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "Internal server error", errorOf(t, raw).Message)
}

func TestRouter_BackendRechazaTokenCierraSesion(t *testing.T) {
	a := newConsoleApp(t)
	token := a.login(t, "marta@bodega.test")
	a.categories.listErr = &backend.APIError{StatusCode: http.StatusUnauthorized, Message: "Token expirado"}

	resp, raw := a.do(t, http.MethodGet, "/api/reviews/categories", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	e := errorOf(t, raw)
	assert.Equal(t, "LOGIN_REQUIRED", e.Code)
	assert.Equal(t, "/login", e.Redirect)
	assert.Equal(t, "Token expirado", e.Message)

	var cleared bool
	for _, ck := range resp.Cookies() {
		if ck.Name == testCookie && ck.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared, "la cookie de sesión se borra")

	a.categories.listErr = nil
	resp, raw = a.do(t, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "la sesión quedó cerrada")
	assert.Equal(t, "LOGIN_REQUIRED", errorOf(t, raw).Code)
}

func TestRouter_BackendProhibeRedirigeANoAutorizado(t *testing.T) {
	a := newConsoleApp(t)
	token := a.login(t, "marta@bodega.test")
	a.categories.listErr = &backend.APIError{StatusCode: http.StatusForbidden, Message: "No tiene permisos sobre categorías"}

	resp, raw := a.do(t, http.MethodGet, "/api/reviews/categories", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	e := errorOf(t, raw)
	assert.Equal(t, "FORBIDDEN", e.Code)
	assert.Equal(t, "/unauthorized", e.Redirect)
	assert.Equal(t, "No tiene permisos sobre categorías", e.Message)

	resp, _ = a.do(t, http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "un 403 no cierra la sesión")
}

func TestRouter_HistorialSinBitacora(t *testing.T) {
	a := newConsoleApp(t)
	resp, raw := a.do(t, http.MethodGet, "/api/reviews/history", a.login(t, "marta@bodega.test"), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.JSONEq(t, "[]", string(raw))
}
