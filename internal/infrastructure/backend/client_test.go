package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-admin/internal/application/state"
	"github.com/jhoicas/inventario-admin/internal/domain"
	"github.com/jhoicas/inventario-admin/internal/domain/review"
	"github.com/jhoicas/inventario-admin/internal/infrastructure/backend"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// captured última petición recibida por el servidor de prueba.
type captured struct {
	Method string
	Path   string
	Query  map[string]string
	Auth   string
	Body   map[string]any
}

// fakeServer responde siempre status + body y guarda la petición.
func fakeServer(t *testing.T, status int, body string) (*backend.Client, *captured) {
	t.Helper()
	got := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Method = r.Method
		got.Path = r.URL.Path
		got.Auth = r.Header.Get("Authorization")
		got.Query = map[string]string{}
		for k := range r.URL.Query() {
			got.Query[k] = r.URL.Query().Get(k)
		}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &got.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return backend.NewClient(srv.URL+"/api/", 5*time.Second, nil), got
}

// ──────────────────────────────────────────────────────────────────────────────
// Client
// ──────────────────────────────────────────────────────────────────────────────

func TestClient_Do_AdjuntaBearerYDesenvuelveData(t *testing.T) {
	c, got := fakeServer(t, http.StatusOK, `{"isSuccess":true,"message":"ok","data":{"value":42}}`)

	var out struct {
		Value int `json:"value"`
	}
	err := c.Do(context.Background(), http.MethodGet, "/ping", nil, "tok-123", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, 42, out.Value)
	assert.Equal(t, "Bearer tok-123", got.Auth)
	assert.Equal(t, "/api/ping", got.Path)
}

func TestClient_Do_SinSobreDecodificaCuerpoCompleto(t *testing.T) {
	c, got := fakeServer(t, http.StatusOK, `{"value":7}`)

	var out struct {
		Value int `json:"value"`
	}
	require.NoError(t, c.Do(context.Background(), http.MethodGet, "/ping", nil, "", nil, &out))
	assert.Equal(t, 7, out.Value)
	assert.Empty(t, got.Auth, "sin token no se envía Authorization")
}

func TestClient_Do_IsSuccessFalseEsErrorConMensajeLiteral(t *testing.T) {
	c, _ := fakeServer(t, http.StatusOK, `{"isSuccess":false,"message":"El nombre ya existe"}`)

	err := c.Do(context.Background(), http.MethodPost, "/categories", nil, "t", map[string]string{"name": "x"}, nil)
	require.Error(t, err)
	assert.Equal(t, "El nombre ya existe", err.Error())
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	apiErr, ok := backend.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "/categories", apiErr.Path)
}

func TestClient_Do_ErroresHTTPMapeanADominio(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrForbidden},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusConflict, domain.ErrConflict},
	}
	for _, tc := range cases {
		c, _ := fakeServer(t, tc.status, `{"message":"mensaje del servidor"}`)
		err := c.Do(context.Background(), http.MethodGet, "/x", nil, "t", nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, tc.want, "status %d", tc.status)
		assert.Equal(t, "mensaje del servidor", err.Error())
	}
}

func TestClient_Do_ErrorSinMensaje(t *testing.T) {
	c, _ := fakeServer(t, http.StatusBadGateway, ``)
	err := c.Do(context.Background(), http.MethodGet, "/x", nil, "t", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

// ──────────────────────────────────────────────────────────────────────────────
// Servicios de revisión
// ──────────────────────────────────────────────────────────────────────────────

func TestCategoryService_ApproveEnviaUserID(t *testing.T) {
	c, got := fakeServer(t, http.StatusOK, `{"isSuccess":true,"data":null}`)
	svc := backend.NewCategoryService(c)

	require.NoError(t, svc.Approve(context.Background(), "t", "cat-1", "rev-9"))
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/api/categories/approve/cat-1", got.Path)
	assert.Equal(t, map[string]any{"userId": "rev-9"}, got.Body)
}

func TestCategoryService_RejectEnviaUserIDYNota(t *testing.T) {
	c, got := fakeServer(t, http.StatusOK, `{"isSuccess":true}`)
	svc := backend.NewCategoryService(c)

	require.NoError(t, svc.Reject(context.Background(), "t", "cat-1", "rev-9", "Nombre duplicado"))
	assert.Equal(t, "/api/categories/reject/cat-1", got.Path)
	assert.Equal(t, map[string]any{"userId": "rev-9", "note": "Nombre duplicado"}, got.Body)
}

func TestSupplierService_RejectEnviaRejectedNote(t *testing.T) {
	c, got := fakeServer(t, http.StatusOK, `{"isSuccess":true}`)
	svc := backend.NewSupplierService(c)

	require.NoError(t, svc.Reject(context.Background(), "t", "sup-1", "rev-9", "Documentación incompleta"))
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/api/suppliers/reject/sup-1", got.Path)
	assert.Equal(t, map[string]any{"rejectedNote": "Documentación incompleta"}, got.Body)
}

func TestSupplierService_ListEnviaFiltrosYDecodificaPagina(t *testing.T) {
	body := `{"isSuccess":true,"data":{"items":[{
		"_id":"sup-1","name":"Acme","email":"ventas@acme.co","status":"PENDING","requestType":"UPDATE",
		"pendingChanges":{"name":"Acme SAS","phone":null},
		"createdBy":{"fullName":"Ana Ruiz","email":"ana@bodega.co"},
		"createdAt":"2026-01-02T10:00:00Z"
	}],"page":2,"size":10,"total":11}}`
	c, got := fakeServer(t, http.StatusOK, body)
	svc := backend.NewSupplierService(c)

	items, page, err := svc.List(context.Background(), "t", review.Query{Search: "acme", Status: "pending", Page: 2})
	require.NoError(t, err)

	assert.Equal(t, "/api/suppliers/filter", got.Path)
	assert.Equal(t, "2", got.Query["page"])
	assert.Equal(t, "10", got.Query["size"])
	assert.Equal(t, "acme", got.Query["search"])
	assert.Equal(t, "PENDING", got.Query["status"])

	assert.Equal(t, 2, page.TotalPages, "se calcula si el backend no lo envía")
	require.Len(t, items, 1)
	r := items[0]
	assert.Equal(t, "sup-1", r.ID)
	assert.Equal(t, review.KindSupplier, r.Kind)
	assert.Equal(t, review.TypeUpdate, r.Type())
	assert.Equal(t, review.Snapshot{"name": "Acme SAS"}, r.Pending, "null y llaves ausentes no forman parte de los cambios")
	assert.Equal(t, "Ana Ruiz", r.SubmittedBy.Name)
	assert.Equal(t, review.ActivityActive, r.Activity)
}

func TestSupplierService_PendingArregloPlano(t *testing.T) {
	body := `{"isSuccess":true,"data":[
		{"_id":"sup-1","name":"Acme","status":"PENDING","requestType":"CREATE"},
		{"_id":"sup-2","name":"Frío SAS","status":"PENDING","requestType":"CREATE"}
	]}`
	c, got := fakeServer(t, http.StatusOK, body)

	items, err := backend.NewSupplierService(c).Pending(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "/api/suppliers/pending", got.Path)
	require.Len(t, items, 2)
	assert.Equal(t, "sup-2", items[1].ID)
	assert.Equal(t, review.StatusPending, items[0].Status)
}

func TestCategoryService_ListPageSoloPaginacion(t *testing.T) {
	c, got := fakeServer(t, http.StatusOK, `{"isSuccess":true,"data":{"items":[],"page":3,"size":20,"total":45}}`)

	items, page, err := backend.NewCategoryService(c).ListPage(context.Background(), "t", 3, 20)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, "/api/categories/list", got.Path)
	assert.Equal(t, "3", got.Query["page"])
	assert.Equal(t, "20", got.Query["size"])
	assert.NotContains(t, got.Query, "search")
	assert.Equal(t, 3, page.TotalPages)
}

func TestCategoryService_AllSinPaginar(t *testing.T) {
	body := `{"isSuccess":true,"data":[{"id":"cat-1","name":"Lácteos","status":"APPROVED","requestType":"CREATE"}]}`
	c, got := fakeServer(t, http.StatusOK, body)

	items, err := backend.NewCategoryService(c).All(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/api/categories", got.Path)
	require.Len(t, items, 1)
	assert.Equal(t, review.KindCategory, items[0].Kind)
}

func TestSupplierService_ListColaPendienteUsaPending(t *testing.T) {
	body := `{"isSuccess":true,"data":[
		{"_id":"sup-1","name":"Acme","status":"PENDING","requestType":"CREATE","createdAt":"2026-01-01T10:00:00Z"},
		{"_id":"sup-2","name":"Frío SAS","status":"PENDING","requestType":"CREATE","createdAt":"2026-01-03T10:00:00Z"},
		{"_id":"sup-3","name":"Granos","status":"PENDING","requestType":"UPDATE","createdAt":"2026-01-02T10:00:00Z"}
	]}`
	c, got := fakeServer(t, http.StatusOK, body)

	items, page, err := backend.NewSupplierService(c).List(context.Background(), "t", review.Query{Status: "pending", Page: 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, "/api/suppliers/pending", got.Path)
	assert.Equal(t, state.PageInfo{Page: 2, Size: 2, Total: 3, TotalPages: 2}, page)
	require.Len(t, items, 1)
	assert.Equal(t, "sup-1", items[0].ID, "más recientes primero; la segunda página trae el más antiguo")
}

func TestSupplierService_ListPendienteConBusquedaUsaFilter(t *testing.T) {
	c, got := fakeServer(t, http.StatusOK, `{"isSuccess":true,"data":{"items":[],"page":1,"size":10,"total":0}}`)

	_, _, err := backend.NewSupplierService(c).List(context.Background(), "t", review.Query{Status: "PENDING", Type: "update"})
	require.NoError(t, err)
	assert.Equal(t, "/api/suppliers/filter", got.Path)
	assert.Equal(t, "UPDATE", got.Query["requestType"])
}

func TestCategoryService_ListSinFiltrosUsaListPage(t *testing.T) {
	c, got := fakeServer(t, http.StatusOK, `{"isSuccess":true,"data":{"items":[],"page":1,"size":10,"total":0}}`)
	svc := backend.NewCategoryService(c)

	_, _, err := svc.List(context.Background(), "t", review.Query{Search: "  "})
	require.NoError(t, err)
	assert.Equal(t, "/api/categories/list", got.Path)
	assert.Equal(t, "1", got.Query["page"])

	_, _, err = svc.List(context.Background(), "t", review.Query{Activity: "inactive"})
	require.NoError(t, err)
	assert.Equal(t, "/api/categories/filter", got.Path)
	assert.Equal(t, "INACTIVE", got.Query["activity"])
}

func TestCategoryService_GetStatusChange(t *testing.T) {
	body := `{"isSuccess":true,"data":{"id":"cat-2","name":"Lácteos","status":"APPROVED","isActive":false,
		"requestType":"STATUS_CHANGE","oldAction":"ACTIVE","newAction":"INACTIVE"}}`
	c, _ := fakeServer(t, http.StatusOK, body)

	r, err := backend.NewCategoryService(c).Get(context.Background(), "t", "cat-2")
	require.NoError(t, err)
	assert.Equal(t, review.StatusChange{From: review.ActivityActive, To: review.ActivityInactive}, r.Change)
	assert.Equal(t, review.ActivityInactive, r.Activity)
	assert.Nil(t, r.Pending)
}

func TestProductService_GetFormateaPrecioYTemperatura(t *testing.T) {
	body := `{"id":"p-1","name":"Yogur","sku":"YG-1","price":"3500.5","minTemperature":2,"maxTemperature":8,
		"status":"PENDING","requestType":"CREATE","pendingChanges":{"price":3600}}`
	c, got := fakeServer(t, http.StatusOK, body)

	r, err := backend.NewProductService(c).Get(context.Background(), "t", "p-1")
	require.NoError(t, err)
	assert.Equal(t, "/api/products/p-1", got.Path)
	assert.Equal(t, "3500.50", r.Fields["price"])
	assert.Equal(t, "2.0 °C", r.Fields["minTemperature"])
	assert.Equal(t, review.Snapshot{"price": "3600.00"}, r.Pending)
}

func TestProductService_SinPrecioSeMuestraNA(t *testing.T) {
	body := `{"isSuccess":true,"data":{"id":"p-2","name":"Queso","sku":"QS-1",
		"status":"PENDING","requestType":"UPDATE","pendingChanges":{"price":4200}}}`
	c, _ := fakeServer(t, http.StatusOK, body)

	r, err := backend.NewProductService(c).Get(context.Background(), "t", "p-2")
	require.NoError(t, err)
	_, ok := r.Fields.Value("price")
	assert.False(t, ok, "un precio ausente no se convierte en 0.00")

	view := review.ResolveDiffView(r)
	for _, cell := range view.Old {
		if cell.Key == "price" {
			assert.Equal(t, review.NotAvailable, cell.Value)
		}
	}
	for _, cell := range view.New {
		if cell.Key == "price" {
			assert.Equal(t, "4200.00", cell.Value)
		}
	}
}

func TestDecode_RequestTypeDesconocidoEsError(t *testing.T) {
	c, _ := fakeServer(t, http.StatusOK, `{"id":"x","requestType":"DELETE"}`)
	_, err := backend.NewCategoryService(c).Get(context.Background(), "t", "x")
	assert.Error(t, err)
}

func TestProductService_SubmitStatusChange(t *testing.T) {
	c, got := fakeServer(t, http.StatusOK, `{"isSuccess":true,"data":{"id":"p-1","status":"PENDING","requestType":"STATUS_CHANGE","oldAction":"ACTIVE","newAction":"INACTIVE"}}`)

	r, err := backend.NewProductService(c).SubmitStatusChange(context.Background(), "t", "p-1", review.ActivityInactive)
	require.NoError(t, err)
	assert.Equal(t, "/api/products/status/p-1", got.Path)
	assert.Equal(t, "INACTIVE", got.Body["status"])
	assert.Equal(t, false, got.Body["isActive"])
	assert.Equal(t, review.StatusPending, r.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// UserService
// ──────────────────────────────────────────────────────────────────────────────

func TestUserService_LoginLeeTokenYUsuario(t *testing.T) {
	body := `{"isSuccess":true,"data":{"accessToken":"upstream-tok","user":{"_id":"u-1","email":"a@b.co","fullName":"Ana","role":"manager"}}}`
	c, got := fakeServer(t, http.StatusOK, body)

	creds, err := backend.NewUserService(c).Login(context.Background(), "a@b.co", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "/api/users/login", got.Path)
	assert.Empty(t, got.Auth)
	assert.Equal(t, "upstream-tok", creds.AccessToken)
	assert.Equal(t, "u-1", creds.User.ID)
	assert.Equal(t, "MANAGER", creds.User.Role)
	assert.True(t, creds.User.IsActive)
}

func TestUserService_LoginCredencialesInvalidas(t *testing.T) {
	c, _ := fakeServer(t, http.StatusUnauthorized, `{"isSuccess":false,"message":"Email o contraseña incorrectos"}`)

	_, err := backend.NewUserService(c).Login(context.Background(), "a@b.co", "x")
	require.Error(t, err)
	assert.Equal(t, "Email o contraseña incorrectos", err.Error())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestUserService_ListaManagersArregloPlano(t *testing.T) {
	c, got := fakeServer(t, http.StatusOK, `{"data":[{"id":"m1","fullName":"Mario","role":"MANAGER"},{"id":"m2","name":"Marta","role":"MANAGER","isActive":false}]}`)

	users, err := backend.NewUserService(c).ManagersAvailable(context.Background(), "t")
	require.NoError(t, err)
	assert.Equal(t, "/api/users/get-manager-available", got.Path)
	require.Len(t, users, 2)
	assert.Equal(t, "Marta", users[1].FullName)
	assert.False(t, users[1].IsActive)
}
