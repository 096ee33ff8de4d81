// Package backend implementa el acceso al API REST de bodega: el cliente HTTP con token Bearer
// y un servicio por recurso (usuarios, categorías, productos, proveedores) con un método por endpoint.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/inventario-admin/internal/domain"
	"github.com/jhoicas/inventario-admin/pkg/logger"
)

// maxBodyBytes límite de lectura de respuestas del backend.
const maxBodyBytes = 4 << 20

// APIError error reportado por el backend. Message es el texto del servidor sin modificar:
// la consola lo muestra tal cual al usuario.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap permite errors.Is contra los errores de dominio según el código HTTP.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.ErrInvalidInput
	}
	return nil
}

// AsAPIError extrae un *APIError de la cadena de errores.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Client cliente HTTP del backend. Es seguro para uso concurrente.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient construye el cliente. baseURL no debe terminar en "/".
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log.Named("backend"),
	}
}

// envelope forma de respuesta del backend: {isSuccess, message, data}.
type envelope struct {
	IsSuccess *bool           `json:"isSuccess"`
	Message   string          `json:"message"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
}

// Do ejecuta una petición. token vacío = petición pública. in se serializa como JSON si no es nil;
// out recibe el campo data del sobre (o el cuerpo completo si la respuesta no trae sobre).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, token string, in, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backend: serializar request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("backend: crear HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("backend: timeout o cancelación: %w", ctx.Err())
		}
		return fmt.Errorf("backend: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("backend: leer respuesta: %w", err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("llamada al backend")

	env, hasEnvelope := parseEnvelope(raw)

	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Message:    errorMessage(env, raw, resp.StatusCode),
		}
	}
	if hasEnvelope && env.IsSuccess != nil && !*env.IsSuccess {
		// HTTP 200 con isSuccess:false: se trata como error de negocio.
		return &APIError{
			StatusCode: http.StatusUnprocessableEntity,
			Method:     method,
			Path:       path,
			Message:    errorMessage(env, raw, resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	payload := raw
	if hasEnvelope {
		payload = env.Data
	}
	if len(bytes.TrimSpace(payload)) == 0 || string(bytes.TrimSpace(payload)) == "null" {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("backend: deserializar respuesta de %s %s: %w", method, path, err)
	}
	return nil
}

// parseEnvelope detecta si el cuerpo viene envuelto en {isSuccess, message, data}.
func parseEnvelope(raw []byte) (envelope, bool) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return envelope{}, false
	}
	_, hasSuccess := keys["isSuccess"]
	_, hasData := keys["data"]
	if !hasSuccess && !hasData {
		return envelope{Message: rawString(keys["message"]), Error: rawString(keys["error"])}, false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, false
	}
	return env, true
}

func rawString(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

func errorMessage(env envelope, raw []byte, status int) string {
	if env.Message != "" {
		return env.Message
	}
	if env.Error != "" {
		return env.Error
	}
	if text := strings.TrimSpace(string(raw)); text != "" && !strings.HasPrefix(text, "{") && len(text) < 300 {
		return text
	}
	return fmt.Sprintf("el backend respondió HTTP %d", status)
}
