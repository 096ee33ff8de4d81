package backend

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/jhoicas/inventario-admin/internal/domain/review"
)

// submit envía una solicitud (alta, edición o cambio de estado) y decodifica el registro devuelto.
// Si el backend no devuelve el registro, se retorna un ChangeRequest vacío: el llamador vuelve a
// consultar antes de mostrar nada.
func submit[T fielder](ctx context.Context, c *Client, kind review.Kind, method, path, token string, payload any) (review.ChangeRequest, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, method, path, nil, token, payload, &raw); err != nil {
		return review.ChangeRequest{}, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return review.ChangeRequest{}, nil
	}
	return decodeChangeRequest[T](kind, raw)
}

// statusBody cuerpo de una solicitud de cambio de actividad.
func statusBody(to review.Activity) map[string]any {
	return map[string]any{
		"status":   string(to),
		"isActive": to == review.ActivityActive,
	}
}
