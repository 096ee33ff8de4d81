package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/inventario-admin/internal/application/state"
	"github.com/jhoicas/inventario-admin/internal/domain/review"
)

// fielder entidades que exponen sus valores de presentación.
type fielder interface {
	Fields() map[string]string
}

type submitterRecord struct {
	FullName string `json:"fullName"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// record campos comunes de categorías, productos y proveedores en el backend.
// Los campos propios de cada entidad se leen del mismo JSON con el tipo de entidad.
type record struct {
	ID             string           `json:"id"`
	MongoID        string           `json:"_id"`
	Status         string           `json:"status"`
	Activity       string           `json:"activity"`
	IsActive       *bool            `json:"isActive"`
	RequestType    string           `json:"requestType"`
	PendingChanges json.RawMessage  `json:"pendingChanges"`
	PreviousData   json.RawMessage  `json:"previousData"`
	OldAction      string           `json:"oldAction"`
	NewAction      string           `json:"newAction"`
	CreatedBy      *submitterRecord `json:"createdBy"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
	RejectedNote   string           `json:"rejectedNote"`
	Note           string           `json:"note"`
}

// decodeChangeRequest convierte un registro del backend en la variante tipada de review.
func decodeChangeRequest[T fielder](kind review.Kind, raw json.RawMessage) (review.ChangeRequest, error) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return review.ChangeRequest{}, fmt.Errorf("backend: decodificar %s: %w", kind, err)
	}
	var ent T
	if err := json.Unmarshal(raw, &ent); err != nil {
		return review.ChangeRequest{}, fmt.Errorf("backend: decodificar campos de %s: %w", kind, err)
	}

	pending, err := partialSnapshot[T](rec.PendingChanges)
	if err != nil {
		return review.ChangeRequest{}, fmt.Errorf("backend: pendingChanges de %s: %w", kind, err)
	}
	previous, err := partialSnapshot[T](rec.PreviousData)
	if err != nil {
		return review.ChangeRequest{}, fmt.Errorf("backend: previousData de %s: %w", kind, err)
	}

	id := rec.ID
	if id == "" {
		id = rec.MongoID
	}

	var change review.Change
	switch review.RequestType(strings.ToUpper(rec.RequestType)) {
	case review.TypeCreate, "":
		change = review.CreateChange{}
	case review.TypeUpdate:
		change = review.UpdateChange{Previous: previous}
	case review.TypeStatusChange:
		change = review.StatusChange{From: parseActivity(rec.OldAction), To: parseActivity(rec.NewAction)}
	default:
		return review.ChangeRequest{}, fmt.Errorf("backend: requestType desconocido %q en %s %s", rec.RequestType, kind, id)
	}

	note := rec.RejectedNote
	if note == "" {
		note = rec.Note
	}

	out := review.ChangeRequest{
		ID:           id,
		Kind:         kind,
		Status:       review.Status(strings.ToUpper(rec.Status)),
		Activity:     activityOf(rec),
		Fields:       review.Snapshot(ent.Fields()),
		Pending:      pending,
		Change:       change,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
		RejectedNote: note,
	}
	if rec.CreatedBy != nil {
		name := rec.CreatedBy.FullName
		if name == "" {
			name = rec.CreatedBy.Name
		}
		out.SubmittedBy = review.Submitter{Name: name, Email: rec.CreatedBy.Email}
	}
	return out, nil
}

// partialSnapshot decodifica un objeto parcial (pendingChanges, previousData) conservando solo las
// llaves presentes. nil/null devuelve nil.
func partialSnapshot[T fielder](raw json.RawMessage) (review.Snapshot, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var present map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &present); err != nil {
		return nil, err
	}
	var ent T
	if err := json.Unmarshal(trimmed, &ent); err != nil {
		return nil, err
	}
	full := ent.Fields()
	out := make(review.Snapshot, len(present))
	for key, value := range present {
		if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
			continue
		}
		if v, ok := full[key]; ok {
			out[key] = v
		}
	}
	return out, nil
}

func parseActivity(s string) review.Activity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ACTIVE", "ACTIVATE", "TRUE":
		return review.ActivityActive
	case "INACTIVE", "DEACTIVATE", "FALSE":
		return review.ActivityInactive
	}
	return review.Activity(strings.ToUpper(s))
}

func activityOf(rec record) review.Activity {
	if rec.Activity != "" {
		return parseActivity(rec.Activity)
	}
	if rec.IsActive != nil && !*rec.IsActive {
		return review.ActivityInactive
	}
	return review.ActivityActive
}

// pageRecord listado paginado del backend. Algunos endpoints devuelven un arreglo plano.
type pageRecord struct {
	Items      []json.RawMessage `json:"items"`
	Page       int               `json:"page"`
	Size       int               `json:"size"`
	Total      int               `json:"total"`
	TotalPages int               `json:"totalPages"`
}

func decodePage(raw json.RawMessage) (pageRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return pageRecord{}, err
		}
		return pageRecord{Items: items, Page: 1, Size: len(items), Total: len(items), TotalPages: 1}, nil
	}
	var page pageRecord
	if len(trimmed) == 0 {
		return page, nil
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return pageRecord{}, err
	}
	return page, nil
}

// decodeChangeRequests decodifica un listado completo y su cursor.
func decodeChangeRequests[T fielder](kind review.Kind, raw json.RawMessage) ([]review.ChangeRequest, state.PageInfo, error) {
	page, err := decodePage(raw)
	if err != nil {
		return nil, state.PageInfo{}, fmt.Errorf("backend: listado de %s: %w", kind, err)
	}
	out := make([]review.ChangeRequest, 0, len(page.Items))
	for _, item := range page.Items {
		r, err := decodeChangeRequest[T](kind, item)
		if err != nil {
			return nil, state.PageInfo{}, err
		}
		out = append(out, r)
	}
	info := state.PageInfo{Page: page.Page, Size: page.Size, Total: page.Total, TotalPages: page.TotalPages}
	if info.TotalPages == 0 && info.Size > 0 {
		info.TotalPages = (info.Total + info.Size - 1) / info.Size
	}
	return out, info, nil
}

// unfiltered indica una consulta sin búsqueda ni filtros; q ya viene normalizada.
func unfiltered(q review.Query) bool {
	return q.Search == "" && q.Status == "" && q.Activity == "" && q.Type == ""
}

// localPage ordena y corta una colección completa con la paginación de q.
func localPage(items []review.ChangeRequest, q review.Query) ([]review.ChangeRequest, state.PageInfo) {
	review.Sort(items)
	info := state.PageInfo{Page: q.Page, Size: q.Size, Total: len(items)}
	info.TotalPages = (info.Total + q.Size - 1) / q.Size
	start := (q.Page - 1) * q.Size
	if start >= len(items) {
		return []review.ChangeRequest{}, info
	}
	end := min(start+q.Size, len(items))
	return items[start:end], info
}

// listQuery parámetros de paginación y filtros que el backend aplica del lado servidor.
func listQuery(q review.Query) url.Values {
	q = q.Normalized()
	values := url.Values{
		"page": {fmt.Sprint(q.Page)},
		"size": {fmt.Sprint(q.Size)},
	}
	if q.Search != "" {
		values["search"] = []string{q.Search}
	}
	if q.Status != "" {
		values["status"] = []string{string(q.Status)}
	}
	if q.Activity != "" {
		values["activity"] = []string{string(q.Activity)}
	}
	if q.Type != "" {
		values["requestType"] = []string{string(q.Type)}
	}
	return values
}
