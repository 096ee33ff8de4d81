package review

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Query filtros de un listado de revisión. Page empieza en 1.
type Query struct {
	Search   string      `json:"search"`
	Status   Status      `json:"status"`
	Activity Activity    `json:"activity"`
	Type     RequestType `json:"requestType"`
	Page     int         `json:"page"`
	Size     int         `json:"size"`
}

// Valores por defecto de paginación.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Normalized aplica valores por defecto y límites de paginación.
func (q Query) Normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size <= 0 {
		q.Size = DefaultPageSize
	}
	if q.Size > MaxPageSize {
		q.Size = MaxPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Status = Status(strings.ToUpper(string(q.Status)))
	q.Activity = Activity(strings.ToUpper(string(q.Activity)))
	q.Type = RequestType(strings.ToUpper(string(q.Type)))
	return q
}

// Filter devuelve los registros que cumplen la búsqueda y los filtros. No modifica items.
func Filter(items []ChangeRequest, q Query) []ChangeRequest {
	q = q.Normalized()
	folder := cases.Fold()
	needle := folder.String(q.Search)

	out := make([]ChangeRequest, 0, len(items))
	for _, r := range items {
		if q.Status != "" && r.Status != q.Status {
			continue
		}
		if q.Activity != "" && r.Activity != q.Activity {
			continue
		}
		if q.Type != "" && r.Type() != q.Type {
			continue
		}
		if needle != "" && !matchesSearch(folder, r, needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matchesSearch(folder cases.Caser, r ChangeRequest, needle string) bool {
	for _, hay := range []string{r.Name(), r.Email(), r.SubmittedBy.Name, r.SubmittedBy.Email} {
		if hay != "" && strings.Contains(folder.String(hay), needle) {
			return true
		}
	}
	return false
}

// Rank posición de un registro en el orden fijo de listados:
// PENDING < APPROVED/ACTIVE < REJECTED/INACTIVE.
func Rank(r ChangeRequest) int {
	switch r.Status {
	case StatusPending:
		return 0
	case StatusRejected:
		return 2
	}
	if r.Activity == ActivityInactive {
		return 2
	}
	return 1
}

// Sort ordena en sitio por Rank y, a igual rango, por CreatedAt descendente.
func Sort(items []ChangeRequest) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := Rank(items[i]), Rank(items[j])
		if ri != rj {
			return ri < rj
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// Apply filtra y ordena; es lo que se recalcula cada vez que cambia un filtro o la colección.
func Apply(items []ChangeRequest, q Query) []ChangeRequest {
	out := Filter(items, q)
	Sort(out)
	return out
}
