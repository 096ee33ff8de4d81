// Package state guarda el estado de aplicación por sesión: colecciones obtenidas, cursores de
// paginación, banderas de carga y la vista de detalle abierta de cada tablero de revisión.
//
// Ciclo de vida: Hydrate al iniciar sesión (o en la primera petición tras reiniciar el proceso),
// Teardown al cerrar sesión, cuando falla la obtención del perfil o cuando la sesión ya venció.
// Sweep descarta los workspaces sin uso por más tiempo que la vida de una sesión.
package state

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/inventario-admin/internal/domain/review"
)

// PageInfo cursor de paginación devuelto por el backend.
type PageInfo struct {
	Page       int `json:"page"`
	Size       int `json:"size"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Ticket identifica una carga en curso. Si el tablero cambia de generación antes del Commit,
// la respuesta se descarta.
type Ticket struct {
	kind       review.Kind
	generation uint64
}

// Board estado de un listado de revisión (categorías, productos o proveedores).
type Board struct {
	Items      []review.ChangeRequest
	Query      review.Query
	Page       PageInfo
	Loading    bool
	Detail     *review.ChangeRequest
	FetchedAt  time.Time
	generation uint64
}

// Workspace estado de una sesión. Seguro para uso concurrente.
type Workspace struct {
	mu     sync.Mutex
	boards map[review.Kind]*Board

	lastSeen time.Time // protegido por Registry.mu
}

func newWorkspace() *Workspace {
	return &Workspace{boards: make(map[review.Kind]*Board)}
}

func (w *Workspace) board(kind review.Kind) *Board {
	b, ok := w.boards[kind]
	if !ok {
		b = &Board{}
		w.boards[kind] = b
	}
	return b
}

// Begin marca el tablero como cargando con la consulta dada y devuelve el ticket de la carga.
// Una consulta distinta a la vigente equivale a navegar: invalida cargas anteriores.
func (w *Workspace) Begin(kind review.Kind, q review.Query) Ticket {
	w.mu.Lock()
	defer w.mu.Unlock()
	b := w.board(kind)
	b.generation++
	b.Loading = true
	b.Query = q
	return Ticket{kind: kind, generation: b.generation}
}

// Current ticket de la generación vigente, sin invalidar cargas en curso. Sirve para cargas de
// detalle que no reemplazan el listado.
func (w *Workspace) Current(kind review.Kind) Ticket {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Ticket{kind: kind, generation: w.board(kind).generation}
}

// Commit guarda el resultado de una carga. Devuelve false (y no toca nada) si el ticket quedó
// obsoleto por una navegación o invalidación posterior.
func (w *Workspace) Commit(t Ticket, items []review.ChangeRequest, page PageInfo, at time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	b := w.board(t.kind)
	if b.generation != t.generation {
		return false
	}
	b.Items = items
	b.Page = page
	b.Loading = false
	b.FetchedAt = at
	return true
}

// Abort termina una carga fallida sin tocar los datos previos.
func (w *Workspace) Abort(t Ticket) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b := w.board(t.kind)
	if b.generation == t.generation {
		b.Loading = false
	}
}

// Open registra la vista de detalle vigente, siempre que el ticket siga vigente.
func (w *Workspace) Open(t Ticket, r review.ChangeRequest) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	b := w.board(t.kind)
	if b.generation != t.generation {
		return false
	}
	b.Detail = &r
	b.Loading = false
	return true
}

// Invalidate cierra la vista de detalle y deja obsoletas las cargas en curso. Se llama tras
// cualquier transición terminal para que no se muestren cambios pendientes ya resueltos.
func (w *Workspace) Invalidate(kind review.Kind) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b := w.board(kind)
	b.generation++
	b.Detail = nil
	b.Loading = false
}

// Snapshot copia del tablero para lectura.
func (w *Workspace) Snapshot(kind review.Kind) Board {
	w.mu.Lock()
	defer w.mu.Unlock()
	b := w.board(kind)
	out := *b
	out.Items = append([]review.ChangeRequest(nil), b.Items...)
	if b.Detail != nil {
		d := *b.Detail
		out.Detail = &d
	}
	return out
}

// Find busca un registro ya cargado en el tablero.
func (w *Workspace) Find(kind review.Kind, id string) (review.ChangeRequest, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b := w.board(kind)
	if b.Detail != nil && b.Detail.ID == id {
		return *b.Detail, true
	}
	for _, r := range b.Items {
		if r.ID == id {
			return r, true
		}
	}
	return review.ChangeRequest{}, false
}

// Registry workspaces por ID de sesión.
type Registry struct {
	mu         sync.Mutex
	workspaces map[string]*Workspace
	now        func() time.Time
}

// NewRegistry construye el registro vacío.
func NewRegistry() *Registry {
	return NewRegistryWithClock(time.Now)
}

// NewRegistryWithClock construye el registro con un reloj propio (tests).
func NewRegistryWithClock(now func() time.Time) *Registry {
	return &Registry{workspaces: make(map[string]*Workspace), now: now}
}

// Hydrate devuelve el workspace de la sesión, creándolo si no existe, y lo marca como usado.
func (r *Registry) Hydrate(sessionID string) *Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workspaces[sessionID]
	if !ok {
		w = newWorkspace()
		r.workspaces[sessionID] = w
	}
	w.lastSeen = r.now()
	return w
}

// Sweep descarta los workspaces sin uso durante más de idle. Devuelve cuántos eliminó.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-idle)
	removed := 0
	for id, w := range r.workspaces {
		if w.lastSeen.Before(cutoff) {
			delete(r.workspaces, id)
			removed++
		}
	}
	return removed
}

// RunSweeper ejecuta Sweep cada interval hasta que ctx termine.
func (r *Registry) RunSweeper(ctx context.Context, idle, interval time.Duration, onSweep func(removed int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 && onSweep != nil {
				onSweep(n)
			}
		}
	}
}

// Teardown descarta todo el estado de la sesión.
func (r *Registry) Teardown(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.workspaces, sessionID)
}

// Len cantidad de sesiones con estado en memoria.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}
