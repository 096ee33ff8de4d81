package approval_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/inventario-admin/internal/application/approval"
	"github.com/jhoicas/inventario-admin/internal/application/state"
	"github.com/jhoicas/inventario-admin/internal/domain"
	"github.com/jhoicas/inventario-admin/internal/domain/entity"
	"github.com/jhoicas/inventario-admin/internal/domain/repository"
	"github.com/jhoicas/inventario-admin/internal/domain/review"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// memGateway backend en memoria: aplica las mismas transiciones que el API real.
type memGateway struct {
	mu         sync.Mutex
	kind       review.Kind
	records    map[string]review.ChangeRequest
	calls      []string
	lists      int
	approveErr error
	seq        int
}

var _ approval.Gateway = (*memGateway)(nil)

func newMemGateway(kind review.Kind, recs ...review.ChangeRequest) *memGateway {
	g := &memGateway{kind: kind, records: map[string]review.ChangeRequest{}}
	for _, r := range recs {
		r.Kind = kind
		g.records[r.ID] = r
	}
	return g
}

func (g *memGateway) Kind() review.Kind { return g.kind }

func (g *memGateway) List(_ context.Context, _ string, q review.Query) ([]review.ChangeRequest, state.PageInfo, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lists++
	out := make([]review.ChangeRequest, 0, len(g.records))
	for _, r := range g.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, state.PageInfo{Page: q.Page, Size: q.Size, Total: len(out), TotalPages: 1}, nil
}

// fullGateway memGateway que además expone la colección completa.
type fullGateway struct {
	*memGateway
	alls int
}

func (g *fullGateway) All(ctx context.Context, token string) ([]review.ChangeRequest, error) {
	g.alls++
	items, _, err := g.memGateway.List(ctx, token, review.Query{})
	return items, err
}

func (g *memGateway) Get(_ context.Context, _ string, id string) (review.ChangeRequest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "get:"+id)
	r, ok := g.records[id]
	if !ok {
		return review.ChangeRequest{}, domain.ErrNotFound
	}
	return r, nil
}

func (g *memGateway) Approve(_ context.Context, _ string, id, reviewerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "approve:"+id+":"+reviewerID)
	if g.approveErr != nil {
		return g.approveErr
	}
	next, err := review.ApplyApproval(g.records[id], fixedNow)
	if err != nil {
		return err
	}
	g.records[id] = next
	return nil
}

func (g *memGateway) Reject(_ context.Context, _ string, id, reviewerID, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "reject:"+id+":"+reviewerID)
	next, err := review.ApplyRejection(g.records[id], reason, fixedNow)
	if err != nil {
		return err
	}
	g.records[id] = next
	return nil
}

func (g *memGateway) SubmitCreate(_ context.Context, _ string, payload any) (review.ChangeRequest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	id := fmt.Sprintf("new-%d", g.seq)
	g.calls = append(g.calls, "create:"+id)
	next, err := review.Submit(review.ChangeRequest{ID: id, Kind: g.kind}, review.CreateChange{}, snapshotOf(payload), review.Submitter{Name: "Staff"}, fixedNow)
	if err != nil {
		return review.ChangeRequest{}, err
	}
	g.records[id] = next
	return next, nil
}

func (g *memGateway) SubmitUpdate(_ context.Context, _ string, id string, payload any) (review.ChangeRequest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "update:"+id)
	next, err := review.Submit(g.records[id], review.UpdateChange{}, snapshotOf(payload), review.Submitter{Name: "Staff"}, fixedNow)
	if err != nil {
		return review.ChangeRequest{}, err
	}
	g.records[id] = next
	return next, nil
}

func (g *memGateway) SubmitStatusChange(_ context.Context, _ string, id string, to review.Activity) (review.ChangeRequest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, "status:"+id+":"+string(to))
	cur := g.records[id]
	next, err := review.Submit(cur, review.StatusChange{From: cur.Activity, To: to}, review.Snapshot{}, review.Submitter{Name: "Staff"}, fixedNow)
	if err != nil {
		return review.ChangeRequest{}, err
	}
	g.records[id] = next
	return next, nil
}

// writes llamadas que modifican el backend (todo menos get).
func (g *memGateway) writes() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, c := range g.calls {
		if len(c) < 4 || c[:4] != "get:" {
			out = append(out, c)
		}
	}
	return out
}

func (g *memGateway) record(id string) review.ChangeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.records[id]
}

func snapshotOf(payload any) review.Snapshot {
	m, _ := payload.(map[string]any)
	out := review.Snapshot{}
	for k, v := range m {
		out[k] = fmt.Sprint(v)
	}
	return out
}

// memLogs bitácora en memoria.
type memLogs struct {
	mu      sync.Mutex
	entries []*entity.ReviewLog
	err     error
}

func (m *memLogs) Record(_ context.Context, l *entity.ReviewLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, l)
	return nil
}

func (m *memLogs) List(_ context.Context, f repository.ReviewLogFilter) ([]*entity.ReviewLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.ReviewLog
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if f.Kind != "" && e.Kind != f.Kind {
			continue
		}
		if f.EntityID != "" && e.EntityID != f.EntityID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// captureReport guarda lo que recibe el generador de reportes.
type captureReport struct {
	meta  approval.ReportMeta
	items []review.ChangeRequest
}

func (c *captureReport) RenderQueue(meta approval.ReportMeta, items []review.ChangeRequest) ([]byte, error) {
	c.meta, c.items = meta, items
	return []byte("%PDF-fake"), nil
}

type staticCatalog []entity.Category

func (s staticCatalog) Active(context.Context, string) ([]entity.Category, error) {
	return s, nil
}

func pending(id, name string, change review.Change) review.ChangeRequest {
	r := review.ChangeRequest{
		ID:          id,
		Status:      review.StatusPending,
		Activity:    review.ActivityActive,
		Fields:      review.Snapshot{"name": name},
		Pending:     review.Snapshot{"name": name + " v2"},
		Change:      change,
		SubmittedBy: review.Submitter{Name: "Ana Staff", Email: "ana@bodega.test"},
		CreatedAt:   fixedNow.Add(-time.Hour),
	}
	if _, ok := change.(review.CreateChange); ok {
		r.Fields = nil
		r.Pending = review.Snapshot{"name": name}
	}
	return r
}

func approved(id, name string) review.ChangeRequest {
	return review.ChangeRequest{
		ID:        id,
		Status:    review.StatusApproved,
		Activity:  review.ActivityActive,
		Fields:    review.Snapshot{"name": name},
		Change:    review.CreateChange{},
		CreatedAt: fixedNow.Add(-48 * time.Hour),
	}
}
