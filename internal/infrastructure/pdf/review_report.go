// Package pdf genera el reporte PDF de una cola de revisión.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Cola de revisión + entidad │ Fecha + usuario        │
//	│  FILTROS: búsqueda / estado / tipo / actividad                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Nombre | Tipo | Estado | Actividad | Enviado por | Fecha │
//	│  (nota de rechazo bajo cada fila rechazada)                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RESUMEN: pendientes / aprobadas / rechazadas                 │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/inventario-admin/internal/application/approval"
	"github.com/jhoicas/inventario-admin/internal/domain/review"
)

var _ approval.ReportRenderer = (*ReviewReportGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorDanger  = &props.Color{Red: 160, Green: 30, Blue: 30}
)

var kindTitles = map[review.Kind]string{
	review.KindCategory: "Categorías",
	review.KindProduct:  "Productos",
	review.KindSupplier: "Proveedores",
}

var statusLabels = map[review.Status]string{
	review.StatusPending:  "Pendiente",
	review.StatusApproved: "Aprobada",
	review.StatusRejected: "Rechazada",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// ReviewReportGenerator implementa approval.ReportRenderer usando Maroto v2.
type ReviewReportGenerator struct{}

// NewReviewReportGenerator construye el generador.
func NewReviewReportGenerator() *ReviewReportGenerator { return &ReviewReportGenerator{} }

// RenderQueue genera el PDF de la cola y devuelve sus bytes. items ya viene filtrado y ordenado.
func (g *ReviewReportGenerator) RenderQueue(meta approval.ReportMeta, items []review.ChangeRequest) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Cola de revisión - "+kindTitle(meta.Kind), true).
		WithAuthor(nonEmpty(meta.GeneratedBy, "consola"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(meta))
	m.AddRows(filtersRow(meta.Query))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	if len(items) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(text.New("Sin solicitudes para los filtros seleccionados", props.Text{
			Size: 8, Top: 2, Align: align.Center, Color: colorGray,
		}))))
	}
	for _, r := range tableRows(items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(items))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(meta approval.ReportMeta) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New("COLA DE REVISIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(kindTitle(meta.Kind), props.Text{
				Style: fontstyle.Bold, Size: 13, Top: 6,
			}),
		),
		col.New(5).Add(
			text.New("Generado: "+meta.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 1, Color: colorGray,
			}),
			text.New("Por: "+nonEmpty(meta.GeneratedBy, "-"), props.Text{
				Size: 8, Align: align.Right, Top: 7, Color: colorGray,
			}),
		),
	)
}

func filtersRow(q review.Query) core.Row {
	return row.New(8).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Búsqueda: %s   |   Estado: %s   |   Tipo: %s   |   Actividad: %s",
				nonEmpty(q.Search, "-"),
				nonEmpty(string(q.Status), "Todos"),
				nonEmpty(string(q.Type), "Todos"),
				nonEmpty(string(q.Activity), "Todas"),
			), props.Text{Size: 8, Top: 2, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Nombre", 3, align.Left),
		h("Tipo", 2, align.Left),
		h("Estado", 2, align.Center),
		h("Actividad", 1, align.Center),
		h("Enviado por", 2, align.Left),
		h("Fecha", 2, align.Right),
	)
}

// tableRows una fila por solicitud; las rechazadas llevan la nota debajo.
func tableRows(items []review.ChangeRequest) []core.Row {
	out := make([]core.Row, 0, len(items))
	cell := func(value string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(value, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	for _, r := range items {
		out = append(out, row.New(7).Add(
			cell(nonEmpty(r.Name(), review.NotAvailable), 3, align.Left),
			cell(review.TypeLabel(r.Type()), 2, align.Left),
			cell(statusLabel(r.Status), 2, align.Center),
			cell(nonEmpty(string(r.Activity), "-"), 1, align.Center),
			cell(nonEmpty(r.SubmittedBy.Name, r.SubmittedBy.Email), 2, align.Left),
			cell(formatDate(r), 2, align.Right),
		))
		if r.Status == review.StatusRejected && r.RejectedNote != "" {
			out = append(out, row.New(6).Add(col.New(12).Add(text.New("Motivo: "+r.RejectedNote, props.Text{
				Size: 7, Style: fontstyle.Italic, Left: 4, Color: colorDanger,
			}))))
		}
	}
	return out
}

func summaryRow(items []review.ChangeRequest) core.Row {
	counts := map[review.Status]int{}
	for _, r := range items {
		counts[r.Status]++
	}
	return row.New(10).Add(
		col.New(12).Add(text.New(fmt.Sprintf("Total: %d   |   Pendientes: %d   |   Aprobadas: %d   |   Rechazadas: %d",
			len(items), counts[review.StatusPending], counts[review.StatusApproved], counts[review.StatusRejected],
		), props.Text{Style: fontstyle.Bold, Size: 9, Top: 3, Align: align.Right})),
	)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func kindTitle(k review.Kind) string {
	if t, ok := kindTitles[k]; ok {
		return t
	}
	return string(k)
}

func statusLabel(s review.Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return nonEmpty(string(s), "-")
}

func formatDate(r review.ChangeRequest) string {
	if r.CreatedAt.IsZero() {
		return "-"
	}
	return r.CreatedAt.Format("02/01/2006")
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
