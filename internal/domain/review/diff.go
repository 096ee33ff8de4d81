package review

// NotAvailable valor mostrado para cualquier campo ausente.
const NotAvailable = "N/A"

// Cell par etiqueta/valor de una columna de la vista de diferencias.
type Cell struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Transition cambio de estado de actividad (solo STATUS_CHANGE).
type Transition struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DiffView lo que el modal de revisión muestra para una solicitud.
type DiffView struct {
	Type       RequestType `json:"requestType"`
	Label      string      `json:"label"`
	EntityName string      `json:"entityName"`
	Old        []Cell      `json:"old,omitempty"`
	New        []Cell      `json:"new,omitempty"`
	Transition *Transition `json:"transition,omitempty"`
	// Inverted marca la vista de un UPDATE ya aprobado, donde "nuevo" es lo confirmado.
	Inverted bool `json:"inverted"`
}

// TypeLabel etiqueta de presentación del tipo de solicitud.
func TypeLabel(t RequestType) string {
	switch t {
	case TypeCreate:
		return "Solicitud de creación"
	case TypeUpdate:
		return "Solicitud de actualización"
	case TypeStatusChange:
		return "Cambio de estado"
	default:
		return "Solicitud"
	}
}

// ResolveDiffView calcula las columnas "anterior" y "nuevo" de una solicitud. Es pura.
//
//   - CREATE: solo "nuevo"; cada campo sale de Pending si existe (entidad sin confirmar) o de Fields.
//   - UPDATE en PENDING o REJECTED: anterior = Fields, nuevo = Pending. Sin Pending (terminal ya
//     limpiado) el nuevo cae a Fields.
//   - UPDATE en APPROVED: columnas invertidas. La entidad ya tiene los valores nuevos, así que
//     nuevo = Fields y anterior = Previous (o Pending si no se guardó instantánea).
//   - STATUS_CHANGE: solo la transición de actividad y el nombre.
//
// Cualquier campo ausente se muestra como "N/A".
func ResolveDiffView(r ChangeRequest) DiffView {
	schema := SchemaFor(r.Kind)
	view := DiffView{
		Type:       r.Type(),
		Label:      TypeLabel(r.Type()),
		EntityName: orNA(r.Name()),
	}

	switch c := r.Change.(type) {
	case CreateChange:
		view.New = cells(schema, r.Pending, r.Fields)
	case UpdateChange:
		if r.Status == StatusApproved {
			old := c.Previous
			if old == nil {
				old = r.Pending
			}
			view.Old = cells(schema, old)
			view.New = cells(schema, r.Fields)
			view.Inverted = true
			break
		}
		view.Old = cells(schema, r.Fields)
		if r.Pending == nil {
			view.New = cells(schema, r.Fields)
		} else {
			view.New = cells(schema, r.Pending)
		}
	case StatusChange:
		view.Transition = &Transition{From: orNA(string(c.From)), To: orNA(string(c.To))}
	default:
		view.New = cells(schema, r.Fields)
	}
	return view
}

// cells arma una columna tomando cada campo de la primera fuente que lo tenga.
func cells(schema Schema, sources ...Snapshot) []Cell {
	out := make([]Cell, 0, len(schema))
	for _, f := range schema {
		value := NotAvailable
		for _, src := range sources {
			if v, ok := src.Value(f.Key); ok {
				value = v
				break
			}
		}
		out = append(out, Cell{Key: f.Key, Label: f.Label, Value: value})
	}
	return out
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
