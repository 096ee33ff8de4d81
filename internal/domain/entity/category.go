package entity

// Category representa una categoría de productos sujeta a aprobación.
type Category struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	StorageCondition string `json:"storageCondition"` // ambiente, refrigerado, congelado...
}

// Fields valores de presentación indexados por la llave JSON del campo.
func (c Category) Fields() map[string]string {
	return map[string]string{
		"name":             c.Name,
		"description":      c.Description,
		"storageCondition": c.StorageCondition,
	}
}
