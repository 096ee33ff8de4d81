package entity

import (
	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de bodega sujeto a aprobación.
// El rango de temperatura es opcional (nil = sin restricción). Price es nil si el backend no lo envía.
type Product struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	SKU            string           `json:"sku"`
	CategoryName   string           `json:"categoryName"`
	SupplierName   string           `json:"supplierName"`
	Unit           string           `json:"unit"`
	Price          *decimal.Decimal `json:"price"`
	MinTemperature *decimal.Decimal `json:"minTemperature"`
	MaxTemperature *decimal.Decimal `json:"maxTemperature"`
}

// Fields valores de presentación indexados por la llave JSON del campo.
func (p Product) Fields() map[string]string {
	return map[string]string{
		"name":           p.Name,
		"sku":            p.SKU,
		"categoryName":   p.CategoryName,
		"supplierName":   p.SupplierName,
		"unit":           p.Unit,
		"price":          formatPrice(p.Price),
		"minTemperature": formatTemperature(p.MinTemperature),
		"maxTemperature": formatTemperature(p.MaxTemperature),
	}
}

func formatPrice(p *decimal.Decimal) string {
	if p == nil {
		return ""
	}
	return p.StringFixed(2)
}

func formatTemperature(t *decimal.Decimal) string {
	if t == nil {
		return ""
	}
	return t.StringFixed(1) + " °C"
}
