package entity

// Supplier representa un proveedor sujeto a aprobación.
type Supplier struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	ContactPerson string `json:"contactPerson"`
	TaxCode       string `json:"taxCode"`
}

// Fields valores de presentación indexados por la llave JSON del campo.
func (s Supplier) Fields() map[string]string {
	return map[string]string{
		"name":          s.Name,
		"email":         s.Email,
		"phone":         s.Phone,
		"address":       s.Address,
		"contactPerson": s.ContactPerson,
		"taxCode":       s.TaxCode,
	}
}
