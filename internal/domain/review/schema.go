package review

// Field campo mostrable de una entidad.
type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Schema campos de una entidad en orden de presentación.
type Schema []Field

var schemas = map[Kind]Schema{
	KindCategory: {
		{Key: "name", Label: "Nombre"},
		{Key: "description", Label: "Descripción"},
		{Key: "storageCondition", Label: "Condición de almacenamiento"},
	},
	KindProduct: {
		{Key: "name", Label: "Nombre"},
		{Key: "sku", Label: "SKU"},
		{Key: "categoryName", Label: "Categoría"},
		{Key: "supplierName", Label: "Proveedor"},
		{Key: "unit", Label: "Unidad"},
		{Key: "price", Label: "Precio"},
		{Key: "minTemperature", Label: "Temperatura mínima"},
		{Key: "maxTemperature", Label: "Temperatura máxima"},
	},
	KindSupplier: {
		{Key: "name", Label: "Nombre"},
		{Key: "email", Label: "Email"},
		{Key: "phone", Label: "Teléfono"},
		{Key: "address", Label: "Dirección"},
		{Key: "contactPerson", Label: "Persona de contacto"},
		{Key: "taxCode", Label: "NIT"},
	},
}

// SchemaFor devuelve los campos de la entidad; nil si el tipo no existe.
func SchemaFor(k Kind) Schema {
	return schemas[k]
}

// Keys llaves del esquema en orden.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for _, f := range s {
		keys = append(keys, f.Key)
	}
	return keys
}
