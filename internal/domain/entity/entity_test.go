package entity_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-admin/internal/domain/entity"
)

func TestUser_IsReviewer(t *testing.T) {
	assert.True(t, (&entity.User{Role: "admin"}).IsReviewer())
	assert.True(t, (&entity.User{Role: " MANAGER "}).IsReviewer())
	assert.False(t, (&entity.User{Role: "STAFF"}).IsReviewer())
	var nilUser *entity.User
	assert.False(t, nilUser.IsReviewer())
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ana Ruiz", (&entity.User{FullName: "Ana Ruiz", Email: "ana@x.co"}).DisplayName())
	assert.Equal(t, "ana@x.co", (&entity.User{Email: "ana@x.co"}).DisplayName())
}

func TestProduct_Fields(t *testing.T) {
	min := decimal.NewFromInt(2)
	price := decimal.RequireFromString("3.5")
	p := entity.Product{Name: "Leche", Price: &price, MinTemperature: &min}
	f := p.Fields()
	assert.Equal(t, "3.50", f["price"])
	assert.Equal(t, "2.0 °C", f["minTemperature"])
	assert.Equal(t, "", f["maxTemperature"], "sin temperatura máxima el valor queda vacío")
}

func TestProduct_FieldsSinPrecio(t *testing.T) {
	f := entity.Product{Name: "Leche"}.Fields()
	assert.Equal(t, "", f["price"], "sin precio no se inventa 0.00")
}
