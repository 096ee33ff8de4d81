package dto

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-admin/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Los errores se reportan con el nombre JSON del campo, que es el que ve el formulario.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("decimal", isDecimal); err != nil {
		panic("registrar validación decimal: " + err.Error())
	}
	if err := v.RegisterValidation("otp", isOTP); err != nil {
		panic("registrar validación otp: " + err.Error())
	}
	v.RegisterStructValidation(productTemperatureRange, ProductForm{})
	return v
}

func isDecimal(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	if s == "" {
		return true
	}
	_, err := decimal.NewFromString(s)
	return err == nil
}

func isOTP(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// productTemperatureRange la temperatura mínima no puede superar la máxima.
func productTemperatureRange(sl validator.StructLevel) {
	f, ok := sl.Current().Interface().(ProductForm)
	if !ok {
		return
	}
	lo, errLo := decimal.NewFromString(strings.TrimSpace(f.MinTemperature.String()))
	hi, errHi := decimal.NewFromString(strings.TrimSpace(f.MaxTemperature.String()))
	if errLo != nil || errHi != nil {
		return
	}
	if lo.GreaterThan(hi) {
		sl.ReportError(f.MinTemperature, "minTemperature", "MinTemperature", "temprange", "")
	}
}

// ValidationError errores de validación por campo (llave = nombre JSON del campo).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "datos inválidos: " + strings.Join(parts, "; ")
}

// Unwrap permite errors.Is(err, domain.ErrInvalidInput).
func (e *ValidationError) Unwrap() error { return domain.ErrInvalidInput }

// NewFieldError construye un ValidationError de un solo campo.
func NewFieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Validate valida in con sus etiquetas validate. Devuelve *ValidationError o nil.
func Validate(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validar entrada: %w", err)
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = messageFor(fe)
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es requerido"
	case "email":
		return "debe ser un email válido"
	case "min":
		return "debe tener al menos " + fe.Param() + " caracteres"
	case "max":
		return "debe tener como máximo " + fe.Param() + " caracteres"
	case "eqfield":
		return "no coincide"
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "decimal":
		return "debe ser un número"
	case "otp":
		return "debe ser un código de 6 dígitos"
	case "temprange":
		return "no puede ser mayor que la temperatura máxima"
	case "gt", "gte":
		return "debe ser mayor que " + fe.Param()
	}
	return "valor inválido"
}
