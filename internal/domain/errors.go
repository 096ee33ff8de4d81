package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrSessionExpired    = errors.New("sesión expirada o inexistente")
	ErrActionNotAllowed  = errors.New("acción no permitida en el estado actual")
	ErrNotPending        = errors.New("la solicitud ya no está pendiente")
	ErrConfirmation      = errors.New("la acción requiere confirmación explícita")
	ErrReviewerRequired  = errors.New("se requiere la identidad del revisor")
	ErrRejectReasonShort = errors.New("el motivo de rechazo debe tener al menos 10 caracteres")
)
