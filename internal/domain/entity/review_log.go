package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReviewAction acción registrada en la bitácora de revisión.
type ReviewAction string

const (
	ActionSubmitCreate ReviewAction = "SUBMIT_CREATE"
	ActionSubmitUpdate ReviewAction = "SUBMIT_UPDATE"
	ActionToggle       ReviewAction = "TOGGLE_ACTIVITY"
	ActionApprove      ReviewAction = "APPROVE"
	ActionReject       ReviewAction = "REJECT"
)

// ReviewLog entrada de la bitácora de decisiones despachadas desde la consola.
// Price solo se llena para productos (precio vigente al momento de la acción).
type ReviewLog struct {
	ID         string           `json:"id"`
	Kind       string           `json:"kind"`
	EntityID   string           `json:"entityId"`
	EntityName string           `json:"entityName"`
	Action     ReviewAction     `json:"action"`
	ActorID    string           `json:"actorId"`
	ActorName  string           `json:"actorName"`
	Note       string           `json:"note,omitempty"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
}
