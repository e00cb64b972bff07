package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Acciones registradas en el historial de traslados.
const (
	ActionCreate  = "CREATE"
	ActionApprove = "APPROVE"
	ActionPrepare = "PREPARE"
	ActionDeliver = "DELIVER"
	ActionCancel  = "CANCEL"
)

// TransitionRecord hecho inmutable de una transición. TransferItemID vacío = registro a nivel traslado.
type TransitionRecord struct {
	ID             string
	CompanyID      string
	TransferID     string
	TransferItemID string
	Action         string
	FromStatus     string
	ToStatus       string

	ChangedBy         string
	ActorName         string
	ActorRole         string
	ActorDepartmentID string

	Notes      string
	Quantities map[string]decimal.Decimal
	CreatedAt  time.Time
}
