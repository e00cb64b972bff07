package entity

import "time"

// TransferPriority prioridad de un traslado.
type TransferPriority string

// Prioridades.
const (
	PriorityNormal   TransferPriority = "NORMAL"
	PriorityUrgent   TransferPriority = "URGENT"
	PriorityCritical TransferPriority = "CRITICAL"
)

// IsValid indica si la prioridad es conocida.
func (p TransferPriority) IsValid() bool {
	return p == PriorityNormal || p == PriorityUrgent || p == PriorityCritical
}

// TransferStatus estado consolidado (rollup) de un traslado. Se calcula a partir de los ítems.
type TransferStatus string

// Estados consolidados.
const (
	TransferPending   TransferStatus = "PENDING"
	TransferApproved  TransferStatus = "APPROVED"
	TransferPrepared  TransferStatus = "PREPARED"
	TransferPartial   TransferStatus = "PARTIAL"
	TransferDelivered TransferStatus = "DELIVERED" // solo lectura de filas antiguas; Rollup produce COMPLETED
	TransferCompleted TransferStatus = "COMPLETED"
	TransferCancelled TransferStatus = "CANCELLED"
)

// Transfer traslado de stock entre departamentos: cabecera + ítems.
// Status y los timestamps de etapa son derivados (ver domain/transfer.Rollup); no se asignan a mano.
type Transfer struct {
	ID                     string
	CompanyID              string
	Code                   string // lo provee el caller, único por empresa
	Title                  string
	RequestingDepartmentID string
	SupplyingDepartmentID  string
	Priority               TransferPriority
	RequestReason          string
	Notes                  string
	CreatedBy              string

	Status      TransferStatus
	RequestedAt time.Time
	ApprovedAt  *time.Time
	PreparedAt  *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time

	Items     []*TransferItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item busca un ítem por ID.
func (t *Transfer) Item(id string) *TransferItem {
	for _, it := range t.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// Involves indica si el departamento participa en el traslado.
func (t *Transfer) Involves(departmentID string) bool {
	return departmentID != "" && (t.RequestingDepartmentID == departmentID || t.SupplyingDepartmentID == departmentID)
}
