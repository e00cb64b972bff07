package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTransferRequest body para POST /api/transfers. El código lo define el caller y es único por empresa.
// RequestingDepartmentID vacío = departamento del actor.
type CreateTransferRequest struct {
	Code                   string                      `json:"code" validate:"required,max=50"`
	Title                  string                      `json:"title" validate:"required,max=200"`
	RequestingDepartmentID string                      `json:"requesting_department_id,omitempty"`
	SupplyingDepartmentID  string                      `json:"supplying_department_id" validate:"required"`
	Priority               string                      `json:"priority,omitempty" validate:"omitempty,oneof=NORMAL URGENT CRITICAL"`
	RequestReason          string                      `json:"request_reason,omitempty" validate:"max=500"`
	Notes                  string                      `json:"notes,omitempty" validate:"max=1000"`
	Items                  []CreateTransferItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateTransferItemRequest línea del traslado: un producto por ítem.
type CreateTransferItemRequest struct {
	ProductID         string          `json:"product_id" validate:"required"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
	Notes             string          `json:"notes,omitempty" validate:"max=500"`
}

// ApproveItemRequest body para POST /api/transfer-items/:id/approve.
type ApproveItemRequest struct {
	ApprovedQuantity decimal.Decimal `json:"approved_quantity"`
	Notes            string          `json:"notes,omitempty" validate:"max=500"`
}

// BatchAllocationRequest cantidad a tomar de un lote del departamento proveedor.
type BatchAllocationRequest struct {
	BatchID  string          `json:"batch_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// PrepareItemRequest body para POST /api/transfer-items/:id/prepare.
// Allocations vacío = asignación automática FIFO por vencimiento sobre la cantidad aprobada.
type PrepareItemRequest struct {
	Allocations []BatchAllocationRequest `json:"allocations,omitempty" validate:"dive"`
	Strict      *bool                    `json:"strict,omitempty"`
	Notes       string                   `json:"notes,omitempty" validate:"max=500"`
}

// BatchReceiptRequest cantidad efectivamente recibida de un lote preparado.
type BatchReceiptRequest struct {
	BatchID          string          `json:"batch_id" validate:"required"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

// DeliverItemRequest body para POST /api/transfer-items/:id/deliver.
type DeliverItemRequest struct {
	Receipts []BatchReceiptRequest `json:"receipts" validate:"required,min=1,dive"`
	Notes    string                `json:"notes,omitempty" validate:"max=1000"`
}

// CancelRequest body para cancelar un ítem o un traslado completo.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// ApproveAllRequest body opcional para POST /api/transfers/:id/approve-all.
type ApproveAllRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=500"`
}

// ListTransfersRequest filtros de GET /api/transfers.
type ListTransfersRequest struct {
	Limit        int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset       int    `query:"offset" validate:"omitempty,min=0"`
	Status       string `query:"status" validate:"omitempty,oneof=PENDING APPROVED PREPARED PARTIAL DELIVERED COMPLETED CANCELLED"`
	DepartmentID string `query:"department_id"`
}

// TransferItemBatchResponse lote asignado a un ítem.
type TransferItemBatchResponse struct {
	BatchID          string          `json:"batch_id"`
	LotNumber        string          `json:"lot_number"`
	ExpiryDate       *time.Time      `json:"expiry_date,omitempty"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

// TransferItemResponse salida de un ítem.
type TransferItemResponse struct {
	ID                string                      `json:"id"`
	ProductID         string                      `json:"product_id"`
	Status            string                      `json:"status"`
	RequestedQuantity decimal.Decimal             `json:"requested_quantity"`
	ApprovedQuantity  decimal.Decimal             `json:"approved_quantity"`
	PreparedQuantity  decimal.Decimal             `json:"prepared_quantity"`
	ReceivedQuantity  decimal.Decimal             `json:"received_quantity"`
	Shortfall         decimal.Decimal             `json:"shortfall"`
	CancelReason      string                      `json:"cancel_reason,omitempty"`
	Notes             string                      `json:"notes,omitempty"`
	ApprovedAt        *time.Time                  `json:"approved_at,omitempty"`
	PreparedAt        *time.Time                  `json:"prepared_at,omitempty"`
	DeliveredAt       *time.Time                  `json:"delivered_at,omitempty"`
	CancelledAt       *time.Time                  `json:"cancelled_at,omitempty"`
	Batches           []TransferItemBatchResponse `json:"batches"`
	Version           int64                       `json:"version"`
}

// TransferResponse salida de un traslado con su estado consolidado.
type TransferResponse struct {
	ID                     string                 `json:"id"`
	CompanyID              string                 `json:"company_id"`
	Code                   string                 `json:"code"`
	Title                  string                 `json:"title"`
	RequestingDepartmentID string                 `json:"requesting_department_id"`
	SupplyingDepartmentID  string                 `json:"supplying_department_id"`
	Priority               string                 `json:"priority"`
	RequestReason          string                 `json:"request_reason,omitempty"`
	Notes                  string                 `json:"notes,omitempty"`
	Status                 string                 `json:"status"`
	CreatedBy              string                 `json:"created_by"`
	RequestedAt            time.Time              `json:"requested_at"`
	ApprovedAt             *time.Time             `json:"approved_at,omitempty"`
	PreparedAt             *time.Time             `json:"prepared_at,omitempty"`
	DeliveredAt            *time.Time             `json:"delivered_at,omitempty"`
	CancelledAt            *time.Time             `json:"cancelled_at,omitempty"`
	Items                  []TransferItemResponse `json:"items"`
	CreatedAt              time.Time              `json:"created_at"`
	UpdatedAt              time.Time              `json:"updated_at"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// DeliveryResponse salida de deliver: el traslado y la señal de stock bajo en el destino.
type DeliveryResponse struct {
	Transfer          TransferResponse `json:"transfer"`
	Shortfall         decimal.Decimal  `json:"shortfall"`
	BelowReorderPoint bool             `json:"below_reorder_point"`
}

// AllocationLineResponse porción sugerida de un lote.
type AllocationLineResponse struct {
	BatchID    string          `json:"batch_id"`
	LotNumber  string          `json:"lot_number"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// AllocationSuggestionResponse resultado del motor de asignación para un ítem aprobado.
type AllocationSuggestionResponse struct {
	ItemID      string                   `json:"item_id"`
	Strict      bool                     `json:"strict"`
	Requested   decimal.Decimal          `json:"requested"`
	Allocated   decimal.Decimal          `json:"allocated"`
	Shortfall   decimal.Decimal          `json:"shortfall"`
	Allocations []AllocationLineResponse `json:"allocations"`
}

// TransitionResponse registro del historial de un traslado.
type TransitionResponse struct {
	ID                string                     `json:"id"`
	TransferItemID    string                     `json:"transfer_item_id,omitempty"`
	Action            string                     `json:"action"`
	FromStatus        string                     `json:"from_status"`
	ToStatus          string                     `json:"to_status"`
	ChangedBy         string                     `json:"changed_by"`
	ActorName         string                     `json:"actor_name,omitempty"`
	ActorRole         string                     `json:"actor_role,omitempty"`
	ActorDepartmentID string                     `json:"actor_department_id,omitempty"`
	Notes             string                     `json:"notes,omitempty"`
	Quantities        map[string]decimal.Decimal `json:"quantities,omitempty"`
	CreatedAt         time.Time                  `json:"created_at"`
}
