package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemStatus estado de un ítem de traslado.
type ItemStatus string

// Estados de ítem. Avanzan PENDING → APPROVED → PREPARED → DELIVERED; CANCELLED solo desde PENDING.
const (
	ItemPending   ItemStatus = "PENDING"
	ItemApproved  ItemStatus = "APPROVED"
	ItemPrepared  ItemStatus = "PREPARED"
	ItemDelivered ItemStatus = "DELIVERED"
	ItemCancelled ItemStatus = "CANCELLED"
)

// Rank orden de avance del estado; CANCELLED queda fuera de la secuencia (-1).
func (s ItemStatus) Rank() int {
	switch s {
	case ItemPending:
		return 0
	case ItemApproved:
		return 1
	case ItemPrepared:
		return 2
	case ItemDelivered:
		return 3
	}
	return -1
}

// TransferItem línea de un traslado: un producto por ítem.
type TransferItem struct {
	ID         string
	TransferID string
	ProductID  string
	Status     ItemStatus

	RequestedQuantity decimal.Decimal // > 0, fijo desde la creación
	ApprovedQuantity  decimal.Decimal
	PreparedQuantity  decimal.Decimal
	ReceivedQuantity  decimal.Decimal

	CancelReason string
	Notes        string

	ApprovedAt  *time.Time
	PreparedAt  *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time

	Batches []*TransferItemBatch

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Shortfall cantidad preparada que no llegó al destino.
func (i *TransferItem) Shortfall() decimal.Decimal {
	return i.PreparedQuantity.Sub(i.ReceivedQuantity)
}

// TransferItemBatch asignación de un lote origen a un ítem.
// Quantity es lo reservado/preparado; ReceivedQuantity lo confirmado por el destino (≤ Quantity).
type TransferItemBatch struct {
	ID             string
	TransferItemID string
	BatchID        string
	// Snapshot del lote origen al momento de preparar.
	LotNumber        string
	ExpiryDate       *time.Time
	Quantity         decimal.Decimal
	ReceivedQuantity decimal.Decimal
	CreatedAt        time.Time
}
