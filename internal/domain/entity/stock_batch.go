package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchStatus estado de un lote.
type BatchStatus string

// Estados de lote.
const (
	BatchAvailable  BatchStatus = "AVAILABLE"
	BatchReserved   BatchStatus = "RESERVED"
	BatchQuarantine BatchStatus = "QUARANTINE"
	BatchDamaged    BatchStatus = "DAMAGED"
	BatchExpired    BatchStatus = "EXPIRED"
)

// StockBatch lote (número de lote, vencimiento, precios) dentro de un ledger Stock.
// Misma invariante aditiva que Stock; la suma de los lotes activos es igual a los contadores del ledger.
type StockBatch struct {
	ID              string
	StockID         string
	LotNumber       string // único dentro del ledger
	ExpiryDate      *time.Time
	ManufactureDate *time.Time
	Supplier        string
	CostPrice       decimal.Decimal
	SellingPrice    decimal.Decimal

	TotalQuantity     decimal.Decimal
	AvailableQuantity decimal.Decimal
	ReservedQuantity  decimal.Decimal
	IncomingQuantity  decimal.Decimal

	Status   BatchStatus
	IsActive bool

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsNew indica si el lote todavía no existe en el almacenamiento.
func (b *StockBatch) IsNew() bool { return b.Version == 0 }

// Balanced verifica la invariante aditiva del lote.
func (b *StockBatch) Balanced() bool {
	return balanced(b.TotalQuantity, b.AvailableQuantity, b.ReservedQuantity, b.IncomingQuantity)
}

// Allocatable indica si el lote puede entregar unidades a un traslado.
func (b *StockBatch) Allocatable() bool {
	return b.IsActive && b.Status == BatchAvailable && b.AvailableQuantity.GreaterThan(decimal.Zero)
}

// CanDeactivate: un lote no se puede desactivar mientras tenga reservas o entradas pendientes.
// Lo aplica inventory.Ledger.Deactivate.
func (b *StockBatch) CanDeactivate() bool {
	return b.ReservedQuantity.IsZero() && b.IncomingQuantity.IsZero()
}

// IsExpiredAt indica si el lote está vencido en la fecha dada. Sin fecha de vencimiento nunca vence.
func (b *StockBatch) IsExpiredAt(now time.Time) bool {
	return b.ExpiryDate != nil && !b.ExpiryDate.After(now)
}
