package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock es el libro de existencias (ledger) de un producto en un departamento.
// Invariante: AvailableQuantity + ReservedQuantity == TotalQuantity.
// IncomingQuantity es stock esperado por traslados en curso, aún no presente físicamente.
type Stock struct {
	ID           string
	CompanyID    string
	DepartmentID string
	ProductID    string

	TotalQuantity     decimal.Decimal
	AvailableQuantity decimal.Decimal
	ReservedQuantity  decimal.Decimal
	IncomingQuantity  decimal.Decimal

	// Configuración del ledger (se edita fuera del motor de traslados).
	MinStockLevel        decimal.Decimal
	MaxStockLevel        decimal.Decimal
	ReorderPoint         decimal.Decimal
	DefaultWithdrawalQty decimal.Decimal
	Location             string

	// Version para control optimista; 0 = aún no persistido.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsNew indica si el ledger todavía no existe en el almacenamiento.
func (s *Stock) IsNew() bool { return s.Version == 0 }

// Balanced verifica la invariante aditiva y que ningún contador sea negativo.
func (s *Stock) Balanced() bool {
	return balanced(s.TotalQuantity, s.AvailableQuantity, s.ReservedQuantity, s.IncomingQuantity)
}

// BelowReorderPoint indica si el disponible quedó por debajo del punto de reorden configurado.
func (s *Stock) BelowReorderPoint() bool {
	return s.ReorderPoint.GreaterThan(decimal.Zero) && s.AvailableQuantity.LessThan(s.ReorderPoint)
}

func balanced(total, available, reserved, incoming decimal.Decimal) bool {
	if total.IsNegative() || available.IsNegative() || reserved.IsNegative() || incoming.IsNegative() {
		return false
	}
	return available.Add(reserved).Equal(total)
}
