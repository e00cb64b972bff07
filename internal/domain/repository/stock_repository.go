package repository

import (
	"context"

	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/inventory"
)

// StockRepository puerto del ledger de existencias y sus lotes. Las escrituras solo entran por
// SaveLedger, con el agregado completo, para que la suma de lotes y el ledger no diverjan.
type StockRepository interface {
	// GetLedgerForUpdate bloquea el ledger (SELECT FOR UPDATE) y lo carga con sus lotes.
	// Si el (departamento, producto) aún no tiene ledger devuelve uno vacío con Version 0.
	GetLedgerForUpdate(ctx context.Context, companyID, departmentID, productID string) (*inventory.Ledger, error)
	// ListBatches lectura sin bloqueo, para sugerir asignaciones.
	ListBatches(ctx context.Context, companyID, departmentID, productID string) ([]*entity.StockBatch, error)
	// SaveLedger inserta o actualiza el ledger y sus lotes modificados con control de versión.
	// Si otra transacción escribió antes devuelve domain.ErrConcurrencyConflict.
	SaveLedger(ctx context.Context, ledger *inventory.Ledger) error
}
