package transfer

import (
	"context"
	"time"

	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción con los repositorios atados a ella.
// Commit si fn devuelve nil, Rollback en cualquier otro caso: una transición se aplica completa o no se aplica.
type TxRunner interface {
	RunTransfer(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		transferRepo repository.TransferRepository,
		historyRepo repository.TransitionRepository,
	) error) error
}

// SlipData datos para el comprobante de preparación/entrega.
type SlipData struct {
	Transfer             *entity.Transfer
	RequestingDepartment string
	SupplyingDepartment  string
	Products             map[string]*entity.Product
	GeneratedAt          time.Time
}

// SlipGenerator genera el PDF del comprobante de un traslado.
type SlipGenerator interface {
	GenerateTransferSlip(ctx context.Context, data SlipData) ([]byte, error)
}
