package repository

import (
	"context"

	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
)

// TransferFilter filtros del listado de traslados.
// DepartmentID vacío lista toda la empresa; si no, los traslados donde el departamento participa.
type TransferFilter struct {
	CompanyID    string
	DepartmentID string
	Status       entity.TransferStatus
	Limit        int
	Offset       int
}

// TransferRepository puerto de persistencia del agregado Transfer (cabecera, ítems y lotes asignados).
type TransferRepository interface {
	// Create inserta cabecera e ítems. Código repetido en la empresa → domain.ErrDuplicate.
	Create(ctx context.Context, t *entity.Transfer) error
	// GetByID carga el traslado completo sin bloqueo (nil si no existe).
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	// GetForUpdate carga y bloquea cabecera e ítems para una transición (nil si no existe).
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	// TransferIDOfItem resuelve el traslado al que pertenece un ítem ("" si no existe).
	TransferIDOfItem(ctx context.Context, itemID string) (string, error)
	// UpdateItem guarda estado, cantidades y lotes asignados del ítem si Version coincide
	// (y la incrementa); si no, domain.ErrConcurrencyConflict.
	UpdateItem(ctx context.Context, item *entity.TransferItem) error
	// UpdateRollup persiste el estado consolidado y los timestamps de etapa.
	UpdateRollup(ctx context.Context, t *entity.Transfer) error
	List(ctx context.Context, filter TransferFilter) ([]*entity.Transfer, error)
}

// TransitionRepository registro append-only de transiciones (auditoría).
type TransitionRepository interface {
	Append(ctx context.Context, records ...*entity.TransitionRecord) error
	ListByTransfer(ctx context.Context, transferID string) ([]*entity.TransitionRecord, error)
}
