// Package transfer orquesta las transiciones de traslados: valida contra la máquina de estados,
// asigna lotes, aplica los deltas de stock y registra el historial dentro de una sola transacción.
package transfer

import (
	"time"

	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
	"github.com/jhoicas/pharma-transfers/pkg/logger"
)

// Config parámetros del motor.
type Config struct {
	// MaxConflictRetries reintentos transparentes ante domain.ErrConcurrencyConflict.
	MaxConflictRetries int
	// StrictAllocation política por defecto de la asignación automática (el request puede sobreescribirla).
	StrictAllocation bool
}

// UseCase casos de uso del motor de traslados.
type UseCase struct {
	txRunner    TxRunner
	transfers   repository.TransferRepository
	history     repository.TransitionRepository
	stock       repository.StockRepository
	departments repository.DepartmentRepository
	products    repository.ProductRepository
	slips       SlipGenerator
	cfg         Config
	log         *logger.Logger
	now         func() time.Time
}

// NewUseCase construye el caso de uso. Los repositorios sueltos se usan solo para lecturas;
// toda escritura pasa por txRunner.
func NewUseCase(
	txRunner TxRunner,
	transfers repository.TransferRepository,
	history repository.TransitionRepository,
	stock repository.StockRepository,
	departments repository.DepartmentRepository,
	products repository.ProductRepository,
	slips SlipGenerator,
	cfg Config,
	log *logger.Logger,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		txRunner:    txRunner,
		transfers:   transfers,
		history:     history,
		stock:       stock,
		departments: departments,
		products:    products,
		slips:       slips,
		cfg:         cfg,
		log:         log.Component("transfer"),
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

func (uc *UseCase) clock() time.Time { return uc.now().UTC() }
