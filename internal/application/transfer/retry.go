package transfer

import (
	"context"
	"errors"

	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
)

type txFunc = func(
	stockRepo repository.StockRepository,
	transferRepo repository.TransferRepository,
	historyRepo repository.TransitionRepository,
) error

// run ejecuta fn en una transacción y la repite completa, con datos frescos, si choca con otra
// escritura concurrente. Cualquier otro error se devuelve tal cual en el primer intento.
func (uc *UseCase) run(ctx context.Context, action, id string, fn txFunc) error {
	attempts := uc.cfg.MaxConflictRetries + 1
	for attempt := 1; ; attempt++ {
		err := uc.txRunner.RunTransfer(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		if attempt >= attempts {
			uc.log.Warn().Str("action", action).Str("id", id).Int("attempt", attempt).Msg("conflicto de concurrencia, sin más reintentos")
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		uc.log.Warn().Str("action", action).Str("id", id).Int("attempt", attempt).Err(err).Msg("conflicto de concurrencia, reintentando")
	}
}
