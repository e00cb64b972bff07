package transfer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharma-transfers/internal/application/dto"
	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
	domtransfer "github.com/jhoicas/pharma-transfers/internal/domain/transfer"
)

// ApproveItem PENDING → APPROVED con la cantidad aprobada (≤ solicitada). No reserva stock.
func (uc *UseCase) ApproveItem(ctx context.Context, actor entity.Actor, itemID string, in dto.ApproveItemRequest) (*dto.TransferResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var out *entity.Transfer
	err := uc.run(ctx, entity.ActionApprove, itemID, func(
		_ repository.StockRepository,
		transferRepo repository.TransferRepository,
		historyRepo repository.TransitionRepository,
	) error {
		t, item, err := loadItemForUpdate(ctx, transferRepo, actor, itemID)
		if err != nil {
			return err
		}
		if err := requireSupplying(actor, t); err != nil {
			return err
		}
		now := uc.clock()
		from := item.Status
		if err := domtransfer.Approve(item, in.ApprovedQuantity, now); err != nil {
			return err
		}
		if err := transferRepo.UpdateItem(ctx, item); err != nil {
			return err
		}
		rec := itemRecord(actor, t, item, entity.ActionApprove, from, in.Notes, map[string]decimal.Decimal{
			"requested_quantity": item.RequestedQuantity,
			"approved_quantity":  item.ApprovedQuantity,
		}, now)
		if err := commit(ctx, transferRepo, historyRepo, actor, t, entity.ActionApprove, in.Notes, now, rec); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("transfer_id", out.ID).Str("item_id", itemID).Str("action", entity.ActionApprove).Msg("ítem aprobado")
	return toTransferResponse(out), nil
}

// ApproveAll aprueba todos los ítems PENDING por su cantidad solicitada. Después de esto el
// traslado ya no puede cancelarse completo.
func (uc *UseCase) ApproveAll(ctx context.Context, actor entity.Actor, transferID string, in dto.ApproveAllRequest) (*dto.TransferResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var (
		out      *entity.Transfer
		approved int
	)
	err := uc.run(ctx, entity.ActionApprove, transferID, func(
		_ repository.StockRepository,
		transferRepo repository.TransferRepository,
		historyRepo repository.TransitionRepository,
	) error {
		t, err := loadForUpdate(ctx, transferRepo, actor, transferID)
		if err != nil {
			return err
		}
		if err := requireSupplying(actor, t); err != nil {
			return err
		}
		now := uc.clock()
		var records []*entity.TransitionRecord
		for _, item := range t.Items {
			if item.Status != entity.ItemPending {
				continue
			}
			if err := domtransfer.Approve(item, item.RequestedQuantity, now); err != nil {
				return err
			}
			if err := transferRepo.UpdateItem(ctx, item); err != nil {
				return err
			}
			records = append(records, itemRecord(actor, t, item, entity.ActionApprove, entity.ItemPending, in.Notes, map[string]decimal.Decimal{
				"requested_quantity": item.RequestedQuantity,
				"approved_quantity":  item.ApprovedQuantity,
			}, now))
		}
		if len(records) == 0 {
			return domain.NewError(domain.ErrInvalidTransition, "el traslado no tiene ítems pendientes de aprobar",
				"transfer_id", t.ID, "current_status", string(t.Status))
		}
		if err := commit(ctx, transferRepo, historyRepo, actor, t, entity.ActionApprove, in.Notes, now, records...); err != nil {
			return err
		}
		out, approved = t, len(records)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("transfer_id", transferID).Int("items", approved).Str("action", entity.ActionApprove).Msg("traslado aprobado completo")
	return toTransferResponse(out), nil
}
