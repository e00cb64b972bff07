package transfer

import (
	"context"
	"strings"

	"github.com/jhoicas/pharma-transfers/internal/application/dto"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
	domtransfer "github.com/jhoicas/pharma-transfers/internal/domain/transfer"
)

// CancelItem PENDING → CANCELLED con motivo obligatorio. Solo ADMIN/OWNER. Sin efecto en stock.
func (uc *UseCase) CancelItem(ctx context.Context, actor entity.Actor, itemID string, in dto.CancelRequest) (*dto.TransferResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var out *entity.Transfer
	err := uc.run(ctx, entity.ActionCancel, itemID, func(
		_ repository.StockRepository,
		transferRepo repository.TransferRepository,
		historyRepo repository.TransitionRepository,
	) error {
		t, item, err := loadItemForUpdate(ctx, transferRepo, actor, itemID)
		if err != nil {
			return err
		}
		if err := requireManager(actor); err != nil {
			return err
		}
		now := uc.clock()
		from := item.Status
		if err := domtransfer.Cancel(item, in.Reason, now); err != nil {
			return err
		}
		if err := transferRepo.UpdateItem(ctx, item); err != nil {
			return err
		}
		rec := itemRecord(actor, t, item, entity.ActionCancel, from, item.CancelReason, nil, now)
		if err := commit(ctx, transferRepo, historyRepo, actor, t, entity.ActionCancel, item.CancelReason, now, rec); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("transfer_id", out.ID).Str("item_id", itemID).Str("action", entity.ActionCancel).Msg("ítem cancelado")
	return toTransferResponse(out), nil
}

// CancelTransfer cancela todos los ítems pendientes. Solo es posible si ningún ítem salió de PENDING.
func (uc *UseCase) CancelTransfer(ctx context.Context, actor entity.Actor, transferID string, in dto.CancelRequest) (*dto.TransferResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(in.Reason)
	var out *entity.Transfer
	err := uc.run(ctx, entity.ActionCancel, transferID, func(
		_ repository.StockRepository,
		transferRepo repository.TransferRepository,
		historyRepo repository.TransitionRepository,
	) error {
		t, err := loadForUpdate(ctx, transferRepo, actor, transferID)
		if err != nil {
			return err
		}
		if err := requireManager(actor); err != nil {
			return err
		}
		if err := domtransfer.CheckCancelTransfer(t, reason); err != nil {
			return err
		}
		now := uc.clock()
		var records []*entity.TransitionRecord
		for _, item := range t.Items {
			if item.Status != entity.ItemPending {
				continue
			}
			if err := domtransfer.Cancel(item, reason, now); err != nil {
				return err
			}
			if err := transferRepo.UpdateItem(ctx, item); err != nil {
				return err
			}
			records = append(records, itemRecord(actor, t, item, entity.ActionCancel, entity.ItemPending, reason, nil, now))
		}
		if err := commit(ctx, transferRepo, historyRepo, actor, t, entity.ActionCancel, reason, now, records...); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("transfer_id", transferID).Str("action", entity.ActionCancel).Msg("traslado cancelado")
	return toTransferResponse(out), nil
}
