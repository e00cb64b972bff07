package transfer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharma-transfers/internal/application/dto"
	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/inventory"
	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
	domtransfer "github.com/jhoicas/pharma-transfers/internal/domain/transfer"
)

// DeliverItem PREPARED → DELIVERED. La reserva del proveedor se libera completa (la mercadería salió)
// y el destino suma lo recibido en el lote espejo. El faltante queda registrado y no vuelve al proveedor.
// Un lote origen que queda en cero se desactiva.
func (uc *UseCase) DeliverItem(ctx context.Context, actor entity.Actor, itemID string, in dto.DeliverItemRequest) (*dto.DeliveryResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	receipts := make(map[string]decimal.Decimal, len(in.Receipts))
	for _, r := range in.Receipts {
		if _, dup := receipts[r.BatchID]; dup {
			return nil, domain.Invalid("lote repetido en la recepción", "item_id", itemID, "batch_id", r.BatchID)
		}
		receipts[r.BatchID] = r.ReceivedQuantity
	}

	var (
		out      *entity.Transfer
		lowStock bool
		short    decimal.Decimal
	)
	err := uc.run(ctx, entity.ActionDeliver, itemID, func(
		stockRepo repository.StockRepository,
		transferRepo repository.TransferRepository,
		historyRepo repository.TransitionRepository,
	) error {
		t, item, err := loadItemForUpdate(ctx, transferRepo, actor, itemID)
		if err != nil {
			return err
		}
		if err := requireRequesting(actor, t); err != nil {
			return err
		}
		if err := domtransfer.CheckDeliver(item, receipts); err != nil {
			return err
		}
		now := uc.clock()
		src, dst, err := lockLedgers(ctx, stockRepo, t, item.ProductID)
		if err != nil {
			return err
		}

		var srcDeltas, dstDeltas inventory.Deltas
		qty := map[string]decimal.Decimal{}
		for _, ib := range item.Batches {
			sb := src.Batch(ib.BatchID)
			if sb == nil {
				return domain.NotFound("lote origen no encontrado", "item_id", item.ID, "batch_id", ib.BatchID)
			}
			received := receipts[ib.BatchID]
			mirror := dst.MirrorOf(sb, now)
			inventory.BlendMirrorCost(mirror, sb, received)
			dst.MarkDirty(mirror.ID)
			srcDeltas = append(srcDeltas, inventory.Dispatch(src.Stock, sb, ib.Quantity)...)
			dstDeltas = append(dstDeltas, inventory.Receive(dst.Stock, mirror, ib.Quantity, received)...)
			qty["batch:"+ib.LotNumber] = received
		}

		from := item.Status
		if err := domtransfer.Deliver(item, receipts, in.Notes, now); err != nil {
			return err
		}
		if err := src.Apply(srcDeltas, now); err != nil {
			return err
		}
		// Los lotes origen agotados se retiran; si vuelven por otro traslado MirrorOf los reactiva.
		for _, ib := range item.Batches {
			if sb := src.Batch(ib.BatchID); sb.TotalQuantity.IsZero() && sb.CanDeactivate() {
				if err := src.Deactivate(sb.ID, now); err != nil {
					return err
				}
			}
		}
		if err := dst.Apply(dstDeltas, now); err != nil {
			return err
		}
		if err := saveLedgers(ctx, stockRepo, src, dst); err != nil {
			return err
		}
		if err := transferRepo.UpdateItem(ctx, item); err != nil {
			return err
		}
		qty["prepared_quantity"] = item.PreparedQuantity
		qty["received_quantity"] = item.ReceivedQuantity
		qty["shortfall"] = item.Shortfall()
		rec := itemRecord(actor, t, item, entity.ActionDeliver, from, in.Notes, qty, now)
		if err := commit(ctx, transferRepo, historyRepo, actor, t, entity.ActionDeliver, in.Notes, now, rec); err != nil {
			return err
		}
		out, lowStock, short = t, dst.Stock.BelowReorderPoint(), item.Shortfall()
		return nil
	})
	if err != nil {
		return nil, err
	}
	ev := uc.log.Info
	if short.IsPositive() {
		ev = uc.log.Warn
	}
	ev().Str("transfer_id", out.ID).Str("item_id", itemID).Str("action", entity.ActionDeliver).
		Str("shortfall", short.String()).Bool("below_reorder_point", lowStock).Msg("ítem entregado")
	return &dto.DeliveryResponse{
		Transfer:          *toTransferResponse(out),
		Shortfall:         short,
		BelowReorderPoint: lowStock,
	}, nil
}
