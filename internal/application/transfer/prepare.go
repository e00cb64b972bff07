package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharma-transfers/internal/application/dto"
	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/inventory"
	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
	domtransfer "github.com/jhoicas/pharma-transfers/internal/domain/transfer"
)

// PrepareItem APPROVED → PREPARED. Reserva en los lotes del proveedor (available → reserved) y registra
// la entrada esperada en el destino (incoming). Sin asignaciones en el request usa la asignación FIFO
// por vencimiento sobre la cantidad aprobada. Si un solo lote falla no se reserva nada.
func (uc *UseCase) PrepareItem(ctx context.Context, actor entity.Actor, itemID string, in dto.PrepareItemRequest) (*dto.TransferResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	var out *entity.Transfer
	err := uc.run(ctx, entity.ActionPrepare, itemID, func(
		stockRepo repository.StockRepository,
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
		if err := domtransfer.RequireTransition(item, entity.ItemPrepared); err != nil {
			return err
		}
		now := uc.clock()
		src, dst, err := lockLedgers(ctx, stockRepo, t, item.ProductID)
		if err != nil {
			return err
		}

		var lines []inventory.Allocation
		if len(in.Allocations) == 0 {
			res, err := inventory.Allocate(src.Batches, item.ApprovedQuantity, uc.policy(in.Strict, now))
			if err != nil {
				return err
			}
			if len(res.Allocations) == 0 {
				return domain.NewError(domain.ErrInsufficientStock, "no hay stock disponible en lotes del proveedor",
					"item_id", item.ID,
					"requested_quantity", item.ApprovedQuantity.String(),
					"available_quantity", res.Allocated.String(),
				)
			}
			lines = res.Allocations
		} else {
			lines, err = manualAllocations(src, item, in.Allocations)
			if err != nil {
				return err
			}
		}

		var (
			srcDeltas inventory.Deltas
			dstDeltas inventory.Deltas
			rows      []*entity.TransferItemBatch
			qty       = map[string]decimal.Decimal{}
		)
		for _, a := range lines {
			b := src.Batch(a.BatchID)
			mirror := dst.MirrorOf(b, now)
			srcDeltas = append(srcDeltas, inventory.Reserve(src.Stock, b, a.Quantity)...)
			dstDeltas = append(dstDeltas, inventory.ExpectIncoming(dst.Stock, mirror, a.Quantity)...)
			rows = append(rows, &entity.TransferItemBatch{
				ID:               uuid.New().String(),
				TransferItemID:   item.ID,
				BatchID:          b.ID,
				LotNumber:        b.LotNumber,
				ExpiryDate:       b.ExpiryDate,
				Quantity:         a.Quantity,
				ReceivedQuantity: decimal.Zero,
				CreatedAt:        now,
			})
			qty["batch:"+b.LotNumber] = a.Quantity
		}

		from := item.Status
		if err := domtransfer.Prepare(item, rows, now); err != nil {
			return err
		}
		if err := src.Apply(srcDeltas, now); err != nil {
			return err
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
		qty["approved_quantity"] = item.ApprovedQuantity
		qty["prepared_quantity"] = item.PreparedQuantity
		rec := itemRecord(actor, t, item, entity.ActionPrepare, from, in.Notes, qty, now)
		if err := commit(ctx, transferRepo, historyRepo, actor, t, entity.ActionPrepare, in.Notes, now, rec); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("transfer_id", out.ID).Str("item_id", itemID).Str("action", entity.ActionPrepare).Msg("ítem preparado")
	return toTransferResponse(out), nil
}

// SuggestAllocation corre el motor de asignación sin reservar nada, para que el proveedor
// revise o ajuste los lotes antes de preparar.
func (uc *UseCase) SuggestAllocation(ctx context.Context, actor entity.Actor, itemID string, strict *bool) (*dto.AllocationSuggestionResponse, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	t, item, err := uc.readItem(ctx, actor, itemID)
	if err != nil {
		return nil, err
	}
	if err := requireSupplying(actor, t); err != nil {
		return nil, err
	}
	if err := domtransfer.RequireTransition(item, entity.ItemPrepared); err != nil {
		return nil, err
	}
	batches, err := uc.stock.ListBatches(ctx, t.CompanyID, t.SupplyingDepartmentID, item.ProductID)
	if err != nil {
		return nil, err
	}
	policy := uc.policy(strict, uc.clock())
	res, err := inventory.Allocate(batches, item.ApprovedQuantity, policy)
	if err != nil {
		return nil, err
	}
	return toAllocationResponse(item.ID, policy.Strict, res), nil
}

func (uc *UseCase) policy(strict *bool, now time.Time) inventory.AllocationPolicy {
	p := inventory.AllocationPolicy{Strict: uc.cfg.StrictAllocation, AsOf: now}
	if strict != nil {
		p.Strict = *strict
	}
	return p
}

// manualAllocations valida las asignaciones del caller contra el ledger del proveedor.
func manualAllocations(src *inventory.Ledger, item *entity.TransferItem, in []dto.BatchAllocationRequest) ([]inventory.Allocation, error) {
	total := decimal.Zero
	seen := map[string]bool{}
	out := make([]inventory.Allocation, 0, len(in))
	for _, a := range in {
		if seen[a.BatchID] {
			return nil, domain.Invalid("lote repetido en la preparación", "item_id", item.ID, "batch_id", a.BatchID)
		}
		seen[a.BatchID] = true
		if !a.Quantity.IsPositive() {
			return nil, domain.Invalid("la cantidad por lote debe ser mayor que cero",
				"item_id", item.ID, "batch_id", a.BatchID, "quantity", a.Quantity.String())
		}
		if err := domtransfer.CheckScale("quantity", a.Quantity, "item_id", item.ID, "batch_id", a.BatchID); err != nil {
			return nil, err
		}
		total = total.Add(a.Quantity)
	}
	if err := domtransfer.CheckPrepare(item, total); err != nil {
		return nil, err
	}
	for _, a := range in {
		b := src.Batch(a.BatchID)
		if b == nil {
			return nil, domain.NotFound("el lote no pertenece al stock del departamento proveedor para este producto",
				"item_id", item.ID, "batch_id", a.BatchID)
		}
		if !b.IsActive || b.Status != entity.BatchAvailable {
			return nil, domain.Invalid("el lote no está disponible",
				"batch_id", b.ID, "lot_number", b.LotNumber, "batch_status", string(b.Status))
		}
		if b.AvailableQuantity.LessThan(a.Quantity) {
			return nil, domain.NewError(domain.ErrInsufficientStock, "el lote no tiene disponible suficiente",
				"batch_id", b.ID,
				"lot_number", b.LotNumber,
				"requested_quantity", a.Quantity.String(),
				"available_quantity", b.AvailableQuantity.String(),
			)
		}
		out = append(out, inventory.Allocation{BatchID: b.ID, LotNumber: b.LotNumber, ExpiryDate: b.ExpiryDate, Quantity: a.Quantity})
	}
	return out, nil
}
