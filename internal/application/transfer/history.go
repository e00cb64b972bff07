package transfer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
	domtransfer "github.com/jhoicas/pharma-transfers/internal/domain/transfer"
)

func newRecord(actor entity.Actor, t *entity.Transfer, itemID, action, from, to, notes string, now time.Time) *entity.TransitionRecord {
	return &entity.TransitionRecord{
		ID:                uuid.New().String(),
		CompanyID:         t.CompanyID,
		TransferID:        t.ID,
		TransferItemID:    itemID,
		Action:            action,
		FromStatus:        from,
		ToStatus:          to,
		ChangedBy:         actor.UserID,
		ActorName:         actor.Name,
		ActorRole:         actor.Role,
		ActorDepartmentID: actor.DepartmentID,
		Notes:             notes,
		CreatedAt:         now,
	}
}

func itemRecord(actor entity.Actor, t *entity.Transfer, item *entity.TransferItem, action string, from entity.ItemStatus, notes string, qty map[string]decimal.Decimal, now time.Time) *entity.TransitionRecord {
	rec := newRecord(actor, t, item.ID, action, string(from), string(item.Status), notes, now)
	rec.Quantities = qty
	return rec
}

// commit recalcula el rollup, lo persiste y agrega los registros de historial. Si el estado
// consolidado cambió se agrega además un registro a nivel traslado.
func commit(
	ctx context.Context,
	transferRepo repository.TransferRepository,
	historyRepo repository.TransitionRepository,
	actor entity.Actor,
	t *entity.Transfer,
	action, notes string,
	now time.Time,
	records ...*entity.TransitionRecord,
) error {
	before := t.Status
	domtransfer.Apply(t)
	t.UpdatedAt = now
	if err := transferRepo.UpdateRollup(ctx, t); err != nil {
		return err
	}
	if t.Status != before {
		records = append(records, newRecord(actor, t, "", action, string(before), string(t.Status), notes, now))
	}
	return historyRepo.Append(ctx, records...)
}
