package transfer

import (
	"time"

	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
)

// Summary estado consolidado de un traslado y los timestamps de etapa derivados.
type Summary struct {
	Status      entity.TransferStatus
	ApprovedAt  *time.Time
	PreparedAt  *time.Time
	DeliveredAt *time.Time
	CancelledAt *time.Time
}

// Rollup calcula el estado del traslado a partir de sus ítems. Es la única fuente del
// estado consolidado: los ítems cancelados no cuentan, salvo si todos lo están.
//
//	todos cancelados                       → CANCELLED
//	todos los activos entregados           → COMPLETED (con o sin faltantes)
//	algunos entregados                     → PARTIAL
//	en otro caso, el menor estado presente → PENDING / APPROVED / PREPARED
func Rollup(items []*entity.TransferItem) Summary {
	if len(items) == 0 {
		return Summary{Status: entity.TransferPending}
	}
	var (
		active    []*entity.TransferItem
		cancelled *time.Time
	)
	for _, it := range items {
		if it.Status == entity.ItemCancelled {
			cancelled = latest(cancelled, it.CancelledAt)
			continue
		}
		active = append(active, it)
	}
	if len(active) == 0 {
		return Summary{Status: entity.TransferCancelled, CancelledAt: cancelled}
	}

	minRank := entity.ItemDelivered.Rank()
	delivered := 0
	for _, it := range active {
		if r := it.Status.Rank(); r < minRank {
			minRank = r
		}
		if it.Status == entity.ItemDelivered {
			delivered++
		}
	}

	s := Summary{
		ApprovedAt:  stageAt(active, entity.ItemApproved, func(it *entity.TransferItem) *time.Time { return it.ApprovedAt }),
		PreparedAt:  stageAt(active, entity.ItemPrepared, func(it *entity.TransferItem) *time.Time { return it.PreparedAt }),
		DeliveredAt: stageAt(active, entity.ItemDelivered, func(it *entity.TransferItem) *time.Time { return it.DeliveredAt }),
	}
	switch {
	case delivered == len(active):
		s.Status = entity.TransferCompleted
	case delivered > 0:
		s.Status = entity.TransferPartial
	case minRank == entity.ItemPrepared.Rank():
		s.Status = entity.TransferPrepared
	case minRank == entity.ItemApproved.Rank():
		s.Status = entity.TransferApproved
	default:
		s.Status = entity.TransferPending
	}
	return s
}

// Apply copia el resultado de Rollup en la cabecera del traslado.
func Apply(t *entity.Transfer) {
	s := Rollup(t.Items)
	t.Status = s.Status
	t.ApprovedAt = s.ApprovedAt
	t.PreparedAt = s.PreparedAt
	t.DeliveredAt = s.DeliveredAt
	t.CancelledAt = s.CancelledAt
}

// CheckCancelTransfer: el traslado completo solo se cancela si ningún ítem salió de PENDING.
func CheckCancelTransfer(t *entity.Transfer, reason string) error {
	pending := 0
	for _, it := range t.Items {
		switch it.Status {
		case entity.ItemCancelled:
		case entity.ItemPending:
			pending++
		default:
			return domain.NewError(domain.ErrInvalidTransition, "el traslado tiene ítems que ya salieron de PENDING",
				"transfer_id", t.ID, "item_id", it.ID, "current_status", string(it.Status))
		}
	}
	if pending == 0 {
		return domain.NewError(domain.ErrInvalidTransition, "el traslado no tiene ítems pendientes",
			"transfer_id", t.ID, "current_status", string(t.Status))
	}
	for _, it := range t.Items {
		if it.Status == entity.ItemPending {
			if err := CheckCancel(it, reason); err != nil {
				return err
			}
		}
	}
	return nil
}

// stageAt devuelve el instante en que todos los ítems activos alcanzaron la etapa, o nil.
func stageAt(active []*entity.TransferItem, stage entity.ItemStatus, at func(*entity.TransferItem) *time.Time) *time.Time {
	var out *time.Time
	for _, it := range active {
		if it.Status.Rank() < stage.Rank() {
			return nil
		}
		out = latest(out, at(it))
	}
	return out
}

func latest(a, b *time.Time) *time.Time {
	if b == nil {
		return a
	}
	if a == nil || b.After(*a) {
		t := *b
		return &t
	}
	return a
}
