// Package transfer contiene la máquina de estados de los ítems de traslado y el
// cálculo del estado consolidado. Funciones puras sobre las entidades, sin persistencia.
package transfer

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
)

var allowed = map[entity.ItemStatus]entity.ItemStatus{
	entity.ItemPending:  entity.ItemApproved,
	entity.ItemApproved: entity.ItemPrepared,
	entity.ItemPrepared: entity.ItemDelivered,
}

// CanTransition indica si from → to es una transición legal de ítem.
func CanTransition(from, to entity.ItemStatus) bool {
	if to == entity.ItemCancelled {
		return from == entity.ItemPending
	}
	next, ok := allowed[from]
	return ok && next == to
}

// RequireTransition devuelve ErrInvalidTransition (con estado actual y destino) si item no puede pasar a to.
func RequireTransition(item *entity.TransferItem, to entity.ItemStatus) error {
	if CanTransition(item.Status, to) {
		return nil
	}
	return domain.NewError(domain.ErrInvalidTransition, "el ítem no admite esta transición",
		"item_id", item.ID,
		"current_status", string(item.Status),
		"target_status", string(to),
	)
}

// CheckApprove valida approve sin modificar el ítem.
func CheckApprove(item *entity.TransferItem, qty decimal.Decimal) error {
	if err := RequireTransition(item, entity.ItemApproved); err != nil {
		return err
	}
	if !qty.IsPositive() {
		return domain.Invalid("la cantidad aprobada debe ser mayor que cero",
			"item_id", item.ID, "approved_quantity", qty.String())
	}
	if err := CheckScale("approved_quantity", qty, "item_id", item.ID); err != nil {
		return err
	}
	if qty.GreaterThan(item.RequestedQuantity) {
		return domain.Invalid("la cantidad aprobada supera la solicitada",
			"item_id", item.ID,
			"approved_quantity", qty.String(),
			"requested_quantity", item.RequestedQuantity.String(),
		)
	}
	return nil
}

// Approve PENDING → APPROVED. No toca stock: aprobar es un compromiso, la reserva ocurre al preparar.
func Approve(item *entity.TransferItem, qty decimal.Decimal, now time.Time) error {
	if err := CheckApprove(item, qty); err != nil {
		return err
	}
	item.Status = entity.ItemApproved
	item.ApprovedQuantity = qty
	item.ApprovedAt = &now
	item.UpdatedAt = now
	return nil
}

// CheckPrepare valida que el ítem pueda prepararse con el total indicado.
func CheckPrepare(item *entity.TransferItem, total decimal.Decimal) error {
	if err := RequireTransition(item, entity.ItemPrepared); err != nil {
		return err
	}
	if !total.IsPositive() {
		return domain.Invalid("la preparación debe incluir al menos una unidad", "item_id", item.ID)
	}
	if total.GreaterThan(item.ApprovedQuantity) {
		return domain.Invalid("la cantidad preparada supera la aprobada",
			"item_id", item.ID,
			"prepared_quantity", total.String(),
			"approved_quantity", item.ApprovedQuantity.String(),
		)
	}
	return nil
}

// Prepare APPROVED → PREPARED con las asignaciones por lote ya reservadas.
// PreparedQuantity queda como la suma de las asignaciones.
func Prepare(item *entity.TransferItem, batches []*entity.TransferItemBatch, now time.Time) error {
	total := decimal.Zero
	for _, b := range batches {
		total = total.Add(b.Quantity)
	}
	if err := CheckPrepare(item, total); err != nil {
		return err
	}
	item.Status = entity.ItemPrepared
	item.PreparedQuantity = total
	item.Batches = batches
	item.PreparedAt = &now
	item.UpdatedAt = now
	return nil
}

// Deliver PREPARED → DELIVERED. receipts es batchID → cantidad recibida y debe cubrir
// exactamente los lotes asignados. Un faltante (recibido < preparado) se registra, no bloquea.
func Deliver(item *entity.TransferItem, receipts map[string]decimal.Decimal, notes string, now time.Time) error {
	if err := CheckDeliver(item, receipts); err != nil {
		return err
	}
	total := decimal.Zero
	for _, b := range item.Batches {
		b.ReceivedQuantity = receipts[b.BatchID]
		total = total.Add(b.ReceivedQuantity)
	}
	item.Status = entity.ItemDelivered
	item.ReceivedQuantity = total
	if notes != "" {
		item.Notes = notes
	}
	item.DeliveredAt = &now
	item.UpdatedAt = now
	return nil
}

// CheckDeliver valida los recibos contra las asignaciones del ítem.
func CheckDeliver(item *entity.TransferItem, receipts map[string]decimal.Decimal) error {
	if err := RequireTransition(item, entity.ItemDelivered); err != nil {
		return err
	}
	if len(receipts) != len(item.Batches) {
		return domain.Invalid("se requiere un recibo por cada lote preparado",
			"item_id", item.ID,
			"expected_receipts", decimal.NewFromInt(int64(len(item.Batches))).String(),
			"given_receipts", decimal.NewFromInt(int64(len(receipts))).String(),
		)
	}
	for _, b := range item.Batches {
		got, ok := receipts[b.BatchID]
		if !ok {
			return domain.Invalid("falta el recibo de un lote preparado", "item_id", item.ID, "batch_id", b.BatchID)
		}
		if got.IsNegative() {
			return domain.Invalid("la cantidad recibida no puede ser negativa",
				"item_id", item.ID, "batch_id", b.BatchID, "received_quantity", got.String())
		}
		if err := CheckScale("received_quantity", got, "item_id", item.ID, "batch_id", b.BatchID); err != nil {
			return err
		}
		if got.GreaterThan(b.Quantity) {
			return domain.NewError(domain.ErrInsufficientStock, "se recibió más de lo preparado para el lote",
				"item_id", item.ID,
				"batch_id", b.BatchID,
				"received_quantity", got.String(),
				"prepared_quantity", b.Quantity.String(),
			)
		}
	}
	return nil
}

// CheckCancel valida cancel: solo desde PENDING y con motivo. El estado se evalúa primero,
// un ítem fuera de PENDING siempre devuelve ErrInvalidTransition.
func CheckCancel(item *entity.TransferItem, reason string) error {
	if err := RequireTransition(item, entity.ItemCancelled); err != nil {
		return err
	}
	if strings.TrimSpace(reason) == "" {
		return domain.Invalid("el motivo de cancelación es obligatorio", "item_id", item.ID)
	}
	return nil
}

// Cancel PENDING → CANCELLED (terminal). Sin efecto en stock: un ítem pendiente nunca reservó nada.
func Cancel(item *entity.TransferItem, reason string, now time.Time) error {
	if err := CheckCancel(item, reason); err != nil {
		return err
	}
	item.Status = entity.ItemCancelled
	item.CancelReason = strings.TrimSpace(reason)
	item.CancelledAt = &now
	item.UpdatedAt = now
	return nil
}
