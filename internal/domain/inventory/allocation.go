package inventory

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
)

// Allocation porción de un lote asignada a un ítem.
type Allocation struct {
	BatchID    string
	LotNumber  string
	ExpiryDate *time.Time
	Quantity   decimal.Decimal
}

// AllocationResult resultado de Allocate. Shortfall > 0 solo en modo parcial; sin lotes elegibles
// Allocations queda vacío y Shortfall es todo lo pedido.
type AllocationResult struct {
	Allocations []Allocation
	Requested   decimal.Decimal
	Allocated   decimal.Decimal
	Shortfall   decimal.Decimal
}

// AllocationPolicy define cómo reaccionar ante falta de stock.
// Strict: falla si no alcanza. AsOf distinto de cero excluye lotes vencidos a esa fecha.
type AllocationPolicy struct {
	Strict bool
	AsOf   time.Time
}

// Allocate selecciona lotes FIFO por vencimiento (sin vencimiento al final, desempate por lote)
// y consume cada uno hasta cubrir qty. Función pura: no modifica los lotes.
func Allocate(batches []*entity.StockBatch, qty decimal.Decimal, policy AllocationPolicy) (AllocationResult, error) {
	if !qty.IsPositive() {
		return AllocationResult{}, domain.Invalid("la cantidad a asignar debe ser mayor que cero", "quantity", qty.String())
	}

	eligible := make([]*entity.StockBatch, 0, len(batches))
	for _, b := range batches {
		if !b.Allocatable() {
			continue
		}
		if !policy.AsOf.IsZero() && b.IsExpiredAt(policy.AsOf) {
			continue
		}
		eligible = append(eligible, b)
	}
	sort.SliceStable(eligible, func(i, j int) bool { return expiresBefore(eligible[i], eligible[j]) })

	res := AllocationResult{Requested: qty, Allocated: decimal.Zero}
	remaining := qty
	for _, b := range eligible {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(remaining, b.AvailableQuantity)
		res.Allocations = append(res.Allocations, Allocation{
			BatchID:    b.ID,
			LotNumber:  b.LotNumber,
			ExpiryDate: b.ExpiryDate,
			Quantity:   take,
		})
		res.Allocated = res.Allocated.Add(take)
		remaining = remaining.Sub(take)
	}
	res.Shortfall = remaining

	if policy.Strict && remaining.IsPositive() {
		return res, domain.NewError(domain.ErrInsufficientStock, "no hay stock disponible suficiente en lotes",
			"requested_quantity", qty.String(),
			"available_quantity", res.Allocated.String(),
		)
	}
	return res, nil
}

func expiresBefore(a, b *entity.StockBatch) bool {
	switch {
	case a.ExpiryDate == nil && b.ExpiryDate == nil:
	case a.ExpiryDate == nil:
		return false
	case b.ExpiryDate == nil:
		return true
	case !a.ExpiryDate.Equal(*b.ExpiryDate):
		return a.ExpiryDate.Before(*b.ExpiryDate)
	}
	return a.LotNumber < b.LotNumber
}
