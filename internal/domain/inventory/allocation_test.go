package inventory_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func batch(id, lot string, expiry *time.Time, available int64) *entity.StockBatch {
	return &entity.StockBatch{
		ID:                id,
		StockID:           "stock-1",
		LotNumber:         lot,
		ExpiryDate:        expiry,
		TotalQuantity:     dec(available),
		AvailableQuantity: dec(available),
		ReservedQuantity:  decimal.Zero,
		IncomingQuantity:  decimal.Zero,
		Status:            entity.BatchAvailable,
		IsActive:          true,
		Version:           1,
	}
}

func quantities(res inventory.AllocationResult) map[string]string {
	out := map[string]string{}
	for _, a := range res.Allocations {
		out[a.BatchID] = a.Quantity.String()
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Allocate
// ──────────────────────────────────────────────────────────────────────────────

func TestAllocate_ConsumeEnOrdenDeVencimiento(t *testing.T) {
	b1 := batch("b1", "L-001", day("2025-01-01"), 100)
	b2 := batch("b2", "L-002", day("2025-06-01"), 100)

	res, err := inventory.Allocate([]*entity.StockBatch{b2, b1}, dec(150), inventory.AllocationPolicy{Strict: true})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"b1": "100", "b2": "50"}, quantities(res))
	assert.Equal(t, "b1", res.Allocations[0].BatchID)
	assert.True(t, res.Shortfall.IsZero())
	assert.Equal(t, "150", res.Allocated.String())
}

func TestAllocate_CantidadMenorQuePrimerLoteNoTocaElSegundo(t *testing.T) {
	b1 := batch("b1", "L-001", day("2025-01-01"), 100)
	b2 := batch("b2", "L-002", day("2025-06-01"), 100)

	res, err := inventory.Allocate([]*entity.StockBatch{b2, b1}, dec(80), inventory.AllocationPolicy{Strict: true})

	require.NoError(t, err)
	require.Len(t, res.Allocations, 1)
	assert.Equal(t, "b1", res.Allocations[0].BatchID)
	assert.Equal(t, "80", res.Allocations[0].Quantity.String())
}

func TestAllocate_SinVencimientoVaAlFinalYDesempatePorLote(t *testing.T) {
	noExpiry := batch("nx", "A-000", nil, 10)
	sameB := batch("sb", "L-B", day("2026-03-01"), 10)
	sameA := batch("sa", "L-A", day("2026-03-01"), 10)

	res, err := inventory.Allocate([]*entity.StockBatch{noExpiry, sameB, sameA}, dec(30), inventory.AllocationPolicy{})

	require.NoError(t, err)
	require.Len(t, res.Allocations, 3)
	assert.Equal(t, []string{"sa", "sb", "nx"}, []string{
		res.Allocations[0].BatchID, res.Allocations[1].BatchID, res.Allocations[2].BatchID,
	})
}

func TestAllocate_IgnoraLotesNoAsignables(t *testing.T) {
	quarantine := batch("q", "L-Q", day("2025-01-01"), 50)
	quarantine.Status = entity.BatchQuarantine
	inactive := batch("i", "L-I", day("2025-01-02"), 50)
	inactive.IsActive = false
	empty := batch("e", "L-E", day("2025-01-03"), 0)
	ok := batch("ok", "L-OK", day("2025-12-01"), 50)

	res, err := inventory.Allocate([]*entity.StockBatch{quarantine, inactive, empty, ok}, dec(20), inventory.AllocationPolicy{Strict: true})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ok": "20"}, quantities(res))
}

func TestAllocate_ExcluyeVencidosSegunAsOf(t *testing.T) {
	expired := batch("old", "L-OLD", day("2025-01-01"), 50)
	fresh := batch("new", "L-NEW", day("2027-01-01"), 50)

	res, err := inventory.Allocate([]*entity.StockBatch{expired, fresh}, dec(10),
		inventory.AllocationPolicy{AsOf: *day("2026-06-01")})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"new": "10"}, quantities(res))
}

func TestAllocate_ModoEstrictoFallaConFaltante(t *testing.T) {
	b1 := batch("b1", "L-001", day("2025-01-01"), 30)

	_, err := inventory.Allocate([]*entity.StockBatch{b1}, dec(50), inventory.AllocationPolicy{Strict: true})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, "50", domain.FieldsOf(err)["requested_quantity"])
	assert.Equal(t, "30", domain.FieldsOf(err)["available_quantity"])
}

func TestAllocate_ModoParcialDevuelveFaltante(t *testing.T) {
	b1 := batch("b1", "L-001", day("2025-01-01"), 30)

	res, err := inventory.Allocate([]*entity.StockBatch{b1}, dec(50), inventory.AllocationPolicy{})

	require.NoError(t, err)
	assert.Equal(t, "30", res.Allocated.String())
	assert.Equal(t, "20", res.Shortfall.String())
}

func TestAllocate_ModoParcialSinStockDevuelveTodoComoFaltante(t *testing.T) {
	quarantine := batch("q", "L-Q", nil, 10)
	quarantine.Status = entity.BatchQuarantine

	res, err := inventory.Allocate([]*entity.StockBatch{quarantine}, dec(5), inventory.AllocationPolicy{})

	require.NoError(t, err)
	assert.Empty(t, res.Allocations)
	assert.True(t, res.Allocated.IsZero())
	assert.Equal(t, "5", res.Shortfall.String())
}

func TestAllocate_ModoEstrictoSinStockFalla(t *testing.T) {
	_, err := inventory.Allocate(nil, dec(5), inventory.AllocationPolicy{Strict: true})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}

func TestAllocate_CantidadNoPositivaEsInvalida(t *testing.T) {
	_, err := inventory.Allocate([]*entity.StockBatch{batch("b", "L", nil, 5)}, decimal.Zero, inventory.AllocationPolicy{})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestAllocate_NoModificaLosLotes(t *testing.T) {
	b1 := batch("b1", "L-001", day("2025-01-01"), 30)

	_, err := inventory.Allocate([]*entity.StockBatch{b1}, dec(10), inventory.AllocationPolicy{})

	require.NoError(t, err)
	assert.Equal(t, "30", b1.AvailableQuantity.String())
	assert.True(t, b1.ReservedQuantity.IsZero())
}
