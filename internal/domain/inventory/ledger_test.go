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

var now = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func ledgerWith(batches ...*entity.StockBatch) *inventory.Ledger {
	stock := inventory.EmptyStock("co-1", "dep-1", "prod-1", now)
	stock.ID = "stock-1"
	stock.Version = 1
	for _, b := range batches {
		b.StockID = stock.ID
		stock.TotalQuantity = stock.TotalQuantity.Add(b.TotalQuantity)
		stock.AvailableQuantity = stock.AvailableQuantity.Add(b.AvailableQuantity)
		stock.ReservedQuantity = stock.ReservedQuantity.Add(b.ReservedQuantity)
		stock.IncomingQuantity = stock.IncomingQuantity.Add(b.IncomingQuantity)
	}
	return inventory.NewLedger(stock, batches)
}

func TestLedgerApply_ReserveMueveDisponibleAReservado(t *testing.T) {
	bx := batch("bx", "LX", day("2027-01-01"), 100)
	l := ledgerWith(bx)

	err := l.Apply(inventory.Reserve(l.Stock, bx, dec(40)), now)

	require.NoError(t, err)
	assert.Equal(t, "60", bx.AvailableQuantity.String())
	assert.Equal(t, "40", bx.ReservedQuantity.String())
	assert.Equal(t, "60", l.Stock.AvailableQuantity.String())
	assert.Equal(t, "40", l.Stock.ReservedQuantity.String())
	assert.Equal(t, "100", l.Stock.TotalQuantity.String())
	assert.True(t, l.Consistent())
	require.Len(t, l.Dirty(), 1)
}

func TestLedgerApply_SinStockNoModificaNada(t *testing.T) {
	bx := batch("bx", "LX", nil, 10)
	l := ledgerWith(bx)

	err := l.Apply(inventory.Reserve(l.Stock, bx, dec(11)), now)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, "10", bx.AvailableQuantity.String())
	assert.True(t, bx.ReservedQuantity.IsZero())
	assert.Equal(t, "10", l.Stock.AvailableQuantity.String())
	assert.Empty(t, l.Dirty())
}

func TestLedgerApply_DispatchLiberaReservaCompleta(t *testing.T) {
	bx := batch("bx", "LX", nil, 100)
	l := ledgerWith(bx)
	require.NoError(t, l.Apply(inventory.Reserve(l.Stock, bx, dec(40)), now))

	require.NoError(t, l.Apply(inventory.Dispatch(l.Stock, bx, dec(40)), now))

	assert.True(t, bx.ReservedQuantity.IsZero())
	assert.Equal(t, "60", bx.TotalQuantity.String())
	assert.Equal(t, "60", l.Stock.TotalQuantity.String())
	assert.True(t, l.Stock.Balanced())
	assert.True(t, l.Consistent())
}

func TestLedgerApply_ReceiveEnEspejoConFaltante(t *testing.T) {
	src := batch("src", "LX", day("2027-01-01"), 0)
	dest := ledgerWith()
	mirror := dest.MirrorOf(src, now)
	require.NoError(t, dest.Apply(inventory.ExpectIncoming(dest.Stock, mirror, dec(40)), now))
	assert.Equal(t, "40", dest.Stock.IncomingQuantity.String())

	require.NoError(t, dest.Apply(inventory.Receive(dest.Stock, mirror, dec(40), dec(30)), now))

	assert.True(t, dest.Stock.IncomingQuantity.IsZero())
	assert.Equal(t, "30", dest.Stock.AvailableQuantity.String())
	assert.Equal(t, "30", dest.Stock.TotalQuantity.String())
	assert.Equal(t, "30", mirror.AvailableQuantity.String())
	assert.Equal(t, "LX", mirror.LotNumber)
	assert.True(t, dest.Consistent())
}

func TestLedgerMirrorOf_ReutilizaLoteExistenteYReactiva(t *testing.T) {
	existing := batch("m", "LX", nil, 0)
	existing.IsActive = false
	l := ledgerWith(existing)

	got := l.MirrorOf(batch("src", "LX", nil, 5), now)

	assert.Same(t, existing, got)
	assert.True(t, got.IsActive)
	assert.Len(t, l.Batches, 1)
}

func TestLedgerApply_RechazaDeltasDesparejos(t *testing.T) {
	bx := batch("bx", "LX", nil, 10)
	l := ledgerWith(bx)
	only := inventory.Deltas{{Target: inventory.TargetBatch, EntityID: "bx", Field: inventory.FieldIncoming, Amount: dec(1)}}

	err := l.Apply(only, now)

	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.True(t, bx.IncomingQuantity.IsZero())
}

func TestLedgerApply_LoteAjenoEsNotFound(t *testing.T) {
	l := ledgerWith(batch("bx", "LX", nil, 10))
	foreign := batch("other", "LY", nil, 10)

	err := l.Apply(inventory.Reserve(l.Stock, foreign, dec(1)), now)

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestBlendMirrorCost_PromediaConExistencias(t *testing.T) {
	mirror := batch("m", "LX", nil, 10)
	mirror.CostPrice = dec(100)
	source := batch("s", "LX", nil, 10)
	source.CostPrice = dec(200)

	inventory.BlendMirrorCost(mirror, source, dec(10))

	assert.Equal(t, "150", mirror.CostPrice.String())
}

func TestBlendMirrorCost_EspejoVacioTomaCostoOrigen(t *testing.T) {
	mirror := batch("m", "LX", nil, 0)
	source := batch("s", "LX", nil, 10)
	source.CostPrice = decimal.RequireFromString("12.5")

	inventory.BlendMirrorCost(mirror, source, dec(3))

	assert.Equal(t, "12.5", mirror.CostPrice.String())
}

// ──────────────────────────────────────────────────────────────────────────────
// Deactivate
// ──────────────────────────────────────────────────────────────────────────────

func TestLedgerDeactivate_RechazaConReservaOEntradaPendiente(t *testing.T) {
	reserved := batch("r", "LR", nil, 10)
	incoming := batch("i", "LI", nil, 0)
	l := ledgerWith(reserved, incoming)
	require.NoError(t, l.Apply(inventory.Reserve(l.Stock, reserved, dec(4)), now))
	require.NoError(t, l.Apply(inventory.ExpectIncoming(l.Stock, incoming, dec(3)), now))

	for _, id := range []string{"r", "i"} {
		err := l.Deactivate(id, now)
		assert.True(t, errors.Is(err, domain.ErrInvalidTransition), id)
		assert.True(t, l.Batch(id).IsActive, id)
	}
	assert.Equal(t, "4", domain.FieldsOf(l.Deactivate("r", now))["reserved_quantity"])
	assert.True(t, l.Consistent())
}

func TestLedgerDeactivate_DaDeBajaElDisponible(t *testing.T) {
	keep := batch("k", "LK", nil, 5)
	retire := batch("x", "LX", nil, 7)
	l := ledgerWith(keep, retire)

	require.NoError(t, l.Deactivate("x", now))

	assert.False(t, retire.IsActive)
	assert.True(t, retire.TotalQuantity.IsZero())
	assert.True(t, retire.AvailableQuantity.IsZero())
	assert.Equal(t, "5", l.Stock.TotalQuantity.String())
	assert.Equal(t, "5", l.Stock.AvailableQuantity.String())
	assert.True(t, l.Consistent())
	assert.Len(t, l.Dirty(), 1)
	assert.NoError(t, l.Deactivate("x", now), "desactivar dos veces no falla")
}

func TestLedgerDeactivate_LoteDesconocido(t *testing.T) {
	l := ledgerWith()
	assert.True(t, errors.Is(l.Deactivate("nope", now), domain.ErrNotFound))
}

func TestLedgerMirrorOf_ReactivaLoteDesactivadoEnCero(t *testing.T) {
	l := ledgerWith(batch("m", "LX", nil, 9))
	require.NoError(t, l.Deactivate("m", now))

	mirror := l.MirrorOf(batch("src", "LX", nil, 5), now)
	require.NoError(t, l.Apply(inventory.ExpectIncoming(l.Stock, mirror, dec(5)), now))
	require.NoError(t, l.Apply(inventory.Receive(l.Stock, mirror, dec(5), dec(5)), now))

	assert.True(t, mirror.IsActive)
	assert.Equal(t, "5", mirror.TotalQuantity.String())
	assert.Equal(t, "5", l.Stock.TotalQuantity.String())
	assert.True(t, l.Consistent())
}

func TestLedgerApply_LedgerNuevoTomaCreatedAtDelApply(t *testing.T) {
	l := inventory.NewLedger(inventory.EmptyStock("co-1", "dep-2", "prod-1", time.Time{}), nil)
	mirror := l.MirrorOf(batch("src", "LX", nil, 5), now)

	require.NoError(t, l.Apply(inventory.ExpectIncoming(l.Stock, mirror, dec(5)), now))

	assert.Equal(t, now, l.Stock.CreatedAt)
	assert.Equal(t, now, l.Stock.UpdatedAt)
}
