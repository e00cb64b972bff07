package transfer_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/transfer"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func pendingItem(requested int64) *entity.TransferItem {
	return &entity.TransferItem{
		ID:                "item-1",
		TransferID:        "tr-1",
		ProductID:         "prod-1",
		Status:            entity.ItemPending,
		RequestedQuantity: dec(requested),
		Version:           1,
	}
}

func preparedItem(t *testing.T) *entity.TransferItem {
	t.Helper()
	it := pendingItem(50)
	require.NoError(t, transfer.Approve(it, dec(40), t0))
	require.NoError(t, transfer.Prepare(it, []*entity.TransferItemBatch{
		{BatchID: "bx", LotNumber: "LX", Quantity: dec(25)},
		{BatchID: "by", LotNumber: "LY", Quantity: dec(15)},
	}, t0.Add(time.Hour)))
	return it
}

// ──────────────────────────────────────────────────────────────────────────────
// approve
// ──────────────────────────────────────────────────────────────────────────────

func TestApprove_PendienteAAprobado(t *testing.T) {
	it := pendingItem(50)

	require.NoError(t, transfer.Approve(it, dec(40), t0))

	assert.Equal(t, entity.ItemApproved, it.Status)
	assert.Equal(t, "40", it.ApprovedQuantity.String())
	require.NotNil(t, it.ApprovedAt)
	assert.Equal(t, t0, *it.ApprovedAt)
}

func TestApprove_CantidadInvalida(t *testing.T) {
	cases := map[string]decimal.Decimal{
		"cero":          decimal.Zero,
		"negativa":      dec(-1),
		"supera pedido": dec(51),
	}
	for name, qty := range cases {
		t.Run(name, func(t *testing.T) {
			it := pendingItem(50)
			err := transfer.Approve(it, qty, t0)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))
			assert.Equal(t, entity.ItemPending, it.Status)
		})
	}
}

func TestApprove_MasDeCuatroDecimalesEsInvalido(t *testing.T) {
	it := pendingItem(50)

	err := transfer.Approve(it, decimal.RequireFromString("0.00004"), t0)

	require.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, "0.00004", domain.FieldsOf(err)["approved_quantity"])
	assert.Equal(t, entity.ItemPending, it.Status)
}

func TestApprove_DosVecesEsTransicionInvalida(t *testing.T) {
	it := pendingItem(50)
	require.NoError(t, transfer.Approve(it, dec(10), t0))

	err := transfer.Approve(it, dec(10), t0)

	require.True(t, errors.Is(err, domain.ErrInvalidTransition))
	assert.Equal(t, "APPROVED", domain.FieldsOf(err)["current_status"])
	assert.Equal(t, "item-1", domain.FieldsOf(err)["item_id"])
}

// ──────────────────────────────────────────────────────────────────────────────
// prepare
// ──────────────────────────────────────────────────────────────────────────────

func TestPrepare_SumaDeLotesEsPreparado(t *testing.T) {
	it := preparedItem(t)

	assert.Equal(t, entity.ItemPrepared, it.Status)
	assert.Equal(t, "40", it.PreparedQuantity.String())
	assert.Len(t, it.Batches, 2)
}

func TestPrepare_DesdePendienteEsInvalido(t *testing.T) {
	it := pendingItem(50)

	err := transfer.Prepare(it, []*entity.TransferItemBatch{{BatchID: "bx", Quantity: dec(1)}}, t0)

	assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	assert.Equal(t, entity.ItemPending, it.Status)
}

func TestPrepare_SuperaAprobadoEsInvalido(t *testing.T) {
	it := pendingItem(50)
	require.NoError(t, transfer.Approve(it, dec(10), t0))

	err := transfer.Prepare(it, []*entity.TransferItemBatch{{BatchID: "bx", Quantity: dec(11)}}, t0)

	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, entity.ItemApproved, it.Status)
	assert.Nil(t, it.Batches)
}

// ──────────────────────────────────────────────────────────────────────────────
// deliver
// ──────────────────────────────────────────────────────────────────────────────

func TestDeliver_RecepcionParcialNoBloquea(t *testing.T) {
	it := preparedItem(t)

	err := transfer.Deliver(it, map[string]decimal.Decimal{"bx": dec(25), "by": dec(5)}, "caja rota", t0.Add(2*time.Hour))

	require.NoError(t, err)
	assert.Equal(t, entity.ItemDelivered, it.Status)
	assert.Equal(t, "30", it.ReceivedQuantity.String())
	assert.Equal(t, "10", it.Shortfall().String())
	assert.Equal(t, "caja rota", it.Notes)
	assert.Equal(t, "5", it.Batches[1].ReceivedQuantity.String())
}

func TestDeliver_ValidaRecibos(t *testing.T) {
	cases := map[string]struct {
		receipts map[string]decimal.Decimal
		kind     error
	}{
		"falta un lote":    {map[string]decimal.Decimal{"bx": dec(1)}, domain.ErrInvalidInput},
		"lote desconocido": {map[string]decimal.Decimal{"bx": dec(1), "bz": dec(1)}, domain.ErrInvalidInput},
		"negativo":         {map[string]decimal.Decimal{"bx": dec(-1), "by": dec(1)}, domain.ErrInvalidInput},
		"supera preparado": {map[string]decimal.Decimal{"bx": dec(26), "by": dec(1)}, domain.ErrInsufficientStock},
		"cinco decimales":  {map[string]decimal.Decimal{"bx": decimal.RequireFromString("24.00001"), "by": dec(1)}, domain.ErrInvalidInput},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			it := preparedItem(t)
			err := transfer.Deliver(it, tc.receipts, "", t0)
			assert.True(t, errors.Is(err, tc.kind), err)
			assert.Equal(t, entity.ItemPrepared, it.Status)
			assert.True(t, it.ReceivedQuantity.IsZero())
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// cancel
// ──────────────────────────────────────────────────────────────────────────────

func TestCancel_SinMotivoEsValidacion(t *testing.T) {
	it := pendingItem(5)

	err := transfer.Cancel(it, "   ", t0)

	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, entity.ItemPending, it.Status)
}

func TestCancel_SoloDesdePendiente(t *testing.T) {
	approved := pendingItem(5)
	require.NoError(t, transfer.Approve(approved, dec(5), t0))
	prepared := preparedItem(t)

	for _, it := range []*entity.TransferItem{approved, prepared} {
		err := transfer.Cancel(it, "ya no se necesita", t0)
		assert.True(t, errors.Is(err, domain.ErrInvalidTransition))
	}
}

func TestCancel_FueraDePendienteSinMotivoEsTransicionInvalida(t *testing.T) {
	approved := pendingItem(5)
	require.NoError(t, transfer.Approve(approved, dec(5), t0))
	cancelled := pendingItem(5)
	require.NoError(t, transfer.Cancel(cancelled, "pedido duplicado", t0))

	cases := map[string]*entity.TransferItem{
		"aprobado":  approved,
		"preparado": preparedItem(t),
		"cancelado": cancelled,
	}
	for name, it := range cases {
		t.Run(name, func(t *testing.T) {
			from := it.Status

			err := transfer.Cancel(it, "", t0)

			require.True(t, errors.Is(err, domain.ErrInvalidTransition), err)
			assert.False(t, errors.Is(err, domain.ErrInvalidInput))
			assert.Equal(t, string(from), domain.FieldsOf(err)["current_status"])
			assert.Equal(t, from, it.Status)
		})
	}
}

func TestCancel_EsTerminal(t *testing.T) {
	it := pendingItem(5)
	require.NoError(t, transfer.Cancel(it, "pedido duplicado", t0))
	assert.Equal(t, "pedido duplicado", it.CancelReason)

	assert.True(t, errors.Is(transfer.Approve(it, dec(1), t0), domain.ErrInvalidTransition))
	assert.True(t, errors.Is(transfer.Cancel(it, "otra vez", t0), domain.ErrInvalidTransition))
	assert.True(t, errors.Is(transfer.Prepare(it, []*entity.TransferItemBatch{{BatchID: "b", Quantity: dec(1)}}, t0), domain.ErrInvalidTransition))
	assert.True(t, errors.Is(transfer.Deliver(it, map[string]decimal.Decimal{}, "", t0), domain.ErrInvalidTransition))
}

func TestCheckScale(t *testing.T) {
	assert.NoError(t, transfer.CheckScale("quantity", decimal.RequireFromString("12.3456")))
	assert.NoError(t, transfer.CheckScale("quantity", decimal.RequireFromString("1.00000")), "ceros a la derecha no cuentan")

	err := transfer.CheckScale("quantity", decimal.RequireFromString("0.00004"), "batch_id", "bx")

	require.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, "0.00004", domain.FieldsOf(err)["quantity"])
	assert.Equal(t, "bx", domain.FieldsOf(err)["batch_id"])
}

func TestCanTransition(t *testing.T) {
	assert.True(t, transfer.CanTransition(entity.ItemPending, entity.ItemApproved))
	assert.True(t, transfer.CanTransition(entity.ItemPending, entity.ItemCancelled))
	assert.False(t, transfer.CanTransition(entity.ItemApproved, entity.ItemPending))
	assert.False(t, transfer.CanTransition(entity.ItemPending, entity.ItemPrepared))
	assert.False(t, transfer.CanTransition(entity.ItemDelivered, entity.ItemCancelled))
}
