package transfer_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/transfer"
)

func item(status entity.ItemStatus) *entity.TransferItem {
	it := pendingItem(10)
	it.Status = status
	return it
}

func TestRollup_Estados(t *testing.T) {
	cases := []struct {
		name  string
		items []entity.ItemStatus
		want  entity.TransferStatus
	}{
		{"sin ítems", nil, entity.TransferPending},
		{"todo pendiente", []entity.ItemStatus{entity.ItemPending, entity.ItemPending}, entity.TransferPending},
		{"mínimo aprobado", []entity.ItemStatus{entity.ItemApproved, entity.ItemPrepared}, entity.TransferApproved},
		{"mínimo pendiente", []entity.ItemStatus{entity.ItemPending, entity.ItemPrepared}, entity.TransferPending},
		{"todo preparado", []entity.ItemStatus{entity.ItemPrepared, entity.ItemPrepared}, entity.TransferPrepared},
		{"algunos entregados", []entity.ItemStatus{entity.ItemDelivered, entity.ItemApproved}, entity.TransferPartial},
		{"todo entregado", []entity.ItemStatus{entity.ItemDelivered, entity.ItemDelivered}, entity.TransferCompleted},
		{"cancelados no cuentan", []entity.ItemStatus{entity.ItemDelivered, entity.ItemCancelled}, entity.TransferCompleted},
		{"cancelado y pendiente", []entity.ItemStatus{entity.ItemCancelled, entity.ItemApproved}, entity.TransferApproved},
		{"todo cancelado", []entity.ItemStatus{entity.ItemCancelled, entity.ItemCancelled}, entity.TransferCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items := make([]*entity.TransferItem, 0, len(tc.items))
			for _, s := range tc.items {
				items = append(items, item(s))
			}
			assert.Equal(t, tc.want, transfer.Rollup(items).Status)
		})
	}
}

func TestRollup_EntregaConFaltanteTambienCompleta(t *testing.T) {
	it := item(entity.ItemDelivered)
	it.PreparedQuantity = dec(40)
	it.ReceivedQuantity = dec(30)

	assert.Equal(t, entity.TransferCompleted, transfer.Rollup([]*entity.TransferItem{it}).Status)
}

func TestRollup_TimestampsDeEtapa(t *testing.T) {
	a1, a2 := t0, t0.Add(time.Hour)
	first := item(entity.ItemPrepared)
	first.ApprovedAt = &a1
	first.PreparedAt = &a2
	second := item(entity.ItemApproved)
	second.ApprovedAt = &a2

	s := transfer.Rollup([]*entity.TransferItem{first, second})

	require.NotNil(t, s.ApprovedAt)
	assert.Equal(t, a2, *s.ApprovedAt, "approvedAt es el último ítem en aprobarse")
	assert.Nil(t, s.PreparedAt, "no todos los ítems están preparados")
	assert.Nil(t, s.DeliveredAt)
	assert.Nil(t, s.CancelledAt)
}

func TestRollup_CancelledAtSoloSiTodoCancelado(t *testing.T) {
	c := t0.Add(3 * time.Hour)
	cancelled := item(entity.ItemCancelled)
	cancelled.CancelledAt = &c

	s := transfer.Rollup([]*entity.TransferItem{cancelled})
	require.NotNil(t, s.CancelledAt)
	assert.Equal(t, c, *s.CancelledAt)

	s = transfer.Rollup([]*entity.TransferItem{cancelled, item(entity.ItemPending)})
	assert.Nil(t, s.CancelledAt)
}

func TestApply_CopiaRollupEnCabecera(t *testing.T) {
	tr := &entity.Transfer{ID: "tr-1", Status: entity.TransferPending, Items: []*entity.TransferItem{item(entity.ItemDelivered)}}

	transfer.Apply(tr)

	assert.Equal(t, entity.TransferCompleted, tr.Status)
}

func TestCheckCancelTransfer(t *testing.T) {
	ok := &entity.Transfer{ID: "tr-1", Items: []*entity.TransferItem{item(entity.ItemPending), item(entity.ItemCancelled)}}
	assert.NoError(t, transfer.CheckCancelTransfer(ok, "sin presupuesto"))
	assert.True(t, errors.Is(transfer.CheckCancelTransfer(ok, ""), domain.ErrInvalidInput))

	advanced := &entity.Transfer{ID: "tr-2", Items: []*entity.TransferItem{item(entity.ItemPending), item(entity.ItemApproved)}}
	assert.True(t, errors.Is(transfer.CheckCancelTransfer(advanced, "x"), domain.ErrInvalidTransition))

	allCancelled := &entity.Transfer{ID: "tr-3", Items: []*entity.TransferItem{item(entity.ItemCancelled)}}
	assert.True(t, errors.Is(transfer.CheckCancelTransfer(allCancelled, "x"), domain.ErrInvalidTransition))
}
