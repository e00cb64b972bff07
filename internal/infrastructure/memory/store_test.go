package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/inventory"
	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
	"github.com/jhoicas/pharma-transfers/internal/infrastructure/memory"
)

var now = time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func seeded(t *testing.T) (*memory.Store, *entity.StockBatch) {
	t.Helper()
	s := memory.NewStore()
	stock := inventory.EmptyStock("co-1", "dep-a", "prod-1", now)
	b := &entity.StockBatch{
		ID: "b1", LotNumber: "L-001",
		TotalQuantity: dec(100), AvailableQuantity: dec(100),
		Status: entity.BatchAvailable, IsActive: true, CreatedAt: now,
	}
	s.SeedLedger(stock, b)
	return s, b
}

func sampleTransfer(code string) *entity.Transfer {
	return &entity.Transfer{
		ID: "tr-" + code, CompanyID: "co-1", Code: code, Title: "Reposición",
		RequestingDepartmentID: "dep-b", SupplyingDepartmentID: "dep-a",
		Status: entity.TransferPending, CreatedAt: now,
		Items: []*entity.TransferItem{{
			ID: "it-" + code, ProductID: "prod-1", Status: entity.ItemPending, RequestedQuantity: dec(5),
		}},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger
// ──────────────────────────────────────────────────────────────────────────────

func TestSeedLedger_CalculaContadoresDesdeLotes(t *testing.T) {
	s, _ := seeded(t)

	l := s.Ledger("co-1", "dep-a", "prod-1")

	require.NotNil(t, l)
	assert.Equal(t, "100", l.Stock.TotalQuantity.String())
	assert.Equal(t, int64(1), l.Stock.Version)
	assert.True(t, l.Consistent())
}

func TestRunTransfer_ErrorDescartaCambios(t *testing.T) {
	s, b := seeded(t)
	ctx := context.Background()

	err := s.RunTransfer(ctx, func(stockRepo repository.StockRepository, _ repository.TransferRepository, _ repository.TransitionRepository) error {
		l, err := stockRepo.GetLedgerForUpdate(ctx, "co-1", "dep-a", "prod-1")
		require.NoError(t, err)
		require.NoError(t, l.Apply(inventory.Reserve(l.Stock, l.Batch(b.ID), dec(10)), now))
		require.NoError(t, stockRepo.SaveLedger(ctx, l))
		return errors.New("fallo posterior")
	})

	require.Error(t, err)
	l := s.Ledger("co-1", "dep-a", "prod-1")
	assert.Equal(t, "100", l.Stock.AvailableQuantity.String())
	assert.True(t, l.Stock.ReservedQuantity.IsZero())
	assert.Equal(t, int64(1), l.Stock.Version)
}

func TestSaveLedger_VersionViejaEsConflicto(t *testing.T) {
	s, b := seeded(t)
	ctx := context.Background()
	stale, err := s.Stocks().GetLedgerForUpdate(ctx, "co-1", "dep-a", "prod-1")
	require.NoError(t, err)

	fresh, err := s.Stocks().GetLedgerForUpdate(ctx, "co-1", "dep-a", "prod-1")
	require.NoError(t, err)
	require.NoError(t, fresh.Apply(inventory.Reserve(fresh.Stock, fresh.Batch(b.ID), dec(1)), now))
	require.NoError(t, s.Stocks().SaveLedger(ctx, fresh))

	require.NoError(t, stale.Apply(inventory.Reserve(stale.Stock, stale.Batch(b.ID), dec(1)), now))
	err = s.Stocks().SaveLedger(ctx, stale)

	assert.True(t, errors.Is(err, domain.ErrConcurrencyConflict))
	assert.Equal(t, "1", s.Ledger("co-1", "dep-a", "prod-1").Stock.ReservedQuantity.String())
}

func TestSaveLedger_CreaLedgerYLoteEspejo(t *testing.T) {
	s, b := seeded(t)
	ctx := context.Background()

	dst, err := s.Stocks().GetLedgerForUpdate(ctx, "co-1", "dep-b", "prod-1")
	require.NoError(t, err)
	assert.True(t, dst.Stock.IsNew())
	mirror := dst.MirrorOf(b, now)
	require.NoError(t, dst.Apply(inventory.ExpectIncoming(dst.Stock, mirror, dec(5)), now))
	require.NoError(t, s.Stocks().SaveLedger(ctx, dst))

	got := s.Ledger("co-1", "dep-b", "prod-1")
	require.NotNil(t, got)
	assert.Equal(t, "5", got.Stock.IncomingQuantity.String())
	require.Len(t, got.Batches, 1)
	assert.Equal(t, "L-001", got.Batches[0].LotNumber)
	assert.Equal(t, int64(1), got.Batches[0].Version)
}

func TestSaveLedger_DosLedgersNuevosParaLaMismaClaveChocan(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	first, _ := s.Stocks().GetLedgerForUpdate(ctx, "co-1", "dep-b", "prod-1")
	second, _ := s.Stocks().GetLedgerForUpdate(ctx, "co-1", "dep-b", "prod-1")

	require.NoError(t, s.Stocks().SaveLedger(ctx, first))
	err := s.Stocks().SaveLedger(ctx, second)

	assert.True(t, errors.Is(err, domain.ErrConcurrencyConflict))
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_CodigoDuplicado(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, s.Transfers().Create(ctx, sampleTransfer("T-1")))

	dup := sampleTransfer("T-1")
	dup.ID = "otro"
	err := s.Transfers().Create(ctx, dup)

	assert.True(t, errors.Is(err, domain.ErrDuplicate))
}

func TestGetByID_DevuelveCopias(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, s.Transfers().Create(ctx, sampleTransfer("T-1")))

	got, err := s.Transfers().GetByID(ctx, "tr-T-1")
	require.NoError(t, err)
	got.Items[0].Status = entity.ItemCancelled

	again, err := s.Transfers().GetByID(ctx, "tr-T-1")
	require.NoError(t, err)
	assert.Equal(t, entity.ItemPending, again.Items[0].Status)
	assert.Equal(t, int64(1), again.Items[0].Version)
}

func TestUpdateItem_ControlDeVersion(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, s.Transfers().Create(ctx, sampleTransfer("T-1")))
	a, _ := s.Transfers().GetByID(ctx, "tr-T-1")
	b, _ := s.Transfers().GetByID(ctx, "tr-T-1")

	a.Items[0].Status = entity.ItemApproved
	require.NoError(t, s.Transfers().UpdateItem(ctx, a.Items[0]))
	assert.Equal(t, int64(2), a.Items[0].Version)

	b.Items[0].Status = entity.ItemCancelled
	err := s.Transfers().UpdateItem(ctx, b.Items[0])
	assert.True(t, errors.Is(err, domain.ErrConcurrencyConflict))
}

func TestList_FiltraPorDepartamentoYEstado(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	first := sampleTransfer("T-1")
	second := sampleTransfer("T-2")
	second.CreatedAt = now.Add(time.Hour)
	second.RequestingDepartmentID = "dep-c"
	second.Status = entity.TransferApproved
	require.NoError(t, s.Transfers().Create(ctx, first))
	require.NoError(t, s.Transfers().Create(ctx, second))

	all, err := s.Transfers().List(ctx, repository.TransferFilter{CompanyID: "co-1"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "T-2", all[0].Code, "más reciente primero")

	onlyB, _ := s.Transfers().List(ctx, repository.TransferFilter{CompanyID: "co-1", DepartmentID: "dep-b"})
	require.Len(t, onlyB, 1)
	assert.Equal(t, "T-1", onlyB[0].Code)

	approved, _ := s.Transfers().List(ctx, repository.TransferFilter{CompanyID: "co-1", Status: entity.TransferApproved})
	require.Len(t, approved, 1)

	paged, _ := s.Transfers().List(ctx, repository.TransferFilter{CompanyID: "co-1", Limit: 1, Offset: 1})
	require.Len(t, paged, 1)
	assert.Equal(t, "T-1", paged[0].Code)

	other, _ := s.Transfers().List(ctx, repository.TransferFilter{CompanyID: "co-2"})
	assert.Empty(t, other)
}

func TestHistory_AppendEnOrden(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, s.History().Append(ctx,
		&entity.TransitionRecord{ID: "r1", TransferID: "tr-1", Action: entity.ActionCreate},
		&entity.TransitionRecord{ID: "r2", TransferID: "tr-1", Action: entity.ActionApprove, Quantities: map[string]decimal.Decimal{"approved_quantity": dec(3)}},
		&entity.TransitionRecord{ID: "r3", TransferID: "tr-2", Action: entity.ActionCreate},
	))

	got, err := s.History().ListByTransfer(ctx, "tr-1")

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, "3", got[1].Quantities["approved_quantity"].String())
}
