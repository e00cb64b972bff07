package transfer

import (
	"context"
	"sort"

	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/inventory"
	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
)

// loadForUpdate bloquea el traslado y verifica que el actor pueda verlo.
func loadForUpdate(ctx context.Context, transferRepo repository.TransferRepository, actor entity.Actor, transferID string) (*entity.Transfer, error) {
	t, err := transferRepo.GetForUpdate(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if t == nil || !visible(actor, t) {
		return nil, notFoundTransfer(transferID)
	}
	return t, nil
}

// loadItemForUpdate resuelve el ítem, bloquea su traslado y devuelve ambos.
func loadItemForUpdate(ctx context.Context, transferRepo repository.TransferRepository, actor entity.Actor, itemID string) (*entity.Transfer, *entity.TransferItem, error) {
	transferID, err := transferRepo.TransferIDOfItem(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	if transferID == "" {
		return nil, nil, notFoundItem(itemID)
	}
	t, err := transferRepo.GetForUpdate(ctx, transferID)
	if err != nil {
		return nil, nil, err
	}
	if t == nil || !visible(actor, t) {
		return nil, nil, notFoundItem(itemID)
	}
	item := t.Item(itemID)
	if item == nil {
		return nil, nil, notFoundItem(itemID)
	}
	return t, item, nil
}

// lockLedgers bloquea los ledgers origen y destino del producto siempre en el mismo orden
// (por departamento) para que dos traslados en sentidos opuestos no se bloqueen mutuamente.
func lockLedgers(ctx context.Context, stockRepo repository.StockRepository, t *entity.Transfer, productID string) (src, dst *inventory.Ledger, err error) {
	depts := []string{t.SupplyingDepartmentID, t.RequestingDepartmentID}
	sort.Strings(depts)
	ledgers := map[string]*inventory.Ledger{}
	for _, d := range depts {
		l, err := stockRepo.GetLedgerForUpdate(ctx, t.CompanyID, d, productID)
		if err != nil {
			return nil, nil, err
		}
		ledgers[d] = l
	}
	return ledgers[t.SupplyingDepartmentID], ledgers[t.RequestingDepartmentID], nil
}

// saveLedgers persiste en el mismo orden en que se bloquearon.
func saveLedgers(ctx context.Context, stockRepo repository.StockRepository, ledgers ...*inventory.Ledger) error {
	sort.Slice(ledgers, func(i, j int) bool { return ledgers[i].Stock.DepartmentID < ledgers[j].Stock.DepartmentID })
	for _, l := range ledgers {
		if err := stockRepo.SaveLedger(ctx, l); err != nil {
			return err
		}
	}
	return nil
}
