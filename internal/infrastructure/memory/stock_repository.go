package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/inventory"
)

// StockRepository implementación en memoria de repository.StockRepository.
type StockRepository struct {
	a access
}

// GetLedgerForUpdate dentro de RunTransfer el lock exclusivo del store ya serializa al resto.
func (r *StockRepository) GetLedgerForUpdate(_ context.Context, companyID, departmentID, productID string) (*inventory.Ledger, error) {
	var out *inventory.Ledger
	err := r.a.read(func(st *state) error {
		id, ok := st.ledgerIdx[ledgerKey(companyID, departmentID, productID)]
		if !ok {
			return nil
		}
		out = loadLedger(st, id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		// Sin ledger todavía: se crea recién al guardar y Apply fija CreatedAt.
		out = inventory.NewLedger(inventory.EmptyStock(companyID, departmentID, productID, time.Time{}), nil)
	}
	return out, nil
}

func (r *StockRepository) ListBatches(_ context.Context, companyID, departmentID, productID string) ([]*entity.StockBatch, error) {
	var out []*entity.StockBatch
	err := r.a.read(func(st *state) error {
		id, ok := st.ledgerIdx[ledgerKey(companyID, departmentID, productID)]
		if !ok {
			return nil
		}
		out = batchesOf(st, id)
		return nil
	})
	return out, err
}

// SaveLedger escribe el ledger y sus lotes modificados. Valida todas las versiones antes de
// escribir para no dejar el estado a medias si hay conflicto.
func (r *StockRepository) SaveLedger(_ context.Context, l *inventory.Ledger) error {
	return r.a.write(func(st *state) error {
		s := l.Stock
		key := ledgerKey(s.CompanyID, s.DepartmentID, s.ProductID)
		if s.IsNew() {
			if _, exists := st.ledgerIdx[key]; exists {
				return conflict("stock", s.ID)
			}
		} else if cur, ok := st.stocks[s.ID]; !ok || cur.Version != s.Version {
			return conflict("stock", s.ID)
		}
		dirty := l.Dirty()
		lots := map[string]string{}
		for _, b := range batchesOf(st, s.ID) {
			lots[b.LotNumber] = b.ID
		}
		for _, b := range dirty {
			if b.IsNew() {
				if _, exists := st.batches[b.ID]; exists {
					return conflict("stock_batch", b.ID)
				}
				if _, exists := lots[b.LotNumber]; exists {
					return conflict("stock_batch", b.ID)
				}
				continue
			}
			if cur, ok := st.batches[b.ID]; !ok || cur.Version != b.Version {
				return conflict("stock_batch", b.ID)
			}
		}

		s.Version++
		st.stocks[s.ID] = *s
		st.ledgerIdx[key] = s.ID
		for _, b := range dirty {
			b.StockID = s.ID
			b.Version++
			st.batches[b.ID] = *b
		}
		return nil
	})
}

func loadLedger(st *state, stockID string) *inventory.Ledger {
	s := st.stocks[stockID]
	return inventory.NewLedger(&s, batchesOf(st, stockID))
}

// batchesOf lotes del ledger ordenados por creación y número de lote.
func batchesOf(st *state, stockID string) []*entity.StockBatch {
	out := []*entity.StockBatch{}
	for _, b := range st.batches {
		if b.StockID != stockID {
			continue
		}
		cp := b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].LotNumber < out[j].LotNumber
	})
	return out
}

func conflict(entityName, id string) error {
	return domain.NewError(domain.ErrConcurrencyConflict, "el registro fue modificado por otra operación",
		"entity", entityName, "id", id)
}
