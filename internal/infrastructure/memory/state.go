package memory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
)

// state todo el contenido del store. Se guardan valores (no punteros) para que un clone
// sea una copia independiente que una transacción puede modificar libremente.
type state struct {
	stocks        map[string]entity.Stock
	ledgerIdx     map[string]string // empresa/departamento/producto → stock id
	batches       map[string]entity.StockBatch
	transfers     map[string]entity.Transfer // sin ítems
	transferItems map[string][]string        // transfer id → ids de ítems en orden de creación
	items         map[string]entity.TransferItem
	codes         map[string]string // empresa/código → transfer id
	records       []entity.TransitionRecord
	departments   map[string]entity.Department
	products      map[string]entity.Product
}

func newState() state {
	return state{
		stocks:        make(map[string]entity.Stock),
		ledgerIdx:     make(map[string]string),
		batches:       make(map[string]entity.StockBatch),
		transfers:     make(map[string]entity.Transfer),
		transferItems: make(map[string][]string),
		items:         make(map[string]entity.TransferItem),
		codes:         make(map[string]string),
		departments:   make(map[string]entity.Department),
		products:      make(map[string]entity.Product),
	}
}

func (s state) clone() state {
	out := newState()
	for k, v := range s.stocks {
		out.stocks[k] = v
	}
	for k, v := range s.ledgerIdx {
		out.ledgerIdx[k] = v
	}
	for k, v := range s.batches {
		out.batches[k] = v
	}
	for k, v := range s.transfers {
		out.transfers[k] = v
	}
	for k, v := range s.transferItems {
		out.transferItems[k] = append([]string(nil), v...)
	}
	for k, v := range s.items {
		out.items[k] = cloneItem(v)
	}
	for k, v := range s.codes {
		out.codes[k] = v
	}
	out.records = make([]entity.TransitionRecord, len(s.records))
	copy(out.records, s.records)
	for k, v := range s.departments {
		out.departments[k] = v
	}
	for k, v := range s.products {
		out.products[k] = v
	}
	return out
}

func ledgerKey(companyID, departmentID, productID string) string {
	return companyID + "/" + departmentID + "/" + productID
}

func codeKey(companyID, code string) string {
	return companyID + "/" + code
}

func cloneItem(it entity.TransferItem) entity.TransferItem {
	if it.Batches != nil {
		batches := make([]*entity.TransferItemBatch, len(it.Batches))
		for i, b := range it.Batches {
			cp := *b
			batches[i] = &cp
		}
		it.Batches = batches
	}
	return it
}

func cloneRecord(r entity.TransitionRecord) entity.TransitionRecord {
	if r.Quantities != nil {
		q := make(map[string]decimal.Decimal, len(r.Quantities))
		for k, v := range r.Quantities {
			q[k] = v
		}
		r.Quantities = q
	}
	return r
}

// transfer arma el agregado completo (cabecera + ítems) como copia independiente.
func (s *state) transfer(id string) *entity.Transfer {
	h, ok := s.transfers[id]
	if !ok {
		return nil
	}
	t := h
	t.Items = make([]*entity.TransferItem, 0, len(s.transferItems[id]))
	for _, itemID := range s.transferItems[id] {
		it := cloneItem(s.items[itemID])
		t.Items = append(t.Items, &it)
	}
	return &t
}
