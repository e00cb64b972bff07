package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
)

// TransferRepository implementación en memoria de repository.TransferRepository.
type TransferRepository struct {
	a access
}

func (r *TransferRepository) Create(_ context.Context, t *entity.Transfer) error {
	return r.a.write(func(st *state) error {
		key := codeKey(t.CompanyID, t.Code)
		if _, exists := st.codes[key]; exists {
			return domain.NewError(domain.ErrDuplicate, "ya existe un traslado con ese código", "code", t.Code)
		}
		if _, exists := st.transfers[t.ID]; exists {
			return domain.NewError(domain.ErrDuplicate, "ya existe un traslado con ese id", "transfer_id", t.ID)
		}
		h := *t
		h.Items = nil
		st.transfers[t.ID] = h
		st.codes[key] = t.ID
		ids := make([]string, 0, len(t.Items))
		for _, it := range t.Items {
			if it.Version == 0 {
				it.Version = 1
			}
			it.TransferID = t.ID
			st.items[it.ID] = cloneItem(*it)
			ids = append(ids, it.ID)
		}
		st.transferItems[t.ID] = ids
		return nil
	})
}

func (r *TransferRepository) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	var out *entity.Transfer
	err := r.a.read(func(st *state) error {
		out = st.transfer(id)
		return nil
	})
	return out, err
}

// GetForUpdate igual que GetByID: el lock del store cubre toda la transacción.
func (r *TransferRepository) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.GetByID(ctx, id)
}

func (r *TransferRepository) TransferIDOfItem(_ context.Context, itemID string) (string, error) {
	var out string
	err := r.a.read(func(st *state) error {
		if it, ok := st.items[itemID]; ok {
			out = it.TransferID
		}
		return nil
	})
	return out, err
}

func (r *TransferRepository) UpdateItem(_ context.Context, item *entity.TransferItem) error {
	return r.a.write(func(st *state) error {
		cur, ok := st.items[item.ID]
		if !ok || cur.Version != item.Version {
			return conflict("transfer_item", item.ID)
		}
		item.Version++
		st.items[item.ID] = cloneItem(*item)
		return nil
	})
}

func (r *TransferRepository) UpdateRollup(_ context.Context, t *entity.Transfer) error {
	return r.a.write(func(st *state) error {
		h, ok := st.transfers[t.ID]
		if !ok {
			return domain.NotFound("traslado no encontrado", "transfer_id", t.ID)
		}
		h.Status = t.Status
		h.ApprovedAt = t.ApprovedAt
		h.PreparedAt = t.PreparedAt
		h.DeliveredAt = t.DeliveredAt
		h.CancelledAt = t.CancelledAt
		h.UpdatedAt = t.UpdatedAt
		st.transfers[t.ID] = h
		return nil
	})
}

// List ordena por fecha de creación descendente, igual que el listado SQL.
func (r *TransferRepository) List(_ context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	var out []*entity.Transfer
	err := r.a.read(func(st *state) error {
		for id, h := range st.transfers {
			if h.CompanyID != f.CompanyID {
				continue
			}
			if f.DepartmentID != "" && !h.Involves(f.DepartmentID) {
				continue
			}
			if f.Status != "" && h.Status != f.Status {
				continue
			}
			out = append(out, st.transfer(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if f.Offset >= len(out) {
		return []*entity.Transfer{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}
