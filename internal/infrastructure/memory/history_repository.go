package memory

import (
	"context"

	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
)

// HistoryRepository historial append-only en memoria.
type HistoryRepository struct {
	a access
}

func (r *HistoryRepository) Append(_ context.Context, records ...*entity.TransitionRecord) error {
	return r.a.write(func(st *state) error {
		for _, rec := range records {
			st.records = append(st.records, cloneRecord(*rec))
		}
		return nil
	})
}

// ListByTransfer en orden de inserción.
func (r *HistoryRepository) ListByTransfer(_ context.Context, transferID string) ([]*entity.TransitionRecord, error) {
	out := []*entity.TransitionRecord{}
	err := r.a.read(func(st *state) error {
		for _, rec := range st.records {
			if rec.TransferID == transferID {
				cp := cloneRecord(rec)
				out = append(out, &cp)
			}
		}
		return nil
	})
	return out, err
}
