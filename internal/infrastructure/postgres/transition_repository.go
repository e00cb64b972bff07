package postgres

import (
	"context"

	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
)

var _ repository.TransitionRepository = (*TransitionRepo)(nil)

// TransitionRepo historial append-only de transiciones (transfer_transitions).
type TransitionRepo struct {
	q Querier
}

// NewTransitionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransitionRepository(q Querier) *TransitionRepo {
	return &TransitionRepo{q: q}
}

// Append inserta los registros en orden; seq (BIGSERIAL) conserva ese orden al listar.
func (r *TransitionRepo) Append(ctx context.Context, records ...*entity.TransitionRecord) error {
	for _, rec := range records {
		_, err := r.q.Exec(ctx, `
			INSERT INTO transfer_transitions (id, company_id, transfer_id, transfer_item_id, action,
				from_status, to_status, changed_by, actor_name, actor_role, actor_department_id,
				notes, quantities, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			rec.ID, rec.CompanyID, rec.TransferID, nullable(rec.TransferItemID), rec.Action,
			rec.FromStatus, rec.ToStatus, rec.ChangedBy, rec.ActorName, rec.ActorRole, nullable(rec.ActorDepartmentID),
			rec.Notes, rec.Quantities, rec.CreatedAt,
		)
		if err != nil {
			return mapError(err, "insert transfer transition")
		}
	}
	return nil
}

func (r *TransitionRepo) ListByTransfer(ctx context.Context, transferID string) ([]*entity.TransitionRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, transfer_id, COALESCE(transfer_item_id::text, ''), action,
			from_status, to_status, changed_by, COALESCE(actor_name, ''), COALESCE(actor_role, ''),
			COALESCE(actor_department_id::text, ''), COALESCE(notes, ''), quantities, created_at
		FROM transfer_transitions WHERE transfer_id = $1
		ORDER BY seq`, transferID)
	if err != nil {
		return nil, mapError(err, "list transfer transitions")
	}
	defer rows.Close()
	list := []*entity.TransitionRecord{}
	for rows.Next() {
		var rec entity.TransitionRecord
		if err := rows.Scan(
			&rec.ID, &rec.CompanyID, &rec.TransferID, &rec.TransferItemID, &rec.Action,
			&rec.FromStatus, &rec.ToStatus, &rec.ChangedBy, &rec.ActorName, &rec.ActorRole,
			&rec.ActorDepartmentID, &rec.Notes, &rec.Quantities, &rec.CreatedAt,
		); err != nil {
			return nil, mapError(err, "scan transfer transition")
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}
