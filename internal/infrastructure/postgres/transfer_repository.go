package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo persistencia del agregado Transfer: transfers, transfer_items y transfer_item_batches.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, company_id, code, title, requesting_department_id, supplying_department_id,
	priority, COALESCE(request_reason, ''), COALESCE(notes, ''), created_by,
	status, requested_at, approved_at, prepared_at, delivered_at, cancelled_at,
	created_at, updated_at`

const itemColumns = `id, transfer_id, product_id, status,
	requested_quantity, approved_quantity, prepared_quantity, received_quantity,
	COALESCE(cancel_reason, ''), COALESCE(notes, ''),
	approved_at, prepared_at, delivered_at, cancelled_at,
	version, created_at, updated_at`

// Create inserta cabecera e ítems. El UNIQUE (company_id, code) se traduce a domain.ErrDuplicate.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO transfers (id, company_id, code, title, requesting_department_id, supplying_department_id,
			priority, request_reason, notes, created_by, status, requested_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		t.ID, t.CompanyID, t.Code, t.Title, t.RequestingDepartmentID, t.SupplyingDepartmentID,
		string(t.Priority), t.RequestReason, t.Notes, t.CreatedBy, string(t.Status), t.RequestedAt,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.NewError(domain.ErrDuplicate, "ya existe un traslado con ese código", "code", t.Code)
		}
		return mapError(err, "insert transfer")
	}
	for _, it := range t.Items {
		if it.Version == 0 {
			it.Version = 1
		}
		_, err := r.q.Exec(ctx, `
			INSERT INTO transfer_items (id, transfer_id, product_id, status,
				requested_quantity, approved_quantity, prepared_quantity, received_quantity,
				notes, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, 0, 0, 0, $6, $7, $8, $9)`,
			it.ID, t.ID, it.ProductID, string(it.Status), it.RequestedQuantity, it.Notes, it.Version,
			it.CreatedAt, it.UpdatedAt,
		)
		if err != nil {
			return mapError(err, "insert transfer item")
		}
	}
	return nil
}

// GetByID carga el traslado completo (nil si no existe).
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate como GetByID pero bloqueando cabecera e ítems hasta el fin de la transacción.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, id, true)
}

func (r *TransferRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err, "get transfer")
	}
	if err := r.loadItems(ctx, []*entity.Transfer{t}, forUpdate); err != nil {
		return nil, err
	}
	return t, nil
}

// TransferIDOfItem resuelve el traslado de un ítem ("" si no existe).
func (r *TransferRepo) TransferIDOfItem(ctx context.Context, itemID string) (string, error) {
	var id string
	err := r.q.QueryRow(ctx, `SELECT transfer_id FROM transfer_items WHERE id = $1`, itemID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", mapError(err, "get transfer item")
	}
	return id, nil
}

// UpdateItem actualiza el ítem si la versión coincide y agrega o actualiza sus lotes asignados.
func (r *TransferRepo) UpdateItem(ctx context.Context, item *entity.TransferItem) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE transfer_items SET
			status = $3,
			approved_quantity = $4, prepared_quantity = $5, received_quantity = $6,
			cancel_reason = $7, notes = $8,
			approved_at = $9, prepared_at = $10, delivered_at = $11, cancelled_at = $12,
			version = version + 1, updated_at = $13
		WHERE id = $1 AND version = $2`,
		item.ID, item.Version,
		string(item.Status),
		item.ApprovedQuantity, item.PreparedQuantity, item.ReceivedQuantity,
		item.CancelReason, item.Notes,
		item.ApprovedAt, item.PreparedAt, item.DeliveredAt, item.CancelledAt,
		item.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "update transfer item")
	}
	if cmd.RowsAffected() == 0 {
		return conflict("transfer_item", item.ID)
	}
	item.Version++

	for _, b := range item.Batches {
		_, err := r.q.Exec(ctx, `
			INSERT INTO transfer_item_batches (id, transfer_item_id, batch_id, lot_number, expiry_date,
				quantity, received_quantity, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE SET received_quantity = EXCLUDED.received_quantity`,
			b.ID, item.ID, b.BatchID, b.LotNumber, b.ExpiryDate, b.Quantity, b.ReceivedQuantity, b.CreatedAt,
		)
		if err != nil {
			return mapError(err, "upsert transfer item batch")
		}
	}
	return nil
}

// UpdateRollup persiste el estado consolidado y los timestamps de etapa.
func (r *TransferRepo) UpdateRollup(ctx context.Context, t *entity.Transfer) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE transfers SET status = $2,
			approved_at = $3, prepared_at = $4, delivered_at = $5, cancelled_at = $6, updated_at = $7
		WHERE id = $1`,
		t.ID, string(t.Status), t.ApprovedAt, t.PreparedAt, t.DeliveredAt, t.CancelledAt, t.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "update transfer rollup")
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("traslado no encontrado", "transfer_id", t.ID)
	}
	return nil
}

// List filtra por empresa y opcionalmente por departamento participante y estado.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	where := []string{"company_id = $1"}
	args := []any{f.CompanyID}
	if f.DepartmentID != "" {
		args = append(args, f.DepartmentID)
		where = append(where, fmt.Sprintf("(requesting_department_id = $%d OR supplying_department_id = $%d)", len(args), len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	args = append(args, limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM transfers WHERE %s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		transferColumns, strings.Join(where, " AND "), len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list transfers")
	}
	list := []*entity.Transfer{}
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			rows.Close()
			return nil, mapError(err, "scan transfer")
		}
		list = append(list, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list transfers")
	}
	if err := r.loadItems(ctx, list, false); err != nil {
		return nil, err
	}
	return list, nil
}

// loadItems carga ítems y lotes asignados de varios traslados con dos consultas.
func (r *TransferRepo) loadItems(ctx context.Context, transfers []*entity.Transfer, forUpdate bool) error {
	if len(transfers) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Transfer, len(transfers))
	ids := make([]string, 0, len(transfers))
	for _, t := range transfers {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}
	query := `SELECT ` + itemColumns + ` FROM transfer_items WHERE transfer_id = ANY($1::uuid[]) ORDER BY created_at, id`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return mapError(err, "list transfer items")
	}
	items := map[string]*entity.TransferItem{}
	itemIDs := []string{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			rows.Close()
			return mapError(err, "scan transfer item")
		}
		byID[it.TransferID].Items = append(byID[it.TransferID].Items, it)
		items[it.ID] = it
		itemIDs = append(itemIDs, it.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return mapError(err, "list transfer items")
	}
	if len(itemIDs) == 0 {
		return nil
	}

	rows, err = r.q.Query(ctx, `
		SELECT id, transfer_item_id, batch_id, lot_number, expiry_date, quantity, received_quantity, created_at
		FROM transfer_item_batches WHERE transfer_item_id = ANY($1::uuid[])
		ORDER BY created_at, lot_number`, itemIDs)
	if err != nil {
		return mapError(err, "list transfer item batches")
	}
	defer rows.Close()
	for rows.Next() {
		var b entity.TransferItemBatch
		if err := rows.Scan(&b.ID, &b.TransferItemID, &b.BatchID, &b.LotNumber, &b.ExpiryDate,
			&b.Quantity, &b.ReceivedQuantity, &b.CreatedAt); err != nil {
			return mapError(err, "scan transfer item batch")
		}
		it := items[b.TransferItemID]
		it.Batches = append(it.Batches, &b)
	}
	return rows.Err()
}

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var (
		t                entity.Transfer
		priority, status string
	)
	err := row.Scan(
		&t.ID, &t.CompanyID, &t.Code, &t.Title, &t.RequestingDepartmentID, &t.SupplyingDepartmentID,
		&priority, &t.RequestReason, &t.Notes, &t.CreatedBy,
		&status, &t.RequestedAt, &t.ApprovedAt, &t.PreparedAt, &t.DeliveredAt, &t.CancelledAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Priority = entity.TransferPriority(priority)
	t.Status = entity.TransferStatus(status)
	return &t, nil
}

func scanItem(row pgx.Row) (*entity.TransferItem, error) {
	var (
		it     entity.TransferItem
		status string
	)
	err := row.Scan(
		&it.ID, &it.TransferID, &it.ProductID, &status,
		&it.RequestedQuantity, &it.ApprovedQuantity, &it.PreparedQuantity, &it.ReceivedQuantity,
		&it.CancelReason, &it.Notes,
		&it.ApprovedAt, &it.PreparedAt, &it.DeliveredAt, &it.CancelledAt,
		&it.Version, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.Status = entity.ItemStatus(status)
	return &it, nil
}
