package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/inventory"
	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `id, company_id, department_id, product_id,
	total_quantity, available_quantity, reserved_quantity, incoming_quantity,
	min_stock_level, max_stock_level, reorder_point, default_withdrawal_qty, COALESCE(location, ''),
	version, created_at, updated_at`

const batchColumns = `id, stock_id, lot_number, expiry_date, manufacture_date, COALESCE(supplier, ''),
	cost_price, selling_price,
	total_quantity, available_quantity, reserved_quantity, incoming_quantity,
	status, is_active, version, created_at, updated_at`

// GetLedgerForUpdate bloquea la fila del ledger y la de sus lotes. Si no existe devuelve uno vacío;
// dos transacciones que lo creen a la vez chocan en el INSERT de SaveLedger.
func (r *StockRepo) GetLedgerForUpdate(ctx context.Context, companyID, departmentID, productID string) (*inventory.Ledger, error) {
	query := `SELECT ` + stockColumns + `
		FROM stocks WHERE company_id = $1 AND department_id = $2 AND product_id = $3
		FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, companyID, departmentID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return inventory.NewLedger(inventory.EmptyStock(companyID, departmentID, productID, time.Time{}), nil), nil
		}
		return nil, mapError(err, "get stock for update")
	}
	batches, err := r.batches(ctx, `SELECT `+batchColumns+`
		FROM stock_batches WHERE stock_id = $1
		ORDER BY created_at, lot_number
		FOR UPDATE`, s.ID)
	if err != nil {
		return nil, err
	}
	return inventory.NewLedger(s, batches), nil
}

// ListBatches lectura sin bloqueo de los lotes del ledger.
func (r *StockRepo) ListBatches(ctx context.Context, companyID, departmentID, productID string) ([]*entity.StockBatch, error) {
	return r.batches(ctx, `SELECT `+batchColumns+`
		FROM stock_batches
		WHERE stock_id = (SELECT id FROM stocks WHERE company_id = $1 AND department_id = $2 AND product_id = $3)
		ORDER BY created_at, lot_number`, companyID, departmentID, productID)
}

// SaveLedger inserta o actualiza el ledger y sus lotes modificados. Cada UPDATE exige la versión
// leída; si no afecta filas otra transacción escribió antes.
func (r *StockRepo) SaveLedger(ctx context.Context, l *inventory.Ledger) error {
	s := l.Stock
	if s.IsNew() {
		cmd, err := r.q.Exec(ctx, `
			INSERT INTO stocks (id, company_id, department_id, product_id,
				total_quantity, available_quantity, reserved_quantity, incoming_quantity,
				min_stock_level, max_stock_level, reorder_point, default_withdrawal_qty, location,
				version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 1, $14, $15)
			ON CONFLICT (department_id, product_id) DO NOTHING`,
			s.ID, s.CompanyID, s.DepartmentID, s.ProductID,
			s.TotalQuantity, s.AvailableQuantity, s.ReservedQuantity, s.IncomingQuantity,
			s.MinStockLevel, s.MaxStockLevel, s.ReorderPoint, s.DefaultWithdrawalQty, s.Location,
			s.CreatedAt, s.UpdatedAt,
		)
		if err != nil {
			return mapError(err, "insert stock")
		}
		if cmd.RowsAffected() == 0 {
			return conflict("stock", s.ID)
		}
	} else {
		cmd, err := r.q.Exec(ctx, `
			UPDATE stocks SET
				total_quantity = $3, available_quantity = $4, reserved_quantity = $5, incoming_quantity = $6,
				version = version + 1, updated_at = $7
			WHERE id = $1 AND version = $2`,
			s.ID, s.Version,
			s.TotalQuantity, s.AvailableQuantity, s.ReservedQuantity, s.IncomingQuantity,
			s.UpdatedAt,
		)
		if err != nil {
			return mapError(err, "update stock")
		}
		if cmd.RowsAffected() == 0 {
			return conflict("stock", s.ID)
		}
	}
	s.Version++

	for _, b := range l.Dirty() {
		b.StockID = s.ID
		if err := r.saveBatch(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func (r *StockRepo) saveBatch(ctx context.Context, b *entity.StockBatch) error {
	if b.IsNew() {
		cmd, err := r.q.Exec(ctx, `
			INSERT INTO stock_batches (id, stock_id, lot_number, expiry_date, manufacture_date, supplier,
				cost_price, selling_price,
				total_quantity, available_quantity, reserved_quantity, incoming_quantity,
				status, is_active, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1, $15, $16)
			ON CONFLICT (stock_id, lot_number) DO NOTHING`,
			b.ID, b.StockID, b.LotNumber, b.ExpiryDate, b.ManufactureDate, b.Supplier,
			b.CostPrice, b.SellingPrice,
			b.TotalQuantity, b.AvailableQuantity, b.ReservedQuantity, b.IncomingQuantity,
			string(b.Status), b.IsActive, b.CreatedAt, b.UpdatedAt,
		)
		if err != nil {
			return mapError(err, "insert stock batch")
		}
		if cmd.RowsAffected() == 0 {
			return conflict("stock_batch", b.ID)
		}
		b.Version = 1
		return nil
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock_batches SET
			cost_price = $3, selling_price = $4,
			total_quantity = $5, available_quantity = $6, reserved_quantity = $7, incoming_quantity = $8,
			status = $9, is_active = $10,
			version = version + 1, updated_at = $11
		WHERE id = $1 AND version = $2`,
		b.ID, b.Version,
		b.CostPrice, b.SellingPrice,
		b.TotalQuantity, b.AvailableQuantity, b.ReservedQuantity, b.IncomingQuantity,
		string(b.Status), b.IsActive, b.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "update stock batch")
	}
	if cmd.RowsAffected() == 0 {
		return conflict("stock_batch", b.ID)
	}
	b.Version++
	return nil
}

func (r *StockRepo) batches(ctx context.Context, query string, args ...any) ([]*entity.StockBatch, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "list stock batches")
	}
	defer rows.Close()
	list := []*entity.StockBatch{}
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, mapError(err, "scan stock batch")
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.DepartmentID, &s.ProductID,
		&s.TotalQuantity, &s.AvailableQuantity, &s.ReservedQuantity, &s.IncomingQuantity,
		&s.MinStockLevel, &s.MaxStockLevel, &s.ReorderPoint, &s.DefaultWithdrawalQty, &s.Location,
		&s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanBatch(row pgx.Row) (*entity.StockBatch, error) {
	var (
		b      entity.StockBatch
		status string
	)
	err := row.Scan(
		&b.ID, &b.StockID, &b.LotNumber, &b.ExpiryDate, &b.ManufactureDate, &b.Supplier,
		&b.CostPrice, &b.SellingPrice,
		&b.TotalQuantity, &b.AvailableQuantity, &b.ReservedQuantity, &b.IncomingQuantity,
		&status, &b.IsActive, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Status = entity.BatchStatus(status)
	return &b, nil
}
