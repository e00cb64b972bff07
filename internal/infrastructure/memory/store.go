// Package memory implementa los repositorios en memoria. Cada transacción trabaja sobre una copia
// del estado bajo un lock exclusivo y la publica solo si fn termina sin error; las escrituras
// verifican versión igual que en PostgreSQL. Pensado para desarrollo y tests.
package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharma-transfers/internal/application/transfer"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/inventory"
	"github.com/jhoicas/pharma-transfers/internal/domain/repository"
)

var (
	_ transfer.TxRunner               = (*Store)(nil)
	_ repository.StockRepository      = (*StockRepository)(nil)
	_ repository.TransferRepository   = (*TransferRepository)(nil)
	_ repository.TransitionRepository = (*HistoryRepository)(nil)
	_ repository.DepartmentRepository = (*DepartmentRepository)(nil)
	_ repository.ProductRepository    = (*ProductRepository)(nil)
)

// Store almacenamiento en memoria seguro para uso concurrente.
type Store struct {
	mu    sync.RWMutex
	state state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{state: newState()}
}

// access abstrae si una operación corre dentro de una transacción o contra el store directo.
type access interface {
	read(fn func(*state) error) error
	write(fn func(*state) error) error
}

func (s *Store) read(fn func(*state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.state)
}

// write fuera de transacción: autocommit sobre una copia.
func (s *Store) write(fn func(*state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.state = next
	return nil
}

type txAccess struct{ st *state }

func (a txAccess) read(fn func(*state) error) error  { return fn(a.st) }
func (a txAccess) write(fn func(*state) error) error { return fn(a.st) }

// RunTransfer implementa transfer.TxRunner.
func (s *Store) RunTransfer(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	transferRepo repository.TransferRepository,
	historyRepo repository.TransitionRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	next := s.state.clone()
	a := txAccess{st: &next}
	if err := fn(&StockRepository{a: a}, &TransferRepository{a: a}, &HistoryRepository{a: a}); err != nil {
		return err
	}
	s.state = next
	return nil
}

// Stocks repositorio de stock fuera de transacción.
func (s *Store) Stocks() *StockRepository { return &StockRepository{a: s} }

// Transfers repositorio de traslados fuera de transacción.
func (s *Store) Transfers() *TransferRepository { return &TransferRepository{a: s} }

// History repositorio del historial fuera de transacción.
func (s *Store) History() *HistoryRepository { return &HistoryRepository{a: s} }

// Departments repositorio de departamentos.
func (s *Store) Departments() *DepartmentRepository { return &DepartmentRepository{a: s} }

// Products repositorio de productos.
func (s *Store) Products() *ProductRepository { return &ProductRepository{a: s} }

// AddDepartment registra un departamento (datos de catálogo externos al motor).
func (s *Store) AddDepartment(d *entity.Department) {
	_ = s.write(func(st *state) error {
		st.departments[d.ID] = *d
		return nil
	})
}

// AddProduct registra un producto.
func (s *Store) AddProduct(p *entity.Product) {
	_ = s.write(func(st *state) error {
		st.products[p.ID] = *p
		return nil
	})
}

// SeedLedger carga un ledger con sus lotes tal cual (ajuste manual/inventario inicial).
// Los contadores del ledger se recalculan como suma de los lotes activos.
func (s *Store) SeedLedger(stock *entity.Stock, batches ...*entity.StockBatch) {
	_ = s.write(func(st *state) error {
		total, available, reserved, incoming := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
		for _, b := range batches {
			b.StockID = stock.ID
			if b.Version == 0 {
				b.Version = 1
			}
			if b.IsActive {
				total = total.Add(b.TotalQuantity)
				available = available.Add(b.AvailableQuantity)
				reserved = reserved.Add(b.ReservedQuantity)
				incoming = incoming.Add(b.IncomingQuantity)
			}
			st.batches[b.ID] = *b
		}
		stock.TotalQuantity, stock.AvailableQuantity, stock.ReservedQuantity, stock.IncomingQuantity = total, available, reserved, incoming
		if stock.Version == 0 {
			stock.Version = 1
		}
		st.stocks[stock.ID] = *stock
		st.ledgerIdx[ledgerKey(stock.CompanyID, stock.DepartmentID, stock.ProductID)] = stock.ID
		return nil
	})
}

// Ledger devuelve una copia del ledger (nil si no existe). Útil para inspección en tests.
func (s *Store) Ledger(companyID, departmentID, productID string) *inventory.Ledger {
	var out *inventory.Ledger
	_ = s.read(func(st *state) error {
		id, ok := st.ledgerIdx[ledgerKey(companyID, departmentID, productID)]
		if !ok {
			return nil
		}
		out = loadLedger(st, id)
		return nil
	})
	return out
}
