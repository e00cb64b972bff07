package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharma-transfers/internal/domain"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
)

// Ledger agregado Stock + lotes de un (departamento, producto). Es la única vía para mutar
// contadores: Apply valida el conjunto de deltas sobre copias y solo entonces lo aplica,
// de modo que ningún lector ve un estado intermedio.
type Ledger struct {
	Stock   *entity.Stock
	Batches []*entity.StockBatch

	dirty map[string]bool
}

// NewLedger arma el agregado a partir de lo leído del almacenamiento.
func NewLedger(stock *entity.Stock, batches []*entity.StockBatch) *Ledger {
	return &Ledger{Stock: stock, Batches: batches, dirty: map[string]bool{}}
}

// EmptyStock ledger aún inexistente para un (departamento, producto); Version 0.
// Con now en cero, el primer Apply fija CreatedAt.
func EmptyStock(companyID, departmentID, productID string, now time.Time) *entity.Stock {
	return &entity.Stock{
		ID:                uuid.New().String(),
		CompanyID:         companyID,
		DepartmentID:      departmentID,
		ProductID:         productID,
		TotalQuantity:     decimal.Zero,
		AvailableQuantity: decimal.Zero,
		ReservedQuantity:  decimal.Zero,
		IncomingQuantity:  decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Batch busca un lote del ledger por ID.
func (l *Ledger) Batch(id string) *entity.StockBatch {
	for _, b := range l.Batches {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// BatchByLot busca un lote por número de lote (único dentro del ledger).
func (l *Ledger) BatchByLot(lot string) *entity.StockBatch {
	for _, b := range l.Batches {
		if b.LotNumber == lot {
			return b
		}
	}
	return nil
}

// MirrorOf devuelve el lote del destino que refleja source (mismo número de lote), creándolo en
// cero si no existe. Un espejo inactivo se reactiva; Deactivate deja sus contadores en cero.
func (l *Ledger) MirrorOf(source *entity.StockBatch, now time.Time) *entity.StockBatch {
	if b := l.BatchByLot(source.LotNumber); b != nil {
		if !b.IsActive {
			b.IsActive = true
			b.Status = entity.BatchAvailable
			l.mark(b.ID)
		}
		return b
	}
	b := &entity.StockBatch{
		ID:                uuid.New().String(),
		StockID:           l.Stock.ID,
		LotNumber:         source.LotNumber,
		ExpiryDate:        source.ExpiryDate,
		ManufactureDate:   source.ManufactureDate,
		Supplier:          source.Supplier,
		CostPrice:         source.CostPrice,
		SellingPrice:      source.SellingPrice,
		TotalQuantity:     decimal.Zero,
		AvailableQuantity: decimal.Zero,
		ReservedQuantity:  decimal.Zero,
		IncomingQuantity:  decimal.Zero,
		Status:            entity.BatchAvailable,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	l.Batches = append(l.Batches, b)
	l.mark(b.ID)
	return b
}

// Deactivate retira un lote del ledger. Se rechaza mientras tenga reservas o entradas pendientes.
// El disponible que quede se da de baja junto con el total, así un lote inactivo siempre tiene
// contadores en cero y el ledger sigue siendo la suma de sus lotes activos.
func (l *Ledger) Deactivate(batchID string, now time.Time) error {
	b := l.Batch(batchID)
	if b == nil {
		return domain.NotFound("lote no encontrado en el ledger", "stock_id", l.Stock.ID, "batch_id", batchID)
	}
	if !b.IsActive {
		return nil
	}
	if !b.CanDeactivate() {
		return domain.NewError(domain.ErrInvalidTransition, "el lote tiene reservas o entradas pendientes",
			"batch_id", b.ID,
			"lot_number", b.LotNumber,
			"reserved_quantity", b.ReservedQuantity.String(),
			"incoming_quantity", b.IncomingQuantity.String(),
		)
	}
	if b.AvailableQuantity.IsPositive() {
		if err := l.Apply(WriteOff(l.Stock, b, b.AvailableQuantity), now); err != nil {
			return err
		}
	}
	b.IsActive = false
	b.UpdatedAt = now
	l.mark(b.ID)
	return nil
}

// Apply aplica deltas al ledger. Rechaza (sin tocar nada) si algún delta apunta a otra entidad,
// si el total de lotes y el del ledger divergen por campo, si un contador queda negativo o si se
// rompe available + reserved == total.
func (l *Ledger) Apply(deltas Deltas, now time.Time) error {
	stock := *l.Stock
	batches := map[string]*entity.StockBatch{}
	for _, d := range deltas {
		switch d.Target {
		case TargetLedger:
			if d.EntityID != stock.ID {
				return domain.Invalid("el cambio no corresponde a este ledger", "stock_id", stock.ID, "entity_id", d.EntityID)
			}
			bump(&stock.TotalQuantity, &stock.AvailableQuantity, &stock.ReservedQuantity, &stock.IncomingQuantity, d)
		case TargetBatch:
			b, ok := batches[d.EntityID]
			if !ok {
				orig := l.Batch(d.EntityID)
				if orig == nil {
					return domain.NotFound("lote no encontrado en el ledger", "stock_id", stock.ID, "batch_id", d.EntityID)
				}
				cp := *orig
				b = &cp
				batches[d.EntityID] = b
			}
			bump(&b.TotalQuantity, &b.AvailableQuantity, &b.ReservedQuantity, &b.IncomingQuantity, d)
		}
	}

	for _, f := range []Field{FieldTotal, FieldAvailable, FieldReserved, FieldIncoming} {
		if !deltas.Net(TargetLedger, f).Equal(deltas.Net(TargetBatch, f)) {
			return domain.Invalid("los cambios del ledger no coinciden con los de sus lotes", "stock_id", stock.ID, "field", string(f))
		}
	}
	if !stock.Balanced() {
		return insufficient(stock.ID, "", stock.AvailableQuantity, stock.ReservedQuantity, stock.TotalQuantity)
	}
	for id, b := range batches {
		if !b.Balanced() {
			return insufficient(stock.ID, id, b.AvailableQuantity, b.ReservedQuantity, b.TotalQuantity)
		}
	}

	if stock.IsNew() && stock.CreatedAt.IsZero() {
		stock.CreatedAt = now
	}
	stock.UpdatedAt = now
	*l.Stock = stock
	for id, b := range batches {
		b.UpdatedAt = now
		*l.Batch(id) = *b
		l.mark(id)
	}
	return nil
}

// Dirty lotes modificados desde que se cargó el ledger.
func (l *Ledger) Dirty() []*entity.StockBatch {
	out := make([]*entity.StockBatch, 0, len(l.dirty))
	for _, b := range l.Batches {
		if l.dirty[b.ID] {
			out = append(out, b)
		}
	}
	return out
}

// MarkDirty fuerza la persistencia de un lote cuyos atributos (no contadores) cambiaron.
func (l *Ledger) MarkDirty(id string) { l.mark(id) }

func (l *Ledger) mark(id string) {
	if l.dirty == nil {
		l.dirty = map[string]bool{}
	}
	l.dirty[id] = true
}

// Consistent verifica que los contadores del ledger sean la suma de sus lotes activos.
func (l *Ledger) Consistent() bool {
	var t, a, r, in decimal.Decimal
	for _, b := range l.Batches {
		if !b.IsActive {
			continue
		}
		t = t.Add(b.TotalQuantity)
		a = a.Add(b.AvailableQuantity)
		r = r.Add(b.ReservedQuantity)
		in = in.Add(b.IncomingQuantity)
	}
	s := l.Stock
	return s.TotalQuantity.Equal(t) && s.AvailableQuantity.Equal(a) &&
		s.ReservedQuantity.Equal(r) && s.IncomingQuantity.Equal(in)
}

func bump(total, available, reserved, incoming *decimal.Decimal, d Delta) {
	switch d.Field {
	case FieldTotal:
		*total = total.Add(d.Amount)
	case FieldAvailable:
		*available = available.Add(d.Amount)
	case FieldReserved:
		*reserved = reserved.Add(d.Amount)
	case FieldIncoming:
		*incoming = incoming.Add(d.Amount)
	}
}

func insufficient(stockID, batchID string, available, reserved, total decimal.Decimal) error {
	fields := []string{
		"stock_id", stockID,
		"available_quantity", available.String(),
		"reserved_quantity", reserved.String(),
		"total_quantity", total.String(),
	}
	if batchID != "" {
		fields = append(fields, "batch_id", batchID)
	}
	return domain.NewError(domain.ErrInsufficientStock, "la operación dejaría contadores negativos o desbalanceados", fields...)
}
