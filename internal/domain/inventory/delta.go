package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
)

// Target tipo de entidad afectada por un Delta.
type Target string

// Field contador afectado por un Delta.
type Field string

const (
	TargetLedger Target = "ledger"
	TargetBatch  Target = "batch"

	FieldTotal     Field = "total"
	FieldAvailable Field = "available"
	FieldReserved  Field = "reserved"
	FieldIncoming  Field = "incoming"
)

// Delta cambio inmutable (entidad, campo, cantidad) calculado antes de cualquier escritura.
type Delta struct {
	Target   Target
	EntityID string
	Field    Field
	Amount   decimal.Decimal
}

// Deltas conjunto de cambios de una transición.
type Deltas []Delta

func pair(stock *entity.Stock, batch *entity.StockBatch, field Field, amount decimal.Decimal) Deltas {
	return Deltas{
		{Target: TargetBatch, EntityID: batch.ID, Field: field, Amount: amount},
		{Target: TargetLedger, EntityID: stock.ID, Field: field, Amount: amount},
	}
}

// Reserve: available → reserved en el lote origen y su ledger (prepare).
func Reserve(stock *entity.Stock, batch *entity.StockBatch, qty decimal.Decimal) Deltas {
	out := pair(stock, batch, FieldAvailable, qty.Neg())
	return append(out, pair(stock, batch, FieldReserved, qty)...)
}

// ExpectIncoming: el destino registra qty como entrada esperada (prepare).
func ExpectIncoming(stock *entity.Stock, mirror *entity.StockBatch, qty decimal.Decimal) Deltas {
	return pair(stock, mirror, FieldIncoming, qty)
}

// Dispatch libera por completo la reserva del lote origen: la mercadería sale del departamento
// aunque el destino reciba menos (deliver).
func Dispatch(stock *entity.Stock, batch *entity.StockBatch, prepared decimal.Decimal) Deltas {
	out := pair(stock, batch, FieldReserved, prepared.Neg())
	return append(out, pair(stock, batch, FieldTotal, prepared.Neg())...)
}

// Receive cierra la entrada esperada y suma lo recibido al disponible del destino (deliver).
func Receive(stock *entity.Stock, mirror *entity.StockBatch, prepared, received decimal.Decimal) Deltas {
	out := pair(stock, mirror, FieldIncoming, prepared.Neg())
	if received.IsPositive() {
		out = append(out, pair(stock, mirror, FieldAvailable, received)...)
		out = append(out, pair(stock, mirror, FieldTotal, received)...)
	}
	return out
}

// WriteOff da de baja el disponible de un lote que se retira del ledger (deactivate).
func WriteOff(stock *entity.Stock, batch *entity.StockBatch, qty decimal.Decimal) Deltas {
	out := pair(stock, batch, FieldAvailable, qty.Neg())
	return append(out, pair(stock, batch, FieldTotal, qty.Neg())...)
}

// Net suma de los deltas por (target, campo). Útil para auditoría y tests.
func (d Deltas) Net(target Target, field Field) decimal.Decimal {
	sum := decimal.Zero
	for _, x := range d {
		if x.Target == target && x.Field == field {
			sum = sum.Add(x.Amount)
		}
	}
	return sum
}
