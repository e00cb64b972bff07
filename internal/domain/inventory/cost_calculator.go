package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
)

// WeightedCost costo promedio ponderado al sumar una entrada a un lote con existencias.
// NuevoCosto = ((Existencia * CostoActual) + (CantEntrada * CostoEntrada)) / (Existencia + CantEntrada)
func WeightedCost(onHand, currentCost, incomingQty, incomingCost decimal.Decimal) decimal.Decimal {
	sum := onHand.Add(incomingQty)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := onHand.Mul(currentCost).Add(incomingQty.Mul(incomingCost))
	return num.Div(sum)
}

// BlendMirrorCost actualiza el costo del lote espejo del destino antes de recibir: si ya tiene
// existencias promedia con el costo del lote origen, si está vacío toma el del origen.
func BlendMirrorCost(mirror, source *entity.StockBatch, received decimal.Decimal) {
	if !received.IsPositive() {
		return
	}
	if !mirror.TotalQuantity.IsPositive() {
		mirror.CostPrice = source.CostPrice
		mirror.SellingPrice = source.SellingPrice
		return
	}
	mirror.CostPrice = WeightedCost(mirror.TotalQuantity, mirror.CostPrice, received, source.CostPrice).Round(4)
}
