package transfer

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharma-transfers/internal/domain"
)

// QuantityScale decimales que admite una cantidad; el esquema guarda NUMERIC(18,4).
const QuantityScale = 4

// CheckScale rechaza cantidades con más de QuantityScale decimales significativos.
// field nombra la cantidad en el error; fields agrega contexto (pares clave, valor).
func CheckScale(field string, qty decimal.Decimal, fields ...string) error {
	if qty.Equal(qty.Truncate(QuantityScale)) {
		return nil
	}
	fields = append(fields, field, qty.String())
	return domain.Invalid("la cantidad admite como máximo 4 decimales", fields...)
}
