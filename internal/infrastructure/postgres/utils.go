package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/pharma-transfers/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// mapError traduce los errores de PostgreSQL que tienen significado de dominio; el resto se envuelve con op.
func mapError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
			return domain.NewError(domain.ErrConcurrencyConflict, "la transacción chocó con otra escritura", "op", op)
		case pgerrcode.CheckViolation:
			// Los CHECK de contadores no negativos y available + reserved = total.
			return domain.NewError(domain.ErrInsufficientStock, "la operación dejaría contadores inválidos",
				"op", op, "constraint", pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func conflict(entityName, id string) error {
	return domain.NewError(domain.ErrConcurrencyConflict, "el registro fue modificado por otra operación",
		"entity", entityName, "id", id)
}

// nullable convierte "" en NULL para columnas UUID opcionales.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
