package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pharma-transfers/internal/domain"
)

func TestMapError_CodigosConSignificado(t *testing.T) {
	cases := map[string]error{
		pgerrcode.SerializationFailure: domain.ErrConcurrencyConflict,
		pgerrcode.DeadlockDetected:     domain.ErrConcurrencyConflict,
		pgerrcode.CheckViolation:       domain.ErrInsufficientStock,
	}
	for code, want := range cases {
		err := mapError(&pgconn.PgError{Code: code, ConstraintName: "stocks_balance"}, "update stock")
		assert.True(t, errors.Is(err, want), code)
	}
}

func TestMapError_OtrosSeEnvuelven(t *testing.T) {
	base := errors.New("conexión cerrada")

	err := mapError(base, "get stock")

	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "get stock")
	assert.False(t, errors.Is(err, domain.ErrConcurrencyConflict))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	assert.False(t, isUniqueViolation(errors.New("23505 en el texto no cuenta")))
}

func TestNullable(t *testing.T) {
	assert.Nil(t, nullable(""))
	assert.Equal(t, "x", nullable("x"))
}
