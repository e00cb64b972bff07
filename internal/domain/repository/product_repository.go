package repository

import (
	"context"

	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
)

// ProductRepository consulta del catálogo de productos (CRUD externo al motor).
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}
