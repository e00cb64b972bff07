package repository

import (
	"context"

	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
)

// DepartmentRepository consulta de departamentos (CRUD externo al motor).
type DepartmentRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Department, error)
}
