package memory

import (
	"context"

	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
)

// DepartmentRepository consulta de departamentos.
type DepartmentRepository struct {
	a access
}

func (r *DepartmentRepository) GetByID(_ context.Context, id string) (*entity.Department, error) {
	var out *entity.Department
	err := r.a.read(func(st *state) error {
		if d, ok := st.departments[id]; ok {
			out = &d
		}
		return nil
	})
	return out, err
}

// ProductRepository consulta de productos.
type ProductRepository struct {
	a access
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}
