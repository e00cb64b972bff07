package entity

import "time"

// Product producto del catálogo (medicamento o insumo). Solo lectura para el motor de traslados.
type Product struct {
	ID          string
	CompanyID   string
	SKU         string // código único por empresa
	Name        string
	UnitMeasure string
	CreatedAt   time.Time
}
