package main

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/domain/inventory"
	"github.com/jhoicas/pharma-transfers/internal/infrastructure/memory"
)

// Identificadores del catálogo de demo del driver memory.
const (
	demoCompany  = "00000000-0000-0000-0000-0000000000c1"
	demoPharmacy = "00000000-0000-0000-0000-0000000000d1"
	demoER       = "00000000-0000-0000-0000-0000000000d2"
	demoICU      = "00000000-0000-0000-0000-0000000000d3"
)

// seedDemo carga departamentos, productos y existencias en la farmacia central para
// probar el flujo completo sin base de datos.
func seedDemo(s *memory.Store, now time.Time) {
	for _, d := range []*entity.Department{
		{ID: demoPharmacy, CompanyID: demoCompany, Name: "Farmacia central", Code: "FAR", CreatedAt: now},
		{ID: demoER, CompanyID: demoCompany, Name: "Urgencias", Code: "URG", CreatedAt: now},
		{ID: demoICU, CompanyID: demoCompany, Name: "UCI", Code: "UCI", CreatedAt: now},
	} {
		s.AddDepartment(d)
	}

	products := []struct {
		id, sku, name, unit string
		lots                []demoLot
	}{
		{"00000000-0000-0000-0000-0000000000a1", "AMOX-500", "Amoxicilina 500mg", "caja", []demoLot{
			{"AMX-2401", 90, 120, "8.50"}, {"AMX-2409", 300, 200, "8.90"},
		}},
		{"00000000-0000-0000-0000-0000000000a2", "SSN-1000", "Solución salina 0,9% 1000ml", "bolsa", []demoLot{
			{"SSN-2311", 45, 80, "3.20"}, {"SSN-2402", 400, 150, "3.05"},
		}},
		{"00000000-0000-0000-0000-0000000000a3", "GUA-NIT-M", "Guantes de nitrilo talla M", "caja", []demoLot{
			{"GNM-2405", 0, 60, "12.00"},
		}},
	}
	for _, p := range products {
		s.AddProduct(&entity.Product{ID: p.id, CompanyID: demoCompany, SKU: p.sku, Name: p.name, UnitMeasure: p.unit, CreatedAt: now})
		batches := make([]*entity.StockBatch, 0, len(p.lots))
		for _, l := range p.lots {
			batches = append(batches, l.batch(now))
		}
		s.SeedLedger(inventory.EmptyStock(demoCompany, demoPharmacy, p.id, now), batches...)
	}
}

// demoLot lote de demo; expiresIn en días (0 = sin vencimiento).
type demoLot struct {
	lot       string
	expiresIn int
	qty       int64
	cost      string
}

func (l demoLot) batch(now time.Time) *entity.StockBatch {
	b := &entity.StockBatch{
		ID:                lotID(l.lot),
		LotNumber:         l.lot,
		CostPrice:         decimal.RequireFromString(l.cost),
		TotalQuantity:     decimal.NewFromInt(l.qty),
		AvailableQuantity: decimal.NewFromInt(l.qty),
		Status:            entity.BatchAvailable,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if l.expiresIn > 0 {
		exp := now.AddDate(0, 0, l.expiresIn).Truncate(24 * time.Hour)
		b.ExpiryDate = &exp
	}
	return b
}

func lotID(lot string) string { return "lot-" + lot }
