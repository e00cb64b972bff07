package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/jhoicas/pharma-transfers/internal/application/transfer"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
	"github.com/jhoicas/pharma-transfers/internal/infrastructure/pdf"
)

func TestGenerateTransferSlip_GeneraPDF(t *testing.T) {
	expiry := time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC)
	data := transfer.SlipData{
		Transfer: &entity.Transfer{
			ID: "9b1f6a4e-0000-4000-8000-000000000001", Code: "T-100", Title: "Reposición de urgencias",
			RequestingDepartmentID: "dep-urg", SupplyingDepartmentID: "dep-far",
			Priority: entity.PriorityUrgent, Status: entity.TransferPrepared,
			Items: []*entity.TransferItem{{
				ID: "it-1", ProductID: "prod-1", Status: entity.ItemPrepared,
				RequestedQuantity: decimal.NewFromInt(50), ApprovedQuantity: decimal.NewFromInt(40),
				PreparedQuantity: decimal.NewFromInt(40),
				Batches: []*entity.TransferItemBatch{{BatchID: "bx", LotNumber: "LX", ExpiryDate: &expiry, Quantity: decimal.NewFromInt(40)}},
			}},
		},
		RequestingDepartment: "Urgencias",
		SupplyingDepartment:  "Farmacia central",
		Products:             map[string]*entity.Product{"prod-1": {ID: "prod-1", SKU: "AMOX-500", Name: "Amoxicilina 500mg"}},
		GeneratedAt:          time.Date(2026, 6, 10, 14, 0, 0, 0, time.UTC),
	}

	out, err := pdf.NewSlipGenerator(language.Spanish).GenerateTransferSlip(context.Background(), data)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateTransferSlip_SinTraslado(t *testing.T) {
	_, err := pdf.NewSlipGenerator(language.Spanish).GenerateTransferSlip(context.Background(), transfer.SlipData{})
	assert.Error(t, err)
}

func TestQuantity_SeparadoresPorIdioma(t *testing.T) {
	en := pdf.NewSlipGenerator(language.English)

	assert.Equal(t, "12,345.5", en.Quantity(decimal.RequireFromString("12345.5")))
	assert.Equal(t, "40", en.Quantity(decimal.NewFromInt(40)))
}
