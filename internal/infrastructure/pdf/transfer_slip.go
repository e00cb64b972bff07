// Package pdf genera el comprobante de preparación y entrega de un traslado.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + Código      │  Estado + Fecha              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SOLICITA: departamento       │  PROVEE: departamento        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Producto | Solicitado | Aprobado | Preparado | ...  │
//	│         └ Lote | Vence | Cantidad | Recibido                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FIRMAS: Entregó / Recibió          │  QR con el id          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/pharma-transfers/internal/application/transfer"
	"github.com/jhoicas/pharma-transfers/internal/domain/entity"
)

var _ transfer.SlipGenerator = (*SlipGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 94, Blue: 84}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var statusLabels = map[string]string{
	"PENDING":   "Pendiente",
	"APPROVED":  "Aprobado",
	"PREPARED":  "Preparado",
	"PARTIAL":   "Entrega parcial",
	"DELIVERED": "Entregado",
	"COMPLETED": "Completado",
	"CANCELLED": "Cancelado",
}

// ── Generator ─────────────────────────────────────────────────────────────────

// SlipGenerator implementa transfer.SlipGenerator usando Maroto v2.
type SlipGenerator struct {
	printer *message.Printer
}

// NewSlipGenerator construye el generador. Las cantidades se formatean según lang
// (separadores de miles y decimales).
func NewSlipGenerator(lang language.Tag) *SlipGenerator {
	return &SlipGenerator{printer: message.NewPrinter(lang)}
}

// GenerateTransferSlip genera el PDF y devuelve sus bytes.
func (g *SlipGenerator) GenerateTransferSlip(_ context.Context, data transfer.SlipData) ([]byte, error) {
	t := data.Transfer
	if t == nil {
		return nil, fmt.Errorf("pdf: traslado vacío")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de traslado "+t.Code, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(departmentsRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, it := range t.Items {
		m.AddRows(g.itemRows(it, data.Products[it.ProductID])...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(t))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *SlipGenerator) headerRow(data transfer.SlipData) core.Row {
	t := data.Transfer
	return row.New(20).Add(
		col.New(7).Add(
			text.New("COMPROBANTE DE TRASLADO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(t.Code, props.Text{Style: fontstyle.Bold, Size: 13, Top: 6}),
			text.New(t.Title, props.Text{Size: 8, Top: 14, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(statusLabel(string(t.Status)), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Prioridad: "+string(t.Priority), props.Text{Size: 8, Align: align.Right, Top: 8}),
			text.New("Generado: "+data.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func departmentsRow(data transfer.SlipData) core.Row {
	block := func(label, name, id string) core.Col {
		return col.New(6).Add(
			text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(name, id), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
		)
	}
	return row.New(14).Add(
		block("SOLICITA", data.RequestingDepartment, data.Transfer.RequestingDepartmentID),
		block("PROVEE", data.SupplyingDepartment, data.Transfer.SupplyingDepartmentID),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Producto", 4, align.Left),
		h("Solicitado", 2, align.Right),
		h("Aprobado", 2, align.Right),
		h("Preparado", 2, align.Right),
		h("Recibido", 2, align.Right),
	)
}

// itemRows: una fila por ítem y debajo una por lote asignado.
func (g *SlipGenerator) itemRows(it *entity.TransferItem, product *entity.Product) []core.Row {
	name := it.ProductID
	if product != nil {
		name = product.SKU + " · " + product.Name
	}
	cell := func(s string, size int, a align.Type, style fontstyle.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1, Style: style}))
	}
	rows := []core.Row{
		row.New(7).Add(
			cell(name+" ("+statusLabel(string(it.Status))+")", 4, align.Left, fontstyle.Bold),
			cell(g.Quantity(it.RequestedQuantity), 2, align.Right, fontstyle.Normal),
			cell(g.Quantity(it.ApprovedQuantity), 2, align.Right, fontstyle.Normal),
			cell(g.Quantity(it.PreparedQuantity), 2, align.Right, fontstyle.Normal),
			cell(g.Quantity(it.ReceivedQuantity), 2, align.Right, fontstyle.Normal),
		),
	}
	for _, b := range it.Batches {
		expiry := "sin vencimiento"
		if b.ExpiryDate != nil {
			expiry = "vence " + b.ExpiryDate.Format("02/01/2006")
		}
		rows = append(rows, row.New(5).Add(
			col.New(4).Add(text.New("Lote "+b.LotNumber+" · "+expiry, props.Text{Size: 7, Left: 4, Color: colorGray})),
			col.New(4),
			col.New(2).Add(text.New(g.Quantity(b.Quantity), props.Text{Size: 7, Align: align.Right, Right: 1, Color: colorGray})),
			col.New(2).Add(text.New(g.Quantity(b.ReceivedQuantity), props.Text{Size: 7, Align: align.Right, Right: 1, Color: colorGray})),
		))
	}
	if it.CancelReason != "" {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New("Motivo de cancelación: "+it.CancelReason, props.Text{Size: 7, Left: 4, Color: colorGray}),
		)))
	}
	return rows
}

// footerRow: firmas + QR con el id del traslado para escanearlo al recibir.
func footerRow(t *entity.Transfer) core.Row {
	signature := func(label string) core.Component {
		return text.New("______________________________\n"+label, props.Text{Size: 8, Top: 18, Align: align.Center})
	}
	return row.New(40).Add(
		col.New(4).Add(signature("Entregó (proveedor)")),
		col.New(4).Add(signature("Recibió (solicitante)")),
		col.New(4).Add(code.NewQr(t.ID, props.Rect{Percent: 80, Center: true})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// Quantity formatea una cantidad con los separadores del idioma del generador (hasta 4 decimales).
func (g *SlipGenerator) Quantity(d decimal.Decimal) string {
	f, _ := d.Float64()
	return g.printer.Sprint(number.Decimal(f, number.MaxFractionDigits(4)))
}

func statusLabel(s string) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return s
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
