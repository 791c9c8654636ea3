package infra

// pdf.go: ticket rendering with go-pdf/fpdf.
// 74mm wide thermal-receipt layout whose height grows with the item count:
//   - business name, folio, date, method, site
//   - one row per item: "qty x name", unit price, amount
//   - subtotal, discount, bold total
//   - CANCELADA banner for reversed sales

import (
	"fmt"
	"io"

	"jannypos/internal/model"

	"github.com/go-pdf/fpdf"
)

const (
	ticketWidth  = 74.0
	ticketMargin = 4.0
	rowHeight    = 4.5
	// fixed blocks (header + totals + footer) in mm
	ticketChrome = 78.0
	maxNameRunes = 24
)

// WriteTicketPDF renders sale as a PDF ticket into w.
// sale must carry its Items; Site is optional.
func WriteTicketPDF(w io.Writer, sale *model.Sale, businessName string) error {
	height := ticketChrome + float64(len(sale.Items))*rowHeight
	if sale.IsCancelled() {
		height += 10
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: ticketWidth, Ht: height},
	})
	pdf.SetMargins(ticketMargin, ticketMargin, ticketMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// core fonts are cp1252; translate UTF-8 so accents survive
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	contentW := ticketWidth - 2*ticketMargin

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 7, tr(businessName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, tr("Ticket de venta"), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, "Folio: "+sale.Folio, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "Fecha: "+sale.CreatedAt.Local().Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Método: "+sale.Method), "", 1, "L", false, 0, "")
	if sale.Site != nil {
		pdf.CellFormat(contentW, 4, tr("Sitio: "+sale.Site.Name), "", 1, "L", false, 0, "")
	}

	if sale.IsCancelled() {
		pdf.Ln(1)
		pdf.SetFont("Helvetica", "B", 14)
		pdf.SetTextColor(200, 0, 0)
		pdf.CellFormat(contentW, 8, "CANCELADA", "1", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(1)
	separator(pdf)

	// ── Items ────────────────────────────────────────────────────────────────
	colName := contentW * 0.50
	colPrice := contentW * 0.22
	colAmount := contentW * 0.28

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(colName, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colPrice, 5, "P. unit", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colAmount, 5, "Importe", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, item := range sale.Items {
		label := fmt.Sprintf("%d x %s", item.Qty, truncate(item.Name, maxNameRunes))
		pdf.CellFormat(colName, rowHeight, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(colPrice, rowHeight, "$"+item.Price.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(colAmount, rowHeight, "$"+item.Amount().StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.Ln(1)
	separator(pdf)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(colName+colPrice, 4, "Subtotal:", "", 0, "L", false, 0, "")
	pdf.CellFormat(colAmount, 4, "$"+sale.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(colName+colPrice, 4, "Descuento:", "", 0, "L", false, 0, "")
	pdf.CellFormat(colAmount, 4, "-$"+sale.Discount.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(colName+colPrice, 6, "TOTAL:", "", 0, "L", false, 0, "")
	pdf.CellFormat(colAmount, 6, "$"+sale.Total.StringFixed(2), "", 1, "R", false, 0, "")

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write: %w", err)
	}
	return nil
}

func separator(pdf *fpdf.Fpdf) {
	y := pdf.GetY()
	pdf.Line(ticketMargin, y, ticketWidth-ticketMargin, y)
	pdf.Ln(2)
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
