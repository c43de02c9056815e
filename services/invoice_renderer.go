package services

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"github.com/yeremiapane/cafe-pos/models"
	"github.com/yeremiapane/cafe-pos/utils"
)

var errNoInvoice = errors.New("order has no invoice")

// InvoiceRenderer writes the invoice of a committed order as an A4 PDF.
type InvoiceRenderer struct {
	StoreName string
}

// Render writes the PDF for order to w. Item names come from names, which
// should fall back to a placeholder for items no longer in the catalog.
func (r InvoiceRenderer) Render(w io.Writer, order *models.Order, names func(uint) string) error {
	if order.Invoice == nil || order.Payment == nil {
		return errNoInvoice
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(order.Invoice.Number, false)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, r.StoreName, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, "Invoice "+order.Invoice.Number, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, order.Invoice.IssuedAt.Format("2006-01-02 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	customer := order.CustomerName
	if customer == "" {
		customer = "-"
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Customer: %s (%s)", customer, order.CustomerType), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// Items
	widths := []float64{90, 20, 40, 40}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range []string{"Item", "Qty", "Unit price", "Line total"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 7, h, "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, item := range order.Items {
		pdf.CellFormat(widths[0], 6, names(item.MenuItemID), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprintf("%d", item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, utils.FormatCurrency(item.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, utils.FormatCurrency(item.LineTotal), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	// Totals
	labelWidth := widths[0] + widths[1] + widths[2]
	totals := []struct {
		label string
		value string
	}{
		{"Subtotal", utils.FormatCurrency(order.Subtotal)},
		{"Discount", utils.FormatCurrency(order.DiscountAmount)},
		{"Tax", utils.FormatCurrency(order.TaxAmount)},
		{"Total", utils.FormatCurrency(order.Total)},
	}
	for _, t := range totals {
		if t.label == "Total" {
			pdf.SetFont("Arial", "B", 11)
		}
		pdf.CellFormat(labelWidth, 6, t.label, "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, t.value, "", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Paid %s by %s", utils.FormatCurrency(order.Payment.Amount), order.Payment.Method), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Reference "+order.Payment.Reference, "", 1, "L", false, 0, "")

	return pdf.Output(w)
}
