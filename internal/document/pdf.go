package document

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"fieldops-service/internal/model"
)

const dateLayout = "2006-01-02"

func newPage(title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.SetFillColor(240, 240, 240)
	pdf.Rect(10, 10, 190, 14, "F")
	pdf.SetXY(10, 12)
	pdf.Cell(190, 10, title)
	pdf.Ln(18)
	return pdf
}

func field(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 7, label)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(150, 7, value)
	pdf.Ln(7)
}

func totalRow(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal) {
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(155, 8, label, "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, amount.StringFixed(2), "1", 1, "R", false, 0, "")
}

func render(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderInvoice lays out the invoice lines and totals on a single A4 page.
func RenderInvoice(invoice *model.Invoice) ([]byte, error) {
	pdf := newPage("Invoice " + invoice.InvoiceNo)

	field(pdf, "Invoice no:", invoice.InvoiceNo)
	field(pdf, "Issued:", invoice.IssuedAt.Format(dateLayout))
	if invoice.DueDate != nil {
		field(pdf, "Due:", invoice.DueDate.Format(dateLayout))
	}
	field(pdf, "Status:", string(invoice.Status))
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(95, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Unit Price", "1", 0, "C", true, 0, "")
	pdf.CellFormat(35, 8, "Amount", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, item := range invoice.Items {
		pdf.CellFormat(95, 8, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, item.Quantity.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 8, item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, item.TotalPrice.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	totalRow(pdf, "Subtotal", invoice.Subtotal)
	totalRow(pdf, fmt.Sprintf("VAT (%s%%)", invoice.VatRate.String()), invoice.VatAmount)
	totalRow(pdf, "Total", invoice.Total)
	totalRow(pdf, "Paid", invoice.PaidAmount)
	totalRow(pdf, "Balance Due", invoice.BalanceDue)

	if invoice.Notes != nil && *invoice.Notes != "" {
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190, 6, *invoice.Notes, "", "L", false)
	}

	return render(pdf)
}

// RenderReceipt renders the acknowledgement of one payment against invoice.
func RenderReceipt(receipt *model.Receipt, invoice *model.Invoice) ([]byte, error) {
	pdf := newPage("Receipt " + receipt.ReceiptNo)

	field(pdf, "Receipt no:", receipt.ReceiptNo)
	field(pdf, "Issued:", receipt.IssuedAt.Format(dateLayout))
	field(pdf, "Invoice no:", invoice.InvoiceNo)
	for _, payment := range invoice.Payments {
		if payment.ID != receipt.PaymentID {
			continue
		}
		field(pdf, "Payment no:", payment.PaymentNo)
		field(pdf, "Method:", string(payment.Method))
		if payment.Reference != nil {
			field(pdf, "Reference:", *payment.Reference)
		}
	}
	pdf.Ln(5)

	totalRow(pdf, "Invoice Total", invoice.Total)
	totalRow(pdf, "Amount Received", receipt.Amount)
	totalRow(pdf, "Balance Remaining", receipt.BalanceAfter)

	return render(pdf)
}
