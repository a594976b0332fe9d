package documents

import (
	"bytes"
	"fmt"

	"github.com/divan/num2words"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

type PDFRenderer struct{}

func (PDFRenderer) ContentType() string { return "application/pdf" }

func (PDFRenderer) Extension() string { return "pdf" }

func (PDFRenderer) Render(doc Document) ([]byte, error) {
	invoice := doc.Invoice
	company := doc.Company

	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; translate so the euro sign survives.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Invoice "+invoice.InvoiceNumber, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, tr(fmt.Sprintf("Invoice %s", invoice.InvoiceNumber)))
	pdf.Ln(12)

	if company.Name != "" {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(40, 6, tr(company.Name))
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		for _, value := range []string{company.Address, company.Email, company.Phone} {
			if value == "" {
				continue
			}
			pdf.Cell(40, 5, tr(value))
			pdf.Ln(5)
		}
		if company.RegistrationNo != "" {
			pdf.Cell(40, 5, tr("KvK: "+company.RegistrationNo))
			pdf.Ln(5)
		}
		if company.VatNo != "" {
			pdf.Cell(40, 5, tr("VAT: "+company.VatNo))
			pdf.Ln(5)
		}
		pdf.Ln(6)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(40, 8, "Bill To:")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(95, 6, tr(doc.Client.Name))
	pdf.Ln(6)
	if doc.Client.Email != "" {
		pdf.Cell(95, 6, tr(doc.Client.Email))
		pdf.Ln(6)
	}
	if doc.Client.Phone != "" {
		pdf.Cell(95, 6, tr(doc.Client.Phone))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 6, "Invoice date:")
	pdf.Cell(40, 6, invoice.InvoiceDate.String())
	pdf.Ln(6)
	pdf.Cell(40, 6, "Due date:")
	pdf.Cell(40, 6, invoice.DueDate.String())
	pdf.Ln(6)
	pdf.Cell(40, 6, "Status:")
	pdf.Cell(40, 6, string(invoice.Status))
	pdf.Ln(10)

	widths := []float64{100, 25, 30, 35}
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, header := range []string{"Description", "Quantity", "Rate", "Amount"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 7, header, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, line := range invoice.Lines {
		pdf.CellFormat(widths[0], 7, tr(line.Description), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, quantity(line), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, tr(money(company.Currency, line.UnitRate)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, tr(money(company.Currency, line.Amount)), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], 8, "Total:", "", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, tr(money(company.Currency, invoice.TotalAmount)), "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, tr("In words: "+amountInWords(invoice.TotalAmount, company.Currency)), "", "L", false)
	pdf.Ln(6)

	if company.IBAN != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("Please transfer %s before %s to %s in the name of %s, quoting %s.",
			money(company.Currency, invoice.TotalAmount), invoice.DueDate, company.IBAN, company.Name, invoice.InvoiceNumber)), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf for invoice %s: %w", invoice.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

// amountInWords spells the whole currency units and keeps the cents as
// digits, the way amounts are written on bank transfers.
func amountInWords(amount decimal.Decimal, currency string) string {
	whole := amount.Truncate(0)
	cents := amount.Sub(whole).Mul(decimal.NewFromInt(100)).Round(0)
	if currency == "" {
		currency = "EUR"
	}
	return fmt.Sprintf("%s %s and %02d cents", num2words.Convert(int(whole.IntPart())), currency, cents.IntPart())
}
