// Package documents renders persisted invoices as PDF and XLSX files.
// Rendering only reads invoice data; nothing is ever written back.
package documents

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"billing-backend/internal/models"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// Document is everything printed on an invoice.
type Document struct {
	Invoice models.Invoice
	Client  models.Client
	Company models.Company
}

type Renderer interface {
	Render(doc Document) ([]byte, error)
	ContentType() string
	Extension() string
}

// FileName is the download name of an invoice document.
func FileName(invoice models.Invoice, r Renderer) string {
	return fmt.Sprintf("factuur_%s.%s", invoice.InvoiceNumber, r.Extension())
}

func money(currency string, amount decimal.Decimal) string {
	return fmt.Sprintf("%s %s", currencySymbol(currency), amount.StringFixed(2))
}

func currencySymbol(currency string) string {
	switch strings.ToUpper(currency) {
	case "", "EUR":
		return "€"
	case "USD":
		return "$"
	case "GBP":
		return "£"
	default:
		return strings.ToUpper(currency)
	}
}

func quantity(line models.InvoiceLine) string {
	if line.BillingType == models.BillingHourly {
		return line.Quantity.StringFixed(2) + " h"
	}
	return line.Quantity.String()
}
