package documents

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const invoiceSheet = "Invoice"

type XLSXRenderer struct{}

func (XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSXRenderer) Extension() string { return "xlsx" }

func (XLSXRenderer) Render(doc Document) ([]byte, error) {
	invoice := doc.Invoice

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", invoiceSheet); err != nil {
		return nil, err
	}

	header := [][]interface{}{
		{"Invoice", invoice.InvoiceNumber},
		{"Client", doc.Client.Name},
		{"Invoice date", invoice.InvoiceDate.String()},
		{"Due date", invoice.DueDate.String()},
		{"Status", string(invoice.Status)},
		{"Currency", doc.Company.Currency},
	}
	if doc.Company.Name != "" {
		header = append([][]interface{}{{"Company", doc.Company.Name}}, header...)
	}

	row := 1
	for _, values := range header {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(invoiceSheet, cell, &values); err != nil {
			return nil, err
		}
		row++
	}
	row++

	columns := []interface{}{"#", "Date", "Description", "Billing type", "Quantity", "Rate", "Amount"}
	tableStart := row
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(invoiceSheet, cell, &columns); err != nil {
		return nil, err
	}
	row++

	for _, line := range invoice.Lines {
		values := []interface{}{
			line.Position,
			line.TreatmentDate.String(),
			line.Description,
			string(line.BillingType),
			line.Quantity.InexactFloat64(),
			line.UnitRate.InexactFloat64(),
			line.Amount.InexactFloat64(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(invoiceSheet, cell, &values); err != nil {
			return nil, err
		}
		row++
	}

	f.SetCellValue(invoiceSheet, fmt.Sprintf("F%d", row), "Total")
	if err := f.SetCellFloat(invoiceSheet, fmt.Sprintf("G%d", row), invoice.TotalAmount.InexactFloat64(), 2, 64); err != nil {
		return nil, err
	}

	if style, err := f.NewStyle(&excelize.Style{NumFmt: 2}); err == nil {
		f.SetCellStyle(invoiceSheet, fmt.Sprintf("E%d", tableStart+1), fmt.Sprintf("G%d", row), style)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		f.SetCellStyle(invoiceSheet, fmt.Sprintf("A%d", tableStart), fmt.Sprintf("G%d", tableStart), style)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 2}); err == nil {
		f.SetCellStyle(invoiceSheet, fmt.Sprintf("F%d", row), fmt.Sprintf("G%d", row), style)
	}
	f.SetColWidth(invoiceSheet, "B", "B", 12)
	f.SetColWidth(invoiceSheet, "C", "C", 45)
	f.SetColWidth(invoiceSheet, "D", "D", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx for invoice %s: %w", invoice.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}
