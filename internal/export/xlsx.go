package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/finance"
)

// SheetName is the worksheet holding the register.
const SheetName = "Invoices"

// WriteXLSX writes the invoice register as a single-sheet workbook with
// numeric money cells and a totals row.
func WriteXLSX(w io.Writer, invoices []domain.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("export.WriteXLSX: header: %w", err)
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("export.WriteXLSX: style: %w", err)
	}

	itemsSum, totalSum, paidSum, balanceSum := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for i := range invoices {
		inv := &invoices[i]
		t := finance.ComputeTotals(inv)
		itemsSum = itemsSum.Add(decimal.NewFromFloat(t.ItemsTotal))
		totalSum = totalSum.Add(decimal.NewFromFloat(t.Total))
		paidSum = paidSum.Add(decimal.NewFromFloat(t.Paid))
		balanceSum = balanceSum.Add(decimal.NewFromFloat(t.Balance))

		row := []any{
			inv.InvoiceNumber,
			inv.BookingID,
			inv.DueDate,
			string(inv.Status),
			len(inv.Items),
			t.ItemsTotal,
			t.Total,
			t.Paid,
			t.Balance,
			len(inv.Payments),
			formatTime(lastPaymentDate(inv)),
			formatTime(inv.CreatedAt),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("export.WriteXLSX: row %d: %w", i+2, err)
		}
	}

	totalRow := len(invoices) + 2
	cell, _ := excelize.CoordinatesToCellName(1, totalRow)
	totals := []any{
		"Total", "", "", "", "",
		itemsSum.InexactFloat64(),
		totalSum.InexactFloat64(),
		paidSum.InexactFloat64(),
		balanceSum.InexactFloat64(),
	}
	if err := f.SetSheetRow(SheetName, cell, &totals); err != nil {
		return fmt.Errorf("export.WriteXLSX: totals: %w", err)
	}

	from, _ := excelize.CoordinatesToCellName(6, 2)
	to, _ := excelize.CoordinatesToCellName(9, totalRow)
	if err := f.SetCellStyle(SheetName, from, to, moneyStyle); err != nil {
		return fmt.Errorf("export.WriteXLSX: style: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export.WriteXLSX: %w", err)
	}
	return nil
}
