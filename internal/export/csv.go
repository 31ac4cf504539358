// Package export writes invoice registers (CSV and XLSX) and runs
// background PDF export jobs.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/finance"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the register header row.
var columns = []string{
	"Invoice Number",
	"Booking ID",
	"Due Date",
	"Status",
	"Line Item Count",
	"Items Total",
	"Total",
	"Paid",
	"Balance",
	"Payment Count",
	"Last Payment Date",
	"Created At",
}

// Columns returns a copy of the register header row.
func Columns() []string {
	return append([]string(nil), columns...)
}

// Writer wraps csv.Writer for exporting invoices as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteInvoices converts a batch of invoices to CSV rows and writes them.
// Invoices are expected to be refreshed already.
func (w *Writer) WriteInvoices(invoices []domain.Invoice) error {
	for i := range invoices {
		if err := w.csv.Write(invoiceToRow(&invoices[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// invoiceToRow converts a single invoice to a row matching columns.
func invoiceToRow(inv *domain.Invoice) []string {
	t := finance.ComputeTotals(inv)
	row := make([]string, len(columns))
	row[0] = inv.InvoiceNumber
	row[1] = inv.BookingID
	row[2] = inv.DueDate
	row[3] = string(inv.Status)
	row[4] = strconv.Itoa(len(inv.Items))
	row[5] = formatMoney(t.ItemsTotal)
	row[6] = formatMoney(t.Total)
	row[7] = formatMoney(t.Paid)
	row[8] = formatMoney(t.Balance)
	row[9] = strconv.Itoa(len(inv.Payments))
	row[10] = formatTime(lastPaymentDate(inv))
	row[11] = formatTime(inv.CreatedAt)
	return row
}

func lastPaymentDate(inv *domain.Invoice) time.Time {
	var last time.Time
	for i := range inv.Payments {
		if inv.Payments[i].PaymentDate.After(last) {
			last = inv.Payments[i].PaymentDate
		}
	}
	return last
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for a register export.
// Format: {sanitized_base}_{YYYY-MM-DD}.{ext}
func BuildFilename(base, ext string, now time.Time) string {
	sanitized := SanitizeFilename(base)
	if sanitized == "" {
		sanitized = "invoices"
	}
	return fmt.Sprintf("%s_%s.%s", sanitized, now.Format("2006-01-02"), ext)
}
