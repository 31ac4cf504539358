package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmsbilling/internal/domain"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	r := csv.NewReader(&buf)
	row, err := r.Read()
	require.NoError(t, err)

	assert.Len(t, row, 12)
	assert.Equal(t, "Invoice Number", row[0])
	assert.Equal(t, "Balance", row[8])
	assert.Equal(t, "Created At", row[11])
}

func TestWriteInvoices_Full(t *testing.T) {
	id := uuid.New()
	inv := domain.Invoice{
		ID:            id,
		BookingID:     "BK-42",
		InvoiceNumber: "INV-2025-0042",
		DueDate:       "2025-02-15",
		TotalAmount:   3000.1,
		Status:        domain.InvoiceStatusOverdue,
		Items: []domain.InvoiceItem{
			{InvoiceID: id, Description: "Linehaul", Amount: 1000.05},
			{InvoiceID: id, Description: "Unloading", Amount: 2000.05},
		},
		Payments: []domain.Payment{
			{Amount: 500.1, PaymentDate: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)},
			{Amount: 499.9, PaymentDate: time.Date(2025, 1, 25, 9, 0, 0, 0, time.UTC)},
		},
		CreatedAt: time.Date(2025, 1, 14, 8, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteInvoices([]domain.Invoice{inv}))
	w.Flush()
	require.NoError(t, w.Error())

	row, err := csv.NewReader(&buf).Read()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"INV-2025-0042",
		"BK-42",
		"2025-02-15",
		"Overdue",
		"2",
		"3000.10",
		"3000.10",
		"1000.00",
		"2000.10",
		"2",
		"2025-01-25T09:00:00Z",
		"2025-01-14T08:00:00Z",
	}, row)
}

func TestWriteInvoices_EmptyInvoice(t *testing.T) {
	inv := domain.Invoice{InvoiceNumber: "INV-2025-0001", Status: domain.InvoiceStatusUnpaid}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteInvoices([]domain.Invoice{inv}))
	w.Flush()

	row, err := csv.NewReader(&buf).Read()
	require.NoError(t, err)
	assert.Equal(t, "0", row[4])
	assert.Equal(t, "0.00", row[6])
	assert.Equal(t, "0.00", row[8])
	assert.Equal(t, "", row[10])
	assert.Equal(t, "", row[11])
}

func TestWriteInvoices_QuotesDelimiters(t *testing.T) {
	inv := domain.Invoice{InvoiceNumber: "INV-2025-0002", BookingID: `BK "north", 2`}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteInvoices([]domain.Invoice{inv}))
	w.Flush()

	row, err := csv.NewReader(&buf).Read()
	require.NoError(t, err)
	assert.Equal(t, `BK "north", 2`, row[1])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"invoices", "invoices"},
		{"Overdue June/2025", "Overdue_June_2025"},
		{"  spaces  ", "spaces"},
		{"a!!!b", "a_b"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "invoices_Paid_2025-06-10.csv", BuildFilename("invoices Paid", "csv", now))
	assert.Equal(t, "invoices_2025-06-10.xlsx", BuildFilename("***", "xlsx", now))
}
