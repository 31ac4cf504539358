package render_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/finance"
	"tmsbilling/internal/render"
)

func TestInvoiceDocument_RendersLinesAndTotals(t *testing.T) {
	inv := &domain.Invoice{
		ID:            uuid.New(),
		BookingID:     "BK-<77>",
		InvoiceNumber: "INV-2025-0007",
		DueDate:       "2025-07-01",
		Status:        domain.InvoiceStatusUnpaid,
		Items: []domain.InvoiceItem{
			{Description: "Linehaul Mumbai-Pune", Amount: 1234567.5},
			{Description: "Loading", Amount: 500},
		},
		Payments: []domain.Payment{
			{Amount: 1000, PaymentMethod: domain.PaymentMethodUPI, PaymentDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		},
	}

	markup, err := render.InvoiceDocument(inv, finance.ComputeTotals(inv))

	require.NoError(t, err)
	assert.Contains(t, markup, "Invoice INV-2025-0007")
	assert.Contains(t, markup, "BK-&lt;77&gt;")
	assert.Contains(t, markup, "₹12,34,567.50")
	assert.Contains(t, markup, "₹500.00")
	assert.Contains(t, markup, "02 Jun 2025")
	assert.Contains(t, markup, "₹12,34,067.50")
}

func TestInvoiceDocument_NoItems(t *testing.T) {
	inv := &domain.Invoice{InvoiceNumber: "INV-2025-0001"}

	markup, err := render.InvoiceDocument(inv, finance.ComputeTotals(inv))

	require.NoError(t, err)
	assert.Contains(t, markup, "No line items")
	assert.NotContains(t, markup, "Payments")
	assert.Contains(t, markup, "₹0.00")
}

func TestInvoiceDocument_NilInvoice(t *testing.T) {
	_, err := render.InvoiceDocument(nil, finance.Totals{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
