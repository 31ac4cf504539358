package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tmsbilling/internal/service"
)

func TestNextInvoiceNumber_MaxPlusOneIgnoresGaps(t *testing.T) {
	got := service.NextInvoiceNumber([]string{"INV-2025-0001", "INV-2025-0003"}, 2025)

	assert.Equal(t, "INV-2025-0004", got)
}

func TestNextInvoiceNumber_FirstOfYear(t *testing.T) {
	got := service.NextInvoiceNumber([]string{"INV-2024-0041", "INV-2024-0042"}, 2025)

	assert.Equal(t, "INV-2025-0001", got)
}

func TestNextInvoiceNumber_Empty(t *testing.T) {
	assert.Equal(t, "INV-2026-0001", service.NextInvoiceNumber(nil, 2026))
}

func TestNextInvoiceNumber_IgnoresMalformed(t *testing.T) {
	existing := []string{"INV-2025-00x2", "INV-2025-", "inv-2025-0009", "INV-20250-0007", "INV-2025-0002"}

	assert.Equal(t, "INV-2025-0003", service.NextInvoiceNumber(existing, 2025))
}

func TestNextInvoiceNumber_BeyondFourDigits(t *testing.T) {
	assert.Equal(t, "INV-2025-10000", service.NextInvoiceNumber([]string{"INV-2025-9999"}, 2025))
}
