// Package finance holds the pure invoice arithmetic: totals, balance and
// derived payment status. Nothing here touches storage or the clock.
package finance

import (
	"math"

	"github.com/shopspring/decimal"

	"tmsbilling/internal/domain"
)

// Totals is the computed money view of an invoice.
type Totals struct {
	ItemsTotal float64 `json:"items_total"`
	Total      float64 `json:"total"`
	Paid       float64 `json:"paid"`
	Balance    float64 `json:"balance"`
}

// IsFinite reports whether v is a usable money amount.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// amount converts v for summing. NaN and infinities count as zero.
func amount(v float64) decimal.Decimal {
	if !IsFinite(v) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// ItemsTotal sums item amounts. Absent items sum to zero.
func ItemsTotal(items []domain.InvoiceItem) float64 {
	sum := decimal.Zero
	for i := range items {
		sum = sum.Add(amount(items[i].Amount))
	}
	return sum.InexactFloat64()
}

// PaidTotal sums payment amounts. Absent payments sum to zero.
func PaidTotal(payments []domain.Payment) float64 {
	sum := decimal.Zero
	for i := range payments {
		sum = sum.Add(amount(payments[i].Amount))
	}
	return sum.InexactFloat64()
}

// ComputeTotals returns the money view of inv.
//
// The cached TotalAmount wins when it is a finite positive number, so list
// views that load invoices without items still show the right total. A zero
// or invalid cache falls back to the items sum.
func ComputeTotals(inv *domain.Invoice) Totals {
	if inv == nil {
		return Totals{}
	}

	itemsTotal := ItemsTotal(inv.Items)
	total := itemsTotal
	if validCachedTotal(inv.TotalAmount) {
		total = inv.TotalAmount
	}
	paid := PaidTotal(inv.Payments)

	balance := amount(total).Sub(amount(paid))
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	return Totals{
		ItemsTotal: itemsTotal,
		Total:      total,
		Paid:       paid,
		Balance:    balance.InexactFloat64(),
	}
}

func validCachedTotal(v float64) bool {
	return IsFinite(v) && v > 0
}
