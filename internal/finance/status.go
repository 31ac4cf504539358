package finance

import (
	"time"

	"tmsbilling/internal/domain"
)

const dateLayout = "2006-01-02"

// DeriveStatus classifies inv relative to the calendar day of now.
//
// A zero-total invoice is never Paid: 0 >= 0 must not resolve it.
func DeriveStatus(inv *domain.Invoice, now time.Time) domain.InvoiceStatus {
	t := ComputeTotals(inv)
	if t.Paid >= t.Total && t.Total > 0 {
		return domain.InvoiceStatusPaid
	}
	if inv != nil && t.Paid < t.Total {
		if due, ok := ParseDueDate(inv.DueDate, now.Location()); ok && due.Before(StartOfDay(now)) {
			return domain.InvoiceStatusOverdue
		}
	}
	return domain.InvoiceStatusUnpaid
}

// Refresh overwrites the derived fields of inv in place.
func Refresh(inv *domain.Invoice, now time.Time) {
	if inv == nil {
		return
	}
	inv.TotalAmount = ComputeTotals(inv).Total
	inv.Status = DeriveStatus(inv, now)
}

// ParseDueDate reads the calendar date part of a YYYY-MM-DD string (any time
// suffix is ignored) as midnight in loc.
func ParseDueDate(s string, loc *time.Location) (time.Time, bool) {
	if len(s) < len(dateLayout) {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(dateLayout, s[:len(dateLayout)], loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
