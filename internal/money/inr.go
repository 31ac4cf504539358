// Package money formats amounts for display in the en-IN locale.
package money

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const rupee = "₹"

// FormatINR renders amount the way en-IN formats INR currency:
// lakh/crore digit grouping and two fraction digits, e.g. ₹12,34,567.50.
func FormatINR(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + rupee + groupIndian(intPart) + "." + frac
}

// FormatAmount is FormatINR without the currency symbol.
func FormatAmount(amount float64) string {
	return strings.Replace(FormatINR(amount), rupee, "", 1)
}

// groupIndian groups the last three digits, then pairs.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}
