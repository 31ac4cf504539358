package service

import (
	"fmt"
	"strconv"
	"strings"
)

// InvoiceNumberPrefix starts every invoice number: INV-<year>-<seq>.
const InvoiceNumberPrefix = "INV"

// NextInvoiceNumber returns max+1 of the sequences already used in year,
// zero-padded to four digits. Gaps are not reused; other years and
// malformed numbers are ignored.
//
// The scan is only safe while the caller holds the store lock.
func NextInvoiceNumber(existing []string, year int) string {
	prefix := fmt.Sprintf("%s-%d-", InvoiceNumberPrefix, year)
	highest := 0
	for _, number := range existing {
		suffix, ok := strings.CutPrefix(number, prefix)
		if !ok {
			continue
		}
		seq, err := strconv.Atoi(suffix)
		if err != nil || seq < 0 {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	return fmt.Sprintf("%s%04d", prefix, highest+1)
}
