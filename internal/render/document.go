package render

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/finance"
	"tmsbilling/internal/money"
)

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"inr": money.FormatINR,
	"inc": func(i int) int { return i + 1 },
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("02 Jan 2006")
	},
}).Parse(`<article class="invoice" data-invoice-id="{{.Invoice.ID}}">
<header>
<h1>Invoice {{.Invoice.InvoiceNumber}}</h1>
<p>Booking <strong>{{.Invoice.BookingID}}</strong></p>
<p>Due {{.Invoice.DueDate}} &middot; Status <span class="status status-{{.Invoice.Status}}">{{.Invoice.Status}}</span></p>
</header>
<section class="items">
<table>
<thead><tr><th>#</th><th>Description</th><th class="amount">Amount</th></tr></thead>
<tbody>
{{- range $i, $item := .Invoice.Items}}
<tr><td>{{inc $i}}</td><td>{{$item.Description}}</td><td class="amount">{{inr $item.Amount}}</td></tr>
{{- else}}
<tr><td colspan="3">No line items</td></tr>
{{- end}}
</tbody>
</table>
</section>
{{- if .Invoice.Payments}}
<section class="payments">
<h2>Payments</h2>
<table>
<thead><tr><th>Date</th><th>Method</th><th class="amount">Amount</th></tr></thead>
<tbody>
{{- range .Invoice.Payments}}
<tr><td>{{date .PaymentDate}}</td><td>{{.PaymentMethod}}</td><td class="amount">{{inr .Amount}}</td></tr>
{{- end}}
</tbody>
</table>
</section>
{{- end}}
<section class="totals">
<table>
<tr><th>Total</th><td class="amount">{{inr .Totals.Total}}</td></tr>
<tr><th>Paid</th><td class="amount">{{inr .Totals.Paid}}</td></tr>
<tr><th>Balance due</th><td class="amount">{{inr .Totals.Balance}}</td></tr>
</table>
</section>
</article>`))

// InvoiceDocument renders the printable markup for inv.
func InvoiceDocument(inv *domain.Invoice, totals finance.Totals) (string, error) {
	if inv == nil {
		return "", fmt.Errorf("render.InvoiceDocument: %w", domain.ErrNotFound)
	}
	var buf bytes.Buffer
	err := invoiceTemplate.Execute(&buf, struct {
		Invoice *domain.Invoice
		Totals  finance.Totals
	}{inv, totals})
	if err != nil {
		return "", fmt.Errorf("render.InvoiceDocument: %w", err)
	}
	return buf.String(), nil
}
