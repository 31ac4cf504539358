package domain

// InvoiceStatus is the derived payment classification of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "Unpaid"
	InvoiceStatusPaid    InvoiceStatus = "Paid"
	InvoiceStatusOverdue InvoiceStatus = "Overdue"

	// InvoiceStatusAll is a list-filter sentinel, never assigned to an invoice.
	InvoiceStatusAll InvoiceStatus = "All"
)

// ValidStatusFilters maps accepted status filter values.
var ValidStatusFilters = map[InvoiceStatus]bool{
	InvoiceStatusAll:     true,
	InvoiceStatusUnpaid:  true,
	InvoiceStatusPaid:    true,
	InvoiceStatusOverdue: true,
}

// PaymentMethod is how a payment was received. The set is open: any string is accepted.
type PaymentMethod string

const (
	PaymentMethodUPI    PaymentMethod = "UPI"
	PaymentMethodNEFT   PaymentMethod = "NEFT"
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodCard   PaymentMethod = "Card"
	PaymentMethodCash   PaymentMethod = "Cash"
	PaymentMethodCheque PaymentMethod = "Cheque"
)

// KnownPaymentMethods lists the methods offered by the payment form.
var KnownPaymentMethods = []PaymentMethod{
	PaymentMethodUPI,
	PaymentMethodNEFT,
	PaymentMethodCOD,
	PaymentMethodCard,
	PaymentMethodCash,
	PaymentMethodCheque,
}

// IsKnown reports whether m is one of KnownPaymentMethods.
func (m PaymentMethod) IsKnown() bool {
	for _, k := range KnownPaymentMethods {
		if m == k {
			return true
		}
	}
	return false
}

// ExportJobStatus represents the lifecycle of an async PDF export.
type ExportJobStatus string

const (
	ExportJobPending   ExportJobStatus = "pending"
	ExportJobRunning   ExportJobStatus = "running"
	ExportJobCompleted ExportJobStatus = "completed"
	ExportJobFailed    ExportJobStatus = "failed"
)

// PageOrientation of an exported document.
type PageOrientation string

const (
	OrientationPortrait  PageOrientation = "portrait"
	OrientationLandscape PageOrientation = "landscape"
)

// PageSizeA4 is the only page size the export pipeline emits.
const PageSizeA4 = "A4"
