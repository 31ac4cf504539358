package domain

import (
	"time"

	"github.com/google/uuid"
)

// Invoice is the billable record for one booking, aggregating items and payments.
// TotalAmount and Status are derived fields refreshed on every read.
type Invoice struct {
	ID            uuid.UUID     `json:"id"`
	BookingID     string        `json:"booking_id"`
	InvoiceNumber string        `json:"invoice_number"`
	DueDate       string        `json:"due_date"`
	TotalAmount   float64       `json:"total_amount"`
	Status        InvoiceStatus `json:"status"`
	Items         []InvoiceItem `json:"items"`
	Payments      []Payment     `json:"payments"`
	CreatedAt     time.Time     `json:"created_at"`
}

// InvoiceItem is one billable line within an invoice.
type InvoiceItem struct {
	ID          uuid.UUID `json:"id"`
	InvoiceID   uuid.UUID `json:"invoice_id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
}

// Payment is one recorded receipt against an invoice's balance.
type Payment struct {
	ID            uuid.UUID     `json:"id"`
	InvoiceID     uuid.UUID     `json:"invoice_id"`
	Amount        float64       `json:"amount"`
	PaymentDate   time.Time     `json:"payment_date"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// Store is the whole persisted invoice collection.
type Store struct {
	Invoices []Invoice `json:"invoices"`
}

// Find returns the index of the invoice with the given id, or -1.
func (s *Store) Find(id uuid.UUID) int {
	for i := range s.Invoices {
		if s.Invoices[i].ID == id {
			return i
		}
	}
	return -1
}

// ExportJob tracks an asynchronous PDF export.
type ExportJob struct {
	ID          uuid.UUID       `json:"id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	FileName    string          `json:"file_name"`
	Status      ExportJobStatus `json:"status"`
	Pages       int             `json:"pages"`
	ObjectKey   string          `json:"object_key,omitempty"`
	DownloadURL string          `json:"download_url,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}
