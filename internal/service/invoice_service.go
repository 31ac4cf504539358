package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/finance"
	"tmsbilling/internal/port"
)

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Status  domain.InvoiceStatus
	Query   string
	DueFrom string
	DueTo   string
}

// CreateInvoiceItemInput is one line supplied when creating an invoice.
type CreateInvoiceItemInput struct {
	Description string  `json:"description" binding:"required"`
	Amount      float64 `json:"amount"`
}

// CreateInvoiceInput is the DTO for creating an invoice.
type CreateInvoiceInput struct {
	BookingID string                   `json:"booking_id" binding:"required"`
	DueDate   string                   `json:"due_date" binding:"required"`
	Items     []CreateInvoiceItemInput `json:"items"`
}

// AddItemInput is the DTO for appending a line item.
type AddItemInput struct {
	Description string  `json:"description" binding:"required"`
	Amount      float64 `json:"amount"`
}

// RecordPaymentInput is the DTO for recording a payment. An empty
// PaymentDate means now.
type RecordPaymentInput struct {
	Amount        float64              `json:"amount"`
	PaymentDate   string               `json:"payment_date"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
}

// ListSummary aggregates a filtered invoice list.
type ListSummary struct {
	Count    int                          `json:"count"`
	Total    float64                      `json:"total"`
	Paid     float64                      `json:"paid"`
	Balance  float64                      `json:"balance"`
	ByStatus map[domain.InvoiceStatus]int `json:"by_status"`
}

// InvoiceService is the invoice repository contract used by handlers and the CLI.
// Every invoice it returns has TotalAmount and Status freshly derived.
type InvoiceService interface {
	List(ctx context.Context, filter ListFilter) ([]domain.Invoice, error)
	// GetByID returns (nil, nil) when the invoice does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	Create(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error)
	AddItem(ctx context.Context, id uuid.UUID, input AddItemInput) (*domain.Invoice, error)
	RecordPayment(ctx context.Context, id uuid.UUID, input RecordPaymentInput) (*domain.Invoice, error)
	// Delete is idempotent: a missing id is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
	NextInvoiceNumber(ctx context.Context) (string, error)
	Summary(ctx context.Context, filter ListFilter) (*ListSummary, error)
}

// InvoiceServiceConfig holds the store lock settings and the clock.
type InvoiceServiceConfig struct {
	LockKey string
	LockTTL time.Duration
	Now     func() time.Time
}

type invoiceService struct {
	store  port.InvoiceStore
	locker port.Locker
	cfg    InvoiceServiceConfig
	log    logrus.FieldLogger
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(
	store port.InvoiceStore,
	locker port.Locker,
	cfg InvoiceServiceConfig,
	log logrus.FieldLogger,
) InvoiceService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Second
	}
	if cfg.LockKey == "" {
		cfg.LockKey = "invoice-store"
	}
	return &invoiceService{
		store:  store,
		locker: locker,
		cfg:    cfg,
		log:    log.WithField("module", "invoiceService"),
	}
}

func (s *invoiceService) List(ctx context.Context, filter ListFilter) ([]domain.Invoice, error) {
	store, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("invoiceService.List: %w", err)
	}

	now := s.cfg.Now()
	query := strings.ToLower(filter.Query)
	out := make([]domain.Invoice, 0, len(store.Invoices))
	for i := range store.Invoices {
		inv := cloneInvoice(&store.Invoices[i])
		finance.Refresh(&inv, now)
		if matches(&inv, filter, query) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func matches(inv *domain.Invoice, filter ListFilter, query string) bool {
	if filter.Status != "" && filter.Status != domain.InvoiceStatusAll && inv.Status != filter.Status {
		return false
	}
	if query != "" &&
		!strings.Contains(strings.ToLower(inv.InvoiceNumber), query) &&
		!strings.Contains(strings.ToLower(inv.BookingID), query) {
		return false
	}
	// Lexicographic on the date part, the same part status derivation reads.
	due := dueDatePart(inv.DueDate)
	if filter.DueFrom != "" && due < filter.DueFrom {
		return false
	}
	if filter.DueTo != "" && due > filter.DueTo {
		return false
	}
	return true
}

// dueDatePart drops any time suffix after the YYYY-MM-DD date.
func dueDatePart(due string) string {
	if len(due) > len("2006-01-02") {
		return due[:len("2006-01-02")]
	}
	return due
}

func (s *invoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	store, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("invoiceService.GetByID: %w", err)
	}
	idx := store.Find(id)
	if idx < 0 {
		return nil, nil
	}
	inv := cloneInvoice(&store.Invoices[idx])
	finance.Refresh(&inv, s.cfg.Now())
	return &inv, nil
}

func checkAmount(v float64) error {
	if !finance.IsFinite(v) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidAmount, v)
	}
	return nil
}

func (s *invoiceService) Create(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error) {
	for _, item := range input.Items {
		if err := checkAmount(item.Amount); err != nil {
			return nil, fmt.Errorf("invoiceService.Create: %w", err)
		}
	}

	var created domain.Invoice
	err := s.mutate(ctx, func(store *domain.Store) (bool, error) {
		now := s.cfg.Now()
		numbers := make([]string, 0, len(store.Invoices))
		for i := range store.Invoices {
			numbers = append(numbers, store.Invoices[i].InvoiceNumber)
		}

		inv := domain.Invoice{
			ID:            uuid.New(),
			BookingID:     input.BookingID,
			InvoiceNumber: NextInvoiceNumber(numbers, now.Year()),
			DueDate:       input.DueDate,
			Status:        domain.InvoiceStatusUnpaid,
			Items:         make([]domain.InvoiceItem, 0, len(input.Items)),
			Payments:      []domain.Payment{},
			CreatedAt:     now.UTC(),
		}
		for _, item := range input.Items {
			inv.Items = append(inv.Items, domain.InvoiceItem{
				ID:          uuid.New(),
				InvoiceID:   inv.ID,
				Description: item.Description,
				Amount:      item.Amount,
			})
		}
		inv.TotalAmount = finance.ItemsTotal(inv.Items)

		store.Invoices = append(store.Invoices, inv)
		created = cloneInvoice(&inv)
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invoiceService.Create: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"invoice_id":     created.ID,
		"invoice_number": created.InvoiceNumber,
		"booking_id":     created.BookingID,
		"items":          len(created.Items),
	}).Info("invoiceService.Create: invoice created")
	return &created, nil
}

func (s *invoiceService) AddItem(ctx context.Context, id uuid.UUID, input AddItemInput) (*domain.Invoice, error) {
	if err := checkAmount(input.Amount); err != nil {
		return nil, fmt.Errorf("invoiceService.AddItem: %w", err)
	}

	var updated domain.Invoice
	err := s.mutate(ctx, func(store *domain.Store) (bool, error) {
		idx := store.Find(id)
		if idx < 0 {
			return false, domain.ErrNotFound
		}
		inv := &store.Invoices[idx]
		inv.Items = append(inv.Items, domain.InvoiceItem{
			ID:          uuid.New(),
			InvoiceID:   inv.ID,
			Description: input.Description,
			Amount:      input.Amount,
		})
		inv.TotalAmount = finance.ItemsTotal(inv.Items)
		inv.Status = finance.DeriveStatus(inv, s.cfg.Now())
		updated = cloneInvoice(inv)
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invoiceService.AddItem: %w", err)
	}
	return &updated, nil
}

func (s *invoiceService) RecordPayment(ctx context.Context, id uuid.UUID, input RecordPaymentInput) (*domain.Invoice, error) {
	if err := checkAmount(input.Amount); err != nil {
		return nil, fmt.Errorf("invoiceService.RecordPayment: %w", err)
	}
	paidAt, err := s.normalizePaymentDate(input.PaymentDate)
	if err != nil {
		return nil, fmt.Errorf("invoiceService.RecordPayment: %w", err)
	}

	var updated domain.Invoice
	err = s.mutate(ctx, func(store *domain.Store) (bool, error) {
		idx := store.Find(id)
		if idx < 0 {
			return false, domain.ErrNotFound
		}
		inv := &store.Invoices[idx]
		inv.Payments = append(inv.Payments, domain.Payment{
			ID:            uuid.New(),
			InvoiceID:     inv.ID,
			Amount:        input.Amount,
			PaymentDate:   paidAt,
			PaymentMethod: input.PaymentMethod,
		})

		totals := finance.ComputeTotals(inv)
		inv.TotalAmount = totals.Total
		if totals.Paid >= totals.Total {
			inv.Status = domain.InvoiceStatusPaid
		} else {
			inv.Status = finance.DeriveStatus(inv, s.cfg.Now())
		}
		updated = cloneInvoice(inv)
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invoiceService.RecordPayment: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"invoice_id": id,
		"amount":     input.Amount,
		"method":     input.PaymentMethod,
		"status":     updated.Status,
	}).Info("invoiceService.RecordPayment: payment recorded")
	return &updated, nil
}

var paymentDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// normalizePaymentDate accepts RFC 3339, datetime-local and plain dates.
// Inputs without a zone are read in the clock's location.
func (s *invoiceService) normalizePaymentDate(raw string) (time.Time, error) {
	now := s.cfg.Now()
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.UTC(), nil
	}
	for _, layout := range paymentDateLayouts {
		if t, err := time.ParseInLocation(layout, raw, now.Location()); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidPaymentDate, raw)
}

func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	removed := false
	err := s.mutate(ctx, func(store *domain.Store) (bool, error) {
		idx := store.Find(id)
		if idx < 0 {
			return false, nil
		}
		store.Invoices = append(store.Invoices[:idx], store.Invoices[idx+1:]...)
		removed = true
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("invoiceService.Delete: %w", err)
	}
	if removed {
		s.log.WithField("invoice_id", id).Info("invoiceService.Delete: invoice deleted")
	}
	return nil
}

// NextInvoiceNumber previews the number the next Create would allocate.
func (s *invoiceService) NextInvoiceNumber(ctx context.Context) (string, error) {
	store, err := s.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("invoiceService.NextInvoiceNumber: %w", err)
	}
	numbers := make([]string, 0, len(store.Invoices))
	for i := range store.Invoices {
		numbers = append(numbers, store.Invoices[i].InvoiceNumber)
	}
	return NextInvoiceNumber(numbers, s.cfg.Now().Year()), nil
}

func (s *invoiceService) Summary(ctx context.Context, filter ListFilter) (*ListSummary, error) {
	invoices, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	summary := &ListSummary{
		Count: len(invoices),
		ByStatus: map[domain.InvoiceStatus]int{
			domain.InvoiceStatusUnpaid:  0,
			domain.InvoiceStatusPaid:    0,
			domain.InvoiceStatusOverdue: 0,
		},
	}
	total, paid, balance := decimal.Zero, decimal.Zero, decimal.Zero
	for i := range invoices {
		t := finance.ComputeTotals(&invoices[i])
		total = total.Add(decimal.NewFromFloat(t.Total))
		paid = paid.Add(decimal.NewFromFloat(t.Paid))
		balance = balance.Add(decimal.NewFromFloat(t.Balance))
		summary.ByStatus[invoices[i].Status]++
	}
	summary.Total = total.InexactFloat64()
	summary.Paid = paid.InexactFloat64()
	summary.Balance = balance.InexactFloat64()
	return summary, nil
}

// mutate runs fn inside a load-modify-save cycle holding the store lock.
// The store is only rewritten when fn reports a change.
func (s *invoiceService) mutate(ctx context.Context, fn func(store *domain.Store) (bool, error)) error {
	lock, err := s.locker.Obtain(ctx, s.cfg.LockKey, s.cfg.LockTTL)
	if err != nil {
		return fmt.Errorf("obtaining store lock: %w", err)
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			s.log.WithError(err).Warn("invoiceService: failed to release store lock")
		}
	}()

	store, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	changed, err := fn(store)
	if err != nil || !changed {
		return err
	}
	return s.store.Save(ctx, store)
}

// cloneInvoice copies inv so callers never alias the loaded store.
func cloneInvoice(inv *domain.Invoice) domain.Invoice {
	out := *inv
	out.Items = append(make([]domain.InvoiceItem, 0, len(inv.Items)), inv.Items...)
	out.Payments = append(make([]domain.Payment, 0, len(inv.Payments)), inv.Payments...)
	return out
}
