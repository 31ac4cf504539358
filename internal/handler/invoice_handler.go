package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/export"
	"tmsbilling/internal/logger"
	"tmsbilling/internal/service"
)

// InvoiceHandler handles invoice endpoints.
type InvoiceHandler struct {
	invoices service.InvoiceService
	now      func() time.Time
	log      logrus.FieldLogger
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoices service.InvoiceService, log logrus.FieldLogger) *InvoiceHandler {
	return &InvoiceHandler{
		invoices: invoices,
		now:      time.Now,
		log:      logger.Component(log, "handler.Invoice"),
	}
}

// parseListFilter reads status, q, due_from and due_to. An unknown status
// writes a 400 and returns false.
func parseListFilter(c *gin.Context) (service.ListFilter, bool) {
	filter := service.ListFilter{
		Query:   c.Query("q"),
		DueFrom: c.Query("due_from"),
		DueTo:   c.Query("due_to"),
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.InvoiceStatus(raw)
		if !domain.ValidStatusFilters[status] {
			RespondError(c, http.StatusBadRequest, "INVALID_STATUS", "status must be one of All, Unpaid, Paid, Overdue")
			return filter, false
		}
		filter.Status = status
	}
	return filter, true
}

func parseInvoiceID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return uuid.Nil, false
	}
	return id, true
}

// List handles GET /api/v1/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	filter, ok := parseListFilter(c)
	if !ok {
		return
	}

	invoices, err := h.invoices.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondList(c, invoices, ListMeta{Total: len(invoices)})
}

// Summary handles GET /api/v1/invoices/summary
func (h *InvoiceHandler) Summary(c *gin.Context) {
	filter, ok := parseListFilter(c)
	if !ok {
		return
	}

	summary, err := h.invoices.Summary(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, summary)
}

// GetByID handles GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	inv, err := h.invoices.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	if inv == nil {
		HandleError(c, h.log, domain.ErrNotFound)
		return
	}

	RespondOK(c, inv)
}

// Create handles POST /api/v1/invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var input service.CreateInvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	inv, err := h.invoices.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondCreated(c, inv)
}

// AddItem handles POST /api/v1/invoices/:id/items
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	var input service.AddItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	inv, err := h.invoices.AddItem(c.Request.Context(), id, input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondCreated(c, inv)
}

// RecordPayment handles POST /api/v1/invoices/:id/payments
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	var input service.RecordPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	inv, err := h.invoices.RecordPayment(c.Request.Context(), id, input)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondCreated(c, inv)
}

// Delete handles DELETE /api/v1/invoices/:id. Deleting a missing invoice succeeds.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return
	}

	if err := h.invoices.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, gin.H{"message": "invoice deleted"})
}

// NextNumber handles GET /api/v1/invoices/next-number
func (h *InvoiceHandler) NextNumber(c *gin.Context) {
	next, err := h.invoices.NextInvoiceNumber(c.Request.Context())
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, gin.H{"invoice_number": next})
}

// ExportCSV handles GET /api/v1/invoices/export.csv
func (h *InvoiceHandler) ExportCSV(c *gin.Context) {
	invoices, name, ok := h.registerRows(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+export.BuildFilename(name, "csv", h.now())+`"`)
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(export.BOM); err != nil {
		return
	}
	w := export.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		h.log.WithError(err).Warn("ExportCSV: writing header")
		return
	}
	if err := w.WriteInvoices(invoices); err != nil {
		h.log.WithError(err).Warn("ExportCSV: writing rows")
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.log.WithError(err).Warn("ExportCSV: flushing")
	}
}

// ExportXLSX handles GET /api/v1/invoices/export.xlsx
func (h *InvoiceHandler) ExportXLSX(c *gin.Context) {
	invoices, name, ok := h.registerRows(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+export.BuildFilename(name, "xlsx", h.now())+`"`)
	c.Status(http.StatusOK)
	if err := export.WriteXLSX(c.Writer, invoices); err != nil {
		h.log.WithError(err).Warn("ExportXLSX: writing workbook")
	}
}

func (h *InvoiceHandler) registerRows(c *gin.Context) ([]domain.Invoice, string, bool) {
	filter, ok := parseListFilter(c)
	if !ok {
		return nil, "", false
	}
	invoices, err := h.invoices.List(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, h.log, err)
		return nil, "", false
	}

	name := "invoices"
	if filter.Status != "" && filter.Status != domain.InvoiceStatusAll {
		name += "_" + strings.ToLower(string(filter.Status))
	}
	return invoices, name, true
}
