package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/export"
	"tmsbilling/internal/finance"
	"tmsbilling/internal/logger"
	"tmsbilling/internal/render"
	"tmsbilling/internal/service"
)

// Printer prints markup through a print surface.
type Printer interface {
	Print(ctx context.Context, req render.PrintRequest, w io.Writer) error
}

// DocumentHandler serves printable markup, PDF exports and export jobs.
type DocumentHandler struct {
	invoices         service.InvoiceService
	exporter         export.PDFExporter
	printer          Printer
	jobs             export.JobService
	maxSnapshotBytes int64
	log              logrus.FieldLogger
}

// NewDocumentHandler creates a new DocumentHandler. maxSnapshotBytes bounds
// uploaded snapshots.
func NewDocumentHandler(
	invoices service.InvoiceService,
	exporter export.PDFExporter,
	printer Printer,
	jobs export.JobService,
	maxSnapshotBytes int64,
	log logrus.FieldLogger,
) *DocumentHandler {
	return &DocumentHandler{
		invoices:         invoices,
		exporter:         exporter,
		printer:          printer,
		jobs:             jobs,
		maxSnapshotBytes: maxSnapshotBytes,
		log:              logger.Component(log, "handler.Document"),
	}
}

// loadInvoice fetches the invoice named by :id or writes the error response.
func (h *DocumentHandler) loadInvoice(c *gin.Context) (*domain.Invoice, bool) {
	id, ok := parseInvoiceID(c)
	if !ok {
		return nil, false
	}
	inv, err := h.invoices.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return nil, false
	}
	if inv == nil {
		HandleError(c, h.log, domain.ErrNotFound)
		return nil, false
	}
	return inv, true
}

// Document handles GET /api/v1/invoices/:id/document
func (h *DocumentHandler) Document(c *gin.Context) {
	inv, ok := h.loadInvoice(c)
	if !ok {
		return
	}

	markup, err := render.InvoiceDocument(inv, finance.ComputeTotals(inv))
	if err != nil {
		HandleError(c, h.log, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(markup))
}

// Print handles GET /api/v1/invoices/:id/print
func (h *DocumentHandler) Print(c *gin.Context) {
	inv, ok := h.loadInvoice(c)
	if !ok {
		return
	}

	markup, err := render.InvoiceDocument(inv, finance.ComputeTotals(inv))
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	var page bytes.Buffer
	if err := h.printer.Print(c.Request.Context(), render.PrintRequest{Title: inv.InvoiceNumber, Markup: markup}, &page); err != nil {
		HandleError(c, h.log, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page.Bytes())
}

// readSnapshot reads the "snapshot" file and "width" field of a multipart form.
func (h *DocumentHandler) readSnapshot(c *gin.Context) ([]byte, float64, bool) {
	if h.maxSnapshotBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSnapshotBytes)
	}

	fileHeader, err := c.FormFile("snapshot")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			RespondError(c, http.StatusRequestEntityTooLarge, "SNAPSHOT_TOO_LARGE", "snapshot exceeds maximum allowed size")
			return nil, 0, false
		}
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "snapshot file is required")
		return nil, 0, false
	}

	width := 0.0
	if raw := c.PostForm("width"); raw != "" {
		width, err = strconv.ParseFloat(raw, 64)
		if err != nil || width < 0 {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "width must be a non-negative number")
			return nil, 0, false
		}
	}

	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "cannot read snapshot")
		return nil, 0, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil || len(data) == 0 {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "cannot read snapshot")
		return nil, 0, false
	}
	return data, width, true
}

// PDF handles POST /api/v1/invoices/:id/pdf
func (h *DocumentHandler) PDF(c *gin.Context) {
	inv, ok := h.loadInvoice(c)
	if !ok {
		return
	}
	snapshot, width, ok := h.readSnapshot(c)
	if !ok {
		return
	}

	fileName := fmt.Sprintf("%s.pdf", export.SanitizeFilename(inv.InvoiceNumber))
	var buf bytes.Buffer
	res, err := h.exporter.ExportPDF(c.Request.Context(), render.ExportRequest{
		Region:   render.SnapshotRegion(width, snapshot),
		FileName: fileName,
	}, &buf)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Header("X-Page-Count", strconv.Itoa(res.Pages))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// SubmitExport handles POST /api/v1/invoices/:id/exports
func (h *DocumentHandler) SubmitExport(c *gin.Context) {
	inv, ok := h.loadInvoice(c)
	if !ok {
		return
	}
	snapshot, width, ok := h.readSnapshot(c)
	if !ok {
		return
	}

	job, err := h.jobs.Submit(c.Request.Context(), export.JobRequest{
		InvoiceID: inv.ID,
		FileName:  fmt.Sprintf("%s.pdf", export.SanitizeFilename(inv.InvoiceNumber)),
		Width:     width,
		Snapshot:  snapshot,
	})
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondAccepted(c, job)
}

func parseJobID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid export job ID")
		return uuid.Nil, false
	}
	return id, true
}

// GetExport handles GET /api/v1/exports/:job_id
func (h *DocumentHandler) GetExport(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}

	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, job)
}

// DownloadExport handles GET /api/v1/exports/:job_id/file
func (h *DocumentHandler) DownloadExport(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}

	job, data, err := h.jobs.Download(c.Request.Context(), id)
	if err != nil {
		HandleError(c, h.log, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+job.FileName+`"`)
	c.Header("X-Page-Count", strconv.Itoa(job.Pages))
	c.Data(http.StatusOK, "application/pdf", data)
}

// DeleteExport handles DELETE /api/v1/exports/:job_id
func (h *DocumentHandler) DeleteExport(c *gin.Context) {
	id, ok := parseJobID(c)
	if !ok {
		return
	}

	if err := h.jobs.Discard(c.Request.Context(), id); err != nil {
		HandleError(c, h.log, err)
		return
	}

	RespondOK(c, gin.H{"message": "export discarded"})
}
