package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/handler"
	"tmsbilling/internal/logger"
	"tmsbilling/internal/router"
	"tmsbilling/internal/service"
	"tmsbilling/mocks"
)

func setup() (*gin.Engine, *mocks.MockInvoiceService, *mocks.MockBlobStore) {
	gin.SetMode(gin.TestMode)
	log := logger.Discard()
	invoices := new(mocks.MockInvoiceService)
	blobs := new(mocks.MockBlobStore)
	r := router.Setup(
		log,
		[]string{"http://localhost:5173"},
		handler.NewInvoiceHandler(invoices, log),
		handler.NewDocumentHandler(invoices, new(mocks.MockPDFExporter), new(mocks.MockPrinter), new(mocks.MockExportJobService), 1<<20, log),
		handler.NewHealthHandler(blobs),
	)
	return r, invoices, blobs
}

func TestRouter_StaticRoutesWinOverID(t *testing.T) {
	r, invoices, _ := setup()
	invoices.On("NextInvoiceNumber", mock.Anything).Return("INV-2025-0001", nil)
	invoices.On("Summary", mock.Anything, service.ListFilter{}).Return(&service.ListSummary{}, nil)

	for _, path := range []string{"/api/v1/invoices/next-number", "/api/v1/invoices/summary"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	invoices.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestRouter_InvoiceByID(t *testing.T) {
	r, invoices, _ := setup()
	id := uuid.New()
	invoices.On("GetByID", mock.Anything, id).Return(&domain.Invoice{ID: id}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+id.String(), nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	r, _, _ := setup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/invoices", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_CORSUnknownOrigin(t *testing.T) {
	r, invoices, _ := setup()
	invoices.On("List", mock.Anything, service.ListFilter{}).Return([]domain.Invoice{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil)
	req.Header.Set("Origin", "https://evil.example")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_Readiness(t *testing.T) {
	r, _, blobs := setup()
	blobs.On("Ping", mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
