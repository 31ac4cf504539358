package handler_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/export"
	"tmsbilling/internal/handler"
	"tmsbilling/internal/logger"
	"tmsbilling/internal/service"
	"tmsbilling/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newInvoiceHandler() (*handler.InvoiceHandler, *mocks.MockInvoiceService) {
	mockSvc := new(mocks.MockInvoiceService)
	h := handler.NewInvoiceHandler(mockSvc, logger.Discard())
	return h, mockSvc
}

func newContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sampleInvoice() *domain.Invoice {
	id := uuid.New()
	return &domain.Invoice{
		ID:            id,
		BookingID:     "BK-1001",
		InvoiceNumber: "INV-2025-0001",
		DueDate:       "2025-07-01",
		TotalAmount:   1500,
		Status:        domain.InvoiceStatusUnpaid,
		Items:         []domain.InvoiceItem{{ID: uuid.New(), InvoiceID: id, Description: "Linehaul", Amount: 1500}},
		Payments:      []domain.Payment{},
	}
}

// --- List ---

func TestInvoiceHandler_List_PassesFilters(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	inv := sampleInvoice()
	mockSvc.On("List", mock.Anything, service.ListFilter{
		Status:  domain.InvoiceStatusOverdue,
		Query:   "bk-10",
		DueFrom: "2025-01-01",
		DueTo:   "2025-12-31",
	}).Return([]domain.Invoice{*inv}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/invoices?status=Overdue&q=bk-10&due_from=2025-01-01&due_to=2025-12-31", nil)
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)
	mockSvc.AssertExpectations(t)
}

func TestInvoiceHandler_List_InvalidStatus(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	c, w := newContext(http.MethodGet, "/api/v1/invoices?status=paid", nil)
	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_STATUS", decode(t, w).Error.Code)
	mockSvc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestInvoiceHandler_List_StoreError(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	mockSvc.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	c, w := newContext(http.MethodGet, "/api/v1/invoices", nil)
	h.List(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", decode(t, w).Error.Code)
}

// --- GetByID ---

func TestInvoiceHandler_GetByID_Success(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	inv := sampleInvoice()
	mockSvc.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)

	c, w := newContext(http.MethodGet, "/api/v1/invoices/"+inv.ID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: inv.ID.String()}}
	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"invoice_number":"INV-2025-0001"`)
}

func TestInvoiceHandler_GetByID_NotFound(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	id := uuid.New()
	mockSvc.On("GetByID", mock.Anything, id).Return(nil, nil)

	c, w := newContext(http.MethodGet, "/api/v1/invoices/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w).Error.Code)
}

func TestInvoiceHandler_GetByID_InvalidID(t *testing.T) {
	h, _ := newInvoiceHandler()

	c, w := newContext(http.MethodGet, "/api/v1/invoices/not-a-uuid", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Create ---

func TestInvoiceHandler_Create_Success(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	inv := sampleInvoice()
	mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(input service.CreateInvoiceInput) bool {
		return input.BookingID == "BK-1001" && input.DueDate == "2025-07-01" &&
			len(input.Items) == 1 && input.Items[0].Amount == 1500
	})).Return(inv, nil)

	body, _ := json.Marshal(map[string]any{
		"booking_id": "BK-1001",
		"due_date":   "2025-07-01",
		"items":      []map[string]any{{"description": "Linehaul", "amount": 1500}},
	})
	c, w := newContext(http.MethodPost, "/api/v1/invoices", body)
	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decode(t, w).Success)
	mockSvc.AssertExpectations(t)
}

func TestInvoiceHandler_Create_MissingFields(t *testing.T) {
	h, mockSvc := newInvoiceHandler()

	body, _ := json.Marshal(map[string]string{"booking_id": "BK-1001"})
	c, w := newContext(http.MethodPost, "/api/v1/invoices", body)
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceHandler_Create_StoreBusy(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	mockSvc.On("Create", mock.Anything, mock.AnythingOfType("service.CreateInvoiceInput")).Return(nil, domain.ErrLockNotObtained)

	body, _ := json.Marshal(map[string]string{"booking_id": "BK-1", "due_date": "2025-07-01"})
	c, w := newContext(http.MethodPost, "/api/v1/invoices", body)
	h.Create(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "STORE_BUSY", decode(t, w).Error.Code)
}

// --- AddItem / RecordPayment ---

func TestInvoiceHandler_AddItem_NotFound(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	id := uuid.New()
	mockSvc.On("AddItem", mock.Anything, id, service.AddItemInput{Description: "Toll", Amount: 120}).
		Return(nil, domain.ErrNotFound)

	body, _ := json.Marshal(map[string]any{"description": "Toll", "amount": 120})
	c, w := newContext(http.MethodPost, "/api/v1/invoices/"+id.String()+"/items", body)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.AddItem(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceHandler_RecordPayment_Success(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	inv := sampleInvoice()
	inv.Status = domain.InvoiceStatusPaid
	mockSvc.On("RecordPayment", mock.Anything, inv.ID, service.RecordPaymentInput{
		Amount:        1500,
		PaymentDate:   "2025-06-10",
		PaymentMethod: domain.PaymentMethodNEFT,
	}).Return(inv, nil)

	body, _ := json.Marshal(map[string]any{"amount": 1500, "payment_date": "2025-06-10", "payment_method": "NEFT"})
	c, w := newContext(http.MethodPost, "/api/v1/invoices/"+inv.ID.String()+"/payments", body)
	c.Params = gin.Params{{Key: "id", Value: inv.ID.String()}}
	h.RecordPayment(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"Paid"`)
}

func TestInvoiceHandler_RecordPayment_InvalidDate(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	id := uuid.New()
	mockSvc.On("RecordPayment", mock.Anything, id, mock.Anything).Return(nil, domain.ErrInvalidPaymentDate)

	body, _ := json.Marshal(map[string]any{"amount": 10, "payment_date": "someday"})
	c, w := newContext(http.MethodPost, "/api/v1/invoices/"+id.String()+"/payments", body)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.RecordPayment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_PAYMENT_DATE", decode(t, w).Error.Code)
}

func TestInvoiceHandler_AddItem_InvalidAmount(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	id := uuid.New()
	mockSvc.On("AddItem", mock.Anything, id, mock.Anything).Return(nil, domain.ErrInvalidAmount)

	body, _ := json.Marshal(map[string]any{"description": "Toll", "amount": 10})
	c, w := newContext(http.MethodPost, "/api/v1/invoices/"+id.String()+"/items", body)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.AddItem(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_AMOUNT", decode(t, w).Error.Code)
}

// --- Delete / NextNumber / Summary ---

func TestInvoiceHandler_Delete_Idempotent(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	id := uuid.New()
	mockSvc.On("Delete", mock.Anything, id).Return(nil)

	c, w := newContext(http.MethodDelete, "/api/v1/invoices/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockSvc.AssertExpectations(t)
}

func TestInvoiceHandler_NextNumber(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	mockSvc.On("NextInvoiceNumber", mock.Anything).Return("INV-2025-0004", nil)

	c, w := newContext(http.MethodGet, "/api/v1/invoices/next-number", nil)
	h.NextNumber(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"invoice_number":"INV-2025-0004"`)
}

func TestInvoiceHandler_Summary(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	mockSvc.On("Summary", mock.Anything, service.ListFilter{}).Return(&service.ListSummary{
		Count:    2,
		Total:    2000,
		Paid:     500,
		Balance:  1500,
		ByStatus: map[domain.InvoiceStatus]int{domain.InvoiceStatusUnpaid: 2},
	}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/invoices/summary", nil)
	h.Summary(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":1500`)
}

// --- Register exports ---

func TestInvoiceHandler_ExportCSV(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	inv := sampleInvoice()
	mockSvc.On("List", mock.Anything, service.ListFilter{Status: domain.InvoiceStatusUnpaid}).Return([]domain.Invoice{*inv}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/invoices/export.csv?status=Unpaid", nil)
	h.ExportCSV(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="invoices_unpaid_`)

	body := w.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, export.BOM))
	rows, err := csv.NewReader(bytes.NewReader(body[len(export.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Invoice Number", rows[0][0])
	assert.Equal(t, "INV-2025-0001", rows[1][0])
	assert.Equal(t, "1500.00", rows[1][6])
}

func TestInvoiceHandler_ExportXLSX(t *testing.T) {
	h, mockSvc := newInvoiceHandler()
	inv := sampleInvoice()
	mockSvc.On("List", mock.Anything, service.ListFilter{}).Return([]domain.Invoice{*inv}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/invoices/export.xlsx", nil)
	h.ExportXLSX(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasSuffix(w.Header().Get("Content-Disposition"), `.xlsx"`))
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	value, err := f.GetCellValue(export.SheetName, "A2")
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-0001", value)
}
