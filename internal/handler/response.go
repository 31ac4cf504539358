package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tmsbilling/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *ListMeta   `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ListMeta describes a list response.
type ListMeta struct {
	Total int `json:"total"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondAccepted sends a 202 response for work that continues in the background.
func RespondAccepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, APIResponse{Success: true, Data: data})
}

// RespondList sends a 200 success response with list metadata.
func RespondList(c *gin.Context, data interface{}, meta ListMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrExportJobNotFound):
		return http.StatusNotFound, "EXPORT_JOB_NOT_FOUND", "export job not found"
	case errors.Is(err, domain.ErrExportNotReady):
		return http.StatusConflict, "EXPORT_NOT_READY", "export job has not completed"
	case errors.Is(err, domain.ErrInvalidPaymentDate):
		return http.StatusBadRequest, "INVALID_PAYMENT_DATE", "payment_date must be RFC 3339 or YYYY-MM-DD"
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest, "INVALID_AMOUNT", "amount must be a finite number"
	case errors.Is(err, domain.ErrInvalidSnapshot):
		return http.StatusBadRequest, "INVALID_SNAPSHOT", "snapshot must be a PNG or JPEG image"
	case errors.Is(err, domain.ErrCaptureFailed):
		return http.StatusUnprocessableEntity, "CAPTURE_FAILED", "document could not be captured"
	case errors.Is(err, domain.ErrPrintSurfaceUnavailable):
		return http.StatusServiceUnavailable, "PRINT_SURFACE_UNAVAILABLE", "print surface could not be opened"
	case errors.Is(err, domain.ErrLockNotObtained):
		return http.StatusServiceUnavailable, "STORE_BUSY", "invoice store is busy; retry shortly"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, log logrus.FieldLogger, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.WithFields(logrus.Fields{
			"request_id": requestID,
			"path":       c.Request.URL.Path,
		}).WithError(err).Error("internal error")
	}
	RespondError(c, status, code, msg)
}
