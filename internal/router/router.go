package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tmsbilling/internal/handler"
	"tmsbilling/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	log logrus.FieldLogger,
	allowedOrigins []string,
	invoiceH *handler.InvoiceHandler,
	documentH *handler.DocumentHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	invoices := v1.Group("/invoices")
	invoices.GET("", invoiceH.List)
	invoices.POST("", invoiceH.Create)
	invoices.GET("/summary", invoiceH.Summary)
	invoices.GET("/next-number", invoiceH.NextNumber)
	invoices.GET("/export.csv", invoiceH.ExportCSV)
	invoices.GET("/export.xlsx", invoiceH.ExportXLSX)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.DELETE("/:id", invoiceH.Delete)
	invoices.POST("/:id/items", invoiceH.AddItem)
	invoices.POST("/:id/payments", invoiceH.RecordPayment)

	// Documents
	invoices.GET("/:id/document", documentH.Document)
	invoices.GET("/:id/print", documentH.Print)
	invoices.POST("/:id/pdf", documentH.PDF)
	invoices.POST("/:id/exports", documentH.SubmitExport)
	v1.GET("/exports/:job_id", documentH.GetExport)
	v1.GET("/exports/:job_id/file", documentH.DownloadExport)
	v1.DELETE("/exports/:job_id", documentH.DeleteExport)

	return r
}
