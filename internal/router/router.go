package router

import (
	"github.com/gin-gonic/gin"

	"invoicereader/internal/config"
	"invoicereader/internal/handler"
	"invoicereader/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	invoiceH *handler.InvoiceHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Capability discovery and health checks
	r.GET("/", handler.Home)
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	api := r.Group("/api")
	api.POST("/extract", middleware.BodyLimit(cfg.Upload.MaxBytes()), invoiceH.Extract)
	api.GET("/invoices", invoiceH.List)
	api.GET("/invoices/export", invoiceH.ExportCSV)
	api.GET("/invoice/:id", invoiceH.GetByID)

	return r
}
