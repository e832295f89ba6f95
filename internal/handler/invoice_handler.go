package handler

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invoicereader/internal/config"
	"invoicereader/internal/csvexport"
	"invoicereader/internal/domain"
	"invoicereader/internal/service"
)

// InvoiceHandler exposes the ingestion and retrieval endpoints.
type InvoiceHandler struct {
	svc     service.InvoiceService
	sizeMsg string
}

func NewInvoiceHandler(svc service.InvoiceService, uploadCfg *config.UploadConfig) *InvoiceHandler {
	return &InvoiceHandler{
		svc:     svc,
		sizeMsg: fmt.Sprintf("File too large. Maximum size is %dMB", uploadCfg.MaxFileSizeMB),
	}
}

// Extract handles POST /api/extract. It accepts a multipart upload under
// the "file" field and runs the full ingestion pipeline.
func (h *InvoiceHandler) Extract(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	result, err := h.svc.Ingest(c.Request.Context(), service.IngestInput{
		File:   file,
		Header: header,
	})
	if err != nil {
		status, msg := MapDomainError(err)
		if status == http.StatusRequestEntityTooLarge {
			msg = h.sizeMsg
		}
		if status >= 500 {
			requestID, _ := c.Get("request_id")
			log.Printf("[%v] extract failed: %v", requestID, err)
		}
		RespondError(c, status, msg)
		return
	}

	if result.Duplicate {
		c.JSON(http.StatusOK, gin.H{
			"warning":        "Invoice already exists in database",
			"existing_id":    result.InvoiceID.String(),
			"extracted_text": result.ExtractedText,
			"invoice_data":   result.InvoiceData,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":        true,
		"message":        "Invoice processed successfully",
		"mongodb_id":     result.InvoiceID.String(),
		"extracted_text": result.ExtractedText,
		"invoice_data":   result.InvoiceData,
	})
}

// List handles GET /api/invoices.
func (h *InvoiceHandler) List(c *gin.Context) {
	invoices, err := h.svc.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(invoices),
		"invoices": invoices,
	})
}

// GetByID handles GET /api/invoice/:id.
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		HandleError(c, domain.ErrInvalidInvoiceID)
		return
	}

	invoice, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// ExportCSV handles GET /api/invoices/export. It streams all stored
// invoices as a CSV attachment.
func (h *InvoiceHandler) ExportCSV(c *gin.Context) {
	invoices, err := h.svc.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="invoices.csv"`)
	c.Status(http.StatusOK)
	if err := csvexport.Write(c.Writer, invoices); err != nil {
		requestID, _ := c.Get("request_id")
		log.Printf("[%v] csv export failed: %v", requestID, err)
	}
}
