package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoicereader/internal/domain"
)

// Response bodies are flat JSON objects matching the original API's wire
// format: errors are {"error": msg}, successes carry their fields at the
// top level.

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// MapDomainError translates domain errors to HTTP status codes and
// caller-facing messages. Internal detail never leaks past the message.
func MapDomainError(err error) (status int, msg string) {
	switch {
	case errors.Is(err, domain.ErrNoFile):
		return http.StatusBadRequest, "No file provided"
	case errors.Is(err, domain.ErrEmptyFilename):
		return http.StatusBadRequest, "No file selected"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "Invalid file type. Allowed: png, jpg, jpeg, pdf"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "File too large. Maximum size is 16MB"
	case errors.Is(err, domain.ErrNoExtractableText):
		return http.StatusBadRequest, "No text could be extracted from the file"
	case errors.Is(err, domain.ErrInvalidInvoiceID):
		return http.StatusBadRequest, "Invalid invoice ID"
	case errors.Is(err, domain.ErrInvoiceNotFound):
		return http.StatusNotFound, "Invoice not found"
	case errors.Is(err, domain.ErrMalformedModelResponse):
		return http.StatusInternalServerError, "Invalid JSON response from AI model"
	case errors.Is(err, domain.ErrModelInvocation),
		errors.Is(err, domain.ErrExtractionFailed):
		return http.StatusInternalServerError, "Processing error"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusInternalServerError, "Database error"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, msg)
}
