package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"invoicereader/internal/config"
	"invoicereader/internal/domain"
	"invoicereader/internal/handler"
	"invoicereader/internal/service"
	"invoicereader/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newInvoiceHandler(svc *mocks.MockInvoiceService) *handler.InvoiceHandler {
	return handler.NewInvoiceHandler(svc, &config.UploadConfig{MaxFileSizeMB: 16})
}

func multipartRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	assert.NoError(t, err)
	_, _ = part.Write(content)
	writer.Close()

	req, _ := http.NewRequest(http.MethodPost, "/api/extract", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestInvoiceHandler_Extract_Success(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := newInvoiceHandler(svc)

	id := uuid.New()
	svc.On("Ingest", mock.Anything, mock.AnythingOfType("service.IngestInput")).
		Return(&service.IngestResult{
			InvoiceID:     id,
			ExtractedText: "Invoice #42",
			InvoiceData:   json.RawMessage(`{"vendor":"Acme"}`),
		}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "invoice.pdf", []byte("%PDF-1.4"))

	h.Extract(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "Invoice processed successfully", resp["message"])
	assert.Equal(t, id.String(), resp["mongodb_id"])
	assert.Equal(t, "Invoice #42", resp["extracted_text"])
	svc.AssertExpectations(t)
}

func TestInvoiceHandler_Extract_Duplicate(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := newInvoiceHandler(svc)

	existingID := uuid.New()
	svc.On("Ingest", mock.Anything, mock.Anything).
		Return(&service.IngestResult{
			InvoiceID:     existingID,
			Duplicate:     true,
			ExtractedText: "Invoice #42",
			InvoiceData:   json.RawMessage(`{"vendor":"Acme"}`),
		}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "invoice.pdf", []byte("%PDF-1.4"))

	h.Extract(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Invoice already exists in database", resp["warning"])
	assert.Equal(t, existingID.String(), resp["existing_id"])
	assert.NotContains(t, resp, "success")
}

func TestInvoiceHandler_Extract_NoFileField(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := newInvoiceHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/extract", bytes.NewBufferString("not multipart"))

	h.Extract(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "No file provided")
	svc.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
}

func TestInvoiceHandler_Extract_DomainErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"unsupported type", domain.ErrUnsupportedFileType, http.StatusBadRequest, "Invalid file type"},
		{"empty filename", domain.ErrEmptyFilename, http.StatusBadRequest, "No file selected"},
		{"too large", domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "Maximum size is 16MB"},
		{"no text", domain.ErrNoExtractableText, http.StatusBadRequest, "No text could be extracted"},
		{"malformed model response", domain.ErrMalformedModelResponse, http.StatusInternalServerError, "Invalid JSON response from AI model"},
		{"model invocation", domain.ErrModelInvocation, http.StatusInternalServerError, "Processing error"},
		{"extraction failed", domain.ErrExtractionFailed, http.StatusInternalServerError, "Processing error"},
		{"storage down", domain.ErrStorageUnavailable, http.StatusInternalServerError, "Database error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mocks.MockInvoiceService)
			h := newInvoiceHandler(svc)
			svc.On("Ingest", mock.Anything, mock.Anything).Return(nil, tc.err)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = multipartRequest(t, "invoice.pdf", []byte("%PDF-1.4"))

			h.Extract(c)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantMsg)

			var resp map[string]interface{}
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp, "error")
		})
	}
}

func TestInvoiceHandler_List_Success(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := newInvoiceHandler(svc)

	invoices := []domain.Invoice{
		{ID: uuid.New(), FileName: "a.pdf"},
		{ID: uuid.New(), FileName: "b.png"},
	}
	svc.On("List", mock.Anything).Return(invoices, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/invoices", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["count"])
	assert.Len(t, resp["invoices"], 2)
}

func TestInvoiceHandler_List_Empty(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := newInvoiceHandler(svc)

	svc.On("List", mock.Anything).Return([]domain.Invoice{}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/invoices", nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(0), resp["count"])
}

func TestInvoiceHandler_GetByID_Success(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := newInvoiceHandler(svc)

	id := uuid.New()
	svc.On("GetByID", mock.Anything, id).Return(&domain.Invoice{
		ID:            id,
		FileName:      "invoice.pdf",
		ExtractedText: "text",
		InvoiceData:   json.RawMessage(`{"vendor":"Acme"}`),
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/invoice/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, id.String(), resp["mongodb_id"])
	assert.Equal(t, "invoice.pdf", resp["file_name"])
	// The embedding never leaves the API.
	assert.NotContains(t, resp, "embedding")
}

func TestInvoiceHandler_GetByID_InvalidID(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := newInvoiceHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/invoice/not-a-uuid", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid invoice ID")
	svc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestInvoiceHandler_GetByID_NotFound(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := newInvoiceHandler(svc)

	id := uuid.New()
	svc.On("GetByID", mock.Anything, id).Return(nil, domain.ErrInvoiceNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/invoice/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Invoice not found")
}

func TestInvoiceHandler_ExportCSV(t *testing.T) {
	svc := new(mocks.MockInvoiceService)
	h := newInvoiceHandler(svc)

	svc.On("List", mock.Anything).Return([]domain.Invoice{
		{ID: uuid.New(), FileName: "a.pdf", ExtractedText: "text a"},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/invoices/export", nil)

	h.ExportCSV(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "invoices.csv")
	assert.Contains(t, w.Body.String(), "a.pdf")
}

func TestHome_AdvertisesEndpoints(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/", nil)

	handler.Home(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "running", resp["status"])
	endpoints, ok := resp["endpoints"].(map[string]interface{})
	assert.True(t, ok)
	assert.Contains(t, endpoints, "POST /api/extract")
}
