package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"invoicereader/internal/config"
	"invoicereader/internal/domain"
	"invoicereader/internal/port"
)

// IngestInput is the DTO for invoice ingestion requests.
type IngestInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// IngestResult is the outcome of one ingestion. On a duplicate, InvoiceID is
// the existing document's identifier and ExtractedText/InvoiceData are the
// freshly recomputed values, so the caller sees current extraction even when
// storage was skipped.
type IngestResult struct {
	InvoiceID     uuid.UUID
	Duplicate     bool
	ExtractedText string
	InvoiceData   json.RawMessage
}

// InvoiceService defines the ingestion pipeline contract.
type InvoiceService interface {
	Ingest(ctx context.Context, input IngestInput) (*IngestResult, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context) ([]domain.Invoice, error)
}

type invoiceService struct {
	repo       port.InvoiceRepository
	extractor  port.TextExtractor
	structurer port.Structurer
	embedder   port.Embedder
	archive    port.ObjectStorage // nil when archival is disabled
	uploadCfg  *config.UploadConfig
	archiveCfg *config.ArchiveConfig
}

// NewInvoiceService creates a new InvoiceService implementation. archive may
// be nil when raw upload archival is not configured.
func NewInvoiceService(
	repo port.InvoiceRepository,
	extractor port.TextExtractor,
	structurer port.Structurer,
	embedder port.Embedder,
	archive port.ObjectStorage,
	uploadCfg *config.UploadConfig,
	archiveCfg *config.ArchiveConfig,
) InvoiceService {
	return &invoiceService{
		repo:       repo,
		extractor:  extractor,
		structurer: structurer,
		embedder:   embedder,
		archive:    archive,
		uploadCfg:  uploadCfg,
		archiveCfg: archiveCfg,
	}
}

// Ingest runs the full pipeline: validate, extract text, structure, embed,
// check for duplicates, persist. Each stage returns explicitly so every
// failure path is visible here; the store is touched exactly once, after all
// upstream stages have succeeded. Two concurrent ingestions of the same
// document can both pass the duplicate check and both insert; that race is
// accepted and not guarded by extra locking.
func (s *invoiceService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	// Received → Validated
	if input.File == nil || input.Header == nil {
		return nil, domain.ErrNoFile
	}
	filename := sanitizeFilename(input.Header.Filename)
	if filename == "" {
		return nil, domain.ErrEmptyFilename
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return nil, domain.ErrUnsupportedFileType
	}
	if input.Header.Size > s.uploadCfg.MaxBytes() {
		return nil, domain.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(input.File, s.uploadCfg.MaxBytes()+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > s.uploadCfg.MaxBytes() {
		return nil, domain.ErrFileTooLarge
	}

	// Validated → TextExtracted
	text, err := s.extractor.Extract(ctx, data, filename)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, domain.ErrNoExtractableText
	}

	// TextExtracted → Structured&Embedded. Structure first: the embedding is
	// only worth computing once structured extraction has succeeded.
	invoiceData, err := s.structurer.Structure(ctx, text)
	if err != nil {
		return nil, err
	}
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	// → DuplicateCheck. Exact equality on filename or extracted text; the
	// embedding plays no part in this decision.
	existingID, err := s.repo.FindDuplicate(ctx, filename, text)
	if err != nil {
		return nil, err
	}
	if existingID != uuid.Nil {
		log.Printf("invoiceService.Ingest: duplicate of %s detected for %s", existingID, filename)
		return &IngestResult{
			InvoiceID:     existingID,
			Duplicate:     true,
			ExtractedText: text,
			InvoiceData:   invoiceData,
		}, nil
	}

	// → Persisted. Raw-upload archival is best-effort and never fails the request.
	s.archiveUpload(ctx, filename, ext, data)

	inv := &domain.Invoice{
		FileName:      filename,
		ExtractedText: text,
		InvoiceData:   invoiceData,
		Embedding:     embedding,
	}
	if err := s.repo.Insert(ctx, inv); err != nil {
		return nil, err
	}

	log.Printf("invoiceService.Ingest: stored invoice %s (%s, %d bytes of text)",
		inv.ID, filename, len(text))

	return &IngestResult{
		InvoiceID:     inv.ID,
		ExtractedText: text,
		InvoiceData:   invoiceData,
	}, nil
}

func (s *invoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *invoiceService) List(ctx context.Context) ([]domain.Invoice, error) {
	return s.repo.List(ctx)
}

// archiveUpload writes the original upload bytes to the archive bucket.
// Failures are logged, never surfaced: archival must not break ingestion.
func (s *invoiceService) archiveUpload(ctx context.Context, filename, ext string, data []byte) {
	if s.archive == nil || !s.archiveCfg.Enabled() {
		return
	}
	key := fmt.Sprintf("uploads/%s/%s", uuid.New(), filename)
	_, err := s.archive.Upload(ctx, port.UploadInput{
		Bucket:      s.archiveCfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: domain.ContentTypes[domain.AllowedExtensions[ext]],
		Size:        int64(len(data)),
	})
	if err != nil {
		log.Printf("invoiceService.archiveUpload: archival of %s failed: %v", filename, err)
	}
}

// sanitizeFilename strips any path components and unsafe runes from a
// client-supplied filename, in the spirit of werkzeug's secure_filename.
// Returns "" when nothing safe remains.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	return strings.TrimLeft(b.String(), "._")
}
