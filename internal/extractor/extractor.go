package extractor

import (
	"context"
	"fmt"
	"strings"

	"invoicereader/internal/config"
	"invoicereader/internal/domain"
	"invoicereader/internal/port"
)

// Extractor implements port.TextExtractor. Dispatch is by filename suffix:
// .pdf selects the PDF text-layer path, any other allowed suffix selects the
// image OCR path.
type Extractor struct {
	cfg    *config.OCRConfig
	runner Runner
}

// New creates a text extractor that shells out to tesseract for images.
func New(cfg *config.OCRConfig) *Extractor {
	return NewWithRunner(cfg, NewExecRunner())
}

// NewWithRunner creates an extractor with a custom command runner (for testing).
func NewWithRunner(cfg *config.OCRConfig, runner Runner) *Extractor {
	return &Extractor{cfg: cfg, runner: runner}
}

var _ port.TextExtractor = (*Extractor)(nil)

// Extract produces the plain text of a document. The result is trimmed of
// leading and trailing whitespace; an empty result is valid and left for the
// caller to reject. All decode/parse/OCR failures come back as a single
// domain.ErrExtractionFailed carrying the underlying cause, so callers never
// need to distinguish decode failures from OCR-engine failures.
func (e *Extractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	var (
		text string
		err  error
	)
	if strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		text, err = e.extractPDF(data)
	} else {
		text, err = e.extractImage(ctx, data)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	return strings.TrimSpace(text), nil
}
