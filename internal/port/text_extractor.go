package port

import "context"

// TextExtractor converts a document's byte content into plain text.
// Extraction method is selected by filename suffix: .pdf takes the PDF text
// layer path, any other allowed suffix takes the image OCR path.
// Implementations wrap every decode/parse/OCR failure in
// domain.ErrExtractionFailed; a zero-length result is a valid return value.
type TextExtractor interface {
	Extract(ctx context.Context, data []byte, filename string) (string, error)
}
