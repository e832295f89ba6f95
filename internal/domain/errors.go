package domain

import "errors"

var (
	ErrNoFile                 = errors.New("no file provided")
	ErrEmptyFilename          = errors.New("no file selected")
	ErrUnsupportedFileType    = errors.New("unsupported file type")
	ErrFileTooLarge           = errors.New("file exceeds maximum allowed size")
	ErrNoExtractableText      = errors.New("no text could be extracted from the file")
	ErrExtractionFailed       = errors.New("text extraction failed")
	ErrModelInvocation        = errors.New("language model invocation failed")
	ErrMalformedModelResponse = errors.New("language model returned unparseable output")
	ErrInvoiceNotFound        = errors.New("invoice not found")
	ErrInvalidInvoiceID       = errors.New("invalid invoice ID")
	ErrStorageUnavailable     = errors.New("document store unavailable")
)
