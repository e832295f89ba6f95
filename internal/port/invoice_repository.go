package port

import (
	"context"

	"github.com/google/uuid"

	"invoicereader/internal/domain"
)

// InvoiceRepository persists ingested invoices. The store is append-only
// from the pipeline's perspective: no update or delete is exposed.
type InvoiceRepository interface {
	// Insert persists a new invoice, assigning its identifier. Identifier
	// assignment is atomic per insert.
	Insert(ctx context.Context, inv *domain.Invoice) error

	// FindDuplicate returns the identifier of an existing invoice whose
	// file_name equals fileName OR whose extracted_text equals extractedText,
	// exact equality only. Returns uuid.Nil when no match exists.
	FindDuplicate(ctx context.Context, fileName, extractedText string) (uuid.UUID, error)

	// GetByID returns an invoice without its embedding field.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)

	// List returns all invoices, newest first, embeddings omitted.
	List(ctx context.Context) ([]domain.Invoice, error)
}
