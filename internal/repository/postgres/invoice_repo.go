package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invoicereader/internal/domain"
	"invoicereader/internal/port"
)

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Insert(ctx context.Context, inv *domain.Invoice) error {
	inv.ID = uuid.New()
	inv.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invoices (id, file_name, extracted_text, invoice_data, embedding, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		inv.ID, inv.FileName, inv.ExtractedText, inv.InvoiceData, inv.Embedding, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: invoiceRepo.Insert: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *invoiceRepo) FindDuplicate(ctx context.Context, fileName, extractedText string) (uuid.UUID, error) {
	var id uuid.UUID
	// The md5 prefilter lets the index on md5(extracted_text) serve texts too
	// large for a plain btree entry; the equality recheck keeps the match exact.
	err := r.db.GetContext(ctx, &id,
		`SELECT id FROM invoices
		 WHERE file_name = $1
		    OR (md5(extracted_text) = md5($2) AND extracted_text = $2)
		 LIMIT 1`,
		fileName, extractedText)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, nil
		}
		return uuid.Nil, fmt.Errorf("%w: invoiceRepo.FindDuplicate: %v", domain.ErrStorageUnavailable, err)
	}
	return id, nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	// The embedding column is never selected for reads.
	err := r.db.GetContext(ctx, &inv,
		`SELECT id, file_name, extracted_text, invoice_data, created_at
		 FROM invoices WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("%w: invoiceRepo.GetByID: %v", domain.ErrStorageUnavailable, err)
	}
	return &inv, nil
}

func (r *invoiceRepo) List(ctx context.Context) ([]domain.Invoice, error) {
	invoices := []domain.Invoice{}
	err := r.db.SelectContext(ctx, &invoices,
		`SELECT id, file_name, extracted_text, invoice_data, created_at
		 FROM invoices ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: invoiceRepo.List: %v", domain.ErrStorageUnavailable, err)
	}
	return invoices, nil
}
