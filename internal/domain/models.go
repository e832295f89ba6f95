package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Invoice is the persisted document produced by one successful, non-duplicate
// ingestion. It is never mutated after creation; there is no update path.
// The JSON key for the identifier stays "mongodb_id" for compatibility with
// clients of the original API.
type Invoice struct {
	ID            uuid.UUID       `db:"id" json:"mongodb_id"`
	FileName      string          `db:"file_name" json:"file_name"`
	ExtractedText string          `db:"extracted_text" json:"extracted_text"`
	InvoiceData   json.RawMessage `db:"invoice_data" json:"invoice_data"`
	Embedding     EmbeddingVector `db:"embedding" json:"-"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// EmbeddingVector is a fixed-length vector in the embedding model's space.
// Length is constant across all documents stored with the same model.
// Stored as a jsonb array.
type EmbeddingVector []float32

// Value implements driver.Valuer, serializing the vector as JSON for jsonb.
func (v EmbeddingVector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner.
func (v *EmbeddingVector) Scan(src interface{}) error {
	if src == nil {
		*v = nil
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	default:
		return fmt.Errorf("cannot scan %T into EmbeddingVector", src)
	}
}
