package port

import (
	"context"

	"invoicereader/internal/domain"
)

// Embedder computes a fixed-length semantic vector for a text. Model and
// dimensionality are process-wide configuration, fixed at startup.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingVector, error)
	Dimension() int
}
