package structurer

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"invoicereader/internal/domain"
	"invoicereader/internal/port"
)

// FallbackStructurer tries providers in order, moving on only when a
// provider fails at the transport level. A malformed response is returned
// as-is: it must stay distinguishable from "the model is down".
// It implements port.Structurer.
type FallbackStructurer struct {
	structurers []port.Structurer
	names       []string
}

// NewFallbackStructurer creates a FallbackStructurer from an ordered list of
// structurers and their provider names.
func NewFallbackStructurer(structurers []port.Structurer, names []string) *FallbackStructurer {
	return &FallbackStructurer{structurers: structurers, names: names}
}

func (f *FallbackStructurer) Structure(ctx context.Context, text string) (json.RawMessage, error) {
	var lastErr error
	for i, s := range f.structurers {
		out, err := s.Structure(ctx, text)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, domain.ErrModelInvocation) {
			return nil, err
		}
		log.Printf("structurer.FallbackStructurer: %s failed: %v", f.names[i], err)
		lastErr = err
	}
	return nil, lastErr
}
