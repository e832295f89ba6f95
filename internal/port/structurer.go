package port

import (
	"context"
	"encoding/json"
)

// Structurer abstracts LLM-based structured extraction of invoice text.
// The returned message is always a valid JSON object; its shape is whatever
// the model produced, with no schema enforced.
//
// Transport and API-side failures surface as domain.ErrModelInvocation,
// unparseable model output as domain.ErrMalformedModelResponse.
type Structurer interface {
	Structure(ctx context.Context, text string) (json.RawMessage, error)
}
