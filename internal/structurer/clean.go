package structurer

import (
	"encoding/json"
	"fmt"
	"strings"

	"invoicereader/internal/domain"
)

// StripCodeFences removes leading/trailing markdown code-fence markers that
// models sometimes wrap JSON output in, e.g. ```json ... ```.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// ParseRecord strips code fences from raw model output and parses it as a
// JSON object. A parse failure (or a non-object result) comes back as
// domain.ErrMalformedModelResponse so callers can distinguish model garbage
// from transport failures.
func ParseRecord(raw string) (json.RawMessage, error) {
	cleaned := StripCodeFences(raw)

	var record map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &record); err != nil {
		return nil, fmt.Errorf("%w: %v (raw: %s)", domain.ErrMalformedModelResponse, err, truncate(cleaned, 500))
	}
	return json.RawMessage(cleaned), nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
