package structurer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"invoicereader/internal/domain"
)

const retryBackoff = 500 * time.Millisecond

// InvokeWithRetry calls fn up to 1+maxRetries times, retrying only on
// transport-level failures (domain.ErrModelInvocation). Malformed model
// output is never retried: the model answered, it just answered badly.
// Retries are transparent to the caller.
func InvokeWithRetry(ctx context.Context, maxRetries int, fn func() (json.RawMessage, error)) (json.RawMessage, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}

		out, err := fn()
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !errors.Is(err, domain.ErrModelInvocation) {
			return nil, err
		}
	}
	return nil, lastErr
}
