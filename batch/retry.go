package batch

import (
	"context"
	"time"

	"github.com/sd2595101/querylist"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, source string) (string, error)

// LogFunc is the signature for a logging function.
type LogFunc func(format string, args ...any)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// FetchWithRetryDelays calls fetch until it succeeds, waiting delays[i]
// before retry i. ENOTFOUND and EINVALID errors are not retried.
func FetchWithRetryDelays(ctx context.Context, source string, fetch FetchFunc, logf LogFunc, delays []time.Duration) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= len(delays); attempt++ {
		html, err := fetch(ctx, source)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt == len(delays) || permanent(err) {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if logf != nil {
			logf("retry %s (attempt %d): %v", source, attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}

func permanent(err error) bool {
	switch querylist.ErrorCode(err) {
	case querylist.ENOTFOUND, querylist.EINVALID:
		return true
	}
	return false
}
