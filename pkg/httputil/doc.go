// Package httputil provides HTTP utilities for repository clients.
//
// # Retry
//
// [Policy] retries an operation with exponential backoff. Only errors marked
// with [Retryable] are retried; anything else is returned at once:
//
//	p := httputil.Policy{Attempts: 3, Delay: time.Second}
//	err := p.Do(ctx, func(attempt int) error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    // ...
//	})
//
// Retrying is opt-in: the zero Policy makes a single attempt.
package httputil
