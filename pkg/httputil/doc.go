// Package httputil provides retry helpers for calls to the lineage service.
//
// # Retry
//
// [Retry] runs an operation up to a fixed number of attempts with
// exponential backoff. Only errors wrapped in [RetryableError] are retried:
//
//   - network errors
//   - 5xx responses
//   - 429 responses (honoring Retry-After when present)
//
// Everything else, including 404, is returned on the first attempt:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// Cancelling ctx stops waiting between attempts and returns ctx.Err().
package httputil
