// Package resilience provides the fault-tolerance primitives used by the
// HTTP transport.
//
// This package includes:
//   - Retry: retries failed operations with exponential backoff (cenkalti/backoff/v5)
//   - CircuitBreaker: fails fast once an upstream keeps failing
//   - RateLimiter: token bucket throttling (golang.org/x/time/rate)
//
// The transport combines them per attempt, outermost first:
//
//	resp, err := resilience.Retry(ctx, retryCfg, func() (*Response, error) {
//	    if err := rl.Wait(ctx); err != nil {
//	        return nil, err
//	    }
//	    return resilience.Execute(cb, func() (*Response, error) {
//	        return send(ctx, req)
//	    })
//	})
package resilience
