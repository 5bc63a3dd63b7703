// Package transport sends rendered requests over the wire.
//
// Transport is the boundary the request specs talk to: it receives a
// method, an absolute URI, headers and an already-encoded body, and returns
// the raw Response. Error statuses are returned as responses, never as
// errors; only connection-level failures produce errors (TRANSPORT,
// TIMEOUT, RATE_LIMITED, CIRCUIT_OPEN).
//
// HTTP is the net/http implementation with TLS, authentication, optional
// HTTP/2, a cookie jar, and the resilience package's retry, circuit breaker
// and rate limiter. Middleware decorates any Transport:
//
//	t, err := transport.NewHTTP(transport.Config{Timeout: 10 * time.Second})
//	wrapped := transport.Chain(
//	    transport.WithRequestID(""),
//	    transport.WithLogging(log),
//	    transport.WithTracing("todos"),
//	)(t)
package transport
