package transport

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/restclient/errors"
	"github.com/kbukum/restclient/logger"
	"github.com/kbukum/restclient/observability"
)

// Middleware decorates a Transport.
type Middleware func(Transport) Transport

// Chain composes middlewares into one. The first middleware is outermost:
// Chain(a, b, c)(t) is a(b(c(t))).
func Chain(middlewares ...Middleware) Middleware {
	return func(inner Transport) Transport {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// WithLogging logs every request at debug level with its status and
// duration, and failed requests at error level.
func WithLogging(log *logger.Logger) Middleware {
	return func(inner Transport) Transport {
		return Func(func(ctx context.Context, method, uri string, opts Options) (*Response, error) {
			start := time.Now()
			resp, err := inner.Execute(ctx, method, uri, opts)
			fields := logger.MergeWithDuration(logger.RequestFields(method, uri), time.Since(start))

			l := log.WithContext(ctx)
			if err != nil {
				l.Error("request failed", logger.MergeWithError(fields, err))
				return resp, err
			}
			fields[logger.FieldStatus] = resp.StatusCode
			l.Debug("request completed", fields)
			return resp, nil
		})
	}
}

// WithTracing wraps every request in a client span and propagates the trace
// context through the request headers.
func WithTracing(clientName string) Middleware {
	return func(inner Transport) Transport {
		return Func(func(ctx context.Context, method, uri string, opts Options) (*Response, error) {
			ctx, span := observability.StartClientSpan(ctx, clientName, method, uri)

			carrier := headerCarrier(opts.CloneHeaders())
			observability.InjectHeaders(ctx, carrier)
			opts.Headers = carrier

			resp, err := inner.Execute(ctx, method, uri, opts)
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			observability.EndClientSpan(span, status, err)
			return resp, err
		})
	}
}

// WithMetrics records request counts, durations and failures.
func WithMetrics(clientName string, metrics *observability.ClientMetrics) Middleware {
	return func(inner Transport) Transport {
		return Func(func(ctx context.Context, method, uri string, opts Options) (*Response, error) {
			start := time.Now()
			metrics.RecordRequestStart(ctx, clientName, method)

			resp, err := inner.Execute(ctx, method, uri, opts)
			if err != nil {
				code := "UNKNOWN"
				if appErr, ok := errors.AsAppError(err); ok {
					code = string(appErr.Code)
				}
				metrics.RecordError(ctx, clientName, method, code)
				return resp, err
			}
			metrics.RecordRequestEnd(ctx, clientName, method, resp.StatusCode, time.Since(start))
			return resp, nil
		})
	}
}

// DefaultRequestIDHeader is the header WithRequestID writes.
const DefaultRequestIDHeader = "x-request-id"

// WithRequestID sets a request id header on every request. An id already
// stored in the context is reused; otherwise a UUID is generated and stored
// so that downstream log lines carry it. An empty header name selects
// DefaultRequestIDHeader.
func WithRequestID(header string) Middleware {
	if header == "" {
		header = DefaultRequestIDHeader
	}
	return func(inner Transport) Transport {
		return Func(func(ctx context.Context, method, uri string, opts Options) (*Response, error) {
			id, ok := logger.RequestIDFromContext(ctx)
			if !ok {
				id = opts.Header(header)
			}
			if id == "" {
				id = uuid.NewString()
			}
			ctx = logger.ContextWithRequestID(ctx, id)
			return inner.Execute(ctx, method, uri, opts.WithHeader(header, id))
		})
	}
}

// headerCarrier adapts lower-cased request headers to the OpenTelemetry
// TextMapCarrier interface.
type headerCarrier map[string][]string

func (c headerCarrier) Get(key string) string {
	if vs := c[strings.ToLower(key)]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func (c headerCarrier) Set(key, value string) {
	c[strings.ToLower(key)] = []string{value}
}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
