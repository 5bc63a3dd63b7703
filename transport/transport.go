package transport

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync"
)

// Transport executes a single HTTP request.
type Transport interface {
	Execute(ctx context.Context, method, uri string, opts Options) (*Response, error)
}

// Func adapts a function to the Transport interface.
type Func func(ctx context.Context, method, uri string, opts Options) (*Response, error)

// Execute implements Transport.
func (f Func) Execute(ctx context.Context, method, uri string, opts Options) (*Response, error) {
	return f(ctx, method, uri, opts)
}

// Options carries the headers and encoded body of a request.
// Header names are lower-cased.
type Options struct {
	Headers map[string][]string
	Body    []byte
}

// Header returns the first value of the named header.
func (o Options) Header(name string) string {
	if vs := o.Headers[strings.ToLower(name)]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// WithHeader returns a copy of o with name set to value. The receiver's
// header map is left untouched.
func (o Options) WithHeader(name, value string) Options {
	headers := o.CloneHeaders()
	headers[strings.ToLower(name)] = []string{value}
	o.Headers = headers
	return o
}

// CloneHeaders returns a deep copy of the header map.
func (o Options) CloneHeaders() map[string][]string {
	headers := make(map[string][]string, len(o.Headers)+1)
	for k, vs := range o.Headers {
		headers[k] = slices.Clone(vs)
	}
	return headers
}

// Response is a received HTTP response. The body is loaded on the first
// call to Content and cached.
type Response struct {
	StatusCode int
	Headers    map[string][]string

	load    func() ([]byte, error)
	once    sync.Once
	content []byte
	err     error
}

// NewResponse creates a response with an in-memory body.
func NewResponse(status int, headers map[string][]string, body []byte) *Response {
	return NewLazyResponse(status, headers, func() ([]byte, error) { return body, nil })
}

// NewLazyResponse creates a response whose body is produced by load on
// first access. Header names are lower-cased.
func NewLazyResponse(status int, headers map[string][]string, load func() ([]byte, error)) *Response {
	return &Response{StatusCode: status, Headers: normalizeHeaders(headers), load: load}
}

// Content returns the response body.
func (r *Response) Content() ([]byte, error) {
	r.once.Do(func() {
		if r.load != nil {
			r.content, r.err = r.load()
		}
	})
	return r.content, r.err
}

// Header returns the first value of the named header.
func (r *Response) Header(name string) string {
	if vs := r.Headers[strings.ToLower(name)]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// HasHeader reports whether the named header is present.
func (r *Response) HasHeader(name string) bool {
	_, ok := r.Headers[strings.ToLower(name)]
	return ok
}

// Values returns all values of the named header.
func (r *Response) Values(name string) []string {
	return r.Headers[strings.ToLower(name)]
}

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool { return r.StatusCode >= 200 && r.StatusCode < 300 }

// IsRedirect reports a 3xx status.
func (r *Response) IsRedirect() bool { return r.StatusCode >= 300 && r.StatusCode < 400 }

// IsClientError reports a 4xx status.
func (r *Response) IsClientError() bool { return r.StatusCode >= 400 && r.StatusCode < 500 }

// IsServerError reports a 5xx status.
func (r *Response) IsServerError() bool { return r.StatusCode >= 500 && r.StatusCode < 600 }

// IsError reports a 4xx or 5xx status.
func (r *Response) IsError() bool { return r.IsClientError() || r.IsServerError() }

func normalizeHeaders(h map[string][]string) map[string][]string {
	out := make(map[string][]string, len(h))
	for k, vs := range h {
		key := strings.ToLower(k)
		out[key] = append(out[key], vs...)
	}
	return out
}

func fromHTTPHeader(h http.Header) map[string][]string {
	return normalizeHeaders(h)
}
