package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/restclient/transport"
)

// Call is one request seen by a MockTransport.
type Call struct {
	Method string
	URI    string
	Opts   transport.Options
}

// Header returns the first value of the named request header.
func (c Call) Header(name string) string { return c.Opts.Header(name) }

// Body returns the request body as a string.
func (c Call) Body() string { return string(c.Opts.Body) }

// MockTransport is a transport.Transport that records calls and replies
// from a queue. When the queue is empty the last response is repeated.
// A Handler, when set, takes precedence over the queue.
type MockTransport struct {
	// Handler computes the reply for a call.
	Handler func(call Call) (*transport.Response, error)

	mu        sync.Mutex
	calls     []Call
	responses []*transport.Response
	errs      []error
}

// compile-time assertion
var _ transport.Transport = (*MockTransport)(nil)

// NewMockTransport creates a MockTransport replying with responses in order.
func NewMockTransport(responses ...*transport.Response) *MockTransport {
	return &MockTransport{responses: responses}
}

// NewFailingTransport creates a MockTransport whose every call fails with err.
func NewFailingTransport(err error) *MockTransport {
	return &MockTransport{Handler: func(Call) (*transport.Response, error) { return nil, err }}
}

// Enqueue appends responses to the reply queue.
func (m *MockTransport) Enqueue(responses ...*transport.Response) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, responses...)
}

// Execute implements transport.Transport.
func (m *MockTransport) Execute(_ context.Context, method, uri string, opts transport.Options) (*transport.Response, error) {
	call := Call{Method: method, URI: uri, Opts: opts}

	m.mu.Lock()
	m.calls = append(m.calls, call)
	handler := m.Handler
	var resp *transport.Response
	switch len(m.responses) {
	case 0:
	case 1:
		resp = m.responses[0]
	default:
		resp, m.responses = m.responses[0], m.responses[1:]
	}
	m.mu.Unlock()

	if handler != nil {
		return handler(call)
	}
	if resp == nil {
		return nil, fmt.Errorf("testutil: no response queued for %s %s", method, uri)
	}
	return resp, nil
}

// RequestsCount returns the number of requests executed.
func (m *MockTransport) RequestsCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Calls returns a copy of the recorded calls.
func (m *MockTransport) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// LastCall returns the most recent call. It panics when there is none.
func (m *MockTransport) LastCall() Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		panic("testutil: no calls recorded")
	}
	return m.calls[len(m.calls)-1]
}

// Reset clears recorded calls.
func (m *MockTransport) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// Response builds a response with the given content type and body.
// An empty content type leaves the header out.
func Response(status int, contentType, body string) *transport.Response {
	headers := map[string][]string{}
	if contentType != "" {
		headers["content-type"] = []string{contentType}
	}
	return transport.NewResponse(status, headers, []byte(body))
}

// JSONResponse builds an application/json response.
func JSONResponse(status int, body string) *transport.Response {
	return Response(status, "application/json", body)
}

// TrackedResponse builds a response that counts how often its body is read
// from the wire. The counter is incremented at most once.
func TrackedResponse(status int, contentType, body string, reads *int) *transport.Response {
	headers := map[string][]string{}
	if contentType != "" {
		headers["content-type"] = []string{contentType}
	}
	return transport.NewLazyResponse(status, headers, func() ([]byte, error) {
		*reads++
		return []byte(body), nil
	})
}
