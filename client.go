package restclient

import (
	"net/http"

	"github.com/kbukum/restclient/logger"
	"github.com/kbukum/restclient/serializer"
	"github.com/kbukum/restclient/transport"
	"github.com/kbukum/restclient/uritemplate"
)

// Client issues requests built from its defaults. A Client is immutable and
// safe for concurrent use; every call returns a fresh spec.
type Client struct {
	name           string
	baseURL        string
	defaultVars    map[string]any
	defaultHeaders map[string][]string
	defaultContext serializer.Context
	transport      transport.Transport
	serializer     serializer.Serializer
	expander       uritemplate.ExpandFunc
	log            *logger.Logger
}

// New creates a client for baseURL in one step.
//
//	client := restclient.New("https://api.example.com",
//	    restclient.WithDefaultHeader("accept", "application/json"))
func New(baseURL string, opts ...Option) *Client {
	b := NewBuilder().BaseURL(baseURL)
	for _, opt := range opts {
		opt(b)
	}
	return b.Build()
}

// Name returns the client name used in logs and telemetry.
func (c *Client) Name() string { return c.name }

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// Serializer returns the serializer used for request and response bodies.
func (c *Client) Serializer() serializer.Serializer { return c.serializer }

// Mutate returns a builder seeded with a copy of the client's settings.
func (c *Client) Mutate() *Builder {
	b := NewBuilder()
	b.name = c.name
	b.baseURL = c.baseURL
	b.defaultVars = cloneVars(c.defaultVars)
	b.defaultHeaders = cloneHeaders(c.defaultHeaders)
	b.defaultContext = serializer.Merge(nil, c.defaultContext)
	b.transport = c.transport
	b.serializer = c.serializer
	b.expander = c.expander
	b.expanderSet = true
	b.log = c.log
	return b
}

// Get starts a GET request.
func (c *Client) Get() *RequestSpec { return c.newRequestSpec(http.MethodGet) }

// Head starts a HEAD request.
func (c *Client) Head() *RequestSpec { return c.newRequestSpec(http.MethodHead) }

// Delete starts a DELETE request.
func (c *Client) Delete() *RequestSpec { return c.newRequestSpec(http.MethodDelete) }

// Options starts an OPTIONS request.
func (c *Client) Options() *RequestSpec { return c.newRequestSpec(http.MethodOptions) }

// Post starts a POST request.
func (c *Client) Post() *RequestBodySpec { return c.newRequestBodySpec(http.MethodPost) }

// Put starts a PUT request.
func (c *Client) Put() *RequestBodySpec { return c.newRequestBodySpec(http.MethodPut) }

// Patch starts a PATCH request.
func (c *Client) Patch() *RequestBodySpec { return c.newRequestBodySpec(http.MethodPatch) }

func (c *Client) newRequestSpec(method string) *RequestSpec {
	return &RequestSpec{req: c.newRequest(method)}
}

func (c *Client) newRequestBodySpec(method string) *RequestBodySpec {
	return &RequestBodySpec{req: c.newRequest(method)}
}

func (c *Client) newRequest(method string) request {
	return request{
		client:  c,
		method:  method,
		headers: cloneHeaders(c.defaultHeaders),
		resolver: NewURIResolver(
			c.baseURL, "", c.defaultVars, nil, c.expander,
		).Render,
	}
}

func cloneHeaders(h map[string][]string) map[string][]string {
	out := make(map[string][]string, len(h))
	for k, vs := range h {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

func cloneVars(v map[string]any) map[string]any {
	if v == nil {
		return nil
	}
	out := make(map[string]any, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
