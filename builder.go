package restclient

import (
	"strings"
	"sync"

	"github.com/kbukum/restclient/logger"
	"github.com/kbukum/restclient/serializer"
	"github.com/kbukum/restclient/transport"
	"github.com/kbukum/restclient/uritemplate"
)

// Builder accumulates client defaults. It is safe for concurrent use and
// Build snapshots its state, so later changes do not leak into built
// clients.
type Builder struct {
	mu             sync.Mutex
	name           string
	baseURL        string
	defaultVars    map[string]any
	defaultHeaders map[string][]string
	defaultContext serializer.Context
	transport      transport.Transport
	middleware     []transport.Middleware
	serializer     serializer.Serializer
	expander       uritemplate.ExpandFunc
	expanderSet    bool
	log            *logger.Logger
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{defaultHeaders: make(map[string][]string)}
}

// Name sets the client name used in logs and telemetry.
func (b *Builder) Name(name string) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.name = name
	return b
}

// BaseURL sets the URL every request path is resolved against.
func (b *Builder) BaseURL(baseURL string) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.baseURL = baseURL
	return b
}

// DefaultURIVariables sets variables available to every URI template.
func (b *Builder) DefaultURIVariables(vars map[string]any) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.defaultVars = cloneVars(vars)
	return b
}

// DefaultHeaders replaces the default headers.
func (b *Builder) DefaultHeaders(headers map[string][]string) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.defaultHeaders = make(map[string][]string, len(headers))
	for name, values := range headers {
		b.defaultHeaders[strings.ToLower(name)] = append([]string(nil), values...)
	}
	return b
}

// DefaultHeader appends values to a default header.
func (b *Builder) DefaultHeader(name string, values ...string) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	name = strings.ToLower(name)
	b.defaultHeaders[name] = append(b.defaultHeaders[name], values...)
	return b
}

// DefaultAccept sets the default accept header.
func (b *Builder) DefaultAccept(mediaTypes ...string) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.defaultHeaders[headerAccept] = append([]string(nil), mediaTypes...)
	return b
}

// DefaultContext sets the serialization context merged into every call.
func (b *Builder) DefaultContext(ctx serializer.Context) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.defaultContext = serializer.Merge(nil, ctx)
	return b
}

// Transport sets the transport. Defaults to transport.Default().
func (b *Builder) Transport(t transport.Transport) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transport = t
	return b
}

// Use appends transport middleware, applied in order with the first
// outermost.
func (b *Builder) Use(mw ...transport.Middleware) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.middleware = append(b.middleware, mw...)
	return b
}

// Serializer sets the body serializer. Defaults to serializer.New().
func (b *Builder) Serializer(s serializer.Serializer) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.serializer = s
	return b
}

// Expander sets the RFC 6570 expander used for operator templates.
// Defaults to uritemplate.RFC6570; nil disables operator templates.
func (b *Builder) Expander(fn uritemplate.ExpandFunc) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expander = fn
	b.expanderSet = true
	return b
}

// Logger sets the client logger.
func (b *Builder) Logger(l *logger.Logger) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log = l
	return b
}

// Build returns an immutable client holding a snapshot of the builder.
func (b *Builder) Build() *Client {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := &Client{
		name:           b.name,
		baseURL:        b.baseURL,
		defaultVars:    cloneVars(b.defaultVars),
		defaultHeaders: cloneHeaders(b.defaultHeaders),
		defaultContext: serializer.Merge(nil, b.defaultContext),
		transport:      b.transport,
		serializer:     b.serializer,
		expander:       b.expander,
		log:            b.log,
	}
	if c.name == "" {
		c.name = "restclient"
	}
	if c.transport == nil {
		c.transport = transport.Default()
	}
	if len(b.middleware) > 0 {
		c.transport = transport.Chain(b.middleware...)(c.transport)
	}
	if c.serializer == nil {
		c.serializer = serializer.New()
	}
	if !b.expanderSet {
		c.expander = uritemplate.RFC6570
	}
	if c.log == nil {
		c.log = logger.Get(c.name)
	}
	return c
}

// Option configures a Builder; used by New and NewFromConfig.
type Option func(*Builder)

// WithName sets the client name.
func WithName(name string) Option {
	return func(b *Builder) { b.Name(name) }
}

// WithTransport sets the transport.
func WithTransport(t transport.Transport) Option {
	return func(b *Builder) { b.Transport(t) }
}

// WithMiddleware appends transport middleware.
func WithMiddleware(mw ...transport.Middleware) Option {
	return func(b *Builder) { b.Use(mw...) }
}

// WithSerializer sets the serializer.
func WithSerializer(s serializer.Serializer) Option {
	return func(b *Builder) { b.Serializer(s) }
}

// WithExpander sets the RFC 6570 expander.
func WithExpander(fn uritemplate.ExpandFunc) Option {
	return func(b *Builder) { b.Expander(fn) }
}

// WithLogger sets the client logger.
func WithLogger(l *logger.Logger) Option {
	return func(b *Builder) { b.Logger(l) }
}

// WithDefaultHeader appends values to a default header.
func WithDefaultHeader(name string, values ...string) Option {
	return func(b *Builder) { b.DefaultHeader(name, values...) }
}

// WithDefaultURIVariables sets the default URI variables.
func WithDefaultURIVariables(vars map[string]any) Option {
	return func(b *Builder) { b.DefaultURIVariables(vars) }
}

// WithDefaultContext sets the default serialization context.
func WithDefaultContext(ctx serializer.Context) Option {
	return func(b *Builder) { b.DefaultContext(ctx) }
}
