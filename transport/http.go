package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/publicsuffix"

	"github.com/kbukum/restclient/errors"
	"github.com/kbukum/restclient/logger"
	"github.com/kbukum/restclient/resilience"
	"github.com/kbukum/restclient/version"
)

// HTTP is a Transport backed by net/http.
type HTTP struct {
	httpClient *http.Client
	config     Config
	cb         *resilience.CircuitBreaker
	rl         *resilience.RateLimiter
	log        *logger.Logger
}

// compile-time assertion
var _ Transport = (*HTTP)(nil)

// Option customizes an HTTP transport.
type Option func(*HTTP)

// WithHTTPClient replaces the underlying *http.Client. TLS, HTTP/2 and
// cookie jar settings are ignored in that case.
func WithHTTPClient(c *http.Client) Option {
	return func(t *HTTP) { t.httpClient = c }
}

// WithTransportLogger sets the logger used for retry and breaker events.
func WithTransportLogger(l *logger.Logger) Option {
	return func(t *HTTP) { t.log = l }
}

// NewHTTP creates a net/http transport from cfg.
func NewHTTP(cfg Config, opts ...Option) (*HTTP, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Configuration(err.Error()).WithCause(err)
	}

	t := &HTTP{config: cfg, log: logger.WithComponent("transport")}
	for _, opt := range opts {
		opt(t)
	}

	if t.httpClient == nil {
		client, err := newHTTPClient(cfg)
		if err != nil {
			return nil, errors.Configuration(err.Error()).WithCause(err)
		}
		t.httpClient = client
	}

	if cfg.CircuitBreaker != nil {
		cbCfg := *cfg.CircuitBreaker
		if cbCfg.IsFailure == nil {
			cbCfg.IsFailure = IsRetryable
		}
		if cbCfg.OnStateChange == nil {
			cbCfg.OnStateChange = func(name string, from, to resilience.State) {
				t.log.Warn("circuit breaker state changed", logger.Fields(
					"breaker", name, "from", from.String(), "to", to.String(),
				))
			}
		}
		t.cb = resilience.NewCircuitBreaker(cbCfg)
	}
	if cfg.RateLimiter != nil {
		t.rl = resilience.NewRateLimiter(*cfg.RateLimiter)
	}
	return t, nil
}

// Default returns an HTTP transport with default settings.
func Default() *HTTP {
	t, err := NewHTTP(Config{})
	if err != nil {
		// The zero config always validates.
		panic(err)
	}
	return t
}

func newHTTPClient(cfg Config) (*http.Client, error) {
	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}

	var rt http.RoundTripper
	switch cfg.HTTP2 {
	case HTTP2H2C:
		rt = &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return (&net.Dialer{Timeout: cfg.Timeout}).DialContext(ctx, network, addr)
			},
		}
	default:
		base := http.DefaultTransport.(*http.Transport).Clone()
		if tlsCfg != nil {
			base.TLSClientConfig = tlsCfg
		}
		if cfg.MaxIdleConnsPerHost > 0 {
			base.MaxIdleConnsPerHost = cfg.MaxIdleConnsPerHost
		}
		if cfg.HTTP2 == HTTP2TLS {
			if err := http2.ConfigureTransport(base); err != nil {
				return nil, fmt.Errorf("configure http2: %w", err)
			}
		}
		rt = base
	}

	client := &http.Client{Transport: rt, Timeout: cfg.Timeout}
	if cfg.CookieJar {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		client.Jar = jar
	}
	if cfg.DisableRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return client, nil
}

// Unwrap returns the underlying *http.Client.
func (t *HTTP) Unwrap() *http.Client {
	return t.httpClient
}

// CircuitBreaker returns the configured breaker, or nil.
func (t *HTTP) CircuitBreaker() *resilience.CircuitBreaker {
	return t.cb
}

// Execute implements Transport. Responses with any status are returned
// without error; 429 and 5xx responses are retried when Retry is set.
func (t *HTTP) Execute(ctx context.Context, method, uri string, opts Options) (*Response, error) {
	var (
		resp *Response
		err  error
	)
	if t.config.Retry != nil {
		retry := *t.config.Retry
		if retry.OnRetry == nil {
			retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
				t.log.WithContext(ctx).Debug("retrying request", logger.Fields(
					logger.FieldMethod, method,
					logger.FieldURI, uri,
					logger.FieldAttempt, attempt,
					logger.FieldError, err.Error(),
					"backoff", backoff.String(),
				))
			}
		}
		resp, err = resilience.Retry(ctx, retry, func() (*Response, error) {
			return t.attempt(ctx, method, uri, opts)
		})
	} else {
		resp, err = t.attempt(ctx, method, uri, opts)
	}

	var se *statusError
	if asStatusError(err, &se) {
		return se.resp, nil
	}
	if err != nil {
		if _, ok := errors.AsAppError(err); !ok {
			return nil, classify(ctx, err)
		}
		return nil, err
	}
	return resp, nil
}

// attempt runs one request through the rate limiter and circuit breaker.
// 429 and 5xx responses come back wrapped in a statusError so that retry
// and the breaker see them as failures.
func (t *HTTP) attempt(ctx context.Context, method, uri string, opts Options) (*Response, error) {
	if t.rl != nil {
		if err := t.rl.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, errors.Timeout(err)
			}
			return nil, errors.RateLimited(err)
		}
	}

	if t.cb == nil {
		return t.send(ctx, method, uri, opts)
	}
	resp, err := resilience.Execute(t.cb, func() (*Response, error) {
		return t.send(ctx, method, uri, opts)
	})
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		return nil, errors.CircuitOpen(t.cb.Name(), err)
	}
	return resp, err
}

func (t *HTTP) send(ctx context.Context, method, uri string, opts Options) (*Response, error) {
	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return nil, errors.InvalidInput("uri", err.Error()).WithCause(err)
	}
	for name, values := range opts.Headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", version.UserAgent())
	}
	t.config.Auth.apply(req)

	httpResp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, classify(ctx, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	content, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, classify(ctx, fmt.Errorf("read response body: %w", err))
	}

	resp := NewResponse(httpResp.StatusCode, fromHTTPHeader(httpResp.Header), content)
	if resp.StatusCode == http.StatusTooManyRequests || resp.IsServerError() {
		return resp, &statusError{resp: resp}
	}
	return resp, nil
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return errors.Timeout(err)
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.Timeout(err)
	}
	return errors.Transport(err)
}

// statusError carries a retryable response through retry and the breaker.
type statusError struct {
	resp *Response
}

func (e *statusError) Error() string {
	return fmt.Sprintf("transport: HTTP %d", e.resp.StatusCode)
}

func asStatusError(err error, target **statusError) bool {
	return err != nil && stderrors.As(err, target)
}
