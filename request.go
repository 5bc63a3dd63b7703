package restclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/restclient/errors"
	"github.com/kbukum/restclient/logger"
	"github.com/kbukum/restclient/mediatype"
	"github.com/kbukum/restclient/serializer"
	"github.com/kbukum/restclient/transport"
)

// Header names written by the request spec chain.
const (
	headerAccept          = "accept"
	headerAcceptCharset   = "accept-charset"
	headerContentType     = "content-type"
	headerIfModifiedSince = "if-modified-since"
	headerIfNoneMatch     = "if-none-match"
)

// request is the state shared by RequestSpec and RequestBodySpec.
type request struct {
	client   *Client
	method   string
	resolver func() (string, error)
	headers  map[string][]string
	context  serializer.Context
	issued   bool
}

func (r *request) uri(path string, vars map[string]any) {
	c := r.client
	r.resolver = NewURIResolver(c.baseURL, path, c.defaultVars, vars, c.expander).Render
}

func (r *request) setHeader(name string, values ...string) {
	r.headers[name] = append([]string(nil), values...)
}

func (r *request) addHeader(name string, values ...string) {
	name = strings.ToLower(name)
	r.headers[name] = append(r.headers[name], values...)
}

func (r *request) ifNoneMatch(tags []string) {
	r.setHeader(headerIfNoneMatch, `"`+strings.Join(tags, `", "`)+`"`)
}

func (r *request) mergeContext(ctx serializer.Context) {
	r.context = serializer.Merge(r.context, ctx)
}

// serializationContext is the client default context overlaid by the
// per-call context.
func (r *request) serializationContext() serializer.Context {
	return serializer.Merge(r.client.defaultContext, r.context)
}

// begin moves the request to the issued state.
func (r *request) begin() error {
	if r.issued {
		return errors.AlreadyIssued(r.method)
	}
	r.issued = true
	return nil
}

// execute renders the URI and sends the request.
func (r *request) execute(ctx context.Context, body []byte) (*transport.Response, error) {
	uri, err := r.resolver()
	if err != nil {
		return nil, err
	}

	r.client.log.WithContext(ctx).Debug("issuing request", logger.RequestFields(r.method, uri))
	return r.client.transport.Execute(ctx, r.method, uri, transport.Options{
		Headers: r.headers,
		Body:    body,
	})
}

func (r *request) retrieve(resp *transport.Response) *ResponseSpec {
	return newResponseSpec(resp, r.client.serializer, r.serializationContext())
}

func (r *request) exchange(resp *transport.Response, ex ResponseExchange) (any, error) {
	if ex == nil {
		return nil, errors.InvalidInput("exchange", "response exchange must not be nil")
	}
	return ex.Exchange(resp, r.client.serializer, r.serializationContext())
}

// RequestSpec describes a request without a body. Chain methods mutate the
// spec and return it; Retrieve or Exchange issues it exactly once.
type RequestSpec struct {
	req request
}

// URI sets the request path, relative to the client base URL, and the URI
// variables it is rendered with. It replaces any earlier URI or URIFunc.
func (s *RequestSpec) URI(path string, vars map[string]any) *RequestSpec {
	s.req.uri(path, vars)
	return s
}

// URIFunc sets a function computing the final URI at issue time. It
// replaces any earlier URI or URIFunc.
func (s *RequestSpec) URIFunc(fn func() (string, error)) *RequestSpec {
	s.req.resolver = fn
	return s
}

// Accept sets the accept header, replacing previous values.
func (s *RequestSpec) Accept(mediaTypes ...string) *RequestSpec {
	s.req.setHeader(headerAccept, mediaTypes...)
	return s
}

// AcceptCharset sets the accept-charset header, replacing previous values.
func (s *RequestSpec) AcceptCharset(charsets ...string) *RequestSpec {
	s.req.setHeader(headerAcceptCharset, charsets...)
	return s
}

// IfModifiedSince sets the if-modified-since header.
func (s *RequestSpec) IfModifiedSince(t time.Time) *RequestSpec {
	s.req.setHeader(headerIfModifiedSince, t.UTC().Format(http.TimeFormat))
	return s
}

// IfNoneMatch sets the if-none-match header to the quoted entity tags.
func (s *RequestSpec) IfNoneMatch(tags ...string) *RequestSpec {
	s.req.ifNoneMatch(tags)
	return s
}

// Header appends values under the lower-cased header name.
func (s *RequestSpec) Header(name string, values ...string) *RequestSpec {
	s.req.addHeader(name, values...)
	return s
}

// SerializationContext merges ctx into the per-call context. Keys set here
// win over the client default context.
func (s *RequestSpec) SerializationContext(ctx serializer.Context) *RequestSpec {
	s.req.mergeContext(ctx)
	return s
}

// Retrieve issues the request and wraps the response for decoding.
// Transport errors are returned unchanged.
func (s *RequestSpec) Retrieve(ctx context.Context) (*ResponseSpec, error) {
	if err := s.req.begin(); err != nil {
		return nil, err
	}
	resp, err := s.req.execute(ctx, nil)
	if err != nil {
		return nil, err
	}
	return s.req.retrieve(resp), nil
}

// Exchange issues the request and hands the response to ex.
func (s *RequestSpec) Exchange(ctx context.Context, ex ResponseExchange) (any, error) {
	if err := s.req.begin(); err != nil {
		return nil, err
	}
	resp, err := s.req.execute(ctx, nil)
	if err != nil {
		return nil, err
	}
	return s.req.exchange(resp, ex)
}

// RequestBodySpec describes a request that may carry a body.
type RequestBodySpec struct {
	req         request
	body        any
	hasBody     bool
	requireBody bool
}

// URI sets the request path and URI variables.
func (s *RequestBodySpec) URI(path string, vars map[string]any) *RequestBodySpec {
	s.req.uri(path, vars)
	return s
}

// URIFunc sets a function computing the final URI at issue time.
func (s *RequestBodySpec) URIFunc(fn func() (string, error)) *RequestBodySpec {
	s.req.resolver = fn
	return s
}

// Accept sets the accept header, replacing previous values.
func (s *RequestBodySpec) Accept(mediaTypes ...string) *RequestBodySpec {
	s.req.setHeader(headerAccept, mediaTypes...)
	return s
}

// AcceptCharset sets the accept-charset header, replacing previous values.
func (s *RequestBodySpec) AcceptCharset(charsets ...string) *RequestBodySpec {
	s.req.setHeader(headerAcceptCharset, charsets...)
	return s
}

// IfModifiedSince sets the if-modified-since header.
func (s *RequestBodySpec) IfModifiedSince(t time.Time) *RequestBodySpec {
	s.req.setHeader(headerIfModifiedSince, t.UTC().Format(http.TimeFormat))
	return s
}

// IfNoneMatch sets the if-none-match header to the quoted entity tags.
func (s *RequestBodySpec) IfNoneMatch(tags ...string) *RequestBodySpec {
	s.req.ifNoneMatch(tags)
	return s
}

// Header appends values under the lower-cased header name.
func (s *RequestBodySpec) Header(name string, values ...string) *RequestBodySpec {
	s.req.addHeader(name, values...)
	return s
}

// SerializationContext merges ctx into the per-call context.
func (s *RequestBodySpec) SerializationContext(ctx serializer.Context) *RequestBodySpec {
	s.req.mergeContext(ctx)
	return s
}

// ContentType sets the content-type header. The body format is derived from
// it at issue time.
func (s *RequestBodySpec) ContentType(value string) *RequestBodySpec {
	s.req.setHeader(headerContentType, value)
	return s
}

// Body attaches the payload, replacing any earlier one. []byte, string and
// io.Reader payloads are sent as-is; anything else is serialized.
func (s *RequestBodySpec) Body(v any) *RequestBodySpec {
	s.body = v
	s.hasBody = true
	return s
}

// RequireBody makes the terminal call fail with MISSING_BODY when no body
// was attached.
func (s *RequestBodySpec) RequireBody() *RequestBodySpec {
	s.requireBody = true
	return s
}

// Retrieve encodes the body, issues the request and wraps the response.
func (s *RequestBodySpec) Retrieve(ctx context.Context) (*ResponseSpec, error) {
	resp, err := s.issue(ctx)
	if err != nil {
		return nil, err
	}
	return s.req.retrieve(resp), nil
}

// Exchange encodes the body, issues the request and hands the response to ex.
func (s *RequestBodySpec) Exchange(ctx context.Context, ex ResponseExchange) (any, error) {
	resp, err := s.issue(ctx)
	if err != nil {
		return nil, err
	}
	return s.req.exchange(resp, ex)
}

func (s *RequestBodySpec) issue(ctx context.Context) (*transport.Response, error) {
	if err := s.req.begin(); err != nil {
		return nil, err
	}
	body, err := s.encodeBody()
	if err != nil {
		return nil, err
	}
	return s.req.execute(ctx, body)
}

// encodeBody returns the wire form of the attached body. Without a content
// type the body is sent as JSON.
func (s *RequestBodySpec) encodeBody() ([]byte, error) {
	if !s.hasBody || s.body == nil {
		if s.requireBody {
			return nil, errors.MissingBody(s.req.method)
		}
		return nil, nil
	}

	switch b := s.body.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	case io.Reader:
		data, err := io.ReadAll(b)
		if err != nil {
			return nil, errors.InvalidInput("body", fmt.Sprintf("read body: %v", err)).WithCause(err)
		}
		return data, nil
	}

	format := mediatype.FormatJSON
	if ct := firstValue(s.req.headers[headerContentType]); ct == "" {
		s.req.setHeader(headerContentType, "application/json")
	} else {
		detected, ok := mediatype.DetectFormat(ct)
		if !ok {
			return nil, errors.UnknownContentType(ct)
		}
		format = detected
	}

	data, err := s.req.client.serializer.Serialize(s.body, format, s.req.serializationContext())
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return nil, err
		}
		return nil, errors.Serialization(format, err)
	}
	return data, nil
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
