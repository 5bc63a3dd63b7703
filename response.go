package restclient

import (
	"fmt"

	"github.com/kbukum/restclient/errors"
	"github.com/kbukum/restclient/mediatype"
	"github.com/kbukum/restclient/serializer"
	"github.com/kbukum/restclient/transport"
)

// StatusHandler produces the result for a response with a specific status.
// A nil result is returned to the caller as-is.
type StatusHandler func(resp *transport.Response, s serializer.Serializer) (any, error)

// StatusError is a StatusHandler that fails with UNHANDLED_STATUS carrying
// the response body:
//
//	spec.OnStatus(http.StatusNotFound, restclient.StatusError)
func StatusError(resp *transport.Response, _ serializer.Serializer) (any, error) {
	body, err := resp.Content()
	if err != nil {
		return nil, errors.UnhandledStatus(resp.StatusCode, nil).WithCause(err)
	}
	return nil, errors.UnhandledStatus(resp.StatusCode, body)
}

// ResponseSpec decodes one executed response. Handlers registered with
// OnStatus take precedence over decoding for their exact status code.
type ResponseSpec struct {
	resp       *transport.Response
	serializer serializer.Serializer
	context    serializer.Context
	handlers   map[int]StatusHandler
}

func newResponseSpec(resp *transport.Response, s serializer.Serializer, ctx serializer.Context) *ResponseSpec {
	return &ResponseSpec{
		resp:       resp,
		serializer: s,
		context:    ctx,
		handlers:   make(map[int]StatusHandler),
	}
}

// Response returns the raw transport response.
func (r *ResponseSpec) Response() *transport.Response { return r.resp }

// StatusCode returns the response status code.
func (r *ResponseSpec) StatusCode() int { return r.resp.StatusCode }

// IsSuccess reports whether the status is 2xx.
func (r *ResponseSpec) IsSuccess() bool { return r.resp.IsSuccess() }

// OnStatus registers handler for exactly status, replacing any earlier one.
func (r *ResponseSpec) OnStatus(status int, handler StatusHandler) *ResponseSpec {
	r.handlers[status] = handler
	return r
}

// AsRawStructure decodes the body into an untyped map. Client error
// responses (4xx) yield nil without reading the body; server errors are
// decoded like any other response.
func (r *ResponseSpec) AsRawStructure() (map[string]any, error) {
	if r.resp.IsClientError() {
		return nil, nil
	}
	var out map[string]any
	if err := decode(r.resp, r.serializer, &out, r.context); err != nil {
		return nil, err
	}
	return out, nil
}

// AsEntity decodes the body into target, a non-nil pointer, and returns
// target. When a handler is registered for the status, its result is
// returned instead and target is left untouched.
func (r *ResponseSpec) AsEntity(target any) (any, error) {
	ex := DefaultExchange{Target: target, Handlers: r.handlers}
	return ex.Exchange(r.resp, r.serializer, r.context)
}

// Entity decodes the response as a single T.
//
//	todo, err := restclient.Entity[Todo](resp)
func Entity[T any](r *ResponseSpec) (*T, error) {
	result, err := r.AsEntity(new(T))
	if err != nil || result == nil {
		return nil, err
	}
	switch v := result.(type) {
	case *T:
		return v, nil
	case T:
		return &v, nil
	default:
		return nil, handlerResultError[T](r.resp.StatusCode, result)
	}
}

// EntityCollection decodes the response as a list of T.
func EntityCollection[T any](r *ResponseSpec) ([]T, error) {
	result, err := r.AsEntity(new([]T))
	if err != nil || result == nil {
		return nil, err
	}
	switch v := result.(type) {
	case *[]T:
		return *v, nil
	case []T:
		return v, nil
	default:
		return nil, handlerResultError[[]T](r.resp.StatusCode, result)
	}
}

func handlerResultError[T any](status int, result any) error {
	var want T
	return errors.InvalidInput("handler",
		fmt.Sprintf("status %d handler returned %T, want %T", status, result, want))
}

// decode deserializes the body in the format named by the response
// content type.
func decode(resp *transport.Response, s serializer.Serializer, target any, ctx serializer.Context) error {
	format, err := mediatype.DetectFormatFromResponse(resp)
	if err != nil {
		return err
	}
	body, err := resp.Content()
	if err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return err
		}
		return errors.Transport(err)
	}
	if err := s.Deserialize(body, target, format, ctx); err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return err
		}
		return errors.Deserialization(format, resp.StatusCode, err)
	}
	return nil
}
