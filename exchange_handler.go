package restclient

import (
	"github.com/kbukum/restclient/serializer"
	"github.com/kbukum/restclient/transport"
)

// ResponseExchange turns an executed response into a result, bypassing
// ResponseSpec.
type ResponseExchange interface {
	Exchange(resp *transport.Response, s serializer.Serializer, ctx serializer.Context) (any, error)
}

// ExchangeFunc adapts a function to ResponseExchange.
type ExchangeFunc func(resp *transport.Response, s serializer.Serializer, ctx serializer.Context) (any, error)

// Exchange calls f.
func (f ExchangeFunc) Exchange(resp *transport.Response, s serializer.Serializer, ctx serializer.Context) (any, error) {
	return f(resp, s, ctx)
}

// DefaultExchange runs the handler registered for the response status, or
// decodes the body into Target by the response content type.
type DefaultExchange struct {
	// Target is a non-nil pointer receiving the decoded body.
	Target any
	// Handlers maps exact status codes to handlers.
	Handlers map[int]StatusHandler
}

// Exchange implements ResponseExchange.
func (e DefaultExchange) Exchange(resp *transport.Response, s serializer.Serializer, ctx serializer.Context) (any, error) {
	if h, ok := e.Handlers[resp.StatusCode]; ok {
		return h(resp, s)
	}
	if err := decode(resp, s, e.Target, ctx); err != nil {
		return nil, err
	}
	return e.Target, nil
}
