// Package restclient is a declarative HTTP client.
//
// A Client holds defaults (base URL, URI variables, headers, serialization
// context) and starts one request spec per call. The chain collects headers
// and an optional body, then a terminal call issues the request exactly once:
//
//	client := restclient.New("https://jsonplaceholder.typicode.com")
//
//	resp, err := client.Get().
//	    URI("/todos/{id}", map[string]any{"id": 1}).
//	    Accept("application/json").
//	    Retrieve(ctx)
//	if err != nil {
//	    return err
//	}
//	todo, err := restclient.Entity[Todo](resp)
//
// Response bodies are decoded in the format named by the response
// Content-Type. Handlers registered with ResponseSpec.OnStatus replace
// decoding for their exact status code.
//
// URI templates made only of {name} placeholders are expanded textually.
// Templates using RFC 6570 operators ({+path}, {?q}) go to the client's
// expander, uritemplate.RFC6570 by default.
//
// Named clients can be loaded from configuration with LoadClientsConfig and
// NewRegistry. The exchange package binds tagged function fields to a client.
package restclient
