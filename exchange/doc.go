// Package exchange binds struct function fields to HTTP exchanges.
//
// Each func field carries an `exchange` tag with the method and URI template.
// The first parameter must be a context.Context; the `params` tag names the
// remaining parameters in order. A parameter named "body" is sent as the
// request body, every other one becomes a URI variable:
//
//	type TodoClient struct {
//	    Get    func(ctx context.Context, id int) (*Todo, error)           `exchange:"GET /todos/{id}" params:"id"`
//	    List   func(ctx context.Context, page int) ([]Todo, error)        `exchange:"GET /todos{?page}" params:"page"`
//	    Create func(ctx context.Context, t Todo) (*Todo, error)           `exchange:"POST /todos" params:"body"`
//	    Done   func(ctx context.Context, id int) (bool, error)            `exchange:"PUT /todos/{id}/done" params:"id"`
//	    Delete func(ctx context.Context, id int) error                    `exchange:"DELETE /todos/{id}" params:"id" accept:"application/json"`
//	}
//
//	var todos TodoClient
//	if err := exchange.Bind(&todos, client); err != nil { ... }
//
// Return shapes: (*T, error) decodes an entity, ([]T, error) a collection,
// (bool, error) reports a 2xx status and error alone fails with
// UNHANDLED_STATUS for a non-2xx response. Optional `accept`, `charset` and
// `content-type` tags set the matching request headers.
package exchange
