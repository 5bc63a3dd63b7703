// Package testutil provides test doubles for restclient.
//
// MockTransport records every request and answers from a queue of canned
// responses or a handler function, so specs can be exercised without a
// network:
//
//	mock := testutil.NewMockTransport(testutil.JSONResponse(200, `{"id":1}`))
//	client := restclient.NewBuilder().BaseURL("https://api.example.com").Transport(mock).Build()
//	todo, err := restclient.Entity[Todo](client.Get().URI("/todos/{id}", map[string]any{"id": 1}).Retrieve(ctx))
//	mock.RequestsCount() // 1
//
// CountingSerializer wraps a Serializer and counts its calls, which lets
// tests assert that a code path never touched the body.
package testutil
