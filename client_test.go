package restclient

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/restclient/errors"
	"github.com/kbukum/restclient/logger"
	"github.com/kbukum/restclient/serializer"
	"github.com/kbukum/restclient/testutil"
	"github.com/kbukum/restclient/transport"
)

type Todo struct {
	UserID    int    `json:"userId" yaml:"userId"`
	ID        int    `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Completed bool   `json:"completed" yaml:"completed"`
}

const todoJSON = `{"userId":1,"id":1,"title":"delectus aut autem","completed":false}`

func newTestClient(t *testing.T, mock *testutil.MockTransport, opts ...Option) (*Client, *testutil.CountingSerializer) {
	t.Helper()
	ser := testutil.NewCountingSerializer(nil)
	opts = append([]Option{
		WithTransport(mock),
		WithSerializer(ser),
		WithLogger(logger.Nop()),
	}, opts...)
	return New("https://example.com", opts...), ser
}

func TestGet_Entity(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, todoJSON))
	client, _ := newTestClient(t, mock)

	resp, err := client.Get().URI("/todos/{id}", map[string]any{"id": 1}).Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	todo, err := Entity[Todo](resp)
	if err != nil {
		t.Fatalf("Entity failed: %v", err)
	}
	want := Todo{UserID: 1, ID: 1, Title: "delectus aut autem", Completed: false}
	if *todo != want {
		t.Errorf("expected %+v, got %+v", want, *todo)
	}

	call := mock.LastCall()
	if call.Method != http.MethodGet {
		t.Errorf("expected GET, got %s", call.Method)
	}
	if call.URI != "https://example.com/todos/1" {
		t.Errorf("unexpected URI %q", call.URI)
	}
	if call.Opts.Body != nil {
		t.Errorf("expected no body, got %q", call.Opts.Body)
	}
}

func TestEntity_MissingContentType(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.Response(http.StatusOK, "", todoJSON))
	client, ser := newTestClient(t, mock)

	resp, err := client.Get().URI("/todos/1", nil).Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	_, err = Entity[Todo](resp)
	if !errors.IsUnknownContentType(err) {
		t.Fatalf("expected UNKNOWN_CONTENT_TYPE, got %v", err)
	}
	if ser.DeserializeCalls() != 0 {
		t.Errorf("expected no deserialization, got %d calls", ser.DeserializeCalls())
	}
}

func TestEntity_DeserializationError(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, `{"id":"not-a-number"}`))
	client, _ := newTestClient(t, mock)

	resp, _ := client.Get().Retrieve(context.Background())
	_, err := Entity[Todo](resp)
	if !errors.IsDeserialization(err) {
		t.Fatalf("expected DESERIALIZATION, got %v", err)
	}
	if errors.IsUnknownContentType(err) {
		t.Error("deserialization must be distinguishable from unknown content type")
	}
}

func TestEntity_YAMLResponse(t *testing.T) {
	body := "userId: 3\nid: 9\ntitle: yaml todo\ncompleted: true\n"
	mock := testutil.NewMockTransport(testutil.Response(http.StatusOK, "application/yaml", body))
	client, ser := newTestClient(t, mock)

	resp, _ := client.Get().Retrieve(context.Background())
	todo, err := Entity[Todo](resp)
	if err != nil {
		t.Fatalf("Entity failed: %v", err)
	}
	if todo.ID != 9 || !todo.Completed {
		t.Errorf("unexpected todo %+v", *todo)
	}
	if ser.LastFormat() != "yaml" {
		t.Errorf("expected yaml format, got %q", ser.LastFormat())
	}
}

func TestEntityCollection(t *testing.T) {
	body := `[` + todoJSON + `,{"userId":1,"id":2,"title":"second","completed":true}]`
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, body))
	client, _ := newTestClient(t, mock)

	resp, _ := client.Get().URI("/todos", nil).Retrieve(context.Background())
	todos, err := EntityCollection[Todo](resp)
	if err != nil {
		t.Fatalf("EntityCollection failed: %v", err)
	}
	if len(todos) != 2 || todos[1].Title != "second" {
		t.Errorf("unexpected todos %+v", todos)
	}
}

func TestEntity_ClientErrorStillDecodes(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusNotFound, `{"id":0,"title":"missing"}`))
	client, ser := newTestClient(t, mock)

	resp, _ := client.Get().Retrieve(context.Background())
	todo, err := Entity[Todo](resp)
	if err != nil {
		t.Fatalf("expected 4xx body to decode, got %v", err)
	}
	if todo.Title != "missing" {
		t.Errorf("unexpected todo %+v", *todo)
	}
	if ser.DeserializeCalls() != 1 {
		t.Errorf("expected one deserialization, got %d", ser.DeserializeCalls())
	}
}

func TestAsRawStructure_ClientErrorIsNil(t *testing.T) {
	reads := 0
	mock := testutil.NewMockTransport(testutil.TrackedResponse(http.StatusNotFound, "application/json", `{"error":"nope"}`, &reads))
	client, ser := newTestClient(t, mock)

	resp, _ := client.Get().Retrieve(context.Background())
	raw, err := resp.AsRawStructure()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != nil {
		t.Errorf("expected nil for 404, got %v", raw)
	}
	if ser.DeserializeCalls() != 0 {
		t.Errorf("expected no deserialization, got %d calls", ser.DeserializeCalls())
	}
	if reads != 0 {
		t.Errorf("expected body to stay unread, got %d reads", reads)
	}
}

func TestAsRawStructure_ServerErrorIsParsed(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusInternalServerError, `{"error":"boom"}`))
	client, _ := newTestClient(t, mock)

	resp, _ := client.Get().Retrieve(context.Background())
	raw, err := resp.AsRawStructure()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw["error"] != "boom" {
		t.Errorf("expected parsed 5xx body, got %v", raw)
	}
}

func TestAsRawStructure_Success(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, todoJSON))
	client, _ := newTestClient(t, mock)

	resp, _ := client.Get().Retrieve(context.Background())
	raw, err := resp.AsRawStructure()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw["title"] != "delectus aut autem" {
		t.Errorf("unexpected raw structure %v", raw)
	}
}

func TestOnStatus_HandlerTakesPrecedence(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusInternalServerError, `{"error":"boom"}`))
	client, ser := newTestClient(t, mock)

	fallback := &Todo{Title: "fallback"}
	var gotStatus int
	resp, _ := client.Get().Retrieve(context.Background())
	resp.OnStatus(http.StatusInternalServerError, func(r *transport.Response, _ serializer.Serializer) (any, error) {
		gotStatus = r.StatusCode
		return fallback, nil
	})

	todo, err := Entity[Todo](resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if todo != fallback {
		t.Errorf("expected handler result returned as-is, got %+v", todo)
	}
	if gotStatus != http.StatusInternalServerError {
		t.Errorf("handler saw status %d", gotStatus)
	}
	if ser.DeserializeCalls() != 0 {
		t.Errorf("expected default deserialization skipped, got %d calls", ser.DeserializeCalls())
	}
}

func TestOnStatus_NilResult(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusNotFound, `{}`))
	client, _ := newTestClient(t, mock)

	resp, _ := client.Get().Retrieve(context.Background())
	resp.OnStatus(http.StatusNotFound, func(*transport.Response, serializer.Serializer) (any, error) {
		return nil, nil
	})
	todos, err := EntityCollection[Todo](resp)
	if err != nil || todos != nil {
		t.Errorf("expected nil, nil; got %v, %v", todos, err)
	}
}

func TestOnStatus_ExactMatchOnly(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, todoJSON))
	client, _ := newTestClient(t, mock)

	resp, _ := client.Get().Retrieve(context.Background())
	resp.OnStatus(http.StatusCreated, func(*transport.Response, serializer.Serializer) (any, error) {
		t.Error("handler for 201 must not run for 200")
		return nil, nil
	})
	if _, err := Entity[Todo](resp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOnStatus_WrongResultType(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusTeapot, `{}`))
	client, _ := newTestClient(t, mock)

	resp, _ := client.Get().Retrieve(context.Background())
	resp.OnStatus(http.StatusTeapot, func(*transport.Response, serializer.Serializer) (any, error) {
		return "tea", nil
	})
	if _, err := Entity[Todo](resp); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestStatusError(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusConflict, `{"error":"exists"}`))
	client, _ := newTestClient(t, mock)

	resp, _ := client.Get().Retrieve(context.Background())
	_, err := Entity[Todo](resp.OnStatus(http.StatusConflict, StatusError))
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeUnhandledStatus {
		t.Fatalf("expected UNHANDLED_STATUS, got %v", err)
	}
	if appErr.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status 409, got %d", appErr.HTTPStatus)
	}
	if appErr.Details["body"] != `{"error":"exists"}` {
		t.Errorf("expected body detail, got %v", appErr.Details)
	}
}

func TestIsSuccess(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusOK, true},
		{http.StatusNoContent, true},
		{http.StatusMultipleChoices, false},
		{http.StatusBadRequest, false},
		{http.StatusBadGateway, false},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			mock := testutil.NewMockTransport(testutil.Response(tc.status, "", ""))
			client, _ := newTestClient(t, mock)
			resp, _ := client.Head().Retrieve(context.Background())
			if resp.IsSuccess() != tc.want {
				t.Errorf("IsSuccess() = %v for %d", !tc.want, tc.status)
			}
		})
	}
}

func TestHeaders_Layering(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, `{}`))
	client, _ := newTestClient(t, mock,
		WithDefaultHeader("X-Tenant", "acme"),
		WithDefaultHeader("Accept", "text/plain"),
	)

	_, err := client.Get().
		Header("X-Tenant", "beta").
		Header("X-Trace", "1").
		Accept("application/json", "application/xml").
		AcceptCharset("utf-8").
		Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	h := mock.LastCall().Opts.Headers
	if got := h["x-tenant"]; len(got) != 2 || got[0] != "acme" || got[1] != "beta" {
		t.Errorf("expected appended x-tenant, got %v", got)
	}
	if got := h["x-trace"]; len(got) != 1 || got[0] != "1" {
		t.Errorf("expected x-trace, got %v", got)
	}
	if got := h["accept"]; len(got) != 2 || got[0] != "application/json" {
		t.Errorf("expected accept replaced, got %v", got)
	}
	if got := h["accept-charset"]; len(got) != 1 || got[0] != "utf-8" {
		t.Errorf("expected accept-charset, got %v", got)
	}

	// Defaults must not be changed by a request.
	if _, err := client.Get().Retrieve(context.Background()); err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	h = mock.LastCall().Opts.Headers
	if got := h["x-tenant"]; len(got) != 1 || got[0] != "acme" {
		t.Errorf("expected untouched default x-tenant, got %v", got)
	}
	if got := h["accept"]; len(got) != 1 || got[0] != "text/plain" {
		t.Errorf("expected untouched default accept, got %v", got)
	}
}

func TestIfModifiedSince(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.Response(http.StatusNotModified, "", ""))
	client, _ := newTestClient(t, mock)

	ts := time.Date(2024, time.March, 5, 10, 30, 0, 0, time.FixedZone("CET", 3600))
	if _, err := client.Get().IfModifiedSince(ts).Retrieve(context.Background()); err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if got := mock.LastCall().Header("if-modified-since"); got != "Tue, 05 Mar 2024 09:30:00 GMT" {
		t.Errorf("unexpected if-modified-since %q", got)
	}
}

func TestIfNoneMatch_WritesIfNoneMatchHeader(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.Response(http.StatusNotModified, "", ""))
	client, _ := newTestClient(t, mock)

	if _, err := client.Get().IfNoneMatch("a", "b").Retrieve(context.Background()); err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	call := mock.LastCall()
	if got := call.Header("if-none-match"); got != `"a", "b"` {
		t.Errorf("unexpected if-none-match %q", got)
	}
	if got := call.Header("if-modified-since"); got != "" {
		t.Errorf("if-modified-since must stay unset, got %q", got)
	}
}

func TestSerializationContext_Merge(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, todoJSON))
	client, ser := newTestClient(t, mock, WithDefaultContext(serializer.Context{
		"a": "default", "b": "default",
	}))

	resp, err := client.Get().
		SerializationContext(serializer.Context{"b": "call", "c": "call"}).
		Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if _, err := Entity[Todo](resp); err != nil {
		t.Fatalf("Entity failed: %v", err)
	}

	got := ser.LastContext()
	want := serializer.Context{"a": "default", "b": "call", "c": "call"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("context[%q] = %v, want %v", k, got[k], v)
		}
	}
}

func TestRetrieve_SecondCallFails(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, `{}`))
	client, _ := newTestClient(t, mock)

	spec := client.Get().URI("/todos", nil)
	if _, err := spec.Retrieve(context.Background()); err != nil {
		t.Fatalf("first Retrieve failed: %v", err)
	}
	_, err := spec.Retrieve(context.Background())
	if !errors.HasCode(err, errors.ErrCodeAlreadyIssued) {
		t.Fatalf("expected ALREADY_ISSUED, got %v", err)
	}
	_, err = spec.Exchange(context.Background(), ExchangeFunc(func(*transport.Response, serializer.Serializer, serializer.Context) (any, error) {
		return nil, nil
	}))
	if !errors.HasCode(err, errors.ErrCodeAlreadyIssued) {
		t.Fatalf("expected ALREADY_ISSUED from Exchange, got %v", err)
	}
	if mock.RequestsCount() != 1 {
		t.Errorf("expected one request, got %d", mock.RequestsCount())
	}
}

func TestTransportErrorPropagates(t *testing.T) {
	cause := errors.Transport(stderrors.New("connection refused"))
	mock := testutil.NewFailingTransport(cause)
	client, _ := newTestClient(t, mock)

	_, err := client.Get().Retrieve(context.Background())
	if err != cause {
		t.Fatalf("expected transport error unchanged, got %v", err)
	}
	if !errors.IsTransport(err) {
		t.Error("expected TRANSPORT code")
	}
}

func TestConfigurationErrorBeforeNetwork(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, `{}`))
	client, _ := newTestClient(t, mock, WithExpander(nil))

	_, err := client.Get().URI("/files/{+path}", map[string]any{"path": "a/b"}).Retrieve(context.Background())
	if !errors.IsConfiguration(err) {
		t.Fatalf("expected CONFIGURATION, got %v", err)
	}
	if mock.RequestsCount() != 0 {
		t.Errorf("expected no request, got %d", mock.RequestsCount())
	}
}

func TestDefaultExpanderHandlesOperators(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, `{}`))
	client, _ := newTestClient(t, mock)

	if _, err := client.Get().URI("/todos{?page}", map[string]any{"page": 3}).Retrieve(context.Background()); err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if got := mock.LastCall().URI; got != "https://example.com/todos?page=3" {
		t.Errorf("unexpected URI %q", got)
	}
}

func TestURIFunc(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, `{}`))
	client, _ := newTestClient(t, mock)

	calls := 0
	_, err := client.Get().
		URI("/ignored", nil).
		URIFunc(func() (string, error) {
			calls++
			return "https://other.example.com/custom", nil
		}).
		Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected the URI func to run once at issue, ran %d times", calls)
	}
	if got := mock.LastCall().URI; got != "https://other.example.com/custom" {
		t.Errorf("unexpected URI %q", got)
	}
}

func TestURI_LastCallWins(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, `{}`))
	client, _ := newTestClient(t, mock)

	_, err := client.Delete().
		URIFunc(func() (string, error) { return "/from-func", nil }).
		URI("/todos/{id}", map[string]any{"id": 4}).
		Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	call := mock.LastCall()
	if call.URI != "https://example.com/todos/4" || call.Method != http.MethodDelete {
		t.Errorf("unexpected call %s %s", call.Method, call.URI)
	}
}

func TestExchange(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, todoJSON))
	client, _ := newTestClient(t, mock, WithDefaultContext(serializer.Context{"k": "v"}))

	result, err := client.Get().Exchange(context.Background(),
		ExchangeFunc(func(resp *transport.Response, s serializer.Serializer, ctx serializer.Context) (any, error) {
			if ctx["k"] != "v" {
				t.Errorf("expected default context, got %v", ctx)
			}
			return resp.StatusCode, nil
		}))
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if result != http.StatusOK {
		t.Errorf("expected handler result, got %v", result)
	}
}

func TestExchange_DefaultExchange(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, todoJSON))
	client, _ := newTestClient(t, mock)

	var todo Todo
	result, err := client.Get().Exchange(context.Background(), DefaultExchange{Target: &todo})
	if err != nil {
		t.Fatalf("Exchange failed: %v", err)
	}
	if result != &todo || todo.ID != 1 {
		t.Errorf("expected decoded target, got %v", result)
	}
}

func TestExchange_NilExchange(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, `{}`))
	client, _ := newTestClient(t, mock)
	if _, err := client.Get().Exchange(context.Background(), nil); !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestPost_DefaultsToJSON(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusCreated, todoJSON))
	client, ser := newTestClient(t, mock)

	_, err := client.Post().URI("/todos", nil).Body(Todo{UserID: 1, Title: "new"}).Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	call := mock.LastCall()
	if got := call.Header("content-type"); got != "application/json" {
		t.Errorf("expected application/json, got %q", got)
	}
	if !strings.Contains(call.Body(), `"title":"new"`) {
		t.Errorf("unexpected body %q", call.Body())
	}
	if ser.SerializeCalls() != 1 || ser.LastFormat() != "json" {
		t.Errorf("expected one json serialization, got %d %q", ser.SerializeCalls(), ser.LastFormat())
	}
}

func TestPut_ContentTypeSelectsFormat(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.Response(http.StatusOK, "", ""))
	client, ser := newTestClient(t, mock)

	_, err := client.Put().
		URI("/todos/1", nil).
		ContentType("application/yaml").
		Body(Todo{ID: 1, Title: "yaml"}).
		Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if ser.LastFormat() != "yaml" {
		t.Errorf("expected yaml format, got %q", ser.LastFormat())
	}
	if !strings.Contains(mock.LastCall().Body(), "title: yaml") {
		t.Errorf("unexpected body %q", mock.LastCall().Body())
	}
}

func TestPatch_UnknownContentType(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.Response(http.StatusOK, "", ""))
	client, _ := newTestClient(t, mock)

	_, err := client.Patch().ContentType("application/x-unknown-thing").Body(Todo{}).Retrieve(context.Background())
	if !errors.IsUnknownContentType(err) {
		t.Fatalf("expected UNKNOWN_CONTENT_TYPE, got %v", err)
	}
	if mock.RequestsCount() != 0 {
		t.Errorf("expected no request, got %d", mock.RequestsCount())
	}
}

func TestBody_LastWriteWins(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.Response(http.StatusOK, "", ""))
	client, _ := newTestClient(t, mock)

	_, err := client.Post().Body(Todo{Title: "first"}).Body(Todo{Title: "second"}).Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	body := mock.LastCall().Body()
	if strings.Contains(body, "first") || !strings.Contains(body, "second") {
		t.Errorf("expected only the last body, got %q", body)
	}
}

func TestBody_RawPayloads(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"bytes", []byte("raw-data")},
		{"string", "raw-data"},
		{"reader", strings.NewReader("raw-data")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mock := testutil.NewMockTransport(testutil.Response(http.StatusOK, "", ""))
			client, ser := newTestClient(t, mock)

			_, err := client.Post().ContentType("text/plain").Body(tc.body).Retrieve(context.Background())
			if err != nil {
				t.Fatalf("Retrieve failed: %v", err)
			}
			call := mock.LastCall()
			if call.Body() != "raw-data" {
				t.Errorf("unexpected body %q", call.Body())
			}
			if call.Header("content-type") != "text/plain" {
				t.Errorf("content type changed to %q", call.Header("content-type"))
			}
			if ser.SerializeCalls() != 0 {
				t.Errorf("expected serializer untouched, got %d calls", ser.SerializeCalls())
			}
		})
	}
}

func TestBody_Absent(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.Response(http.StatusOK, "", ""))
	client, ser := newTestClient(t, mock)

	if _, err := client.Post().URI("/ping", nil).Retrieve(context.Background()); err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	call := mock.LastCall()
	if call.Opts.Body != nil {
		t.Errorf("expected no body, got %q", call.Opts.Body)
	}
	if call.Header("content-type") != "" {
		t.Errorf("expected no content type, got %q", call.Header("content-type"))
	}
	if ser.SerializeCalls() != 0 {
		t.Errorf("expected serializer untouched, got %d calls", ser.SerializeCalls())
	}
}

func TestRequireBody(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.Response(http.StatusOK, "", ""))
	client, _ := newTestClient(t, mock)

	_, err := client.Put().URI("/todos/1", nil).RequireBody().Retrieve(context.Background())
	if !errors.HasCode(err, errors.ErrCodeMissingBody) {
		t.Fatalf("expected MISSING_BODY, got %v", err)
	}
	if mock.RequestsCount() != 0 {
		t.Errorf("expected no request, got %d", mock.RequestsCount())
	}

	_, err = client.Put().RequireBody().Body(Todo{ID: 1}).Retrieve(context.Background())
	if err != nil {
		t.Fatalf("expected body to satisfy RequireBody, got %v", err)
	}
}

func TestSerializationFailure(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.Response(http.StatusOK, "", ""))
	client, _ := newTestClient(t, mock)

	_, err := client.Post().Body(map[string]any{"ch": make(chan int)}).Retrieve(context.Background())
	if !errors.HasCode(err, errors.ErrCodeSerialization) {
		t.Fatalf("expected SERIALIZATION, got %v", err)
	}
}

func TestBodySpec_ChainMethods(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, `{}`))
	client, ser := newTestClient(t, mock)

	ts := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
	_, err := client.Patch().
		URIFunc(func() (string, error) { return "/x", nil }).
		Accept("application/json").
		AcceptCharset("utf-8").
		IfModifiedSince(ts).
		IfNoneMatch("v1").
		Header("x-one", "1").
		SerializationContext(serializer.Context{"pretty": true}).
		Body(map[string]string{"a": "b"}).
		Retrieve(context.Background())
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	call := mock.LastCall()
	if call.URI != "/x" {
		t.Errorf("unexpected URI %q", call.URI)
	}
	for name, want := range map[string]string{
		"accept":            "application/json",
		"accept-charset":    "utf-8",
		"if-modified-since": "Tue, 02 Jan 2024 03:04:05 GMT",
		"if-none-match":     `"v1"`,
		"x-one":             "1",
	} {
		if got := call.Header(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
	if ser.LastContext()["pretty"] != true {
		t.Errorf("expected per-call context, got %v", ser.LastContext())
	}
}

func TestBuilder_SnapshotOnBuild(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, `{}`))
	b := NewBuilder().
		BaseURL("https://{host}/").
		DefaultURIVariables(map[string]any{"host": "a.example.com"}).
		DefaultHeader("x-version", "1").
		Transport(mock).
		Logger(logger.Nop())

	first := b.Build()
	b.DefaultURIVariables(map[string]any{"host": "b.example.com"}).DefaultHeader("x-version", "2")
	second := b.Build()

	if _, err := first.Get().URI("/ping", nil).Retrieve(context.Background()); err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	call := mock.LastCall()
	if call.URI != "https://a.example.com/ping" {
		t.Errorf("first client changed after Build: %q", call.URI)
	}
	if got := call.Opts.Headers["x-version"]; len(got) != 1 {
		t.Errorf("first client headers changed after Build: %v", got)
	}

	if _, err := second.Get().URI("/ping", nil).Retrieve(context.Background()); err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if got := mock.LastCall().URI; got != "https://b.example.com/ping" {
		t.Errorf("unexpected second URI %q", got)
	}
}

func TestBuilder_ConcurrentUse(t *testing.T) {
	b := NewBuilder().Transport(testutil.NewMockTransport()).Logger(logger.Nop())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			b.DefaultHeader("x-n", "v")
		}()
		go func() {
			defer wg.Done()
			if b.Build() == nil {
				t.Error("expected client")
			}
		}()
	}
	wg.Wait()
}

func TestBuilder_DefaultsAndMutate(t *testing.T) {
	client := NewBuilder().Name("todos").DefaultHeaders(map[string][]string{"X-Key": {"k"}}).Build()
	if client.Name() != "todos" {
		t.Errorf("expected name todos, got %q", client.Name())
	}
	if client.Serializer() == nil {
		t.Error("expected default serializer")
	}

	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, `{}`))
	derived := client.Mutate().BaseURL("https://derived.example.com").Transport(mock).Build()
	if derived.BaseURL() != "https://derived.example.com" || client.BaseURL() != "" {
		t.Errorf("Mutate must not change the source client")
	}
	if _, err := derived.Get().Retrieve(context.Background()); err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if got := mock.LastCall().Header("x-key"); got != "k" {
		t.Errorf("expected lower-cased default header carried over, got %q", got)
	}
}

func TestBuilder_Middleware(t *testing.T) {
	mock := testutil.NewMockTransport(testutil.JSONResponse(http.StatusOK, `{}`))
	var seen []string
	mw := func(name string) transport.Middleware {
		return func(next transport.Transport) transport.Transport {
			return transport.Func(func(ctx context.Context, method, uri string, opts transport.Options) (*transport.Response, error) {
				seen = append(seen, name)
				return next.Execute(ctx, method, uri, opts)
			})
		}
	}
	client, _ := newTestClient(t, mock, WithMiddleware(mw("outer"), mw("inner")))
	if _, err := client.Options().Retrieve(context.Background()); err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(seen) != 2 || seen[0] != "outer" || seen[1] != "inner" {
		t.Errorf("unexpected middleware order %v", seen)
	}
	if mock.LastCall().Method != http.MethodOptions {
		t.Errorf("expected OPTIONS, got %s", mock.LastCall().Method)
	}
}
