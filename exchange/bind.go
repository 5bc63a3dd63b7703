package exchange

import (
	"context"
	"net/http"
	"reflect"

	"github.com/kbukum/restclient"
	"github.com/kbukum/restclient/errors"
)

// Bind sets every `exchange`-tagged func field of target, a pointer to a
// struct, to a function issuing the described request through client.
// Untagged fields are left alone. The dispatch table is built once per
// struct type.
func Bind(target any, client *restclient.Client) error {
	if client == nil {
		return errors.Configuration("exchange: nil client")
	}
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return errors.Configuration("exchange: target must be a non-nil pointer to a struct").
			WithDetail("type", reflect.TypeOf(target).String())
	}

	s := v.Elem()
	methods, err := plansFor(s.Type())
	if err != nil {
		return err
	}
	for i := range methods {
		p := &methods[i]
		s.Field(p.field).Set(reflect.MakeFunc(p.fnType, func(args []reflect.Value) []reflect.Value {
			return p.call(client, args)
		}))
	}
	return nil
}

// call runs one bound method and converts the response to its results.
func (p *methodPlan) call(client *restclient.Client, args []reflect.Value) []reflect.Value {
	ctx := context.Background()
	if c, ok := args[0].Interface().(context.Context); ok && c != nil {
		ctx = c
	}

	resp, err := p.issue(ctx, client, args)
	if err != nil {
		return p.fail(err)
	}

	switch p.shape {
	case returnEntity:
		target := reflect.New(p.elemType)
		if _, err := resp.AsEntity(target.Interface()); err != nil {
			return p.fail(err)
		}
		return []reflect.Value{target, reflect.Zero(errorType)}
	case returnCollection:
		target := reflect.New(p.elemType)
		if _, err := resp.AsEntity(target.Interface()); err != nil {
			return p.fail(err)
		}
		return []reflect.Value{target.Elem(), reflect.Zero(errorType)}
	case returnBool:
		return []reflect.Value{reflect.ValueOf(resp.IsSuccess()), reflect.Zero(errorType)}
	default:
		if !resp.IsSuccess() {
			_, err := restclient.StatusError(resp.Response(), client.Serializer())
			return p.fail(err)
		}
		return []reflect.Value{reflect.Zero(errorType)}
	}
}

func (p *methodPlan) issue(ctx context.Context, client *restclient.Client, args []reflect.Value) (*restclient.ResponseSpec, error) {
	vars := make(map[string]any, len(p.params))
	for i, name := range p.params {
		if i+1 != p.bodyIndex {
			vars[name] = args[i+1].Interface()
		}
	}

	if !hasBody(p.method) {
		var spec *restclient.RequestSpec
		if p.method == http.MethodDelete {
			spec = client.Delete()
		} else {
			spec = client.Get()
		}
		spec.URI(p.uri, vars)
		if len(p.accept) > 0 {
			spec.Accept(p.accept...)
		}
		if len(p.charset) > 0 {
			spec.AcceptCharset(p.charset...)
		}
		return spec.Retrieve(ctx)
	}

	var spec *restclient.RequestBodySpec
	switch p.method {
	case http.MethodPut:
		spec = client.Put()
	case http.MethodPatch:
		spec = client.Patch()
	default:
		spec = client.Post()
	}
	spec.URI(p.uri, vars)
	if len(p.accept) > 0 {
		spec.Accept(p.accept...)
	}
	if len(p.charset) > 0 {
		spec.AcceptCharset(p.charset...)
	}
	if p.contentType != "" {
		spec.ContentType(p.contentType)
	}
	if p.bodyIndex > 0 && !isNil(args[p.bodyIndex]) {
		spec.Body(args[p.bodyIndex].Interface())
	}
	return spec.Retrieve(ctx)
}

// fail returns zero results with err in the error position.
func (p *methodPlan) fail(err error) []reflect.Value {
	out := make([]reflect.Value, p.fnType.NumOut())
	for i := range out {
		out[i] = reflect.Zero(p.fnType.Out(i))
	}
	out[len(out)-1] = reflect.ValueOf(&err).Elem()
	return out
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
