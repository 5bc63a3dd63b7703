package exchange

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/kbukum/restclient/errors"
)

// Struct tags read by Bind.
const (
	TagExchange    = "exchange"
	TagParams      = "params"
	TagAccept      = "accept"
	TagCharset     = "charset"
	TagContentType = "content-type"

	// BodyParam names the parameter sent as the request body.
	BodyParam = "body"
)

// returnShape is how a response becomes the method results.
type returnShape int

const (
	returnEntity returnShape = iota
	returnCollection
	returnBool
	returnError
)

// methodPlan is the dispatch entry for one bound field.
type methodPlan struct {
	field       int
	name        string
	fnType      reflect.Type
	method      string
	uri         string
	params      []string
	bodyIndex   int
	accept      []string
	charset     []string
	contentType string
	shape       returnShape
	elemType    reflect.Type
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
	boolType    = reflect.TypeOf(false)
)

// plans caches the dispatch table per struct type.
var plans sync.Map

func plansFor(t reflect.Type) ([]methodPlan, error) {
	if cached, ok := plans.Load(t); ok {
		return cached.([]methodPlan), nil
	}
	built, err := buildPlans(t)
	if err != nil {
		return nil, err
	}
	actual, _ := plans.LoadOrStore(t, built)
	return actual.([]methodPlan), nil
}

func buildPlans(t reflect.Type) ([]methodPlan, error) {
	var out []methodPlan
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag, ok := f.Tag.Lookup(TagExchange)
		if !ok {
			continue
		}
		if !f.IsExported() {
			return nil, planError(t, f.Name, "field must be exported")
		}
		if f.Type.Kind() != reflect.Func {
			return nil, planError(t, f.Name, "field must be a func")
		}
		p, err := buildPlan(f, tag)
		if err != nil {
			return nil, planError(t, f.Name, err.Error())
		}
		p.field = i
		out = append(out, p)
	}
	return out, nil
}

func buildPlan(f reflect.StructField, tag string) (methodPlan, error) {
	p := methodPlan{name: f.Name, fnType: f.Type, bodyIndex: -1}

	method, uri, _ := strings.Cut(strings.TrimSpace(tag), " ")
	p.method = strings.ToUpper(method)
	p.uri = strings.TrimSpace(uri)
	switch p.method {
	case http.MethodGet, http.MethodDelete, http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return p, fmt.Errorf("unsupported method %q", method)
	}
	if p.uri == "" {
		p.uri = "/"
	}

	ft := f.Type
	if ft.IsVariadic() {
		return p, fmt.Errorf("variadic funcs are not supported")
	}
	if ft.NumIn() == 0 || ft.In(0) != contextType {
		return p, fmt.Errorf("first parameter must be context.Context")
	}

	if params := f.Tag.Get(TagParams); params != "" {
		for _, name := range strings.Split(params, ",") {
			p.params = append(p.params, strings.TrimSpace(name))
		}
	}
	if len(p.params) != ft.NumIn()-1 {
		return p, fmt.Errorf("params tag names %d parameters, func takes %d after the context", len(p.params), ft.NumIn()-1)
	}
	for i, name := range p.params {
		if name == "" {
			return p, fmt.Errorf("parameter %d has no name", i+1)
		}
		if name != BodyParam {
			continue
		}
		if p.bodyIndex >= 0 {
			return p, fmt.Errorf("more than one body parameter")
		}
		if !hasBody(p.method) {
			return p, fmt.Errorf("%s does not take a body", p.method)
		}
		p.bodyIndex = i + 1
	}

	p.accept = splitList(f.Tag.Get(TagAccept))
	p.charset = splitList(f.Tag.Get(TagCharset))
	p.contentType = f.Tag.Get(TagContentType)

	shape, elem, err := resultShape(ft)
	if err != nil {
		return p, err
	}
	p.shape, p.elemType = shape, elem
	return p, nil
}

func resultShape(ft reflect.Type) (returnShape, reflect.Type, error) {
	switch ft.NumOut() {
	case 1:
		if ft.Out(0) == errorType {
			return returnError, nil, nil
		}
	case 2:
		if ft.Out(1) != errorType {
			break
		}
		out := ft.Out(0)
		switch {
		case out == boolType:
			return returnBool, nil, nil
		case out.Kind() == reflect.Pointer:
			return returnEntity, out.Elem(), nil
		case out.Kind() == reflect.Slice:
			return returnCollection, out, nil
		}
	}
	return 0, nil, fmt.Errorf("unsupported results %s: want (*T, error), ([]T, error), (bool, error) or error", ft)
}

func hasBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func planError(t reflect.Type, field, reason string) error {
	return errors.Configuration(fmt.Sprintf("exchange: %s.%s: %s", t.Name(), field, reason)).
		WithDetail("field", field)
}
