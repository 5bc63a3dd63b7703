package restclient

import (
	"strings"

	"github.com/kbukum/restclient/errors"
	"github.com/kbukum/restclient/uritemplate"
)

// URIResolver joins a base URL with a request path and renders the URI
// template against the merged variables. Rendering is pure: the same
// resolver renders the same string every time.
type URIResolver struct {
	template string
	defaults map[string]any
	vars     map[string]any
	expander uritemplate.ExpandFunc
}

// NewURIResolver creates a resolver for path relative to baseURL. Request
// vars override same-named defaults. expander renders templates outside the
// simple {name} subset; nil leaves such templates unrenderable.
func NewURIResolver(baseURL, path string, defaults, vars map[string]any, expander uritemplate.ExpandFunc) *URIResolver {
	return &URIResolver{
		template: joinURL(baseURL, path),
		defaults: defaults,
		vars:     vars,
		expander: expander,
	}
}

// Template returns the joined, unexpanded URI template.
func (r *URIResolver) Template() string { return r.template }

// Render expands the template. A template that needs operator expansion
// fails with CONFIGURATION when the resolver has no expander.
func (r *URIResolver) Render() (string, error) {
	if r.template == "" {
		return "/", nil
	}
	if !strings.Contains(r.template, "{") {
		return r.template, nil
	}

	vars := r.variables()
	if uritemplate.Supports(r.template) {
		return uritemplate.Expand(r.template, vars), nil
	}
	if r.expander == nil {
		return "", errors.Configuration("URI template needs an RFC 6570 expander but none is configured").
			WithDetail("template", r.template)
	}
	uri, err := r.expander(r.template, vars)
	if err != nil {
		return "", errors.InvalidInput("uri", err.Error()).WithCause(err).WithDetail("template", r.template)
	}
	return uri, nil
}

func (r *URIResolver) variables() map[string]any {
	switch {
	case len(r.defaults) > 0 && len(r.vars) > 0:
		merged := make(map[string]any, len(r.defaults)+len(r.vars))
		for k, v := range r.defaults {
			merged[k] = v
		}
		for k, v := range r.vars {
			merged[k] = v
		}
		return merged
	case len(r.vars) > 0:
		return r.vars
	default:
		return r.defaults
	}
}

// joinURL concatenates base and path, dropping one slash when base ends with
// "/" and path starts with "/".
func joinURL(base, path string) string {
	if base == "" {
		return path
	}
	if strings.HasSuffix(base, "/") && strings.HasPrefix(path, "/") {
		return base + path[1:]
	}
	return base + path
}
