package uritemplate

import (
	"fmt"
	"sort"

	"github.com/yosida95/uritemplate/v3"
)

// RFC6570 expands a template following RFC 6570 level 4, including operator
// expressions and percent-encoding. Scalars are expanded through fmt.Sprint;
// []string and []any expand as lists; map[string]string and map[string]any
// expand as associative arrays.
func RFC6570(template string, vars map[string]any) (string, error) {
	tmpl, err := uritemplate.New(template)
	if err != nil {
		return "", fmt.Errorf("uritemplate: parse %q: %w", template, err)
	}

	values := make(uritemplate.Values, len(vars))
	for name, v := range vars {
		if value, ok := toValue(v); ok {
			values.Set(name, value)
		}
	}

	out, err := tmpl.Expand(values)
	if err != nil {
		return "", fmt.Errorf("uritemplate: expand %q: %w", template, err)
	}
	return out, nil
}

func toValue(v any) (uritemplate.Value, bool) {
	switch val := v.(type) {
	case nil:
		return uritemplate.Value{}, false
	case string:
		return uritemplate.String(val), true
	case []string:
		return uritemplate.List(val...), true
	case []any:
		items := make([]string, 0, len(val))
		for _, item := range val {
			items = append(items, fmt.Sprint(item))
		}
		return uritemplate.List(items...), true
	case map[string]string:
		return uritemplate.KV(flatten(val)...), true
	case map[string]any:
		m := make(map[string]string, len(val))
		for k, item := range val {
			m[k] = fmt.Sprint(item)
		}
		return uritemplate.KV(flatten(m)...), true
	default:
		return uritemplate.String(fmt.Sprint(val)), true
	}
}

// flatten turns a map into ordered key/value pairs; keys are sorted so the
// expansion is stable.
func flatten(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]string, 0, len(m)*2)
	for _, k := range keys {
		kv = append(kv, k, m[k])
	}
	return kv
}
