package serializer

import (
	"fmt"
	"sort"
	"sync"
)

// Context carries serialization options keyed by name.
type Context map[string]any

// Recognized context keys.
const (
	// DisallowUnknownFields rejects payload fields the target does not declare.
	DisallowUnknownFields = "disallow_unknown_fields"
	// UseNumber decodes JSON numbers into untyped targets as json.Number.
	UseNumber = "use_number"
	// Indent pretty-prints encoded payloads with the given string.
	Indent = "indent"
)

// Merge returns a new Context holding base overlaid by override; keys in
// override win.
func Merge(base, override Context) Context {
	out := make(Context, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}

// Bool returns the boolean option stored under key.
func (c Context) Bool(key string) bool {
	v, _ := c[key].(bool)
	return v
}

// String returns the string option stored under key.
func (c Context) String(key string) string {
	v, _ := c[key].(string)
	return v
}

// Serializer encodes and decodes payloads in a named format.
type Serializer interface {
	// Serialize encodes data in the given format.
	Serialize(data any, format string, ctx Context) ([]byte, error)
	// Deserialize decodes data in the given format into target, which must
	// be a non-nil pointer (*T for an entity, *[]T for a collection).
	Deserialize(data []byte, target any, format string, ctx Context) error
}

// Codec encodes and decodes a single format.
type Codec interface {
	Marshal(v any, ctx Context) ([]byte, error)
	Unmarshal(data []byte, target any, ctx Context) error
}

// Registry is a Serializer dispatching to codecs by format tag.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec
}

// compile-time assertion
var _ Serializer = (*Registry)(nil)

// New creates a Registry with the json, yaml and xml codecs registered.
func New() *Registry {
	r := NewRegistry()
	r.Register("json", JSONCodec{})
	r.Register("yaml", YAMLCodec{})
	r.Register("yml", YAMLCodec{})
	r.Register("xml", XMLCodec{})
	return r
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// Register adds or replaces the codec for a format.
func (r *Registry) Register(format string, c Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[format] = c
}

// Formats returns the registered format tags, sorted.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]string, 0, len(r.codecs))
	for f := range r.codecs {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}

// Serialize implements Serializer.
func (r *Registry) Serialize(data any, format string, ctx Context) ([]byte, error) {
	c, err := r.codec(format)
	if err != nil {
		return nil, err
	}
	return c.Marshal(data, ctx)
}

// Deserialize implements Serializer.
func (r *Registry) Deserialize(data []byte, target any, format string, ctx Context) error {
	c, err := r.codec(format)
	if err != nil {
		return err
	}
	return c.Unmarshal(data, target, ctx)
}

func (r *Registry) codec(format string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.codecs[format]
	if !ok {
		return nil, fmt.Errorf("serializer: unsupported format %q", format)
	}
	return c, nil
}
