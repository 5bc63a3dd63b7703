package serializer

import (
	"bytes"
	"encoding/xml"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// JSONCodec encodes JSON with goccy/go-json.
type JSONCodec struct{}

// Marshal implements Codec.
func (JSONCodec) Marshal(v any, ctx Context) ([]byte, error) {
	if indent := ctx.String(Indent); indent != "" {
		return json.MarshalIndent(v, "", indent)
	}
	return json.Marshal(v)
}

// Unmarshal implements Codec.
func (JSONCodec) Unmarshal(data []byte, target any, ctx Context) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if ctx.Bool(DisallowUnknownFields) {
		dec.DisallowUnknownFields()
	}
	if ctx.Bool(UseNumber) {
		dec.UseNumber()
	}
	return dec.Decode(target)
}

// YAMLCodec encodes YAML with gopkg.in/yaml.v3.
type YAMLCodec struct{}

// Marshal implements Codec.
func (YAMLCodec) Marshal(v any, _ Context) ([]byte, error) {
	return yaml.Marshal(v)
}

// Unmarshal implements Codec.
func (YAMLCodec) Unmarshal(data []byte, target any, ctx Context) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(ctx.Bool(DisallowUnknownFields))
	return dec.Decode(target)
}

// XMLCodec encodes XML with encoding/xml.
type XMLCodec struct{}

// Marshal implements Codec.
func (XMLCodec) Marshal(v any, ctx Context) ([]byte, error) {
	if indent := ctx.String(Indent); indent != "" {
		return xml.MarshalIndent(v, "", indent)
	}
	return xml.Marshal(v)
}

// Unmarshal implements Codec.
func (XMLCodec) Unmarshal(data []byte, target any, _ Context) error {
	return xml.Unmarshal(data, target)
}
