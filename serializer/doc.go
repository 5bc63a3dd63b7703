// Package serializer converts between wire bytes and Go values.
//
// A Serializer picks a Codec by format tag ("json", "xml", "yaml") and
// passes it a Context of options. The default registry knows json
// (goccy/go-json), yaml (gopkg.in/yaml.v3) and xml.
//
//	s := serializer.New()
//	data, err := s.Serialize(todo, "json", nil)
//	var out Todo
//	err = s.Deserialize(data, &out, "json", serializer.Context{serializer.DisallowUnknownFields: true})
package serializer
