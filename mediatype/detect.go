package mediatype

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kbukum/restclient/errors"
)

// Common media types.
const (
	ApplicationJSON = "application/json"
	ApplicationXML  = "application/xml"
	ApplicationYAML = "application/yaml"
	TextPlain       = "text/plain"
)

// FormatJSON is the format tag used for JSON payloads.
const FormatJSON = "json"

// aliases covers media types whose format the MIME table does not know or
// maps to a less useful extension.
var aliases = map[string]string{
	"application/xml":    "xml",
	"text/xml":           "xml",
	"application/yaml":   "yaml",
	"application/x-yaml": "yaml",
	"text/yaml":          "yaml",
	"text/x-yaml":        "yaml",
}

// DetectFormat returns the format tag for a Content-Type value.
//
// Values starting with application/json resolve to "json" without any table
// lookup. Otherwise parameters after ';' are dropped and the base type is
// resolved through structured-syntax suffixes (+json, +xml, +yaml) and the
// MIME table, returning its first known extension without the dot.
func DetectFormat(contentType string) (string, bool) {
	if strings.HasPrefix(contentType, ApplicationJSON) {
		return FormatJSON, true
	}

	base := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	if base == "" {
		return "", false
	}
	if format, ok := aliases[base]; ok {
		return format, true
	}
	if i := strings.LastIndexByte(base, '+'); i > 0 {
		switch base[i+1:] {
		case "json":
			return FormatJSON, true
		case "xml":
			return "xml", true
		case "yaml":
			return "yaml", true
		}
	}

	m := mimetype.Lookup(base)
	if m == nil || m.Extension() == "" {
		return "", false
	}
	return strings.TrimPrefix(m.Extension(), "."), true
}

// HeaderGetter exposes response headers. transport.Response satisfies it.
type HeaderGetter interface {
	Header(name string) string
	HasHeader(name string) bool
}

// DetectFormatFromResponse derives the format from a response's
// Content-Type header. A missing header is an error, never a JSON fallback.
func DetectFormatFromResponse(resp HeaderGetter) (string, error) {
	if !resp.HasHeader("content-type") {
		return "", errors.UnknownContentType("")
	}
	contentType := resp.Header("content-type")
	format, ok := DetectFormat(contentType)
	if !ok {
		return "", errors.UnknownContentType(contentType)
	}
	return format, nil
}
