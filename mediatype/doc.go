// Package mediatype maps Content-Type header values to serialization
// format tags such as "json", "xml" or "yaml".
package mediatype
