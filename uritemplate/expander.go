package uritemplate

import (
	"fmt"
	"regexp"
	"strings"
)

// reservedPrefixes are the RFC 6570 operator characters. A placeholder
// starting with one of them is an operator expression.
const reservedPrefixes = "#+./;?&,!@|="

var placeholderPattern = regexp.MustCompile(`\{([^}]*)\}`)

// ExpandFunc expands a template against a set of variables.
type ExpandFunc func(template string, vars map[string]any) (string, error)

// Supports reports whether the template contains at least one placeholder
// that the built-in expander can substitute: a name that does not start
// with a reserved operator character and does not list several variables.
func Supports(template string) bool {
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		if isSimpleName(m[1]) {
			return true
		}
	}
	return false
}

// Expand substitutes every {name} placeholder, left to right, with the
// string form of vars[name]. Missing variables expand to the empty string.
// No percent-encoding is applied.
func Expand(template string, vars map[string]any) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(placeholder string) string {
		name := placeholder[1 : len(placeholder)-1]
		v, ok := vars[name]
		if !ok || v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
}

// Simple adapts Expand to an ExpandFunc.
func Simple(template string, vars map[string]any) (string, error) {
	return Expand(template, vars), nil
}

func isSimpleName(name string) bool {
	if name == "" {
		return true
	}
	if strings.ContainsRune(reservedPrefixes, rune(name[0])) {
		return false
	}
	return !strings.Contains(name, ",")
}
