// Package uritemplate expands URI templates.
//
// The built-in expander handles the common case of plain {name}
// placeholders with purely textual substitution:
//
//	uritemplate.Expand("/todos/{id}", map[string]any{"id": 1}) // "/todos/1"
//
// Templates using RFC 6570 operator expressions ({+path}, {?q,page},
// {#frag}, ...) are not supported by Expand; Supports reports which
// templates it can handle and RFC6570 performs full expansion for the rest.
package uritemplate
