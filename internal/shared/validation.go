package shared

import (
	"sort"
	"strings"
)

// FieldErrors carries per-field validation messages back to the form.
// A non-empty FieldErrors means the request performed no writes.
type FieldErrors map[string]string

// Error implements the error interface.
func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// Any reports whether at least one field failed.
func (e FieldErrors) Any() bool {
	return len(e) > 0
}
