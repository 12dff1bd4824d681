// Package validate holds the field rules shared by every form step. Each
// rule returns nil or an error whose message is fit for display next to the
// offending input.
package validate

import (
	"maps"
	"slices"
	"strings"
)

// Errors maps a field name to a display message. A nil or empty Errors means
// the checked fields are valid.
type Errors map[string]string

// Check records err against field. It keeps the first message per field.
func (e Errors) Check(field string, err error) {
	if err == nil {
		return
	}
	if _, exists := e[field]; !exists {
		e[field] = err.Error()
	}
}

// Merge copies entries from other that e does not have yet.
func (e Errors) Merge(other Errors) {
	for field, msg := range other {
		if _, exists := e[field]; !exists {
			e[field] = msg
		}
	}
}

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e Errors) Empty() bool { return len(e) == 0 }

// Fields returns the failing field names in sorted order.
func (e Errors) Fields() []string {
	return slices.Sorted(maps.Keys(e))
}

// Error makes Errors usable as an error at API boundaries.
func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range e.Fields() {
		parts = append(parts, field+": "+e[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
