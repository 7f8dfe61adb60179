package validation

import "strings"

// Errors lists every failed rule of a request, one message per field.
type Errors []string

func (e Errors) Error() string {
	return strings.Join(e, "; ")
}
