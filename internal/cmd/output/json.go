package output

import (
	"encoding/json"
	"io"
	"strings"
)

var _ Handler[any] = (*JSONHandler[any])(nil)

// JSONHandler writes JSON for both data and errors, honoring struct tags.
type JSONHandler[T any] struct {
	structuredHandler[T]
}

// NewJSONHandler constructs a new JSONHandler for items of type T.
// indentSpaces controls the indentation of nested values, zero writes compact JSON.
func NewJSONHandler[T any](w io.Writer, indentSpaces int) *JSONHandler[T] {
	indent := strings.Repeat(" ", indentSpaces)

	return &JSONHandler[T]{
		structuredHandler: structuredHandler[T]{
			out: w,
			encode: func(w io.Writer, payload any) error {
				enc := json.NewEncoder(w)
				enc.SetIndent("", indent)
				return enc.Encode(payload)
			},
		},
	}
}
