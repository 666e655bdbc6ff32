package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

var _ Handler[any] = (*YAMLHandler[any])(nil)

// YAMLHandler writes YAML for both data and errors, honoring struct tags.
type YAMLHandler[T any] struct {
	structuredHandler[T]
}

// NewYAMLHandler constructs a new YAMLHandler for items of type T.
// indentSpaces controls the number of spaces to indent nested nodes.
func NewYAMLHandler[T any](w io.Writer, indentSpaces int) *YAMLHandler[T] {
	return &YAMLHandler[T]{
		structuredHandler: structuredHandler[T]{
			out: w,
			encode: func(w io.Writer, payload any) error {
				enc := yaml.NewEncoder(w)
				enc.SetIndent(indentSpaces)
				if err := enc.Encode(payload); err != nil {
					_ = enc.Close()
					return err
				}
				// Close flushes the document.
				return enc.Close()
			},
		},
	}
}
