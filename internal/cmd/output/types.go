package output

import "io"

// Handler renders command results of type T in one output format.
type Handler[T any] interface {
	// Writer returns the io.Writer this Handler will write to.
	Writer() io.Writer

	// HandleResult renders a single result, such as the outcome of an install.
	HandleResult(item T) error

	// HandleResults renders a list of results, such as compatible versions.
	HandleResults(items ...T) error

	// HandleError renders err, or returns it when the format has no error representation.
	HandleError(err error) error
}

// WriteFunc writes a header or footer for a list of count items.
type WriteFunc[T any] func(w io.Writer, count int)

// Printer renders items of type T as human-readable text.
type Printer[T any] interface {
	// Header is called once before the first Item.
	Header(w io.Writer, count int)

	// SetHeader replaces the Header function, nil disables it.
	SetHeader(fn WriteFunc[T])

	// Item prints one element.
	Item(w io.Writer, elem T) error

	// Footer is called once after the last Item.
	Footer(w io.Writer, count int)

	// SetFooter replaces the Footer function, nil disables it.
	SetFooter(fn WriteFunc[T])
}

// ResultsPayload wraps a list of results under the "results" key.
type ResultsPayload[T any] struct {
	Results []T `json:"results" yaml:"results"`
}

// ResultPayload wraps a single result under the "result" key.
type ResultPayload[T any] struct {
	Result T `json:"result" yaml:"result"`
}

// ErrorPayload carries a failed command's message under the "error" key.
type ErrorPayload struct {
	Error string `json:"error" yaml:"error"`
}
