package output

import "io"

// encodeFunc writes a single payload document to w.
type encodeFunc func(w io.Writer, payload any) error

// structuredHandler wraps results and errors in their payload types and hands them to an encoder.
// Errors are rendered rather than returned, so scripted callers always receive a parseable document.
type structuredHandler[T any] struct {
	out    io.Writer
	encode encodeFunc
}

// Writer returns the underlying io.Writer payloads are encoded to.
func (h *structuredHandler[T]) Writer() io.Writer {
	return h.out
}

// HandleResult encodes the given item under a "result" key.
func (h *structuredHandler[T]) HandleResult(item T) error {
	return h.encode(h.out, ResultPayload[T]{Result: item})
}

// HandleResults encodes the given items under a "results" key.
func (h *structuredHandler[T]) HandleResults(items ...T) error {
	return h.encode(h.out, ResultsPayload[T]{Results: items})
}

// HandleError encodes the error message under an "error" key.
func (h *structuredHandler[T]) HandleError(err error) error {
	return h.encode(h.out, ErrorPayload{Error: err.Error()})
}
