package printer

import (
	"io"

	"github.com/kaws-dev/gitplug/internal/cmd/output"
)

// frame holds the optional header and footer shared by the printers in this package.
type frame[T any] struct {
	headerFunc output.WriteFunc[T]
	footerFunc output.WriteFunc[T]
}

// Header writes the configured header, if any.
func (f *frame[T]) Header(w io.Writer, count int) {
	if f.headerFunc != nil {
		f.headerFunc(w, count)
	}
}

// SetHeader configures a custom header function for the printer.
func (f *frame[T]) SetHeader(fn output.WriteFunc[T]) {
	f.headerFunc = fn
}

// Footer writes the configured footer, if any.
func (f *frame[T]) Footer(w io.Writer, count int) {
	if f.footerFunc != nil {
		f.footerFunc(w, count)
	}
}

// SetFooter configures a custom footer function for the printer.
func (f *frame[T]) SetFooter(fn output.WriteFunc[T]) {
	f.footerFunc = fn
}

func plural(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}

func orNone(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
