package printer

import (
	"fmt"
	"io"

	"github.com/kaws-dev/gitplug/internal/cmd/output"
	"github.com/kaws-dev/gitplug/internal/resolver"
)

var _ output.Printer[resolver.ResolvedVersion] = (*VersionPrinter)(nil)

// VersionPrinter writes one line per compatible version, best first.
type VersionPrinter struct {
	frame[resolver.ResolvedVersion]
}

// NewVersionPrinter returns a VersionPrinter with the default header and footer.
func NewVersionPrinter() *VersionPrinter {
	p := &VersionPrinter{}
	p.SetHeader(func(w io.Writer, count int) {
		_, _ = fmt.Fprintf(w, "Compatible versions (%d):\n", count)
	})
	p.SetFooter(func(w io.Writer, _ int) {
		_, _ = fmt.Fprintln(w, "\nInstall one with: gitplug install <url> --version '<label>'")
	})
	return p
}

// Item writes the label of a version followed by its kind and declared requirement.
func (p *VersionPrinter) Item(w io.Writer, v resolver.ResolvedVersion) error {
	line := fmt.Sprintf("  %-32s %-6s", v.Label, v.Kind)
	if v.Requirement != nil {
		line += fmt.Sprintf(" requires %s", *v.Requirement)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
