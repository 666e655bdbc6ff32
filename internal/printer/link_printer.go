package printer

import (
	"fmt"
	"io"
	"time"

	"github.com/kaws-dev/gitplug/internal/cmd/output"
	"github.com/kaws-dev/gitplug/internal/linkage"
)

var _ output.Printer[linkage.Record] = (*LinkPrinter)(nil)

// LinkPrinter writes where each installed package came from.
type LinkPrinter struct {
	frame[linkage.Record]
}

func NewLinkPrinter() *LinkPrinter {
	p := &LinkPrinter{}
	p.SetFooter(func(w io.Writer, count int) {
		_, _ = fmt.Fprintf(w, "\n%d linked package%s\n", count, plural(count))
	})
	return p
}

func (p *LinkPrinter) Item(w io.Writer, r linkage.Record) error {
	commit := orNone(r.InstalledCommit)
	if len(commit) > 7 {
		commit = commit[:7]
	}

	_, err := fmt.Fprintf(w,
		"%s\n  Source:    %s\n  Reference: %s (%s)\n  Version:   %s\n  Updated:   %s\n",
		r.PackageName,
		r.SourceURL,
		r.InstalledReference,
		commit,
		orNone(r.PackageVersion),
		r.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}
