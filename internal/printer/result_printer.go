package printer

import (
	"fmt"
	"io"
	"time"

	"github.com/kaws-dev/gitplug/internal/cmd/output"
	"github.com/kaws-dev/gitplug/internal/domain"
)

var (
	_ output.Printer[domain.InstallResult] = (*InstallResultPrinter)(nil)
	_ output.Printer[domain.UpdateResult]  = (*UpdateResultPrinter)(nil)
	_ output.Printer[domain.CheckResult]   = (*CheckResultPrinter)(nil)
)

// InstallResultPrinter reports a fresh installation.
type InstallResultPrinter struct {
	frame[domain.InstallResult]
}

func (p *InstallResultPrinter) Item(w io.Writer, r domain.InstallResult) error {
	_, err := fmt.Fprintf(w, "✅ Installed %s %s (package version %s)\n", r.PackageName, r.DisplayVersion, r.PackageVersion)
	return err
}

// UpdateResultPrinter reports a replaced installation.
type UpdateResultPrinter struct {
	frame[domain.UpdateResult]
}

func (p *UpdateResultPrinter) Item(w io.Writer, r domain.UpdateResult) error {
	_, err := fmt.Fprintf(w, "✅ Updated %s to %s (package version %s)\n", r.PackageName, r.InstalledReference, r.PackageVersion)
	return err
}

// CheckResultPrinter reports whether a newer compatible version exists.
type CheckResultPrinter struct {
	frame[domain.CheckResult]
}

func (p *CheckResultPrinter) Item(w io.Writer, r domain.CheckResult) error {
	if r.LatestVersion == "" {
		_, err := fmt.Fprintln(w, "No compatible version found")
		return err
	}

	status := "up to date"
	if r.UpdateAvailable {
		status = "update available"
	}
	if _, err := fmt.Fprintf(w, "Latest compatible version: %s (%s)\n", r.LatestVersion, status); err != nil {
		return err
	}

	if d := r.UpdateDetail; d != nil {
		if d.Error != "" {
			_, err := fmt.Fprintf(w, "  ⚠️ %s\n", d.Error)
			return err
		}
		if d.HasUpdate {
			if _, err := fmt.Fprintf(w, "  Installed commit: %s%s\n", d.InstalledCommit, formatDate(d.InstalledDate)); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "  Latest commit:    %s%s\n", d.LatestCommit, formatDate(d.LatestDate)); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "  Commits behind:   %d\n", d.CommitsBehind); err != nil {
				return err
			}
		}
	}

	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return " (" + t.UTC().Format("2006-01-02 15:04") + ")"
}
