package installer

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kaws-dev/gitplug/internal/errors"
	"github.com/kaws-dev/gitplug/internal/files"
	"github.com/kaws-dev/gitplug/internal/perms"
)

// extract unpacks the archive into dir and returns the archive's top-level folder name,
// taken from the first entry.
func extract(archivePath string, dir string) (string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrCorruptArchive, err)
	}
	defer func() { _ = r.Close() }()

	if len(r.File) == 0 {
		return "", fmt.Errorf("%w: archive has no entries", errors.ErrCorruptArchive)
	}

	topFolder := topLevel(r.File[0].Name)
	if topFolder == "" || topFolder == "." || topFolder == ".." {
		return "", fmt.Errorf("%w: invalid first entry '%s'", errors.ErrCorruptArchive, r.File[0].Name)
	}

	for _, f := range r.File {
		if err := extractFile(f, dir); err != nil {
			return "", err
		}
	}

	return topFolder, nil
}

func topLevel(name string) string {
	name = strings.TrimLeft(strings.TrimRight(name, "/"), "/")
	first, _, _ := strings.Cut(name, "/")
	return first
}

func extractFile(f *zip.File, dir string) error {
	dest := filepath.Join(dir, filepath.FromSlash(f.Name))

	ok, err := files.Within(dir, dest)
	if err != nil || !ok {
		return fmt.Errorf("%w: entry '%s' escapes the extraction directory", errors.ErrCorruptArchive, f.Name)
	}

	mode := f.Mode()
	switch {
	case mode.IsDir():
		return os.MkdirAll(dest, perms.RegularDir)
	case !mode.IsRegular():
		// Symlinks and other special entries are not extracted.
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), perms.RegularDir); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: entry '%s': %w", errors.ErrCorruptArchive, f.Name, err)
	}
	defer func() { _ = src.Close() }()

	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perms.RegularFile)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return fmt.Errorf("%w: entry '%s': %w", errors.ErrCorruptArchive, f.Name, err)
	}

	return out.Close()
}
