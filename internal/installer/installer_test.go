package installer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kaws-dev/gitplug/internal/errors"
	"github.com/kaws-dev/gitplug/internal/github/githubtest"
)

const widgetComposer = `{
	"name": "acme/widget",
	"version": "1.2.0",
	"extra": {"shopware-plugin-class": "Acme\\Widget\\AcmeWidget"}
}`

func writeArchive(t *testing.T, entries ...githubtest.Entry) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "archive.zip")
	require.NoError(t, os.WriteFile(path, githubtest.Zip(t, entries...), 0o644))

	return path
}

func newTestInstaller(t *testing.T) *Installer {
	t.Helper()

	i, err := NewInstaller(hclog.NewNullLogger())
	require.NoError(t, err)

	return i
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()

	des, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(des))
	for _, de := range des {
		names = append(names, de.Name())
	}
	return names
}

func TestInstaller_Install_Fresh(t *testing.T) {
	t.Parallel()

	archive := writeArchive(t,
		githubtest.Entry{Name: "acme-widget-1a2b3c/"},
		githubtest.Entry{Name: "acme-widget-1a2b3c/composer.json", Content: widgetComposer},
		githubtest.Entry{Name: "acme-widget-1a2b3c/src/AcmeWidget.php", Content: "<?php"},
	)
	root := t.TempDir()

	id, err := newTestInstaller(t).Install(archive, root, "", ModeFresh)
	require.NoError(t, err)
	require.Equal(t, "AcmeWidget", id.Name)
	require.NotNil(t, id.Version)
	require.Equal(t, "1.2.0", *id.Version)
	require.Equal(t, filepath.Join(root, "AcmeWidget"), id.Path)

	require.Equal(t, []string{"AcmeWidget"}, dirEntries(t, root))
	require.FileExists(t, filepath.Join(root, "AcmeWidget", "src", "AcmeWidget.php"))
}

func TestInstaller_Install_DescriptorFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		entries     []githubtest.Entry
		wantName    string
		wantVersion string
	}{
		{
			name: "descriptor only",
			entries: []githubtest.Entry{
				{Name: "pkg/"},
				{Name: "pkg/plugin.xml", Content: "<plugin><name>LegacyWidget</name><version>0.9.0</version></plugin>"},
			},
			wantName:    "LegacyWidget",
			wantVersion: "0.9.0",
		},
		{
			name: "manifest without class",
			entries: []githubtest.Entry{
				{Name: "pkg/"},
				{Name: "pkg/composer.json", Content: `{"name": "acme/legacy", "version": "1.0.0"}`},
				{Name: "pkg/plugin.xml", Content: "<plugin><name>LegacyWidget</name><version>0.9.0</version></plugin>"},
			},
			wantName:    "LegacyWidget",
			wantVersion: "1.0.0",
		},
		{
			name: "manifest class with descriptor version",
			entries: []githubtest.Entry{
				{Name: "pkg/"},
				{Name: "pkg/composer.json", Content: `{"extra": {"shopware-plugin-class": "Acme\\AcmeWidget"}}`},
				{Name: "pkg/plugin.xml", Content: "<plugin><name>Other</name><version>3.0.0</version></plugin>"},
			},
			wantName:    "AcmeWidget",
			wantVersion: "3.0.0",
		},
		{
			name: "unreadable manifest",
			entries: []githubtest.Entry{
				{Name: "pkg/"},
				{Name: "pkg/composer.json", Content: `{"extra": `},
				{Name: "pkg/plugin.xml", Content: "<plugin><name>LegacyWidget</name></plugin>"},
			},
			wantName: "LegacyWidget",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			id, err := newTestInstaller(t).Install(writeArchive(t, tc.entries...), root, "", ModeFresh)
			require.NoError(t, err)
			require.Equal(t, tc.wantName, id.Name)
			if tc.wantVersion == "" {
				require.Nil(t, id.Version)
			} else {
				require.Equal(t, tc.wantVersion, *id.Version)
			}
			require.DirExists(t, filepath.Join(root, tc.wantName))
		})
	}
}

func TestInstaller_Install_IdentityUnresolvedLeavesNoResidue(t *testing.T) {
	t.Parallel()

	archive := writeArchive(t,
		githubtest.Entry{Name: "pkg/"},
		githubtest.Entry{Name: "pkg/composer.json", Content: `{"name": "acme/widget"}`},
		githubtest.Entry{Name: "pkg/README.md", Content: "hello"},
	)
	root := t.TempDir()

	_, err := newTestInstaller(t).Install(archive, root, "", ModeFresh)
	require.ErrorIs(t, err, apperrors.ErrIdentityUnresolved)
	require.Empty(t, dirEntries(t, root))
}

func TestInstaller_Install_AlreadyInstalled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	existing := filepath.Join(root, "AcmeWidget")
	require.NoError(t, os.MkdirAll(existing, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(existing, "marker"), []byte("old"), 0o644))

	archive := writeArchive(t,
		githubtest.Entry{Name: "AcmeWidget/"},
		githubtest.Entry{Name: "AcmeWidget/composer.json", Content: widgetComposer},
		githubtest.Entry{Name: "AcmeWidget/new-file", Content: "new"},
	)

	_, err := newTestInstaller(t).Install(archive, root, "", ModeFresh)
	require.ErrorIs(t, err, apperrors.ErrAlreadyInstalled)

	require.Equal(t, []string{"AcmeWidget"}, dirEntries(t, root))
	require.Equal(t, []string{"marker"}, dirEntries(t, existing))
	data, err := os.ReadFile(filepath.Join(existing, "marker"))
	require.NoError(t, err)
	require.Equal(t, "old", string(data))
}

func TestInstaller_Install_UpdateReplaces(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	existing := filepath.Join(root, "AcmeWidget")
	require.NoError(t, os.MkdirAll(existing, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(existing, "stale"), []byte("old"), 0o644))

	archive := writeArchive(t,
		githubtest.Entry{Name: "acme-widget-abc/"},
		githubtest.Entry{Name: "acme-widget-abc/composer.json", Content: widgetComposer},
		githubtest.Entry{Name: "acme-widget-abc/fresh", Content: "new"},
	)

	id, err := newTestInstaller(t).Install(archive, root, "AcmeWidget", ModeUpdate)
	require.NoError(t, err)
	require.Equal(t, existing, id.Path)

	require.Equal(t, []string{"AcmeWidget"}, dirEntries(t, root))
	require.NoFileExists(t, filepath.Join(existing, "stale"))
	require.FileExists(t, filepath.Join(existing, "fresh"))
}

func TestInstaller_Place_RemoveFailureIsLogged(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	i, err := NewInstaller(hclog.New(&hclog.LoggerOptions{Output: &buf, Level: hclog.Error}))
	require.NoError(t, err)

	root := t.TempDir()
	extracted := filepath.Join(root, "extracted")
	require.NoError(t, os.Mkdir(extracted, 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(root, "AcmeWidget"), 0o755))

	// RemoveAll rejects paths ending in "." without touching them.
	target := filepath.Join(root, "AcmeWidget") + string(filepath.Separator) + "."

	err = i.place(extracted, target, ModeUpdate)
	require.ErrorContains(t, err, "failed to remove previous package")
	require.Contains(t, buf.String(), "Failed to remove previous package")
	require.Contains(t, buf.String(), target)
	require.DirExists(t, extracted)
}

func TestInstaller_Install_UpdateUsesExpectedSpelling(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	archive := writeArchive(t,
		githubtest.Entry{Name: "pkg/"},
		githubtest.Entry{Name: "pkg/composer.json", Content: widgetComposer},
	)

	id, err := newTestInstaller(t).Install(archive, root, "acmewidget", ModeUpdate)
	require.NoError(t, err)
	require.Equal(t, "AcmeWidget", id.Name)
	require.Equal(t, filepath.Join(root, "acmewidget"), id.Path)
	require.DirExists(t, id.Path)
}

func TestInstaller_Install_IdentityMismatch(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	existing := filepath.Join(root, "Foo")
	require.NoError(t, os.MkdirAll(existing, 0o755))

	archive := writeArchive(t,
		githubtest.Entry{Name: "pkg/"},
		githubtest.Entry{Name: "pkg/plugin.xml", Content: "<plugin><name>Bar</name></plugin>"},
	)

	_, err := newTestInstaller(t).Install(archive, root, "Foo", ModeUpdate)
	require.ErrorIs(t, err, apperrors.ErrIdentityMismatch)
	require.ErrorContains(t, err, "'Bar'")
	require.Equal(t, []string{"Foo"}, dirEntries(t, root))
}

func TestInstaller_Install_CorruptArchives(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		archive func(t *testing.T) string
		wantErr error
	}{
		{
			name: "not a zip",
			archive: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "archive.zip")
				require.NoError(t, os.WriteFile(path, []byte("<html>rate limited</html>"), 0o644))
				return path
			},
			wantErr: apperrors.ErrCorruptArchive,
		},
		{
			name:    "no entries",
			archive: func(t *testing.T) string { return writeArchive(t) },
			wantErr: apperrors.ErrCorruptArchive,
		},
		{
			name: "entry escapes root",
			archive: func(t *testing.T) string {
				return writeArchive(t,
					githubtest.Entry{Name: "pkg/"},
					githubtest.Entry{Name: "pkg/../../evil.txt", Content: "x"},
				)
			},
			wantErr: apperrors.ErrCorruptArchive,
		},
		{
			name: "first entry is not a folder",
			archive: func(t *testing.T) string {
				return writeArchive(t,
					githubtest.Entry{Name: "composer.json", Content: widgetComposer},
				)
			},
			wantErr: apperrors.ErrExtractionIncomplete,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			parent := t.TempDir()
			root := filepath.Join(parent, "plugins")

			_, err := newTestInstaller(t).Install(tc.archive(t), root, "", ModeFresh)
			require.ErrorIs(t, err, tc.wantErr)
			require.Empty(t, dirEntries(t, root))
			require.Equal(t, []string{"plugins"}, dirEntries(t, parent))
		})
	}
}

func TestTopLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"acme-widget-1a2b3c/":              "acme-widget-1a2b3c",
		"acme-widget-1a2b3c/composer.json": "acme-widget-1a2b3c",
		"composer.json":                    "composer.json",
		"/abs/path":                        "abs",
		"":                                 "",
	}

	for in, want := range tests {
		require.Equal(t, want, topLevel(in), in)
	}
}

func TestMode_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "fresh", ModeFresh.String())
	require.Equal(t, "update", ModeUpdate.String())
	require.Equal(t, "Mode(7)", Mode(7).String())
}

func TestNewInstaller_InvalidOption(t *testing.T) {
	t.Parallel()

	_, err := NewInstaller(hclog.NewNullLogger(), WithClassKey(" "))
	require.EqualError(t, err, "class key cannot be empty")
}
