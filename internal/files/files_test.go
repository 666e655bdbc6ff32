package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kaws-dev/gitplug/internal/perms"
)

func TestAppDirName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "gitplug", AppDirName())
}

func TestUserSpecificCacheDir(t *testing.T) {
	tests := []struct {
		name        string
		xdgValue    string
		expectedDir func(t *testing.T) string
	}{
		{
			name:     "XDG_CACHE_HOME is set and used",
			xdgValue: "/custom/cache/path",
			expectedDir: func(t *testing.T) string {
				return filepath.Join("/custom/cache/path", AppDirName())
			},
		},
		{
			name:     "XDG_CACHE_HOME is set with whitespace and trimmed",
			xdgValue: "  /trimmed/cache/path  ",
			expectedDir: func(t *testing.T) string {
				return filepath.Join("/trimmed/cache/path", AppDirName())
			},
		},
		{
			name:     "XDG_CACHE_HOME is empty, fall back to default",
			xdgValue: "",
			expectedDir: func(t *testing.T) string {
				home, err := os.UserHomeDir()
				require.NoError(t, err)
				return filepath.Join(home, ".cache", AppDirName())
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvVarXDGCacheHome, tc.xdgValue)

			result, err := UserSpecificCacheDir()
			require.NoError(t, err)
			require.Equal(t, tc.expectedDir(t), result)
		})
	}
}

func TestUserSpecificCacheDir_RelativePath(t *testing.T) {
	t.Setenv(EnvVarXDGCacheHome, "relative/cache")

	_, err := UserSpecificCacheDir()
	require.ErrorContains(t, err, "must be an absolute path")
}

func TestUserSpecificDir_InvalidEnvVar(t *testing.T) {
	t.Parallel()

	_, err := userSpecificDir("CACHE_HOME", ".cache")
	require.ErrorContains(t, err, "does not follow XDG Base Directory Specification")
}

func TestEnsureAtLeastRegularDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr string
	}{
		{
			name: "creates nested directories",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "level1", "level2")
			},
		},
		{
			name: "accepts directory with more restrictive permissions",
			setup: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "more-restrictive")
				require.NoError(t, os.Mkdir(dir, 0o700))
				return dir
			},
		},
		{
			name: "rejects directory with less restrictive permissions",
			setup: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "less-restrictive")
				// os.Mkdir applies the umask, chmod sets the mode explicitly.
				require.NoError(t, os.Mkdir(dir, 0o755))
				require.NoError(t, os.Chmod(dir, 0o777))
				return dir
			},
			wantErr: "incorrect permissions",
		},
		{
			name: "rejects regular file",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "file")
				require.NoError(t, os.WriteFile(path, []byte("x"), perms.RegularFile))
				return path
			},
			wantErr: "could not ensure directory exists",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := tc.setup(t)
			err := EnsureAtLeastRegularDir(dir)
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.True(t, IsDir(dir))
		})
	}
}

func TestEnsureAtLeastSecureDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "secure")
	require.NoError(t, EnsureAtLeastSecureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, isPermissionAcceptable(info.Mode().Perm(), perms.SecureDir))
}

func TestWithin(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	tests := []struct {
		name     string
		target   string
		expected bool
	}{
		{name: "root itself", target: root, expected: true},
		{name: "child", target: filepath.Join(root, "Widget"), expected: true},
		{name: "nested child", target: filepath.Join(root, "a", "b", "c.txt"), expected: true},
		{name: "cleaned back inside", target: filepath.Join(root, "a", "..", "b"), expected: true},
		{name: "parent", target: filepath.Join(root, ".."), expected: false},
		{name: "escape", target: filepath.Join(root, "..", "other"), expected: false},
		{name: "dotted name is not escape", target: filepath.Join(root, "..hidden"), expected: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ok, err := Within(root, tc.target)
			require.NoError(t, err)
			require.Equal(t, tc.expected, ok)
		})
	}
}

func TestIsPermissionAcceptable(t *testing.T) {
	t.Parallel()

	require.True(t, isPermissionAcceptable(0o755, perms.RegularDir))
	require.True(t, isPermissionAcceptable(0o700, perms.RegularDir))
	require.False(t, isPermissionAcceptable(0o777, perms.RegularDir))
	require.False(t, isPermissionAcceptable(0o750, perms.SecureDir))
}
