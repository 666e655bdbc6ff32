// Package perms provides centralized file and directory permission constants
// for everything gitplug writes to disk.
package perms

import "os"

// File permission constants.
const (
	// RegularFile is used for configuration files, cached manifests and extracted plugin files.
	// Mode 0644: owner read/write, group read, others read.
	RegularFile os.FileMode = 0o644

	// SecureFile is used for the linkage database.
	// Mode 0600: owner read/write only.
	SecureFile os.FileMode = 0o600
)

// Directory permission constants.
const (
	// RegularDir is used for the cache directory, the plugin install root and extracted plugin directories.
	// Mode 0755: owner read/write/execute, group read/execute, others read/execute.
	RegularDir os.FileMode = 0o755

	// SecureDir is used for the directory holding the linkage database.
	// Mode 0700: owner read/write/execute only.
	SecureDir os.FileMode = 0o700
)
