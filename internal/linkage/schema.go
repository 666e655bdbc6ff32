package linkage

// migrations are applied in order; the index of the last applied migration plus one is kept in
// PRAGMA user_version. Existing entries must never change.
var migrations = []string{
	`
CREATE TABLE IF NOT EXISTS packages (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE COLLATE NOCASE,
    version TEXT,
    path TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS package_links (
    id TEXT PRIMARY KEY,
    package_id TEXT NOT NULL UNIQUE,
    source_kind TEXT NOT NULL DEFAULT 'git',
    source_url TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT,
    FOREIGN KEY (package_id) REFERENCES packages(id) ON DELETE CASCADE
);
`,
	`
ALTER TABLE package_links ADD COLUMN installed_reference TEXT;
ALTER TABLE package_links ADD COLUMN installed_commit TEXT;
ALTER TABLE package_links ADD COLUMN package_version TEXT;
`,
}
