package linkage

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kaws-dev/gitplug/internal/errors"
	"github.com/kaws-dev/gitplug/internal/files"
	"github.com/kaws-dev/gitplug/internal/perms"
)

// MemoryPath opens a private in-memory database, useful for tests.
const MemoryPath = ":memory:"

// ErrPackageNotFound indicates that no package with the given name is registered.
var ErrPackageNotFound = stdErrors.New("package not registered")

// SQLiteStore is the SQLite implementation of Store. It also keeps the table of installed packages
// that linkage records point at.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at path, creating its directory when needed, and applies
// pending schema migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != MemoryPath {
		if err := files.EnsureAtLeastSecureDir(filepath.Dir(path)); err != nil {
			return nil, fmt.Errorf("failed to prepare database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{"PRAGMA foreign_keys = ON", "PRAGMA journal_mode = WAL"} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply '%s': %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.CreateSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if path != MemoryPath {
		if err := os.Chmod(path, perms.SecureFile); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to restrict database permissions: %w", err)
		}
	}

	return s, nil
}

// CreateSchema applies every migration newer than the database's recorded schema version.
func (s *SQLiteStore) CreateSchema() error {
	var current int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", i+1, err)
		}
	}

	return nil
}

// SchemaVersion returns the number of applied migrations.
func (s *SQLiteStore) SchemaVersion() (int, error) {
	var v int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&v)
	return v, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Upsert implements Store.
func (s *SQLiteStore) Upsert(ctx context.Context, params UpsertParams) (Record, error) {
	if strings.TrimSpace(params.PackageID) == "" {
		return Record{}, fmt.Errorf("%w: package id is required", errors.ErrInvalidInput)
	}
	if strings.TrimSpace(params.SourceURL) == "" {
		return Record{}, fmt.Errorf("%w: source url is required", errors.ErrInvalidInput)
	}

	now := s.timestamp()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", errors.ErrLinkagePersistenceFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM package_links WHERE package_id = ?`, params.PackageID).Scan(&id)
	switch {
	case stdErrors.Is(err, sql.ErrNoRows):
		id = uuid.NewString()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO package_links
			(id, package_id, source_kind, source_url, installed_reference, installed_commit, package_version, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			id,
			params.PackageID,
			SourceKindGit,
			params.SourceURL,
			params.InstalledReference,
			nullable(params.InstalledCommit),
			nullable(params.PackageVersion),
			now,
			now,
		)
	case err == nil:
		_, err = tx.ExecContext(ctx, `
			UPDATE package_links
			SET source_url = ?, installed_reference = ?, installed_commit = ?, package_version = ?, updated_at = ?
			WHERE id = ?
		`,
			params.SourceURL,
			params.InstalledReference,
			nullable(params.InstalledCommit),
			nullable(params.PackageVersion),
			now,
			id,
		)
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: package %s: %w", errors.ErrLinkagePersistenceFailed, params.PackageID, err)
	}

	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("%w: package %s: %w", errors.ErrLinkagePersistenceFailed, params.PackageID, err)
	}

	return s.Get(ctx, params.PackageID)
}

const selectRecords = `
	SELECT l.id, l.package_id, COALESCE(p.name, ''), l.source_kind, l.source_url,
	       COALESCE(l.installed_reference, ''), l.installed_commit, l.package_version, l.created_at, l.updated_at
	FROM package_links l
	LEFT JOIN packages p ON p.id = l.package_id
`

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, packageID string) (Record, error) {
	row := s.db.QueryRowContext(ctx, selectRecords+` WHERE l.package_id = ?`, packageID)

	r, err := scanRecord(row)
	if stdErrors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: package %s", errors.ErrLinkNotFound, packageID)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to get linkage for package %s: %w", packageID, err)
	}

	return r, nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, selectRecords+` ORDER BY p.name COLLATE NOCASE, l.created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list linkage records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan linkage record: %w", err)
		}
		records = append(records, r)
	}

	return records, rows.Err()
}

// RecordPackage registers an installed package by name, updating version and path when the name
// (compared case-insensitively) is already known. It returns the package's identifier.
func (s *SQLiteStore) RecordPackage(ctx context.Context, name string, version *string, path string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: package name is required", errors.ErrInvalidInput)
	}

	now := s.timestamp()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to record package %s: %w", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	var id string
	err = tx.QueryRowContext(ctx, `SELECT id FROM packages WHERE name = ?`, name).Scan(&id)
	switch {
	case stdErrors.Is(err, sql.ErrNoRows):
		id = uuid.NewString()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO packages (id, name, version, path, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			id, name, nullable(version), path, now, now,
		)
	case err == nil:
		_, err = tx.ExecContext(ctx,
			`UPDATE packages SET name = ?, version = ?, path = ?, updated_at = ? WHERE id = ?`,
			name, nullable(version), path, now, id,
		)
	}
	if err != nil {
		return "", fmt.Errorf("failed to record package %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to record package %s: %w", name, err)
	}

	return id, nil
}

// LookupID returns the identifier of the package with the given name (compared case-insensitively),
// or ErrPackageNotFound.
func (s *SQLiteStore) LookupID(ctx context.Context, name string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM packages WHERE name = ?`, strings.TrimSpace(name)).Scan(&id)
	if stdErrors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrPackageNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up package %s: %w", name, err)
	}
	return id, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var r Record
	var commit, version sql.NullString
	var createdAt string
	var updatedAt sql.NullString

	if err := row.Scan(
		&r.ID,
		&r.PackageID,
		&r.PackageName,
		&r.SourceKind,
		&r.SourceURL,
		&r.InstalledReference,
		&commit,
		&version,
		&createdAt,
		&updatedAt,
	); err != nil {
		return Record{}, err
	}

	if commit.Valid {
		r.InstalledCommit = &commit.String
	}
	if version.Valid {
		r.PackageVersion = &version.String
	}

	var err error
	if r.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Record{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	r.UpdatedAt = r.CreatedAt
	if updatedAt.Valid {
		if r.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt.String); err != nil {
			return Record{}, fmt.Errorf("failed to parse updated_at: %w", err)
		}
	}

	return r, nil
}

func (s *SQLiteStore) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
