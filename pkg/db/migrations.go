package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rubiojr/docsearch/pkg/log"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migration is one numbered schema change, loaded from "NNN_name.sql".
type Migration struct {
	Version   int
	Name      string
	SQL       string
	AppliedAt *time.Time
}

// MigrationManager applies migrations to a database and records them in the
// migrations table.
type MigrationManager struct {
	db     *sql.DB
	source fs.FS
	dir    string
	logger *log.Logger
}

// NewMigrationManager uses the embedded migration set.
func NewMigrationManager(db *sql.DB) *MigrationManager {
	return &MigrationManager{db: db, source: migrationsFS, dir: "migrations", logger: log.ForService("db")}
}

// NewMigrationManagerFromFS loads migrations from dir inside fsys. Tests use it
// to run custom migration sets.
func NewMigrationManagerFromFS(db *sql.DB, fsys fs.FS, dir string) *MigrationManager {
	return &MigrationManager{db: db, source: fsys, dir: dir, logger: log.ForService("db")}
}

func (m *MigrationManager) EnsureMigrationsTable() error {
	_, err := m.db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// GetAppliedMigrations returns applied versions and when they were applied.
func (m *MigrationManager) GetAppliedMigrations() (map[int]time.Time, error) {
	applied := make(map[int]time.Time)

	rows, err := m.db.Query("SELECT version, applied_at FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("querying applied migrations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			m.logger.Warnf("failed to close rows: %v", err)
		}
	}()

	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("scanning migration row: %w", err)
		}
		applied[version] = appliedAt
	}

	return applied, rows.Err()
}

// GetAvailableMigrations lists migrations sorted by version. Files that do not
// follow the "NNN_name.sql" convention are ignored.
func (m *MigrationManager) GetAvailableMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(m.source, m.dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		parts := strings.SplitN(name, "_", 2)
		if len(parts) != 2 {
			continue
		}
		version, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}

		content, err := fs.ReadFile(m.source, path.Join(m.dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading migration file %s: %w", name, err)
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    strings.TrimSuffix(parts[1], ".sql"),
			SQL:     string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func (m *MigrationManager) GetPendingMigrations() ([]Migration, error) {
	applied, err := m.GetAppliedMigrations()
	if err != nil {
		return nil, err
	}

	available, err := m.GetAvailableMigrations()
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, migration := range available {
		if _, ok := applied[migration.Version]; !ok {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// ApplyMigration runs one migration and records it in the same transaction.
func (m *MigrationManager) ApplyMigration(migration Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if err := tx.Rollback(); err != nil {
				m.logger.Warnf("failed to rollback migration %d: %v", migration.Version, err)
			}
		}
	}()

	if _, err := tx.Exec(migration.SQL); err != nil {
		return fmt.Errorf("executing migration %d: %w", migration.Version, err)
	}
	if _, err := tx.Exec("INSERT INTO migrations (version) VALUES (?)", migration.Version); err != nil {
		return fmt.Errorf("recording migration %d: %w", migration.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration %d: %w", migration.Version, err)
	}

	committed = true
	return nil
}

// ApplyPendingMigrations brings the schema up to date and returns how many
// migrations ran.
func (m *MigrationManager) ApplyPendingMigrations() (int, error) {
	if err := m.EnsureMigrationsTable(); err != nil {
		return 0, fmt.Errorf("ensuring migrations table: %w", err)
	}

	pending, err := m.GetPendingMigrations()
	if err != nil {
		return 0, fmt.Errorf("getting pending migrations: %w", err)
	}

	for _, migration := range pending {
		m.logger.Debugf("applying migration %d: %s", migration.Version, migration.Name)
		if err := m.ApplyMigration(migration); err != nil {
			return 0, fmt.Errorf("applying migration %d (%s): %w", migration.Version, migration.Name, err)
		}
	}

	if len(pending) > 0 {
		m.logger.Infof("applied %d migrations", len(pending))
	}
	return len(pending), nil
}

// MigrationStatus splits the available migrations into applied and pending.
type MigrationStatus struct {
	Applied   []Migration
	Pending   []Migration
	Available []Migration
}

func (m *MigrationManager) GetMigrationStatus() (*MigrationStatus, error) {
	if err := m.EnsureMigrationsTable(); err != nil {
		return nil, fmt.Errorf("ensuring migrations table: %w", err)
	}

	applied, err := m.GetAppliedMigrations()
	if err != nil {
		return nil, err
	}
	available, err := m.GetAvailableMigrations()
	if err != nil {
		return nil, err
	}

	status := &MigrationStatus{Available: available}
	for _, migration := range available {
		if appliedAt, ok := applied[migration.Version]; ok {
			migration.AppliedAt = &appliedAt
			status.Applied = append(status.Applied, migration)
		} else {
			status.Pending = append(status.Pending, migration)
		}
	}
	return status, nil
}

// InitializeDatabase applies every embedded migration to db.
func InitializeDatabase(db *sql.DB) error {
	if _, err := NewMigrationManager(db).ApplyPendingMigrations(); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}
