package db

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	embeddedmigrations "github.com/skinior/skinior-api/migrations"
	"gorm.io/gorm"
)

var (
	migrationFilePattern      = regexp.MustCompile(`^(\d+)_.*\.sql$`)
	addColumnStatementPattern = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+([^\s]+)\s+ADD\s+COLUMN\s+([^\s]+)\b`)
)

// ErrMigrationChanged means an applied migration file no longer matches the
// checksum recorded when it ran. Forward-only: add a new file instead.
var ErrMigrationChanged = errors.New("applied migration was modified")

type migration struct {
	Version  string
	Order    int
	Name     string
	SQL      string
	Checksum string
}

type migrator struct {
	database *gorm.DB
	files    fs.FS
}

func newMigrator(database *gorm.DB, files fs.FS) *migrator {
	return &migrator{database: database, files: files}
}

// SchemaVersion returns the newest applied migration version, empty when nothing ran yet.
func SchemaVersion(ctx context.Context, database *gorm.DB) (string, error) {
	var version sql.NullString
	row := database.WithContext(ctx).Raw(`SELECT MAX(version) FROM schema_migrations`).Row()
	if err := row.Scan(&version); err != nil {
		return "", fmt.Errorf("read schema version: %w", err)
	}
	return version.String, nil
}

// Ping checks that the pooled connection is usable.
func Ping(ctx context.Context, database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func applyEmbeddedMigrations(database *gorm.DB) error {
	_, err := newMigrator(database, embeddedmigrations.Files).Up(context.Background())
	return err
}

// Up applies every pending migration in version order, one transaction each,
// and returns the names it ran.
func (m *migrator) Up(ctx context.Context) ([]string, error) {
	database := m.database.WithContext(ctx)
	if err := ensureMigrationLedger(database); err != nil {
		return nil, err
	}

	migrations, err := loadMigrations(m.files)
	if err != nil {
		return nil, err
	}
	applied, err := loadAppliedChecksums(database)
	if err != nil {
		return nil, err
	}

	ran := make([]string, 0)
	for _, pending := range migrations {
		if checksum, done := applied[pending.Version]; done {
			if checksum != "" && checksum != pending.Checksum {
				return ran, fmt.Errorf("%w: %s", ErrMigrationChanged, pending.Name)
			}
			continue
		}

		if err := applyMigration(database, pending); err != nil {
			return ran, err
		}
		ran = append(ran, pending.Name)
	}
	return ran, nil
}

func ensureMigrationLedger(database *gorm.DB) error {
	const createTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  checksum TEXT NOT NULL DEFAULT '',
  applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	if err := database.Exec(createTableSQL).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	// ledgers written before checksums were tracked
	hasChecksum, err := tableColumnExists(database, "schema_migrations", "checksum")
	if err != nil {
		return err
	}
	if !hasChecksum {
		if err := database.Exec(`ALTER TABLE schema_migrations ADD COLUMN checksum TEXT NOT NULL DEFAULT ''`).Error; err != nil {
			return fmt.Errorf("add schema_migrations.checksum: %w", err)
		}
	}
	return nil
}

func loadMigrations(files fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	migrations := make([]migration, 0, len(entries))
	seen := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		matches := migrationFilePattern.FindStringSubmatch(name)
		if len(matches) != 2 {
			continue
		}

		version := matches[1]
		order, err := strconv.Atoi(version)
		if err != nil {
			return nil, fmt.Errorf("parse migration version from %s: %w", name, err)
		}
		if existing, duplicate := seen[version]; duplicate {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", version, existing, name)
		}
		seen[version] = name

		raw, err := fs.ReadFile(files, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		sum := sha256.Sum256(raw)
		migrations = append(migrations, migration{
			Version:  version,
			Order:    order,
			Name:     name,
			SQL:      string(raw),
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Order < migrations[j].Order
	})
	return migrations, nil
}

type appliedMigration struct {
	Version  string `gorm:"column:version"`
	Checksum string `gorm:"column:checksum"`
}

func loadAppliedChecksums(database *gorm.DB) (map[string]string, error) {
	rows := make([]appliedMigration, 0)
	if err := database.Raw(`SELECT version, checksum FROM schema_migrations`).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load applied migrations: %w", err)
	}

	applied := make(map[string]string, len(rows))
	for _, row := range rows {
		applied[row.Version] = row.Checksum
	}
	return applied, nil
}

func applyMigration(database *gorm.DB, pending migration) error {
	return database.Transaction(func(tx *gorm.DB) error {
		statements := splitSQLStatements(pending.SQL)
		if len(statements) == 0 {
			return fmt.Errorf("migration %s has no SQL statements", pending.Name)
		}

		for _, statement := range statements {
			skip, err := columnAlreadyAdded(tx, statement)
			if err != nil {
				return fmt.Errorf("inspect migration %s: %w", pending.Name, err)
			}
			if skip {
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("execute migration %s statement %q: %w", pending.Name, statement, err)
			}
		}

		if err := tx.Exec(
			`INSERT INTO schema_migrations(version, name, checksum) VALUES (?, ?, ?)`,
			pending.Version, pending.Name, pending.Checksum,
		).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", pending.Name, err)
		}
		return nil
	})
}

// splitSQLStatements drops full-line "--" comments before splitting on ";".
// Statements must not contain literal semicolons.
func splitSQLStatements(sqlText string) []string {
	lines := strings.Split(sqlText, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}

	parts := strings.Split(strings.Join(kept, "\n"), ";")
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// columnAlreadyAdded lets ADD COLUMN migrations run against databases that
// already got the column some other way.
func columnAlreadyAdded(database *gorm.DB, statement string) (bool, error) {
	matches := addColumnStatementPattern.FindStringSubmatch(statement)
	if len(matches) != 3 {
		return false, nil
	}
	return tableColumnExists(database, normalizeSQLIdentifier(matches[1]), normalizeSQLIdentifier(matches[2]))
}

type tableColumnName struct {
	Name string `gorm:"column:name"`
}

func tableColumnExists(database *gorm.DB, tableName string, columnName string) (bool, error) {
	columns := make([]tableColumnName, 0)
	if database.Dialector.Name() == DriverPostgres {
		if err := database.Raw(
			`SELECT column_name AS name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = ?`,
			tableName,
		).Scan(&columns).Error; err != nil {
			return false, fmt.Errorf("load columns for %s: %w", tableName, err)
		}
	} else {
		query := fmt.Sprintf(`PRAGMA table_info("%s")`, strings.ReplaceAll(tableName, `"`, `""`))
		if err := database.Raw(query).Scan(&columns).Error; err != nil {
			return false, fmt.Errorf("load table_info for %s: %w", tableName, err)
		}
	}

	for _, column := range columns {
		if strings.EqualFold(strings.TrimSpace(column.Name), columnName) {
			return true, nil
		}
	}
	return false, nil
}

func normalizeSQLIdentifier(identifier string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(identifier), "\"`[]"))
}
