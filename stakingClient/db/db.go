// Package db keeps the submission journal in SQLite through GORM: one row per
// attempted program operation and its outcome.
package db

import (
	"net/url"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pushchain/token-quest-client/stakingClient/store"
)

const (
	// InMemorySQLiteDSN opens an ephemeral database that lives as long as its
	// single connection.
	InMemorySQLiteDSN = ":memory:"

	dbDirPermissions = 0o750
)

// fileParams are appended to every file DSN. WAL lets `history` read while
// another invocation is writing.
var fileParams = url.Values{
	"_journal_mode": {"WAL"},
	"_busy_timeout": {"5000"},
	"mode":          {"rwc"},
}

// DB is the journal database handle.
type DB struct {
	client *gorm.DB
	path   string
}

// OpenFileDB opens or creates dir/filename, creating dir when needed.
func OpenFileDB(dir, filename string, migrateSchema bool) (*DB, error) {
	path, err := prepareFilePath(dir, filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare database path")
	}
	d, err := open(path+"?"+fileParams.Encode(), migrateSchema)
	if err != nil {
		return nil, errors.Wrapf(err, "journal %s", path)
	}
	d.path = path
	return d, nil
}

// OpenInMemoryDB opens a journal that is discarded on Close.
func OpenInMemoryDB(migrateSchema bool) (*DB, error) {
	return open(InMemorySQLiteDSN, migrateSchema)
}

func open(dsn string, migrateSchema bool) (*DB, error) {
	client, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open SQLite database")
	}

	sqlDB, err := client.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying sql.DB")
	}
	// One connection: writes are serialised and an in-memory database is not
	// dropped by the pool.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	d := &DB{client: client}
	if migrateSchema {
		if err := d.Migrate(); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}
	return d, nil
}

// Migrate creates or updates the journal tables.
func (d *DB) Migrate() error {
	if err := d.client.AutoMigrate(&store.Submission{}); err != nil {
		return errors.Wrap(err, "failed to auto-migrate database schema")
	}
	return nil
}

// Client exposes the GORM handle for ad hoc queries.
func (d *DB) Client() *gorm.DB {
	return d.client
}

// Path is the database file, or "" for an in-memory journal.
func (d *DB) Path() string {
	return d.path
}

// Close releases the database connection.
func (d *DB) Close() error {
	sqlDB, err := d.client.DB()
	if err != nil {
		return errors.Wrap(err, "failed to retrieve native sql.DB")
	}
	return errors.Wrap(sqlDB.Close(), "failed to close database connection")
}

func prepareFilePath(dir, filename string) (string, error) {
	if err := os.MkdirAll(dir, dbDirPermissions); err != nil {
		return "", errors.Wrapf(err, "failed to create directory %s", dir)
	}
	return filepath.Join(dir, filename), nil
}
