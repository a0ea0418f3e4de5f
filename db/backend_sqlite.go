package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

type SQLiteConfig struct {
	Options

	DBFile string
}

func NewSQLiteConfig(dbFile string) *SQLiteConfig {
	cfg := &SQLiteConfig{
		Options: Options{
			OpenRetries: DefaultOpenRetries,
		},
		DBFile: dbFile,
	}
	return cfg
}

func (cfg SQLiteConfig) Type() Type {
	return SQLite
}

func (cfg *SQLiteConfig) Common() *Options {
	return &cfg.Options
}

func (cfg SQLiteConfig) Location() string {
	return cfg.DBFile
}

// dsn builds the go-sqlite3 data source name.  Read-only stores are opened
// with mode=ro so SQLite itself refuses writes.
func (cfg SQLiteConfig) dsn() string {
	params := url.Values{}
	params.Set("_busy_timeout", "5000")
	if cfg.ReadOnly {
		params.Set("mode", "ro")
	}
	return "file:" + cfg.DBFile + "?" + params.Encode()
}

type SQLiteBackend struct {
	*sqlBackend

	config *SQLiteConfig
}

func NewSQLiteBackend(config *SQLiteConfig) *SQLiteBackend {
	be := &SQLiteBackend{
		sqlBackend: newSQLBackend(sqliteDialect, &config.Options),
		config:     config,
	}
	be.self = be
	return be
}

func (be *SQLiteBackend) Open() error {
	return be.open(func() (*sql.DB, error) {
		if err := checkExists(&be.config.Options, be.config.DBFile); err != nil {
			return nil, err
		}
		if !be.config.ReadOnly {
			if dir := filepath.Dir(be.config.DBFile); dir != "" {
				if err := os.MkdirAll(dir, os.FileMode(int(0700))); err != nil {
					return nil, err
				}
			}
		}

		db, err := sql.Open("sqlite3", be.config.dsn())
		if err != nil {
			return nil, fmt.Errorf("opening sqlite database: %s", err)
		}

		if !be.config.ReadOnly {
			// A single writer connection avoids SQLITE_BUSY between
			// transactions of the same process.
			db.SetMaxOpenConns(1)

			if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
				db.Close()
				return nil, fmt.Errorf("enabling WAL mode: %s", err)
			}
			if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
				db.Close()
				return nil, fmt.Errorf("setting synchronous mode: %s", err)
			}
		}

		log.WithField("file", be.config.DBFile).WithField("read-only", be.config.ReadOnly).Debug("Opened sqlite backend")
		return db, nil
	})
}

func (be *SQLiteBackend) New(name string) (Backend, error) {
	cfg := NewSQLiteConfig(name)
	cfg.OpenRetries = be.config.OpenRetries
	return NewSQLiteBackend(cfg), nil
}
