package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

var (
	DefaultPostgresConnString = "dbname=conceptnet sslmode=disable"
)

type PostgresConfig struct {
	Options

	ConnString string
}

func NewPostgresConfig(connString string) *PostgresConfig {
	if len(connString) == 0 {
		connString = DefaultPostgresConnString
	}
	cfg := &PostgresConfig{
		Options: Options{
			OpenRetries: DefaultOpenRetries,
		},
		ConnString: connString,
	}
	return cfg
}

func (cfg PostgresConfig) Type() Type {
	return Postgres
}

func (cfg *PostgresConfig) Common() *Options {
	return &cfg.Options
}

func (cfg PostgresConfig) Location() string {
	return cfg.ConnString
}

type PostgresBackend struct {
	*sqlBackend

	config *PostgresConfig
}

func NewPostgresBackend(config *PostgresConfig) *PostgresBackend {
	be := &PostgresBackend{
		sqlBackend: newSQLBackend(postgresDialect, &config.Options),
		config:     config,
	}
	be.self = be
	return be
}

func (be *PostgresBackend) Open() error {
	return be.open(func() (*sql.DB, error) {
		db, err := sql.Open("postgres", be.config.ConnString)
		if err != nil {
			return nil, err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("connecting to postgres: %s", err)
		}
		log.WithField("read-only", be.config.ReadOnly).Debug("Opened postgres backend")
		return db, nil
	})
}

// New returns a backend for another database on the same server.  name may
// be a full connection string, or just a database name.
func (be *PostgresBackend) New(name string) (Backend, error) {
	connString := name
	if !strings.Contains(name, "=") && !strings.Contains(name, "://") {
		connString = replaceDBName(be.config.ConnString, name)
	}
	cfg := NewPostgresConfig(connString)
	cfg.OpenRetries = be.config.OpenRetries
	return NewPostgresBackend(cfg), nil
}

// replaceDBName swaps the dbname of a key=value or URL style connection
// string.
func replaceDBName(connString string, dbName string) string {
	if u, err := url.Parse(connString); err == nil && (u.Scheme == "postgres" || u.Scheme == "postgresql") {
		u.Path = "/" + dbName
		return u.String()
	}
	var (
		fields   = strings.Fields(connString)
		replaced bool
	)
	for i, field := range fields {
		if strings.HasPrefix(field, "dbname=") {
			fields[i] = "dbname=" + dbName
			replaced = true
		}
	}
	if !replaced {
		fields = append(fields, "dbname="+dbName)
	}
	return strings.Join(fields, " ")
}
