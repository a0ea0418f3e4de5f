package db

import (
	"errors"
	"fmt"
	"os"
)

const (
	TableMetadata       = "metadata"
	TableLanguages      = "languages"
	TableLabels         = "labels"
	TableLanguageLabels = "language-labels"
	TableConcepts       = "concepts"
	TableConceptURIs    = "concept-uris"
	TableRelations      = "relations"
	TableEdges          = "edges"
	TableEdgeURIs       = "edge-uris"
	TableEdgesOut       = "edges-out"
	TableEdgesIn        = "edges-in"

	MetaBuildInfo   = "build-info"
	MetaSeqConcepts = "seq-concepts"
	MetaSeqEdges    = "seq-edges"
)

var (
	ErrKeyNotFound                = errors.New("requested key not found")
	ErrStoreNotFound              = errors.New("store not found")
	ErrReadOnly                   = errors.New("store is opened read-only")
	ErrMetadataUnsupportedSrcType = errors.New("unsupported src type: must be an []byte, string, or proto.Message")
	ErrMetadataUnsupportedDstType = errors.New("unsupported dst type: must be an *[]byte, *string, or proto.Message")

	// DefaultOpenRetries is the number of additional attempts made to open a
	// store which is locked by another process.
	DefaultOpenRetries = 3

	tables = []string{
		TableMetadata,
		TableLanguages,
		TableLabels,
		TableLanguageLabels,
		TableConcepts,
		TableConceptURIs,
		TableRelations,
		TableEdges,
		TableEdgeURIs,
		TableEdgesOut,
		TableEdgesIn,
	}
)

// Tables returns the names of every table in a graph store.
func Tables() []string {
	ts := make([]string, len(tables))
	copy(ts, tables)
	return ts
}

// IsTable reports whether name is one of the graph store tables.
func IsTable(name string) bool {
	for _, table := range tables {
		if table == name {
			return true
		}
	}
	return false
}

type Type int

const (
	Bolt Type = iota
	Badger
	SQLite
	Postgres
)

func (typ Type) String() string {
	switch typ {
	case Bolt:
		return "bolt"
	case Badger:
		return "badger"
	case SQLite:
		return "sqlite"
	case Postgres:
		return "postgres"
	}
	return fmt.Sprintf("Type(%d)", int(typ))
}

// Options are shared by every backend configuration.
type Options struct {
	ReadOnly    bool // Never create or modify anything.
	OpenRetries int  // Extra attempts when the store is locked.
}

type Config interface {
	Type() Type       // Configuration type specifier.
	Common() *Options // Backend independent options.
	Location() string // File, directory or connection string.
}

// NewConfig constructs a backend configuration from a driver name and a
// location (file, directory or connection string depending on the driver).
func NewConfig(driver string, location string) (Config, error) {
	switch driver {
	case "bolt", "boltdb", "":
		return NewBoltConfig(location), nil

	case "badger", "badgerdb":
		return NewBadgerConfig(location), nil

	case "sqlite", "sqlite3":
		return NewSQLiteConfig(location), nil

	case "postgres", "postgresql", "pg":
		return NewPostgresConfig(location), nil

	default:
		return nil, fmt.Errorf("unrecognized or unsupported DB driver %q", driver)
	}
}

// NewBackend constructs the backend matching the configuration type.
func NewBackend(config Config) (Backend, error) {
	switch typ := config.Type(); typ {
	case Bolt:
		return NewBoltBackend(config.(*BoltConfig)), nil

	case Badger:
		return NewBadgerBackend(config.(*BadgerConfig)), nil

	case SQLite:
		return NewSQLiteBackend(config.(*SQLiteConfig)), nil

	case Postgres:
		return NewPostgresBackend(config.(*PostgresConfig)), nil

	default:
		return nil, fmt.Errorf("no backend constructor available for db configuration type: %v", typ)
	}
}

// checkExists returns ErrStoreNotFound when a read-only open targets a path
// which doesn't exist.
func checkExists(opts *Options, path string) error {
	if !opts.ReadOnly {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%v: %w", path, ErrStoreNotFound)
		}
		return err
	}
	return nil
}
