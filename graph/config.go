package graph

import (
	"github.com/rominf/conceptnet-lite/db"
)

// DefaultCacheSize is the number of concepts kept in memory by a Graph.
var DefaultCacheSize = 65536

type Config struct {
	Driver    string // Storage backend, one of bolt, badger, sqlite or postgres.
	Path      string // Store file, directory or connection string.
	CacheSize int    // Concept cache entries.  0 selects DefaultCacheSize.
}

func NewConfig(driver string, path string) *Config {
	cfg := &Config{
		Driver:    driver,
		Path:      path,
		CacheSize: DefaultCacheSize,
	}
	return cfg
}

// dbConfig translates cfg into a read-only storage configuration.
func (cfg *Config) dbConfig() (db.Config, error) {
	dbCfg, err := db.NewConfig(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, err
	}
	dbCfg.Common().ReadOnly = true
	return dbCfg, nil
}
