package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"

	"github.com/rominf/conceptnet-lite/ingest"
)

// DefaultConfigSearchPaths are checked in order, the first existing file
// wins.
var DefaultConfigSearchPaths = []string{
	filepath.Join(os.Getenv("HOME"), ".conceptnet.toml"),
	filepath.Join(os.Getenv("HOME"), ".config", "conceptnet.toml"),
}

// Config is the TOML configuration struct.  When one of the
// DefaultConfigSearchPaths exists, the values contained therein override
// the compiled-in defaults.
type Config struct {
	File string `toml:"-"`

	Driver    string   `toml:"driver"`
	DB        string   `toml:"db"`
	Languages []string `toml:"languages"`
	BatchSize int      `toml:"batch_size"`
	WebAddr   string   `toml:"web_addr"`
	Quiet     bool     `toml:"quiet"`
	Verbose   bool     `toml:"verbose"`
}

func NewConfig() *Config {
	return &Config{}
}

// Do locates, parses and applies the configuration file, if any.
func (config *Config) Do() error {
	file, err := findConfigFile()
	if err != nil {
		return err
	}
	if len(file) == 0 {
		// No configuration file found.
		return nil
	}
	if _, err := toml.DecodeFile(file, config); err != nil {
		return err
	}
	config.File = file
	log.WithField("file", file).Debug("Loaded configuration")
	config.Apply()
	return nil
}

func (config *Config) Apply() {
	if len(config.Driver) > 0 {
		DBDriver = config.Driver
	}
	if len(config.DB) > 0 {
		DBFile = config.DB
	}
	if len(config.Languages) > 0 {
		Languages = config.Languages
	}
	if config.BatchSize > 0 {
		ingest.DefaultBatchSize = config.BatchSize
	}
	if len(config.WebAddr) > 0 {
		WebAddr = config.WebAddr
	}
	if config.Quiet {
		Quiet = true
	}
	if config.Verbose {
		Verbose = true
	}
}

// findConfigFile returns the first of DefaultConfigSearchPaths which exists.
//
// If no config file is found, ("", nil) is returned.
func findConfigFile() (string, error) {
	for _, path := range DefaultConfigSearchPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if os.IsNotExist(err) {
			continue
		} else if err != nil {
			return "", err
		}
	}
	return "", nil
}
