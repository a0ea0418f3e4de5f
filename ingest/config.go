package ingest

import (
	"strings"

	"github.com/rominf/conceptnet-lite/pkg/unique"
)

var (
	DefaultBatchSize     = 10000
	DefaultMaxEdges      = -1
	DefaultProgressEvery = 1000000
)

type Config struct {
	Languages     []string // Keep only assertions whose both ends are in these languages.  Empty keeps everything.
	BatchSize     int      // Assertions written per transaction.
	MaxEdges      int      // Stop after writing this many edges.  Negative means no limit.
	ProgressEvery int      // Log a progress line every N input lines.  0 disables.

	langSet map[string]struct{}
}

func NewConfig() *Config {
	cfg := &Config{
		BatchSize:     DefaultBatchSize,
		MaxEdges:      DefaultMaxEdges,
		ProgressEvery: DefaultProgressEvery,
	}
	return cfg
}

// normalize lower-cases, trims and deduplicates the language list and fills
// in defaults for unset numeric fields.
func (cfg *Config) normalize() {
	langs := make([]string, 0, len(cfg.Languages))
	for _, lang := range cfg.Languages {
		if lang = strings.ToLower(strings.TrimSpace(lang)); lang != "" {
			langs = append(langs, lang)
		}
	}
	cfg.Languages = unique.Sorted(langs)
	cfg.langSet = make(map[string]struct{}, len(cfg.Languages))
	for _, lang := range cfg.Languages {
		cfg.langSet[lang] = struct{}{}
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
}

// keepLanguage reports whether lang passes the language filter.
func (cfg *Config) keepLanguage(lang string) bool {
	if len(cfg.langSet) == 0 {
		return true
	}
	_, ok := cfg.langSet[lang]
	return ok
}
