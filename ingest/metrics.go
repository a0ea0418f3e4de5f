package ingest

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	skipMalformed  = "malformed"
	skipNotConcept = "not_concept"
	skipLanguage   = "language"
	skipDuplicate  = "duplicate"
)

var (
	linesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "conceptnet",
		Subsystem: "ingest",
		Name:      "lines_total",
		Help:      "Assertion lines read.",
	})

	edgesWrittenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "conceptnet",
		Subsystem: "ingest",
		Name:      "edges_written_total",
		Help:      "Edges written to the store.",
	})

	edgesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conceptnet",
		Subsystem: "ingest",
		Name:      "edges_skipped_total",
		Help:      "Assertions not written, by reason.",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(linesTotal, edgesWrittenTotal, edgesSkippedTotal)
}
