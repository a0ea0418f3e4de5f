// Package export writes the edges of a graph store to columnar files.
package export

import (
	"context"
	"io"

	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/rominf/conceptnet-lite/graph"
)

var DefaultRowGroupSize = 10000

// EdgeRow is the parquet schema of an exported edge.
type EdgeRow struct {
	URI           string  `parquet:"uri"`
	Relation      string  `parquet:"relation"`
	Start         string  `parquet:"start"`
	End           string  `parquet:"end"`
	StartLanguage string  `parquet:"start_language"`
	EndLanguage   string  `parquet:"end_language"`
	Dataset       string  `parquet:"dataset"`
	License       string  `parquet:"license"`
	Weight        float64 `parquet:"weight"`
}

type Options struct {
	Language     string // Only export edges with at least one end in this language.  Empty exports everything.
	RowGroupSize int    // Rows buffered before a row group is flushed.
}

func NewOptions() *Options {
	opts := &Options{
		RowGroupSize: DefaultRowGroupSize,
	}
	return opts
}

func newEdgeRow(edge *graph.Edge) EdgeRow {
	row := EdgeRow{
		URI:           edge.URI,
		Relation:      edge.Relation.Name,
		Start:         edge.Start.URI(),
		End:           edge.End.URI(),
		StartLanguage: edge.Start.Language,
		EndLanguage:   edge.End.Language,
		Weight:        edge.Weight(),
	}
	if edge.Etc != nil {
		row.Dataset = edge.Etc.Dataset
		row.License = edge.Etc.License
	}
	return row
}

// WriteParquet streams every edge of g to w and returns the number of rows
// written.  Cancelling ctx stops the export with ctx.Err().
func WriteParquet(ctx context.Context, g *graph.Graph, w io.Writer, opts *Options) (int, error) {
	if opts == nil {
		opts = NewOptions()
	}
	if opts.RowGroupSize <= 0 {
		opts.RowGroupSize = DefaultRowGroupSize
	}

	var (
		pw    = parquet.NewGenericWriter[EdgeRow](w)
		rows  = make([]EdgeRow, 0, opts.RowGroupSize)
		total int
		err   error
	)

	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		if _, err := pw.Write(rows); err != nil {
			return errors.Wrap(err, "writing rows")
		}
		if err := pw.Flush(); err != nil {
			return errors.Wrap(err, "flushing row group")
		}
		total += len(rows)
		log.WithField("rows", total).Debug("Flushed parquet row group")
		rows = rows[:0]
		return nil
	}

	if eachErr := g.EachEdge(func(edge *graph.Edge) bool {
		if err = ctx.Err(); err != nil {
			return false
		}
		if opts.Language != "" && edge.Start.Language != opts.Language && edge.End.Language != opts.Language {
			return true
		}
		rows = append(rows, newEdgeRow(edge))
		if len(rows) == opts.RowGroupSize {
			err = flush()
		}
		return err == nil
	}); eachErr != nil {
		return total, eachErr
	}
	if err != nil {
		return total, err
	}
	if err := flush(); err != nil {
		return total, err
	}
	if err := pw.Close(); err != nil {
		return total, errors.Wrap(err, "closing parquet writer")
	}
	return total, nil
}
