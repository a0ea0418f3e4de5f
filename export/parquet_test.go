package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rominf/conceptnet-lite/db"
	"github.com/rominf/conceptnet-lite/graph"
	"github.com/rominf/conceptnet-lite/ingest"
)

func connectTestGraph(t *testing.T) *graph.Graph {
	path := filepath.Join(t.TempDir(), "conceptnet.bolt")
	require.NoError(t, db.WithClient(db.NewBoltConfig(path), func(client *db.Client) error {
		_, err := ingest.NewBuilder(client, ingest.NewConfig()).Build(context.Background(), "../ingest/testdata/assertions.csv")
		return err
	}))

	g, err := graph.Connect(graph.NewConfig("bolt", path))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, g.Close())
	})
	return g
}

func writeTestFile(t *testing.T, g *graph.Graph, opts *Options) ([]EdgeRow, int) {
	path := filepath.Join(t.TempDir(), "edges.parquet")
	f, err := os.Create(path)
	require.NoError(t, err)

	n, err := WriteParquet(context.Background(), g, f, opts)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rows, err := parquet.ReadFile[EdgeRow](path)
	require.NoError(t, err)
	return rows, n
}

func TestWriteParquet(t *testing.T) {
	g := connectTestGraph(t)

	opts := NewOptions()
	opts.RowGroupSize = 3
	rows, n := writeTestFile(t, g, opts)

	assert.Equal(t, 8, n)
	require.Len(t, rows, 8)

	row := rows[1]
	assert.Equal(t, "/a/[/r/IsA/,/c/en/cat/n/,/c/en/animal/]", row.URI)
	assert.Equal(t, "IsA", row.Relation)
	assert.Equal(t, "/c/en/cat/n", row.Start)
	assert.Equal(t, "/c/en/animal", row.End)
	assert.Equal(t, "en", row.StartLanguage)
	assert.Equal(t, "cc:by/4.0", row.License)
	assert.InDelta(t, 3.464, row.Weight, 1e-9)
}

func TestWriteParquetLanguage(t *testing.T) {
	g := connectTestGraph(t)

	opts := NewOptions()
	opts.Language = "fr"
	rows, n := writeTestFile(t, g, opts)

	assert.Equal(t, 3, n)
	for _, row := range rows {
		assert.True(t, row.StartLanguage == "fr" || row.EndLanguage == "fr", row.URI)
	}
}

func TestWriteParquetCancelled(t *testing.T) {
	g := connectTestGraph(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f, err := os.Create(filepath.Join(t.TempDir(), "edges.parquet"))
	require.NoError(t, err)
	defer f.Close()

	_, err = WriteParquet(ctx, g, f, nil)
	assert.Equal(t, context.Canceled, err)
}
