package graph

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rominf/conceptnet-lite/db"
	"github.com/rominf/conceptnet-lite/domain"
	"github.com/rominf/conceptnet-lite/ingest"
)

var testDrivers = []string{"bolt", "sqlite", "badger"}

// buildTestStore ingests the shared assertions fixture into a fresh bolt
// store, rebuilds it into driver when that isn't bolt, and returns the path
// of the result.
func buildTestStore(t *testing.T, driver string) string {
	var (
		boltPath = filepath.Join(t.TempDir(), "conceptnet.bolt")
		path     = boltPath
	)
	err := db.WithClient(db.NewBoltConfig(boltPath), func(client *db.Client) error {
		if _, err := ingest.NewBuilder(client, ingest.NewConfig()).Build(context.Background(), "../ingest/testdata/assertions.csv"); err != nil {
			return err
		}
		if driver == "bolt" {
			return nil
		}
		path = filepath.Join(t.TempDir(), "conceptnet."+driver)
		cfg, err := db.NewConfig(driver, path)
		if err != nil {
			return err
		}
		other, err := db.NewBackend(cfg)
		if err != nil {
			return err
		}
		if err := other.Open(); err != nil {
			return err
		}
		defer other.Close()
		return client.RebuildTo(other)
	})
	require.NoError(t, err)
	return path
}

func connectDriverGraph(t *testing.T, driver string) *Graph {
	g, err := Connect(NewConfig(driver, buildTestStore(t, driver)))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, g.Close())
	})
	return g
}

func connectTestGraph(t *testing.T) *Graph {
	return connectDriverGraph(t, "bolt")
}

// eachDriver runs fn against the fixture store opened with every driver.
func eachDriver(t *testing.T, fn func(t *testing.T, g *Graph)) {
	for _, driver := range testDrivers {
		t.Run(driver, func(t *testing.T) {
			fn(t, connectDriverGraph(t, driver))
		})
	}
}

func uris(concepts []*domain.Concept) []string {
	out := make([]string, 0, len(concepts))
	for _, c := range concepts {
		out = append(out, c.URI())
	}
	return out
}

func edgeURIs(edges []*Edge) []string {
	out := make([]string, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.URI)
	}
	return out
}

func mustConcepts(t *testing.T, g *Graph, text string, lang string) []*domain.Concept {
	concepts, err := g.Concepts(text, lang)
	require.NoError(t, err)
	return concepts
}

func TestConnectMissingStore(t *testing.T) {
	_, err := Connect(NewConfig("bolt", filepath.Join(t.TempDir(), "missing.bolt")))
	require.Error(t, err)
	assert.ErrorIs(t, err, db.ErrStoreNotFound)
}

func TestConnectIsReadOnly(t *testing.T) {
	g := connectTestGraph(t)

	_, err := g.Client().WriteBatch(func(w *db.Writer) error { return nil })
	assert.Equal(t, db.ErrReadOnly, err)
}

func TestLanguages(t *testing.T) {
	g := connectTestGraph(t)

	langs, err := g.Languages()
	require.NoError(t, err)
	require.Len(t, langs, 2)
	assert.Equal(t, "en", langs[0].Code)
	assert.Equal(t, "English", langs[0].Name)

	lang, err := g.Language("fr")
	require.NoError(t, err)
	assert.Equal(t, "French", lang.Name)

	_, err = g.Language("xx")
	assert.True(t, IsNotFound(err))
}

func TestLabels(t *testing.T) {
	g := connectTestGraph(t)

	label, err := g.Label("ice cream", "en")
	require.NoError(t, err)
	assert.Equal(t, "ice_cream", label.Text)
	assert.Equal(t, "ice cream", label.PlainText())

	// Without a language the lowest language code wins.
	label, err = g.Label("animal", "")
	require.NoError(t, err)
	assert.Equal(t, "en", label.Language)

	labels, err := g.Labels("animal", "")
	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, "fr", labels[1].Language)

	_, err = g.Label("unicorn", "en")
	assert.True(t, IsNotFound(err))

	_, err = g.Label("chat", "en")
	assert.True(t, IsNotFound(err))
}

func TestConcepts(t *testing.T) {
	eachDriver(t, testConcepts)
}

func testConcepts(t *testing.T, g *Graph) {

	assert.Equal(t, []string{"/c/en/cat/n", "/c/en/cat"}, uris(mustConcepts(t, g, "cat", "en")))
	assert.Equal(t, []string{"/c/en/cat/n", "/c/en/cat"}, uris(mustConcepts(t, g, "cat", "")))
	assert.Equal(t, []string{"/c/fr/chat/n"}, uris(mustConcepts(t, g, "chat", "")))
	assert.Equal(t, []string{"/c/en/animal", "/c/fr/animal/n"}, uris(mustConcepts(t, g, "animal", "")))

	_, err := g.Concepts("unicorn", "")
	assert.True(t, IsNotFound(err))

	concept, err := g.ConceptByURI("/c/en/ice_cream/n")
	require.NoError(t, err)
	assert.Equal(t, "n", concept.SenseLabel)

	_, err = g.ConceptByURI("/c/en/unicorn")
	assert.True(t, IsNotFound(err))
}

func TestEdgesBetween(t *testing.T) {
	eachDriver(t, testEdgesBetween)
}

func testEdgesBetween(t *testing.T, g *Graph) {

	var (
		cat  = mustConcepts(t, g, "cat", "en")
		chat = mustConcepts(t, g, "chat", "fr")
		dog  = mustConcepts(t, g, "dog", "en")
	)

	testCases := []struct {
		starts   []*domain.Concept
		ends     []*domain.Concept
		twoWay   bool
		expected []string
	}{
		{
			starts:   cat,
			ends:     chat,
			expected: []string{"/a/[/r/Synonym/,/c/en/cat/n/,/c/fr/chat/n/]"},
		},
		{
			starts: cat,
			ends:   chat,
			twoWay: true,
			expected: []string{
				"/a/[/r/Synonym/,/c/en/cat/n/,/c/fr/chat/n/]",
				"/a/[/r/Synonym/,/c/fr/chat/n/,/c/en/cat/n/]",
			},
		},
		{
			starts:   chat,
			ends:     cat,
			expected: []string{"/a/[/r/Synonym/,/c/fr/chat/n/,/c/en/cat/n/]"},
		},
		{
			starts:   dog,
			ends:     cat,
			expected: []string{},
		},
		{
			starts:   dog,
			ends:     cat,
			twoWay:   true,
			expected: []string{"/a/[/r/RelatedTo/,/c/en/cat/,/c/en/dog/]"},
		},
		{
			starts:   cat,
			ends:     nil,
			twoWay:   true,
			expected: []string{},
		},
	}

	for i, testCase := range testCases {
		edges, err := g.EdgesBetween(testCase.starts, testCase.ends, testCase.twoWay)
		require.NoError(t, err, "[i=%v]", i)
		assert.Equal(t, testCase.expected, edgeURIs(edges), "[i=%v]", i)
	}
}

func TestEdgesFor(t *testing.T) {
	eachDriver(t, testEdgesFor)
}

func testEdgesFor(t *testing.T, g *Graph) {

	cat := mustConcepts(t, g, "cat", "en")

	edges, err := g.EdgesFor(cat, false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/a/[/r/IsA/,/c/en/cat/n/,/c/en/animal/]",
		"/a/[/r/Synonym/,/c/en/cat/n/,/c/fr/chat/n/]",
		"/a/[/r/RelatedTo/,/c/en/cat/,/c/en/dog/]",
		"/a/[/r/Synonym/,/c/fr/chat/n/,/c/en/cat/n/]",
	}, edgeURIs(edges))

	edges, err = g.EdgesFor(cat, true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/a/[/r/IsA/,/c/en/cat/n/,/c/en/animal/]",
		"/a/[/r/RelatedTo/,/c/en/cat/,/c/en/dog/]",
	}, edgeURIs(edges))

	edge := edges[0]
	assert.Equal(t, "IsA", edge.Relation.Name)
	assert.False(t, edge.Relation.Symmetric)
	assert.Equal(t, "/c/en/cat/n", edge.Start.URI())
	assert.Equal(t, "/c/en/animal", edge.End.URI())
	assert.InDelta(t, 3.464, edge.Weight(), 1e-9)
	assert.Equal(t, "/d/conceptnet/4/en", edge.Etc.Dataset)
}

func TestEdgesOutIn(t *testing.T) {
	g := connectTestGraph(t)

	animal, err := g.ConceptByURI("/c/en/animal")
	require.NoError(t, err)

	out, err := g.EdgesOut(animal)
	require.NoError(t, err)
	assert.Empty(t, out)

	in, err := g.EdgesIn(animal)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/a/[/r/IsA/,/c/en/cat/n/,/c/en/animal/]",
		"/a/[/r/IsA/,/c/en/dog/n/,/c/en/animal/]",
	}, edgeURIs(in))

	chat, err := g.ConceptByURI("/c/fr/chat/n")
	require.NoError(t, err)
	out, err = g.EdgesOut(chat)
	require.NoError(t, err)
	assert.Len(t, out, 2)
	for _, edge := range out {
		assert.Equal(t, chat.ID, edge.Start.ID)
	}
}

func TestEachLabel(t *testing.T) {
	eachDriver(t, testEachLabel)
}

func testEachLabel(t *testing.T, g *Graph) {

	var texts []string
	require.NoError(t, g.EachLabel("fr", func(label *domain.Label) bool {
		texts = append(texts, label.Text)
		return true
	}))
	assert.Equal(t, []string{"animal", "chat"}, texts)

	texts = nil
	require.NoError(t, g.EachLabel("en", func(label *domain.Label) bool {
		texts = append(texts, label.Text)
		return len(texts) < 3
	}))
	assert.Equal(t, []string{"animal", "cat", "dessert"}, texts)
}

func TestEachEdge(t *testing.T) {
	eachDriver(t, testEachEdge)
}

func testEachEdge(t *testing.T, g *Graph) {

	var ids []uint64
	require.NoError(t, g.EachEdge(func(edge *Edge) bool {
		ids = append(ids, edge.ID)
		return true
	}))
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 7, 8}, ids)

	var n int
	require.NoError(t, g.EachEdge(func(edge *Edge) bool {
		n++
		return n < 3
	}))
	assert.Equal(t, 3, n)
}

func TestRelationsAndInfo(t *testing.T) {
	g := connectTestGraph(t)

	var names []string
	for _, rel := range g.Relations() {
		names = append(names, rel.Name)
	}
	assert.Equal(t, []string{"Antonym", "IsA", "RelatedTo", "Synonym"}, names)

	info, err := g.Info()
	require.NoError(t, err)
	assert.Equal(t, uint64(8), info.EdgesWritten)
}

func TestRebuiltStoresAnswerAlike(t *testing.T) {
	type answers struct {
		cats     []string
		edgesFor []string
		between  []string
		labels   []string
	}

	query := func(g *Graph) answers {
		var a answers
		cats := mustConcepts(t, g, "cat", "")
		a.cats = uris(cats)

		edges, err := g.EdgesFor(cats, false)
		require.NoError(t, err)
		a.edgesFor = edgeURIs(edges)

		edges, err = g.EdgesBetween(cats, mustConcepts(t, g, "chat", "fr"), true)
		require.NoError(t, err)
		a.between = edgeURIs(edges)

		require.NoError(t, g.EachLabel("en", func(label *domain.Label) bool {
			a.labels = append(a.labels, label.Text)
			return true
		}))
		return a
	}

	expected := query(connectTestGraph(t))
	require.Len(t, expected.edgesFor, 4)

	for _, driver := range testDrivers[1:] {
		actual := query(connectDriverGraph(t, driver))
		assert.Equal(t, expected, actual, "[driver=%v]", driver)
	}
}

func TestConcurrentQueries(t *testing.T) {
	g := connectTestGraph(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			concepts, err := g.Concepts("cat", "en")
			if !assert.NoError(t, err) {
				return
			}
			edges, err := g.EdgesFor(concepts, false)
			if assert.NoError(t, err) {
				assert.Len(t, edges, 4)
			}
		}()
	}
	wg.Wait()
}
