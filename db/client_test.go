package db

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rominf/conceptnet-lite/domain"
)

func testAssertion(t *testing.T, relation string, start string, end string) *domain.Assertion {
	line := fmt.Sprintf("\t/r/%v\t%v\t%v\t{\"dataset\": \"/d/test\", \"weight\": 1.5}", relation, start, end)
	a, err := domain.ParseAssertion(line)
	if err != nil {
		t.Fatalf("parsing %v %v %v: %s", relation, start, end, err)
	}
	return a
}

func openTestClient(t *testing.T, config Config) *Client {
	client, err := NewClient(config)
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Open(); err != nil {
		t.Fatalf("opening %v client: %s", config.Type(), err)
	}
	if config.Type() == Postgres {
		if err := client.Purge(); err != nil {
			t.Fatal(err)
		}
	}
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Error(err)
		}
	})
	return client
}

func writeTestGraph(t *testing.T, client *Client) WriteStats {
	assertions := []*domain.Assertion{
		testAssertion(t, "IsA", "/c/en/cat/n", "/c/en/animal"),
		testAssertion(t, "IsA", "/c/en/dog/n", "/c/en/animal"),
		testAssertion(t, "RelatedTo", "/c/en/cat", "/c/en/dog"),
		testAssertion(t, "Synonym", "/c/en/cat", "/c/fr/chat"),
		testAssertion(t, "IsA", "/c/en/cat/n", "/c/en/animal"),
	}
	stats, err := client.WriteBatch(func(w *Writer) error {
		for _, a := range assertions {
			if _, err := w.AddAssertion(a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return stats
}

func TestClientWriteBatch(t *testing.T) {
	for _, config := range testConfigs(t) {
		client := openTestClient(t, config)
		stats := writeTestGraph(t, client)

		expectedStats := WriteStats{Edges: 4, Duplicates: 1, Concepts: 6, Labels: 4, Languages: 2, Relations: 3}
		if expected, actual := expectedStats, stats; actual != expected {
			t.Errorf("[%v] Expected stats=%+v but actual=%+v", config.Type(), expected, actual)
		}

		for table, expected := range map[string]int{
			TableEdges:          4,
			TableEdgeURIs:       4,
			TableEdgesOut:       4,
			TableEdgesIn:        4,
			TableConcepts:       6,
			TableConceptURIs:    6,
			TableLabels:         4,
			TableLanguageLabels: 4,
			TableLanguages:      2,
			TableRelations:      3,
		} {
			n, err := client.Len(table)
			if err != nil {
				t.Fatalf("[%v] %s", config.Type(), err)
			}
			if actual := n; actual != expected {
				t.Errorf("[%v] Expected %v len=%v but actual=%v", config.Type(), table, expected, actual)
			}
		}

		// Writing the same assertions again changes nothing.
		stats = writeTestGraph(t, client)
		if expected, actual := (WriteStats{Duplicates: 5}), stats; actual != expected {
			t.Errorf("[%v] Expected second write stats=%+v but actual=%+v", config.Type(), expected, actual)
		}
		if n, _ := client.Len(TableConcepts); n != 6 {
			t.Errorf("[%v] Expected concept count to stay at 6 but actual=%v", config.Type(), n)
		}
	}
}

func TestClientLabelsAndConcepts(t *testing.T) {
	for _, config := range testConfigs(t) {
		client := openTestClient(t, config)
		writeTestGraph(t, client)

		labels, err := client.Labels("cat", "en")
		if err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		if expected, actual := 1, len(labels); actual != expected {
			t.Fatalf("[%v] Expected num labels=%v but actual=%v", config.Type(), expected, actual)
		}
		// cat/n and cat are distinct concepts sharing one label.
		if expected, actual := 2, len(labels[0].ConceptIDs); actual != expected {
			t.Errorf("[%v] Expected num concepts for label=%v but actual=%v", config.Type(), expected, actual)
		}

		concepts, err := client.Concepts(labels[0].ConceptIDs...)
		if err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		uris := []string{}
		for _, concept := range concepts {
			uris = append(uris, concept.URI())
		}
		if expected, actual := "[/c/en/cat/n /c/en/cat]", fmt.Sprint(uris); actual != expected {
			t.Errorf("[%v] Expected concept uris=%v but actual=%v", config.Type(), expected, actual)
		}

		concept, err := client.ConceptByURI("/c/fr/chat")
		if err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		if expected, actual := "fr", concept.Language; actual != expected {
			t.Errorf("[%v] Expected language=%v but actual=%v", config.Type(), expected, actual)
		}

		if labels, err = client.Labels("missing", ""); err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		} else if len(labels) != 0 {
			t.Errorf("[%v] Expected no labels for missing text but actual=%v", config.Type(), len(labels))
		}

		texts := []string{}
		if err := client.EachLabel("en", func(label *domain.Label) bool {
			texts = append(texts, label.Text)
			return true
		}); err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		if expected, actual := "[animal cat dog]", fmt.Sprint(texts); actual != expected {
			t.Errorf("[%v] Expected en labels=%v but actual=%v", config.Type(), expected, actual)
		}

		langs, err := client.Languages()
		if err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		if expected, actual := 2, len(langs); actual != expected {
			t.Fatalf("[%v] Expected num languages=%v but actual=%v", config.Type(), expected, actual)
		}
		if expected, actual := "French", langs[1].Name; actual != expected {
			t.Errorf("[%v] Expected language name=%v but actual=%v", config.Type(), expected, actual)
		}
	}
}

func TestClientEdges(t *testing.T) {
	for _, config := range testConfigs(t) {
		client := openTestClient(t, config)
		writeTestGraph(t, client)

		animal, err := client.ConceptByURI("/c/en/animal")
		if err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		in, err := client.EdgesIn(animal.ID)
		if err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		if expected, actual := 2, len(in); actual != expected {
			t.Errorf("[%v] Expected num incoming edges=%v but actual=%v", config.Type(), expected, actual)
		}
		out, err := client.EdgesOut(animal.ID)
		if err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		if expected, actual := 0, len(out); actual != expected {
			t.Errorf("[%v] Expected num outgoing edges=%v but actual=%v", config.Type(), expected, actual)
		}

		edge, err := client.EdgeByURI("/a/[/r/Synonym/,/c/en/cat/,/c/fr/chat/]")
		if err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		if expected, actual := 1.5, edge.Weight(); actual != expected {
			t.Errorf("[%v] Expected weight=%v but actual=%v", config.Type(), expected, actual)
		}
		rel, err := client.Relation(edge.Relation)
		if err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		if !rel.Symmetric {
			t.Errorf("[%v] Expected relation %v to be symmetric", config.Type(), rel.Name)
		}

		var ids []uint64
		if err := client.EachEdge(func(edge *domain.Edge) bool {
			ids = append(ids, edge.ID)
			return true
		}); err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		if expected, actual := "[1 2 3 4]", fmt.Sprint(ids); actual != expected {
			t.Errorf("[%v] Expected edge ids=%v but actual=%v", config.Type(), expected, actual)
		}

		page, err := client.EdgesFrom(2, 2)
		if err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		ids = ids[:0]
		for _, edge := range page {
			ids = append(ids, edge.ID)
		}
		if expected, actual := "[2 3]", fmt.Sprint(ids); actual != expected {
			t.Errorf("[%v] Expected paged edge ids=%v but actual=%v", config.Type(), expected, actual)
		}
	}
}

func TestClientMeta(t *testing.T) {
	for _, config := range testConfigs(t) {
		client := openTestClient(t, config)

		if err := client.MetaSave("greeting", "hello"); err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		var s string
		if err := client.Meta("greeting", &s); err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		if expected, actual := "hello", s; actual != expected {
			t.Errorf("[%v] Expected meta=%v but actual=%v", config.Type(), expected, actual)
		}

		info := &domain.BuildInfo{ID: "abc", Source: "assertions.csv", EdgesWritten: 42}
		if err := client.BuildInfoSave(info); err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		loaded, err := client.BuildInfo()
		if err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		if expected, actual := uint64(42), loaded.EdgesWritten; actual != expected {
			t.Errorf("[%v] Expected edges written=%v but actual=%v", config.Type(), expected, actual)
		}

		if err := client.MetaSave("bad", 123); err != ErrMetadataUnsupportedSrcType {
			t.Errorf("[%v] Expected err=%s but actual=%v", config.Type(), ErrMetadataUnsupportedSrcType, err)
		}
		if err := client.MetaDelete("greeting"); err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		if err := client.Meta("greeting", &s); err != ErrKeyNotFound {
			t.Errorf("[%v] Expected err=%s but actual=%v", config.Type(), ErrKeyNotFound, err)
		}
	}
}

func TestClientPurge(t *testing.T) {
	for _, config := range testConfigs(t) {
		client := openTestClient(t, config)
		writeTestGraph(t, client)

		if err := client.Purge("not-a-table"); err == nil {
			t.Errorf("[%v] Expected purging an unknown table to fail", config.Type())
		}
		if err := client.Purge(); err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		stats, err := client.Stats()
		if err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		for table, n := range stats {
			if n != 0 {
				t.Errorf("[%v] Expected %v to be empty after purge but len=%v", config.Type(), table, n)
			}
		}

		// Ids restart and interning doesn't resurrect purged concepts.
		writeTestGraph(t, client)
		concept, err := client.ConceptByURI("/c/en/cat/n")
		if err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		if expected, actual := uint64(1), concept.ID; actual != expected {
			t.Errorf("[%v] Expected id=%v but actual=%v", config.Type(), expected, actual)
		}
	}
}

func TestClientRebuildTo(t *testing.T) {
	for _, config := range testConfigs(t) {
		if config.Type() == Postgres {
			continue
		}
		client := openTestClient(t, config)
		writeTestGraph(t, client)

		orig := RebuildBatchSize
		RebuildBatchSize = 2
		defer func() { RebuildBatchSize = orig }()

		target := filepath.Join(t.TempDir(), "rebuilt")
		other, err := client.Backend().New(target)
		if err != nil {
			t.Fatal(err)
		}
		if err := other.Open(); err != nil {
			t.Fatal(err)
		}
		defer other.Close()

		if err := client.RebuildTo(other, DropLanguagesFilter("fr")); err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}

		rebuilt := newClient(config, other)
		rebuilt.opened = true
		for table, expected := range map[string]int{TableEdges: 4, TableConcepts: 6, TableLabels: 3, TableLanguageLabels: 3, TableLanguages: 1} {
			n, err := rebuilt.Len(table)
			if err != nil {
				t.Fatalf("[%v] %s", config.Type(), err)
			}
			if actual := n; actual != expected {
				t.Errorf("[%v] Expected rebuilt %v len=%v but actual=%v", config.Type(), table, expected, actual)
			}
		}
		edges, err := rebuilt.EdgesOut(1)
		if err != nil {
			t.Fatalf("[%v] %s", config.Type(), err)
		}
		if expected, actual := 1, len(edges); actual != expected {
			t.Errorf("[%v] Expected rebuilt outgoing edges=%v but actual=%v", config.Type(), expected, actual)
		}
	}
}

func TestKeys(t *testing.T) {
	if expected, actual := uint64(258), keyID(idKey(258)); actual != expected {
		t.Errorf("Expected id=%v but actual=%v", expected, actual)
	}
	k := pairKey(7, 9)
	if expected, actual := uint64(7), keyID(k); actual != expected {
		t.Errorf("Expected concept id=%v but actual=%v", expected, actual)
	}
	if expected, actual := uint64(9), pairEdgeID(k); actual != expected {
		t.Errorf("Expected edge id=%v but actual=%v", expected, actual)
	}
	text, lang := splitCompositeKey(labelKey("ice_cream", "en"))
	if text != "ice_cream" || lang != "en" {
		t.Errorf("Expected (ice_cream, en) but actual=(%v, %v)", text, lang)
	}
}
