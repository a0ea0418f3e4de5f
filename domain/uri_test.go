package domain

import (
	"testing"
)

func TestParseConceptURI(t *testing.T) {
	testCases := []struct {
		uri   string
		lang  string
		text  string
		sense string
		err   error
	}{
		{uri: "/c/en/cat", lang: "en", text: "cat"},
		{uri: "/c/en/cat/n", lang: "en", text: "cat", sense: "n"},
		{uri: "/c/en/cat/n/wn/animal", lang: "en", text: "cat", sense: "n/wn/animal"},
		{uri: "/c/en/ice_cream/n/", lang: "en", text: "ice_cream", sense: "n"},
		{uri: "/c/ae/ahura", lang: "ae", text: "ahura"},
		{uri: "/c/en", err: ErrNotConcept},
		{uri: "/c//cat", err: ErrNotConcept},
		{uri: "http://dbpedia.org/resource/Cat", err: ErrNotConcept},
		{uri: "/r/IsA", err: ErrNotConcept},
	}
	for i, testCase := range testCases {
		lang, text, sense, err := ParseConceptURI(testCase.uri)
		if expected, actual := testCase.err, err; actual != expected {
			t.Errorf("[i=%v] Expected err=%v but actual=%v", i, expected, actual)
			continue
		}
		if expected, actual := testCase.lang, lang; actual != expected {
			t.Errorf("[i=%v] Expected lang=%q but actual=%q", i, expected, actual)
		}
		if expected, actual := testCase.text, text; actual != expected {
			t.Errorf("[i=%v] Expected text=%q but actual=%q", i, expected, actual)
		}
		if expected, actual := testCase.sense, sense; actual != expected {
			t.Errorf("[i=%v] Expected sense=%q but actual=%q", i, expected, actual)
		}
	}
}

func TestConceptURIRoundTrip(t *testing.T) {
	uris := []string{
		"/c/en/cat",
		"/c/en/cat/n",
		"/c/fr/chat/n/wn/animal",
	}
	for i, uri := range uris {
		lang, text, sense, err := ParseConceptURI(uri)
		if err != nil {
			t.Fatalf("[i=%v] %s", i, err)
		}
		if expected, actual := uri, ConceptURI(lang, text, sense); actual != expected {
			t.Errorf("[i=%v] Expected uri=%v but actual=%v", i, expected, actual)
		}
		c := &Concept{Text: text, Language: lang, SenseLabel: sense}
		if expected, actual := uri, c.URI(); actual != expected {
			t.Errorf("[i=%v] Expected concept.URI()=%v but actual=%v", i, expected, actual)
		}
	}
}

func TestEdgeURI(t *testing.T) {
	const expected = "/a/[/r/Antonym/,/c/en/black/n/,/c/en/white/n/]"
	if actual := EdgeURI("Antonym", "/c/en/black/n", "/c/en/white/n"); actual != expected {
		t.Errorf("Expected edge uri=%v but actual=%v", expected, actual)
	}
}

func TestNormalizeText(t *testing.T) {
	testCases := []struct {
		in  string
		out string
	}{
		{in: "cat", out: "cat"},
		{in: " ice cream ", out: "ice_cream"},
		// Decomposed e + combining acute accent.
		{in: "cafe\u0301", out: "caf\u00e9"},
	}
	for i, testCase := range testCases {
		if expected, actual := testCase.out, NormalizeText(testCase.in); actual != expected {
			t.Errorf("[i=%v] Expected normalized=%q but actual=%q", i, expected, actual)
		}
	}
	if expected, actual := "ice cream", DisplayText("ice_cream"); actual != expected {
		t.Errorf("Expected display text=%q but actual=%q", expected, actual)
	}
}

func TestRelations(t *testing.T) {
	for _, name := range []string{"Antonym", "RelatedTo", "Synonym"} {
		if !IsSymmetric(name) {
			t.Errorf("Expected %v to be symmetric", name)
		}
	}
	for _, name := range []string{"IsA", "PartOf", "dbpedia/genre", "NoSuchRelation"} {
		if IsSymmetric(name) {
			t.Errorf("Expected %v to be asymmetric", name)
		}
	}
	if expected, actual := "dbpedia/genre", RelationName("/r/dbpedia/genre"); actual != expected {
		t.Errorf("Expected relation name=%v but actual=%v", expected, actual)
	}
}
