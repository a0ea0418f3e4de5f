package domain

import (
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	ConceptPrefix   = "/c/"
	RelationPrefix  = "/r/"
	AssertionPrefix = "/a/"
)

var ErrNotConcept = errors.New("not a concept URI")

// ParseConceptURI splits a concept URI of the form /c/<lang>/<text>[/<sense>]
// into its components.  Everything following the text segment is returned as
// the sense label, e.g. "n/wn/animal" for /c/en/cat/n/wn/animal.
func ParseConceptURI(uri string) (lang string, text string, sense string, err error) {
	if !strings.HasPrefix(uri, ConceptPrefix) {
		err = ErrNotConcept
		return
	}
	pieces := strings.SplitN(strings.TrimPrefix(uri, ConceptPrefix), "/", 3)
	if len(pieces) < 2 || pieces[0] == "" || pieces[1] == "" {
		err = ErrNotConcept
		return
	}
	lang, text = pieces[0], NormalizeText(pieces[1])
	if len(pieces) == 3 {
		sense = strings.Trim(pieces[2], "/")
	}
	return
}

// ConceptURI is the inverse of ParseConceptURI.
func ConceptURI(lang string, text string, sense string) string {
	uri := ConceptPrefix + lang + "/" + text
	if sense != "" {
		uri += "/" + sense
	}
	return uri
}

// RelationName strips the /r/ prefix from a relation URI.
func RelationName(uri string) string {
	return strings.Trim(strings.TrimPrefix(uri, RelationPrefix), "/")
}

func RelationURI(name string) string {
	return RelationPrefix + name
}

// EdgeURI produces the assertion URI ConceptNet uses to identify an edge.
func EdgeURI(relation string, startURI string, endURI string) string {
	return AssertionPrefix + "[" + RelationURI(relation) + "/," + startURI + "/," + endURI + "/]"
}

// NormalizeText turns user supplied or URI derived text into the form labels
// are keyed by: NFC normalized, with spaces replaced by underscores.
func NormalizeText(text string) string {
	text = norm.NFC.String(strings.TrimSpace(text))
	return strings.Replace(text, " ", "_", -1)
}

// DisplayText reverses the underscore encoding used in URIs.
func DisplayText(text string) string {
	return strings.Replace(text, "_", " ", -1)
}
