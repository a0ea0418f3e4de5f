package domain

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

var ErrMalformedAssertion = errors.New("malformed assertion")

// ConceptRef is a parsed, not yet persisted, concept URI.
type ConceptRef struct {
	URI        string
	Language   string
	Text       string
	SenseLabel string
}

func ParseConceptRef(uri string) (ConceptRef, error) {
	lang, text, sense, err := ParseConceptURI(uri)
	if err != nil {
		return ConceptRef{}, err
	}
	ref := ConceptRef{
		URI:        ConceptURI(lang, text, sense),
		Language:   lang,
		Text:       text,
		SenseLabel: sense,
	}
	return ref, nil
}

// Assertion is a single row of a ConceptNet assertions dump.
type Assertion struct {
	URI      string
	Relation string
	Start    ConceptRef
	End      ConceptRef
	Etc      *EdgeMetadata
}

// SameLanguage reports whether both ends of the assertion share a language.
func (a *Assertion) SameLanguage() bool {
	return a.Start.Language == a.End.Language
}

// etcJSON mirrors the JSON document found in the 5th column.
type etcJSON struct {
	Dataset     string   `json:"dataset"`
	License     string   `json:"license"`
	Weight      *float64 `json:"weight"`
	SurfaceText string   `json:"surfaceText"`
	Sources     []struct {
		Contributor string `json:"contributor"`
		Process     string `json:"process"`
		Activity    string `json:"activity"`
	} `json:"sources"`
}

// ParseAssertion parses one tab-separated assertions line:
//
//	uri <TAB> relation <TAB> start <TAB> end <TAB> etc-json
//
// Lines whose start or end is not a concept (e.g. ExternalURL targets) yield
// ErrNotConcept.
func ParseAssertion(line string) (*Assertion, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), "\t")
	if len(fields) != 5 {
		return nil, errors.Wrapf(ErrMalformedAssertion, "expected 5 columns but found %v", len(fields))
	}
	if !strings.HasPrefix(fields[1], RelationPrefix) {
		return nil, errors.Wrapf(ErrMalformedAssertion, "bad relation %q", fields[1])
	}

	start, err := ParseConceptRef(fields[2])
	if err != nil {
		return nil, err
	}
	end, err := ParseConceptRef(fields[3])
	if err != nil {
		return nil, err
	}

	etc, err := ParseEdgeMetadata(fields[4])
	if err != nil {
		return nil, err
	}

	a := &Assertion{
		URI:      fields[0],
		Relation: RelationName(fields[1]),
		Start:    start,
		End:      end,
		Etc:      etc,
	}
	if a.URI == "" {
		a.URI = EdgeURI(a.Relation, start.URI, end.URI)
	}
	return a, nil
}

// ParseEdgeMetadata decodes the "etc" JSON column.  A missing weight defaults
// to 1.0, which is what ConceptNet assumes.
func ParseEdgeMetadata(raw string) (*EdgeMetadata, error) {
	md := &EdgeMetadata{
		Weight: 1.0,
		Raw:    raw,
	}
	if raw == "" {
		return md, nil
	}
	var ej etcJSON
	if err := json.Unmarshal([]byte(raw), &ej); err != nil {
		return nil, errors.Wrapf(ErrMalformedAssertion, "decoding metadata: %s", err)
	}
	md.Dataset = ej.Dataset
	md.License = ej.License
	md.SurfaceText = ej.SurfaceText
	if ej.Weight != nil {
		md.Weight = *ej.Weight
	}
	for _, s := range ej.Sources {
		md.Sources = append(md.Sources, &Source{
			Contributor: s.Contributor,
			Process:     s.Process,
			Activity:    s.Activity,
		})
	}
	return md, nil
}

// IsMalformed reports whether err originated from ParseAssertion rejecting the
// shape of a line, as opposed to a non-concept endpoint.
func IsMalformed(err error) bool {
	return errors.Cause(err) == ErrMalformedAssertion
}
