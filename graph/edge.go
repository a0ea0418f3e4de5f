package graph

import (
	"github.com/rominf/conceptnet-lite/domain"
)

// Edge is a stored edge with its relation and both endpoints resolved.
type Edge struct {
	ID       uint64
	URI      string
	Relation *domain.Relation
	Start    *domain.Concept
	End      *domain.Concept
	Etc      *domain.EdgeMetadata
}

func (e *Edge) Weight() float64 {
	if e.Etc == nil {
		return 0
	}
	return e.Etc.Weight
}

// SameLanguage reports whether both endpoints share a language.
func (e *Edge) SameLanguage() bool {
	return e.Start.Language == e.End.Language
}

func (e *Edge) String() string {
	return e.Start.URI() + " -" + e.Relation.Name + "-> " + e.End.URI()
}

// edgeSet accumulates edges once each, keeping discovery order.
type edgeSet struct {
	seen  map[uint64]struct{}
	edges []*domain.Edge
}

func newEdgeSet() *edgeSet {
	return &edgeSet{seen: map[uint64]struct{}{}}
}

func (s *edgeSet) add(edge *domain.Edge) {
	if _, ok := s.seen[edge.ID]; ok {
		return
	}
	s.seen[edge.ID] = struct{}{}
	s.edges = append(s.edges, edge)
}

func conceptIDs(concepts []*domain.Concept) []uint64 {
	ids := make([]uint64, 0, len(concepts))
	for _, c := range concepts {
		ids = append(ids, c.ID)
	}
	return ids
}

func idSet(concepts []*domain.Concept) map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(concepts))
	for _, c := range concepts {
		set[c.ID] = struct{}{}
	}
	return set
}
