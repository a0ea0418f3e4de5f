package domain

import (
	"sort"
)

// symmetricRelations lists the ConceptNet relations where the direction of the
// edge carries no meaning.
var symmetricRelations = map[string]struct{}{
	"Antonym":                 struct{}{},
	"DistinctFrom":            struct{}{},
	"EtymologicallyRelatedTo": struct{}{},
	"LocatedNear":             struct{}{},
	"RelatedTo":               struct{}{},
	"SimilarTo":               struct{}{},
	"Synonym":                 struct{}{},
}

// KnownRelations is the set of relations present in the 5.7 release.
var KnownRelations = []string{
	"Antonym",
	"AtLocation",
	"CapableOf",
	"Causes",
	"CausesDesire",
	"CreatedBy",
	"DefinedAs",
	"DerivedFrom",
	"Desires",
	"DistinctFrom",
	"Entails",
	"EtymologicallyDerivedFrom",
	"EtymologicallyRelatedTo",
	"ExternalURL",
	"FormOf",
	"HasA",
	"HasContext",
	"HasFirstSubevent",
	"HasLastSubevent",
	"HasPrerequisite",
	"HasProperty",
	"HasSubevent",
	"InstanceOf",
	"IsA",
	"LocatedNear",
	"MadeOf",
	"MannerOf",
	"MotivatedByGoal",
	"NotCapableOf",
	"NotDesires",
	"NotHasProperty",
	"NotUsedFor",
	"ObstructedBy",
	"PartOf",
	"ReceivesAction",
	"RelatedTo",
	"SimilarTo",
	"SymbolOf",
	"Synonym",
	"UsedFor",
	"dbpedia/capital",
	"dbpedia/field",
	"dbpedia/genre",
	"dbpedia/genus",
	"dbpedia/influencedBy",
	"dbpedia/knownFor",
	"dbpedia/language",
	"dbpedia/leader",
	"dbpedia/occupation",
	"dbpedia/product",
}

// IsSymmetric reports whether the named relation is undirected.  Unknown
// relations are treated as directed.
func IsSymmetric(name string) bool {
	_, ok := symmetricRelations[name]
	return ok
}

func NewRelation(name string) *Relation {
	r := &Relation{
		Name:      name,
		Symmetric: IsSymmetric(name),
	}
	return r
}

// SymmetricRelations returns the sorted names of all undirected relations.
func SymmetricRelations() []string {
	names := make([]string, 0, len(symmetricRelations))
	for name, _ := range symmetricRelations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
