package graph

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/rominf/conceptnet-lite/db"
	"github.com/rominf/conceptnet-lite/domain"
	"github.com/rominf/conceptnet-lite/pkg/unique"
)

var ErrNotFound = errors.New("not found")

// edgePageSize is the number of edges EachEdge loads per read transaction.
const edgePageSize = 512

// IsNotFound reports whether err means a lookup matched nothing.
func IsNotFound(err error) bool {
	cause := errors.Cause(err)
	return cause == ErrNotFound || cause == db.ErrKeyNotFound
}

// Graph answers queries against a built ConceptNet store.  It is safe for
// concurrent use.
type Graph struct {
	client    *db.Client
	concepts  *lru.Cache[uint64, *domain.Concept]
	relations map[string]*domain.Relation
	owned     bool
}

// Connect opens the store described by cfg read-only.
func Connect(cfg *Config) (*Graph, error) {
	if cfg == nil {
		return nil, errors.New("nil graph config")
	}
	dbCfg, err := cfg.dbConfig()
	if err != nil {
		return nil, err
	}
	client, err := db.NewClient(dbCfg)
	if err != nil {
		return nil, err
	}
	if err := client.Open(); err != nil {
		return nil, errors.Wrapf(err, "connecting to %v store %v", dbCfg.Type(), dbCfg.Location())
	}
	g, err := newGraph(client, cfg.CacheSize)
	if err != nil {
		client.Close()
		return nil, err
	}
	g.owned = true
	log.WithField("driver", dbCfg.Type()).WithField("path", dbCfg.Location()).WithField("relations", len(g.relations)).Debug("Graph connected")
	return g, nil
}

// New wraps an already opened client.  Close leaves the client open.
func New(client *db.Client, cacheSize int) (*Graph, error) {
	return newGraph(client, cacheSize)
}

func newGraph(client *db.Client, cacheSize int) (*Graph, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[uint64, *domain.Concept](cacheSize)
	if err != nil {
		return nil, err
	}
	rels, err := client.Relations()
	if err != nil {
		return nil, errors.Wrap(err, "loading relations")
	}
	g := &Graph{
		client:    client,
		concepts:  cache,
		relations: make(map[string]*domain.Relation, len(rels)),
	}
	for _, rel := range rels {
		g.relations[rel.Name] = rel
	}
	return g, nil
}

func (g *Graph) Close() error {
	if !g.owned {
		return nil
	}
	return g.client.Close()
}

// Client exposes the underlying storage client.
func (g *Graph) Client() *db.Client {
	return g.client
}

// Info returns the record of the build which produced the store.
func (g *Graph) Info() (*domain.BuildInfo, error) {
	info, err := g.client.BuildInfo()
	if err == db.ErrKeyNotFound {
		return nil, errors.Wrap(ErrNotFound, "build info")
	}
	return info, err
}

func (g *Graph) Language(code string) (*domain.Language, error) {
	lang, err := g.client.Language(code)
	if err == db.ErrKeyNotFound {
		return nil, errors.Wrapf(ErrNotFound, "language %q", code)
	}
	return lang, err
}

func (g *Graph) Languages() ([]*domain.Language, error) {
	return g.client.Languages()
}

// Relations returns every relation used by at least one edge.
func (g *Graph) Relations() []*domain.Relation {
	names := make([]string, 0, len(g.relations))
	for name := range g.relations {
		names = append(names, name)
	}
	names = unique.Sorted(names)
	rels := make([]*domain.Relation, 0, len(names))
	for _, name := range names {
		rels = append(rels, g.relations[name])
	}
	return rels
}

// Labels returns every label with the given text.  An empty lang matches
// any language.
func (g *Graph) Labels(text string, lang string) ([]*domain.Label, error) {
	return g.client.Labels(domain.NormalizeText(text), lang)
}

// Label returns the label with the given text.  When lang is empty the
// match with the lowest language code wins.
func (g *Graph) Label(text string, lang string) (*domain.Label, error) {
	labels, err := g.Labels(text, lang)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "label %q lang=%q", text, lang)
	}
	return labels[0], nil
}

// Concepts returns the concepts of every label matching text and lang.
func (g *Graph) Concepts(text string, lang string) ([]*domain.Concept, error) {
	labels, err := g.Labels(text, lang)
	if err != nil {
		return nil, err
	}
	var ids []uint64
	for _, label := range labels {
		ids = append(ids, label.ConceptIDs...)
	}
	if len(ids) == 0 {
		return nil, errors.Wrapf(ErrNotFound, "concepts for %q lang=%q", text, lang)
	}
	return g.ConceptsByID(unique.Values(ids)...)
}

func (g *Graph) ConceptByURI(uri string) (*domain.Concept, error) {
	concept, err := g.client.ConceptByURI(uri)
	if err == db.ErrKeyNotFound {
		return nil, errors.Wrapf(ErrNotFound, "concept %v", uri)
	}
	if err != nil {
		return nil, err
	}
	g.concepts.Add(concept.ID, concept)
	return concept, nil
}

// ConceptsByID resolves ids through the cache, in order.
func (g *Graph) ConceptsByID(ids ...uint64) ([]*domain.Concept, error) {
	var (
		concepts = make([]*domain.Concept, len(ids))
		missing  []uint64
	)
	for i, id := range ids {
		if concept, ok := g.concepts.Get(id); ok {
			concepts[i] = concept
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return concepts, nil
	}

	loaded, err := g.client.Concepts(missing...)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]*domain.Concept, len(loaded))
	for _, concept := range loaded {
		byID[concept.ID] = concept
		g.concepts.Add(concept.ID, concept)
	}
	for i, id := range ids {
		if concepts[i] == nil {
			concepts[i] = byID[id]
		}
	}
	return concepts, nil
}

// EdgesBetween returns the edges starting in starts and ending in ends.
// With twoWay the edges from ends back to starts are included too.
func (g *Graph) EdgesBetween(starts []*domain.Concept, ends []*domain.Concept, twoWay bool) ([]*Edge, error) {
	set := newEdgeSet()
	if err := g.collectBetween(set, starts, ends); err != nil {
		return nil, err
	}
	if twoWay {
		if err := g.collectBetween(set, ends, starts); err != nil {
			return nil, err
		}
	}
	return g.hydrate(set.edges)
}

func (g *Graph) collectBetween(set *edgeSet, starts []*domain.Concept, ends []*domain.Concept) error {
	if len(starts) == 0 || len(ends) == 0 {
		return nil
	}
	endIDs := idSet(ends)
	out, err := g.client.EdgesOut(conceptIDs(starts)...)
	if err != nil {
		return err
	}
	for _, edge := range out {
		if _, ok := endIDs[edge.EndID]; ok {
			set.add(edge)
		}
	}
	return nil
}

// EdgesFor returns every edge touching one of the concepts.  With
// sameLanguage only edges whose ends share a language are kept.
func (g *Graph) EdgesFor(concepts []*domain.Concept, sameLanguage bool) ([]*Edge, error) {
	ids := conceptIDs(concepts)
	set := newEdgeSet()

	out, err := g.client.EdgesOut(ids...)
	if err != nil {
		return nil, err
	}
	in, err := g.client.EdgesIn(ids...)
	if err != nil {
		return nil, err
	}
	for _, edge := range out {
		set.add(edge)
	}
	for _, edge := range in {
		set.add(edge)
	}

	edges, err := g.hydrate(set.edges)
	if err != nil {
		return nil, err
	}
	if !sameLanguage {
		return edges, nil
	}
	kept := edges[:0]
	for _, edge := range edges {
		if edge.SameLanguage() {
			kept = append(kept, edge)
		}
	}
	return kept, nil
}

// EdgesOut returns the edges starting at c.
func (g *Graph) EdgesOut(c *domain.Concept) ([]*Edge, error) {
	edges, err := g.client.EdgesOut(c.ID)
	if err != nil {
		return nil, err
	}
	return g.hydrate(edges)
}

// EdgesIn returns the edges ending at c.
func (g *Graph) EdgesIn(c *domain.Concept) ([]*Edge, error) {
	edges, err := g.client.EdgesIn(c.ID)
	if err != nil {
		return nil, err
	}
	return g.hydrate(edges)
}

// EachLabel visits the labels of lang in text order until fn returns false.
func (g *Graph) EachLabel(lang string, fn func(label *domain.Label) bool) error {
	return g.client.EachLabel(lang, fn)
}

// EachEdge visits every edge in id order until fn returns false.  fn runs
// outside of any read transaction and may issue further queries.
func (g *Graph) EachEdge(fn func(edge *Edge) bool) error {
	var from uint64
	for {
		page, err := g.client.EdgesFrom(from, edgePageSize)
		if err != nil {
			return err
		}
		edges, err := g.hydrate(page)
		if err != nil {
			return err
		}
		for _, edge := range edges {
			if !fn(edge) {
				return nil
			}
		}
		if len(page) < edgePageSize {
			return nil
		}
		from = page[len(page)-1].ID + 1
	}
}

func (g *Graph) relation(name string) *domain.Relation {
	if rel, ok := g.relations[name]; ok {
		return rel
	}
	return domain.NewRelation(name)
}

// hydrate resolves the relation and both endpoints of each edge.
func (g *Graph) hydrate(edges []*domain.Edge) ([]*Edge, error) {
	if len(edges) == 0 {
		return []*Edge{}, nil
	}
	ids := make([]uint64, 0, 2*len(edges))
	for _, edge := range edges {
		ids = append(ids, edge.StartID, edge.EndID)
	}
	concepts, err := g.ConceptsByID(ids...)
	if err != nil {
		return nil, errors.Wrap(err, "resolving edge endpoints")
	}

	hydrated := make([]*Edge, 0, len(edges))
	for i, edge := range edges {
		hydrated = append(hydrated, &Edge{
			ID:       edge.ID,
			URI:      edge.URI,
			Relation: g.relation(edge.Relation),
			Start:    concepts[2*i],
			End:      concepts[2*i+1],
			Etc:      edge.Etc,
		})
	}
	return hydrated, nil
}
