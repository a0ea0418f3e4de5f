package db

import (
	"encoding/binary"
	"fmt"

	"github.com/gogo/protobuf/proto"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/rominf/conceptnet-lite/domain"
)

// seqBlockSize is the number of ids reserved in the metadata table ahead of
// use.  A batch which is partially applied (badger splits oversized
// transactions) therefore never hands out an id twice on the next run.
const seqBlockSize = 4096

// WriteStats summarizes the changes made by a batch.
type WriteStats struct {
	Edges      int // Edges written.
	Duplicates int // Assertions whose edge URI already existed.
	Concepts   int // Concepts created.
	Labels     int // Labels created.
	Languages  int // Languages created.
	Relations  int // Relations created.
}

func (s *WriteStats) Add(other WriteStats) {
	s.Edges += other.Edges
	s.Duplicates += other.Duplicates
	s.Concepts += other.Concepts
	s.Labels += other.Labels
	s.Languages += other.Languages
	s.Relations += other.Relations
}

type sequence struct {
	name  string
	next  uint64 // Last id handed out.
	limit uint64 // Highest id reserved in storage.
}

// Writer adds assertions to the graph tables inside a single read-write
// transaction.  Obtain one through Client.WriteBatch.
type Writer struct {
	c         *Client
	tx        Transaction
	concepts  *sequence
	edges     *sequence
	pending   map[string]uint64 // Concept URIs interned by this batch.
	languages map[string]struct{}
	relations map[string]struct{}
	stats     WriteStats
}

// WriteBatch runs fn inside one read-write transaction.  Writes are
// committed when fn returns nil.  Only one batch runs at a time.
func (c *Client) WriteBatch(fn func(w *Writer) error) (WriteStats, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.interned == nil {
		cache, err := lru.New[string, uint64](DefaultInternCacheSize)
		if err != nil {
			return WriteStats{}, err
		}
		c.interned = cache
	}

	var w *Writer
	if err := c.be.Update(func(tx Transaction) error {
		var err error
		if w, err = newWriter(c, tx); err != nil {
			return err
		}
		if err = fn(w); err != nil {
			return err
		}
		return w.flush()
	}); err != nil {
		return WriteStats{}, err
	}

	// Only committed ids are safe to remember across batches.
	for uri, id := range w.pending {
		c.interned.Add(uri, id)
	}
	return w.stats, nil
}

func newWriter(c *Client, tx Transaction) (*Writer, error) {
	w := &Writer{
		c:         c,
		tx:        tx,
		pending:   map[string]uint64{},
		languages: map[string]struct{}{},
		relations: map[string]struct{}{},
	}
	var err error
	if w.concepts, err = w.loadSequence(MetaSeqConcepts); err != nil {
		return nil, err
	}
	if w.edges, err = w.loadSequence(MetaSeqEdges); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Writer) loadSequence(name string) (*sequence, error) {
	seq := &sequence{
		name: name,
	}
	v, err := w.tx.Get(TableMetadata, []byte(name))
	if err == ErrKeyNotFound {
		return seq, nil
	} else if err != nil {
		return nil, fmt.Errorf("loading sequence %q: %s", name, err)
	}
	if len(v) != 8 {
		return nil, fmt.Errorf("loading sequence %q: corrupt value of length %v", name, len(v))
	}
	seq.next = binary.BigEndian.Uint64(v)
	seq.limit = seq.next
	return seq, nil
}

func (w *Writer) nextID(seq *sequence) (uint64, error) {
	if seq.next >= seq.limit {
		seq.limit = seq.next + seqBlockSize
		if err := w.tx.Put(TableMetadata, []byte(seq.name), idKey(seq.limit)); err != nil {
			return 0, fmt.Errorf("reserving %q ids: %s", seq.name, err)
		}
	}
	seq.next++
	return seq.next, nil
}

// flush records the exact sequence positions so ids stay dense.
func (w *Writer) flush() error {
	for _, seq := range []*sequence{w.concepts, w.edges} {
		if seq.limit == seq.next {
			continue
		}
		if err := w.tx.Put(TableMetadata, []byte(seq.name), idKey(seq.next)); err != nil {
			return fmt.Errorf("saving sequence %q: %s", seq.name, err)
		}
	}
	return nil
}

func (w *Writer) Stats() WriteStats {
	return w.stats
}

func (w *Writer) put(table string, key []byte, msg proto.Message) error {
	v, err := proto.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshalling %T: %s", msg, err)
	}
	if err := w.tx.Put(table, key, v); err != nil {
		return fmt.Errorf("saving %v: %s", table, err)
	}
	return nil
}

// EnsureLanguage records lang unless it's already known.
func (w *Writer) EnsureLanguage(code string) error {
	if _, ok := w.languages[code]; ok {
		return nil
	}
	if _, err := w.tx.Get(TableLanguages, []byte(code)); err == nil {
		w.languages[code] = struct{}{}
		return nil
	} else if err != ErrKeyNotFound {
		return err
	}
	if err := w.put(TableLanguages, []byte(code), domain.NewLanguage(code)); err != nil {
		return err
	}
	w.languages[code] = struct{}{}
	w.stats.Languages++
	return nil
}

// EnsureRelation records the relation unless it's already known.
func (w *Writer) EnsureRelation(name string) error {
	if _, ok := w.relations[name]; ok {
		return nil
	}
	if _, err := w.tx.Get(TableRelations, []byte(name)); err == nil {
		w.relations[name] = struct{}{}
		return nil
	} else if err != ErrKeyNotFound {
		return err
	}
	if err := w.put(TableRelations, []byte(name), domain.NewRelation(name)); err != nil {
		return err
	}
	w.relations[name] = struct{}{}
	w.stats.Relations++
	return nil
}

// Intern returns the id of the concept identified by ref, creating the
// concept (and its language and label) when it doesn't exist yet.
func (w *Writer) Intern(ref domain.ConceptRef) (uint64, error) {
	if id, ok := w.pending[ref.URI]; ok {
		return id, nil
	}
	if id, ok := w.c.interned.Get(ref.URI); ok {
		return id, nil
	}

	v, err := w.tx.Get(TableConceptURIs, []byte(ref.URI))
	if err == nil {
		id := keyID(v)
		w.c.interned.Add(ref.URI, id)
		return id, nil
	} else if err != ErrKeyNotFound {
		return 0, fmt.Errorf("looking up concept %q: %s", ref.URI, err)
	}

	id, err := w.nextID(w.concepts)
	if err != nil {
		return 0, err
	}
	concept := &domain.Concept{
		ID:         id,
		Text:       ref.Text,
		Language:   ref.Language,
		SenseLabel: ref.SenseLabel,
	}
	if err := w.put(TableConcepts, idKey(id), concept); err != nil {
		return 0, err
	}
	if err := w.tx.Put(TableConceptURIs, []byte(ref.URI), idKey(id)); err != nil {
		return 0, fmt.Errorf("saving concept uri %q: %s", ref.URI, err)
	}
	if err := w.EnsureLanguage(ref.Language); err != nil {
		return 0, err
	}
	if err := w.addToLabel(ref.Text, ref.Language, id); err != nil {
		return 0, err
	}
	w.pending[ref.URI] = id
	w.stats.Concepts++
	return id, nil
}

func (w *Writer) addToLabel(text string, lang string, conceptID uint64) error {
	var (
		key   = labelKey(text, lang)
		label = &domain.Label{}
	)
	v, err := w.tx.Get(TableLabels, key)
	switch err {
	case nil:
		if err := proto.Unmarshal(v, label); err != nil {
			return fmt.Errorf("unmarshalling label %q: %s", text, err)
		}

	case ErrKeyNotFound:
		label.Text = text
		label.Language = lang
		if err := w.tx.Put(TableLanguageLabels, languageLabelKey(lang, text), indexMarker); err != nil {
			return fmt.Errorf("indexing label %q: %s", text, err)
		}
		w.stats.Labels++

	default:
		return err
	}

	if !label.AddConcept(conceptID) {
		return nil
	}
	return w.put(TableLabels, key, label)
}

// AddAssertion stores the edge described by a.  Returns false without error
// when an edge with the same URI already exists.
func (w *Writer) AddAssertion(a *domain.Assertion) (bool, error) {
	if _, err := w.tx.Get(TableEdgeURIs, []byte(a.URI)); err == nil {
		w.stats.Duplicates++
		return false, nil
	} else if err != ErrKeyNotFound {
		return false, fmt.Errorf("looking up edge %q: %s", a.URI, err)
	}

	if err := w.EnsureRelation(a.Relation); err != nil {
		return false, err
	}
	startID, err := w.Intern(a.Start)
	if err != nil {
		return false, err
	}
	endID, err := w.Intern(a.End)
	if err != nil {
		return false, err
	}

	id, err := w.nextID(w.edges)
	if err != nil {
		return false, err
	}
	edge := &domain.Edge{
		ID:       id,
		URI:      a.URI,
		Relation: a.Relation,
		StartID:  startID,
		EndID:    endID,
		Etc:      a.Etc,
	}
	if err := w.put(TableEdges, idKey(id), edge); err != nil {
		return false, err
	}
	if err := w.tx.Put(TableEdgeURIs, []byte(a.URI), idKey(id)); err != nil {
		return false, fmt.Errorf("saving edge uri %q: %s", a.URI, err)
	}
	if err := w.tx.Put(TableEdgesOut, pairKey(startID, id), indexMarker); err != nil {
		return false, fmt.Errorf("indexing outgoing edge: %s", err)
	}
	if err := w.tx.Put(TableEdgesIn, pairKey(endID, id), indexMarker); err != nil {
		return false, fmt.Errorf("indexing incoming edge: %s", err)
	}
	w.stats.Edges++
	return true, nil
}
