package db

import (
	"fmt"

	"github.com/gogo/protobuf/proto"

	"github.com/rominf/conceptnet-lite/domain"
)

func unmarshal(table string, v []byte, msg proto.Message) error {
	if err := proto.Unmarshal(v, msg); err != nil {
		return fmt.Errorf("unmarshalling %v record: %s", table, err)
	}
	return nil
}

func (c *Client) Language(code string) (*domain.Language, error) {
	v, err := c.be.Get(TableLanguages, []byte(code))
	if err != nil {
		return nil, err
	}
	lang := &domain.Language{}
	if err := unmarshal(TableLanguages, v, lang); err != nil {
		return nil, err
	}
	return lang, nil
}

// Languages returns every known language ordered by code.
func (c *Client) Languages() ([]*domain.Language, error) {
	langs := []*domain.Language{}
	var err error
	if eachErr := c.be.EachRowWithBreak(TableLanguages, func(_ []byte, v []byte) bool {
		lang := &domain.Language{}
		if err = unmarshal(TableLanguages, v, lang); err != nil {
			return false
		}
		langs = append(langs, lang)
		return true
	}); eachErr != nil {
		return nil, eachErr
	}
	if err != nil {
		return nil, err
	}
	return langs, nil
}

// Labels returns the labels with the given text.  An empty lang matches
// every language, in language code order.
func (c *Client) Labels(text string, lang string) ([]*domain.Label, error) {
	labels := []*domain.Label{}
	if err := c.be.View(func(tx Transaction) error {
		if lang != "" {
			label, err := getLabel(tx, text, lang)
			if err == ErrKeyNotFound {
				return nil
			} else if err != nil {
				return err
			}
			labels = append(labels, label)
			return nil
		}

		var err error
		if scanErr := scanPrefix(tx, TableLabels, compositePrefix(text), func(_ []byte, v []byte) bool {
			label := &domain.Label{}
			if err = unmarshal(TableLabels, v, label); err != nil {
				return false
			}
			labels = append(labels, label)
			return true
		}); scanErr != nil {
			return scanErr
		}
		return err
	}); err != nil {
		return nil, err
	}
	return labels, nil
}

func getLabel(tx Transaction, text string, lang string) (*domain.Label, error) {
	v, err := tx.Get(TableLabels, labelKey(text, lang))
	if err != nil {
		return nil, err
	}
	label := &domain.Label{}
	if err := unmarshal(TableLabels, v, label); err != nil {
		return nil, err
	}
	return label, nil
}

// EachLabel visits the labels of a language in text order until fn returns
// false.  An empty lang visits every label.
func (c *Client) EachLabel(lang string, fn func(label *domain.Label) bool) error {
	return c.be.View(func(tx Transaction) error {
		var err error
		if lang == "" {
			if scanErr := scanPrefix(tx, TableLabels, nil, func(_ []byte, v []byte) bool {
				label := &domain.Label{}
				if err = unmarshal(TableLabels, v, label); err != nil {
					return false
				}
				return fn(label)
			}); scanErr != nil {
				return scanErr
			}
			return err
		}

		// Collect a page of texts before resolving them so the index cursor
		// isn't held open across lookups.
		const page = 1024
		var (
			from  = compositePrefix(lang)
			done  bool
			texts = make([]string, 0, page)
		)
		for !done {
			texts = texts[:0]
			prefix := compositePrefix(lang)
			cursor := tx.Cursor(TableLanguageLabels)
			for k, _ := cursor.Seek(from).Data(); hasPrefix(k, prefix); k, _ = cursor.Next().Data() {
				if len(texts) == page {
					break
				}
				_, text := splitCompositeKey(k)
				texts = append(texts, text)
			}
			err = cursor.Err()
			cursor.Close()
			if err != nil {
				return err
			}
			if len(texts) < page {
				done = true
			} else {
				// Resume just after the last text of this page.
				from = append(languageLabelKey(lang, texts[len(texts)-1]), 0)
			}

			for _, text := range texts {
				label, err := getLabel(tx, text, lang)
				if err == ErrKeyNotFound {
					continue
				} else if err != nil {
					return err
				}
				if !fn(label) {
					return nil
				}
			}
		}
		return nil
	})
}

func (c *Client) Concept(id uint64) (*domain.Concept, error) {
	v, err := c.be.Get(TableConcepts, idKey(id))
	if err != nil {
		return nil, err
	}
	concept := &domain.Concept{}
	if err := unmarshal(TableConcepts, v, concept); err != nil {
		return nil, err
	}
	return concept, nil
}

// Concepts resolves ids in order.  Missing ids yield ErrKeyNotFound.
func (c *Client) Concepts(ids ...uint64) ([]*domain.Concept, error) {
	concepts := make([]*domain.Concept, 0, len(ids))
	if err := c.be.View(func(tx Transaction) error {
		for _, id := range ids {
			v, err := tx.Get(TableConcepts, idKey(id))
			if err != nil {
				return fmt.Errorf("concept id=%v: %w", id, err)
			}
			concept := &domain.Concept{}
			if err := unmarshal(TableConcepts, v, concept); err != nil {
				return err
			}
			concepts = append(concepts, concept)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return concepts, nil
}

func (c *Client) ConceptByURI(uri string) (*domain.Concept, error) {
	v, err := c.be.Get(TableConceptURIs, []byte(uri))
	if err != nil {
		return nil, err
	}
	return c.Concept(keyID(v))
}

func (c *Client) Edge(id uint64) (*domain.Edge, error) {
	v, err := c.be.Get(TableEdges, idKey(id))
	if err != nil {
		return nil, err
	}
	edge := &domain.Edge{}
	if err := unmarshal(TableEdges, v, edge); err != nil {
		return nil, err
	}
	return edge, nil
}

func (c *Client) EdgeByURI(uri string) (*domain.Edge, error) {
	v, err := c.be.Get(TableEdgeURIs, []byte(uri))
	if err != nil {
		return nil, err
	}
	return c.Edge(keyID(v))
}

// EdgesOut returns the edges starting at any of the concepts, ordered by
// concept then edge id.
func (c *Client) EdgesOut(conceptIDs ...uint64) ([]*domain.Edge, error) {
	return c.incidentEdges(TableEdgesOut, conceptIDs)
}

// EdgesIn returns the edges ending at any of the concepts.
func (c *Client) EdgesIn(conceptIDs ...uint64) ([]*domain.Edge, error) {
	return c.incidentEdges(TableEdgesIn, conceptIDs)
}

func (c *Client) incidentEdges(index string, conceptIDs []uint64) ([]*domain.Edge, error) {
	edges := []*domain.Edge{}
	if err := c.be.View(func(tx Transaction) error {
		for _, conceptID := range conceptIDs {
			edgeIDs := []uint64{}
			if err := scanPrefix(tx, index, idKey(conceptID), func(k []byte, _ []byte) bool {
				edgeIDs = append(edgeIDs, pairEdgeID(k))
				return true
			}); err != nil {
				return err
			}
			for _, edgeID := range edgeIDs {
				v, err := tx.Get(TableEdges, idKey(edgeID))
				if err != nil {
					return fmt.Errorf("edge id=%v referenced by %v: %w", edgeID, index, err)
				}
				edge := &domain.Edge{}
				if err := unmarshal(TableEdges, v, edge); err != nil {
					return err
				}
				edges = append(edges, edge)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return edges, nil
}

// EachEdge visits every edge in id order until fn returns false.
func (c *Client) EachEdge(fn func(edge *domain.Edge) bool) error {
	var err error
	if eachErr := c.be.EachRowWithBreak(TableEdges, func(_ []byte, v []byte) bool {
		edge := &domain.Edge{}
		if err = unmarshal(TableEdges, v, edge); err != nil {
			return false
		}
		return fn(edge)
	}); eachErr != nil {
		return eachErr
	}
	return err
}

func (c *Client) Relation(name string) (*domain.Relation, error) {
	v, err := c.be.Get(TableRelations, []byte(name))
	if err != nil {
		return nil, err
	}
	rel := &domain.Relation{}
	if err := unmarshal(TableRelations, v, rel); err != nil {
		return nil, err
	}
	return rel, nil
}

// Relations returns every relation present in the store ordered by name.
func (c *Client) Relations() ([]*domain.Relation, error) {
	rels := []*domain.Relation{}
	var err error
	if eachErr := c.be.EachRowWithBreak(TableRelations, func(_ []byte, v []byte) bool {
		rel := &domain.Relation{}
		if err = unmarshal(TableRelations, v, rel); err != nil {
			return false
		}
		rels = append(rels, rel)
		return true
	}); eachErr != nil {
		return nil, eachErr
	}
	if err != nil {
		return nil, err
	}
	return rels, nil
}

// EdgesFrom returns up to limit edges with ids >= from, in id order.
func (c *Client) EdgesFrom(from uint64, limit int) ([]*domain.Edge, error) {
	edges := make([]*domain.Edge, 0, limit)
	if err := c.be.View(func(tx Transaction) error {
		cursor := tx.Cursor(TableEdges)
		defer cursor.Close()

		for k, v := cursor.Seek(idKey(from)).Data(); k != nil && len(edges) < limit; k, v = cursor.Next().Data() {
			edge := &domain.Edge{}
			if err := unmarshal(TableEdges, v, edge); err != nil {
				return err
			}
			edges = append(edges, edge)
		}
		return cursor.Err()
	}); err != nil {
		return nil, err
	}
	return edges, nil
}
