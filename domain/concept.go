package domain

// URI returns the full ConceptNet URI of the concept.
func (c *Concept) URI() string {
	return ConceptURI(c.Language, c.Text, c.SenseLabel)
}

// PlainText is the concept text with the URI underscore encoding removed.
func (c *Concept) PlainText() string {
	return DisplayText(c.Text)
}

func (l *Label) PlainText() string {
	return DisplayText(l.Text)
}

// HasConcept reports whether id is already listed for the label.
func (l *Label) HasConcept(id uint64) bool {
	for _, cid := range l.ConceptIDs {
		if cid == id {
			return true
		}
	}
	return false
}

// AddConcept appends id unless it's already present.  Returns true when the
// label was modified.
func (l *Label) AddConcept(id uint64) bool {
	if l.HasConcept(id) {
		return false
	}
	l.ConceptIDs = append(l.ConceptIDs, id)
	return true
}

// Weight returns the edge weight, or zero when no metadata is attached.
func (e *Edge) Weight() float64 {
	if e.Etc == nil {
		return 0
	}
	return e.Etc.Weight
}

// Other returns the opposite endpoint id when id is one of the edge ends,
// otherwise 0.
func (e *Edge) Other(id uint64) uint64 {
	switch id {
	case e.StartID:
		return e.EndID
	case e.EndID:
		return e.StartID
	}
	return 0
}
