package web

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/rominf/conceptnet-lite/domain"
	"github.com/rominf/conceptnet-lite/graph"
)

type ConceptView struct {
	ID       uint64 `json:"id"`
	URI      string `json:"uri"`
	Text     string `json:"text"`
	Language string `json:"language"`
	Sense    string `json:"sense,omitempty"`
}

type LabelView struct {
	Text     string         `json:"text"`
	Language string         `json:"language"`
	Concepts []*ConceptView `json:"concepts"`
}

type EdgeView struct {
	URI         string       `json:"uri"`
	Relation    string       `json:"relation"`
	Symmetric   bool         `json:"symmetric"`
	Start       *ConceptView `json:"start"`
	End         *ConceptView `json:"end"`
	Weight      float64      `json:"weight"`
	Dataset     string       `json:"dataset,omitempty"`
	License     string       `json:"license,omitempty"`
	SurfaceText string       `json:"surface_text,omitempty"`
}

func newConceptView(c *domain.Concept) *ConceptView {
	return &ConceptView{
		ID:       c.ID,
		URI:      c.URI(),
		Text:     c.PlainText(),
		Language: c.Language,
		Sense:    c.SenseLabel,
	}
}

func newEdgeViews(edges []*graph.Edge) []*EdgeView {
	views := make([]*EdgeView, 0, len(edges))
	for _, edge := range edges {
		view := &EdgeView{
			URI:       edge.URI,
			Relation:  edge.Relation.Name,
			Symmetric: edge.Relation.Symmetric,
			Start:     newConceptView(edge.Start),
			End:       newConceptView(edge.End),
			Weight:    edge.Weight(),
		}
		if edge.Etc != nil {
			view.Dataset = edge.Etc.Dataset
			view.License = edge.Etc.License
			view.SurfaceText = edge.Etc.SurfaceText
		}
		views = append(views, view)
	}
	return views
}

func respondWithJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("Encoding %T response: %s", v, err)
	}
}

func respondWithError(w http.ResponseWriter, status int, message string) {
	respondWithJSON(w, status, map[string]string{"error": message})
}

// respondWithLookupError maps not-found lookups to 404 and anything else to
// 500.
func respondWithLookupError(w http.ResponseWriter, err error) {
	if graph.IsNotFound(err) {
		respondWithError(w, http.StatusNotFound, err.Error())
		return
	}
	log.Errorf("Query failed: %s", err)
	respondWithError(w, http.StatusInternalServerError, err.Error())
}

// param returns the decoded value of a route parameter.  chi routes on the
// raw path only when it differs from the decoded one, and only then are the
// parameters still escaped.
func param(req *http.Request, name string) string {
	v := chi.URLParam(req, name)
	if req.URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

// langParam returns the {lang} route parameter.  "*" matches any language.
func langParam(req *http.Request) string {
	if lang := param(req, "lang"); lang != "*" {
		return lang
	}
	return ""
}

// flag parses a boolean query parameter, false when absent or invalid.
func flag(req *http.Request, name string) bool {
	b, _ := strconv.ParseBool(req.URL.Query().Get(name))
	return b
}

func (service *WebService) info(w http.ResponseWriter, req *http.Request) {
	info, err := service.Graph.Info()
	if err != nil {
		respondWithLookupError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, info)
}

func (service *WebService) languages(w http.ResponseWriter, req *http.Request) {
	langs, err := service.Graph.Languages()
	if err != nil {
		respondWithLookupError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, langs)
}

func (service *WebService) labels(w http.ResponseWriter, req *http.Request) {
	label, err := service.Graph.Label(param(req, "text"), langParam(req))
	if err != nil {
		respondWithLookupError(w, err)
		return
	}
	concepts, err := service.Graph.ConceptsByID(label.ConceptIDs...)
	if err != nil {
		respondWithLookupError(w, err)
		return
	}
	view := &LabelView{
		Text:     label.PlainText(),
		Language: label.Language,
		Concepts: make([]*ConceptView, 0, len(concepts)),
	}
	for _, c := range concepts {
		view.Concepts = append(view.Concepts, newConceptView(c))
	}
	respondWithJSON(w, http.StatusOK, view)
}

func (service *WebService) concepts(w http.ResponseWriter, req *http.Request) {
	concepts, err := service.Graph.Concepts(param(req, "text"), langParam(req))
	if err != nil {
		respondWithLookupError(w, err)
		return
	}
	views := make([]*ConceptView, 0, len(concepts))
	for _, c := range concepts {
		views = append(views, newConceptView(c))
	}
	respondWithJSON(w, http.StatusOK, views)
}

func (service *WebService) edgesFor(w http.ResponseWriter, req *http.Request) {
	concepts, err := service.Graph.Concepts(param(req, "text"), langParam(req))
	if err != nil {
		respondWithLookupError(w, err)
		return
	}
	edges, err := service.Graph.EdgesFor(concepts, flag(req, "same_language"))
	if err != nil {
		respondWithLookupError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newEdgeViews(edges))
}

func (service *WebService) edgesBetween(w http.ResponseWriter, req *http.Request) {
	lang := langParam(req)
	starts, err := service.Graph.Concepts(param(req, "a"), lang)
	if err != nil {
		respondWithLookupError(w, err)
		return
	}
	ends, err := service.Graph.Concepts(param(req, "b"), lang)
	if err != nil {
		respondWithLookupError(w, err)
		return
	}
	edges, err := service.Graph.EdgesBetween(starts, ends, flag(req, "two_way"))
	if err != nil {
		respondWithLookupError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newEdgeViews(edges))
}
