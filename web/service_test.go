package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rominf/conceptnet-lite/db"
	"github.com/rominf/conceptnet-lite/domain"
	"github.com/rominf/conceptnet-lite/graph"
	"github.com/rominf/conceptnet-lite/ingest"
)

func newTestService(t *testing.T) *WebService {
	path := filepath.Join(t.TempDir(), "conceptnet.bolt")
	require.NoError(t, db.WithClient(db.NewBoltConfig(path), func(client *db.Client) error {
		_, err := ingest.NewBuilder(client, ingest.NewConfig()).Build(context.Background(), "../ingest/testdata/assertions.csv")
		return err
	}))

	g, err := graph.Connect(graph.NewConfig("bolt", path))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, g.Close())
	})
	return New(g, &Config{Addr: "127.0.0.1:0"})
}

func get(t *testing.T, baseURL string, path string, dst interface{}) int {
	resp, err := http.Get(baseURL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if dst != nil {
		require.NoError(t, json.Unmarshal(body, dst), "body=%s", body)
	}
	return resp.StatusCode
}

func TestRoutes(t *testing.T) {
	service := newTestService(t)
	server := httptest.NewServer(service.Handler())
	defer server.Close()

	var langs []*domain.Language
	assert.Equal(t, http.StatusOK, get(t, server.URL, "/v1/languages", &langs))
	require.Len(t, langs, 2)
	assert.Equal(t, "French", langs[1].Name)

	var label LabelView
	assert.Equal(t, http.StatusOK, get(t, server.URL, "/v1/labels/en/ice%20cream", &label))
	assert.Equal(t, "ice cream", label.Text)
	require.Len(t, label.Concepts, 1)
	assert.Equal(t, "/c/en/ice_cream/n", label.Concepts[0].URI)

	var concepts []*ConceptView
	assert.Equal(t, http.StatusOK, get(t, server.URL, "/v1/concepts/*/animal", &concepts))
	require.Len(t, concepts, 2)
	assert.Equal(t, "fr", concepts[1].Language)

	var edges []*EdgeView
	assert.Equal(t, http.StatusOK, get(t, server.URL, "/v1/edges/for/en/cat", &edges))
	assert.Len(t, edges, 4)

	edges = nil
	assert.Equal(t, http.StatusOK, get(t, server.URL, "/v1/edges/for/en/cat?same_language=1", &edges))
	require.Len(t, edges, 2)
	assert.Equal(t, "IsA", edges[0].Relation)
	assert.Equal(t, "[[a cat]] is [[an animal]]", edges[0].SurfaceText)

	edges = nil
	assert.Equal(t, http.StatusOK, get(t, server.URL, "/v1/edges/between/en/dog/cat", &edges))
	assert.Empty(t, edges)

	edges = nil
	assert.Equal(t, http.StatusOK, get(t, server.URL, "/v1/edges/between/en/dog/cat?two_way=true", &edges))
	require.Len(t, edges, 1)
	assert.Equal(t, "RelatedTo", edges[0].Relation)
	assert.True(t, edges[0].Symmetric)

	var info domain.BuildInfo
	assert.Equal(t, http.StatusOK, get(t, server.URL, "/v1/info", &info))
	assert.Equal(t, uint64(8), info.EdgesWritten)
}

func TestNotFound(t *testing.T) {
	service := newTestService(t)
	server := httptest.NewServer(service.Handler())
	defer server.Close()

	paths := []string{
		"/v1/labels/en/unicorn",
		"/v1/concepts/fr/cat",
		"/v1/edges/for/en/unicorn",
		"/v1/edges/between/en/cat/unicorn",
		"/v1/concepts/en/ice%2520cream",
		"/v2/nothing",
	}
	for i, path := range paths {
		var body map[string]string
		assert.Equal(t, http.StatusNotFound, get(t, server.URL, path, &body), "[i=%v] path=%v", i, path)
		assert.NotEmpty(t, body["error"], "[i=%v] path=%v", i, path)
	}
}

func TestParam(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/echo/{text}", func(w http.ResponseWriter, req *http.Request) {
		io.WriteString(w, param(req, "text"))
	})

	testCases := []struct {
		path     string
		expected string
	}{
		{path: "/echo/cat", expected: "cat"},
		{path: "/echo/ice%20cream", expected: "ice cream"},
		{path: "/echo/ice%2520cream", expected: "ice%20cream"},
		{path: "/echo/a%2Fb", expected: "a/b"},
	}
	for i, testCase := range testCases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, testCase.path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, "[i=%v] path=%v", i, testCase.path)
		assert.Equal(t, testCase.expected, rec.Body.String(), "[i=%v] path=%v", i, testCase.path)
	}
}

func TestMetrics(t *testing.T) {
	service := newTestService(t)
	server := httptest.NewServer(service.Handler())
	defer server.Close()

	get(t, server.URL, "/v1/languages", nil)

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "conceptnet_web_requests_total")
	assert.Contains(t, string(body), "conceptnet_ingest_edges_written_total")
}

func TestStartStop(t *testing.T) {
	service := newTestService(t)

	assert.Equal(t, ErrNotRunning, service.Stop())
	require.NoError(t, service.Start())
	assert.Equal(t, ErrAlreadyRunning, service.Start())

	addr := service.Addr()
	require.NotNil(t, addr)

	var langs []*domain.Language
	assert.Equal(t, http.StatusOK, get(t, "http://"+addr.String(), "/v1/languages", &langs))
	assert.Len(t, langs, 2)

	require.NoError(t, service.Stop())
	assert.Nil(t, service.Addr())
}
