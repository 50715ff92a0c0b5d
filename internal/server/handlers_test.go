package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/genesetlab/overrep/internal/catalog"
	"github.com/genesetlab/overrep/internal/duckdb"
	"github.com/genesetlab/overrep/internal/enrich"
	"github.com/genesetlab/overrep/internal/geneset"
	"github.com/genesetlab/overrep/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const targetsGMT = "A\tpartial overlap\tG10\tG03\tG01\tG02\tG11\n" +
	"B\tdisjoint\tG06\tG07\tG08\tG09\tG10\n" +
	"C\tfull overlap\tG01\tG02\tG03\tG04\tG05\n"

func newTestServer(t *testing.T, withStore bool) *Server {
	t.Helper()

	lib, err := geneset.ParseLibrary(strings.NewReader(targetsGMT), "targets", "Homo sapiens")
	require.NoError(t, err)

	genes := make([]string, 0, 20)
	for i := 1; i <= 20; i++ {
		genes = append(genes, fmt.Sprintf("G%02d", i))
	}
	bg := geneset.NewBackground("ref", "Homo sapiens", genes)

	cat := catalog.New([]*geneset.Library{lib}, []*geneset.Background{bg})

	var store *duckdb.Store
	if withStore {
		store, err = duckdb.Open("")
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
	}

	return New(enrich.NewEngine(), cat, store, metrics.New(), zap.NewNop())
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, false)

	w := doRequest(t, srv, http.MethodGet, "/healthz", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHandleMethods(t *testing.T) {
	srv := newTestServer(t, false)

	w := doRequest(t, srv, http.MethodGet, "/v1/methods", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Methods []string `json:"methods"`
		Default string   `json:"default"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "fishers_exact", resp.Default)
	assert.Equal(t, []string{"fishers_exact", "hypergeometric", "chi_squared"}, resp.Methods)
}

func TestHandleLibraries(t *testing.T) {
	srv := newTestServer(t, false)

	w := doRequest(t, srv, http.MethodGet, "/v1/libraries", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var infos []libraryInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "targets", infos[0].Name)
	assert.Equal(t, "Homo sapiens", infos[0].Organism)
	assert.Equal(t, 3, infos[0].NumTerms)
	assert.Equal(t, 11, infos[0].UniqueGenes)
}

func TestHandleBackgrounds(t *testing.T) {
	srv := newTestServer(t, false)

	w := doRequest(t, srv, http.MethodGet, "/v1/backgrounds", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var infos []backgroundInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "ref", infos[0].Name)
	assert.Equal(t, 20, infos[0].Size)
}

func TestHandleEnrich(t *testing.T) {
	srv := newTestServer(t, false)

	w := doRequest(t, srv, http.MethodPost, "/v1/enrich", enrichRequest{
		Genes:   []string{"g01", "g02", "g03", "g04", "g05"},
		Name:    "query",
		Library: "targets",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp enrichResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "query", resp.GeneSet.Name)
	assert.Equal(t, 5, resp.GeneSet.Size)
	assert.Empty(t, resp.GeneSet.Validation.NonValid)

	require.NotNil(t, resp.Run)
	assert.Equal(t, enrich.FishersExact, resp.Run.Method)
	require.Len(t, resp.Run.Results, 3)
	assert.Equal(t, "C", resp.Run.Results[0].Term)
	assert.Equal(t, "A", resp.Run.Results[1].Term)
	assert.Equal(t, "B", resp.Run.Results[2].Term)
	assert.InEpsilon(t, 1.0/15504.0, resp.Run.Results[0].PValue, 1e-9)
}

func TestHandleEnrich_DefaultBackground(t *testing.T) {
	srv := newTestServer(t, false)

	w := doRequest(t, srv, http.MethodPost, "/v1/enrich", enrichRequest{
		Genes:   []string{"G01", "G02"},
		Library: "targets",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp enrichResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ref", resp.Run.Background)
	assert.Equal(t, "gene_set", resp.GeneSet.Name)
}

func TestHandleEnrich_PersistsRun(t *testing.T) {
	srv := newTestServer(t, true)

	w := doRequest(t, srv, http.MethodPost, "/v1/enrich", enrichRequest{
		Genes:   []string{"G01", "G02", "G03", "G04", "G05"},
		Library: "targets",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp enrichResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Run)

	w = doRequest(t, srv, http.MethodGet, "/v1/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var summaries []duckdb.RunSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, resp.Run.ID, summaries[0].ID)
	assert.Equal(t, 3, summaries[0].NumTerms)

	w = doRequest(t, srv, http.MethodGet, "/v1/runs/"+resp.Run.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stored enrich.Run
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, resp.Run.ID, stored.ID)
	assert.Len(t, stored.Results, 3)
}

func TestHandleEnrich_UnknownLibrary(t *testing.T) {
	srv := newTestServer(t, false)

	w := doRequest(t, srv, http.MethodPost, "/v1/enrich", enrichRequest{
		Genes:   []string{"G01"},
		Library: "missing",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}

func TestHandleEnrich_UnknownBackground(t *testing.T) {
	srv := newTestServer(t, false)

	w := doRequest(t, srv, http.MethodPost, "/v1/enrich", enrichRequest{
		Genes:      []string{"G01"},
		Library:    "targets",
		Background: "missing",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "missing")
}

func TestHandleEnrich_UnsupportedMethod(t *testing.T) {
	srv := newTestServer(t, false)

	w := doRequest(t, srv, http.MethodPost, "/v1/enrich", enrichRequest{
		Genes:   []string{"G01"},
		Library: "targets",
		Method:  "students_t",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "students_t")
}

func TestHandleEnrich_MissingGenes(t *testing.T) {
	srv := newTestServer(t, false)

	w := doRequest(t, srv, http.MethodPost, "/v1/enrich", map[string]any{
		"library": "targets",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleEnrich_EmptyGenes(t *testing.T) {
	srv := newTestServer(t, false)

	w := doRequest(t, srv, http.MethodPost, "/v1/enrich", map[string]any{
		"genes":   []string{},
		"library": "targets",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least one gene")
}

func TestHandleGetRun_NotFound(t *testing.T) {
	srv := newTestServer(t, true)

	w := doRequest(t, srv, http.MethodGet, "/v1/runs/no-such-run", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleListRuns_NoStore(t *testing.T) {
	srv := newTestServer(t, false)

	w := doRequest(t, srv, http.MethodGet, "/v1/runs", nil)
	require.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, false)

	w := doRequest(t, srv, http.MethodPost, "/v1/enrich", enrichRequest{
		Genes:   []string{"G01", "G02"},
		Library: "targets",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "overrep_runs_total")
	assert.Contains(t, w.Body.String(), "overrep_terms_processed_total")
}
