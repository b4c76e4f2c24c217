package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agenthands/sift/internal/config"
	"github.com/agenthands/sift/internal/core"
	"github.com/agenthands/sift/internal/core/fanout"
	"github.com/agenthands/sift/internal/core/model"
	"github.com/agenthands/sift/internal/llm"
	"github.com/agenthands/sift/internal/search"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, backend search.Backend, opts ...Option) *gin.Engine {
	t.Helper()
	cfg := config.Default()

	pool, err := fanout.NewPool(4)
	require.NoError(t, err)
	t.Cleanup(pool.Release)

	pipeline := core.NewPipeline(backend, fanout.NewExecutor(pool, nil), cfg, nil)
	return NewServer(cfg, pipeline, backend, nil, opts...).SetupRouter()
}

func post(t *testing.T, r http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sampleResults() []model.Result {
	return []model.Result{
		{Title: "Go", Snippet: "The Go language", URL: "https://go.dev"},
		{Title: "Go again", Snippet: "duplicate", URL: "https://go.dev"},
		{Title: "Rust", Snippet: "Another language", URL: "https://rust-lang.org"},
	}
}

func TestRoot(t *testing.T) {
	r := newTestServer(t, &MockBackend{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "Sift search API. Use POST /search with your query."}`, w.Body.String())
}

func TestSearch_BasicNoEngine(t *testing.T) {
	r := newTestServer(t, &MockBackend{Results: sampleResults()})

	w := post(t, r, `{"query": "go language", "mode": "basic", "provide_answer": true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.NotContains(t, out, "answer")

	results := out["results"].([]any)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NotContains(t, r.(map[string]any), "relevancy_score")
	}
}

func TestSearch_AdvancedDefaultsToKeywordScores(t *testing.T) {
	r := newTestServer(t, &MockBackend{Results: sampleResults()})

	w := post(t, r, `{"query": "go language"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var out model.SearchOutput
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Results, 2)
	assert.Equal(t, "https://go.dev", out.Results[0].URL)
	require.NotNil(t, out.Results[0].RelevancyScore)
	assert.Equal(t, 2.0, *out.Results[0].RelevancyScore)
}

func TestSearch_WithEngine(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	engine := &MockEngine{Answer: "Go is a language."}
	factory := func(provider, apiKey string) (core.Engine, error) {
		engine.Provider = provider
		engine.APIKey = apiKey
		return engine, nil
	}
	r := newTestServer(t, &MockBackend{Results: sampleResults()}, WithEngineFactory(factory))

	w := post(t, r, `{"query": "go", "llm_engine": "claude", "provide_answer": true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out model.SearchOutput
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotNil(t, out.Answer)
	assert.Equal(t, "Go is a language.", *out.Answer)
	assert.Equal(t, "claude", engine.Provider)
	assert.Equal(t, "env-key", engine.APIKey)
	assert.True(t, engine.Closed)
}

func TestSearch_RequestKeyBeatsEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	var gotKey string
	factory := func(provider, apiKey string) (core.Engine, error) {
		gotKey = apiKey
		return &MockEngine{APIKey: apiKey}, nil
	}
	r := newTestServer(t, &MockBackend{Results: sampleResults()}, WithEngineFactory(factory))

	w := post(t, r, `{"query": "go", "llm_engine": "openai", "openai_api_key": "request-key"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "request-key", gotKey)
}

func TestSearch_MissingCredential(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	r := newTestServer(t, &MockBackend{Results: sampleResults()})

	w := post(t, r, `{"query": "go", "llm_engine": "gemini"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), llm.ErrMissingCredential.Error())
}

func TestSearch_BadRequests(t *testing.T) {
	r := newTestServer(t, &MockBackend{Results: sampleResults()})

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"query":`},
		{name: "missing query", body: `{"mode": "basic"}`},
		{name: "blank query", body: `{"query": "   "}`},
		{name: "unknown mode", body: `{"query": "go", "mode": "turbo"}`},
		{name: "unknown engine", body: `{"query": "go", "llm_engine": "bing"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, r, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestSearch_AllSearchesFailed(t *testing.T) {
	r := newTestServer(t, &MockBackend{Err: errBackendDown})

	w := post(t, r, `{"query": "go"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "all searches failed")
}

func TestSearch_DuckDuckGoBackendWithOptions(t *testing.T) {
	page := `<html><body>
<div class="result"><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F">The Go Programming Language</a>
<a class="result__snippet">Go is an open source programming language.</a></div>
</body></html>`
	ddg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(page))
	}))
	defer ddg.Close()

	cfg := config.Default().Search
	cfg.BaseURL = ddg.URL
	backend, err := search.NewDuckDuckGo(cfg, nil)
	require.NoError(t, err)
	r := newTestServer(t, backend)

	w := post(t, r, `{"query": "golang", "timeout": 5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out model.SearchOutput
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Results, 1)
	assert.Equal(t, "https://go.dev/", out.Results[0].URL)

	w = post(t, r, `{"query": "golang", "proxy": "ftp://nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestServer(t, &MockBackend{Results: sampleResults()})
	post(t, r, `{"query": "go"}`)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", bytes.NewReader(nil)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sift_pipeline_duration_seconds")
	assert.Contains(t, w.Body.String(), "sift_backend_queries_total")
}
