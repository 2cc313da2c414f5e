package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditdesk/lineageflow/pkg/cache"
	"github.com/creditdesk/lineageflow/pkg/client"
	apperrors "github.com/creditdesk/lineageflow/pkg/errors"
	"github.com/creditdesk/lineageflow/pkg/events"
	"github.com/creditdesk/lineageflow/pkg/lineage"
	"github.com/creditdesk/lineageflow/pkg/observability"
	"github.com/creditdesk/lineageflow/pkg/pipeline"
)

const chainJSON = `{
  "nodes": [
    {"id": "raw", "label": "Raw Trades", "type": "dataset"},
    {"id": "clean", "label": "clean", "type": "operation"}
  ],
  "edges": [{"source": "raw", "target": "clean"}]
}`

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard)
	}
	if cfg.Runner == nil {
		mem, err := cache.NewMemoryCache(32)
		require.NoError(t, err)
		cfg.Runner = pipeline.NewRunner(mem, nil, cfg.Logger)
	}
	srv := httptest.NewServer(New(cfg).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

func positions(t *testing.T, r io.Reader) map[string]lineage.Position {
	t.Helper()
	pg, err := lineage.ReadPositioned(r)
	require.NoError(t, err)
	out := make(map[string]lineage.Position, len(pg.Nodes))
	for _, n := range pg.Nodes {
		out[n.ID] = n.Position
	}
	return out
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	_, err := uuid.Parse(resp.Header.Get(RequestIDHeader))
	assert.NoError(t, err, "generated request id should be a uuid")
}

func TestRequestIDIsPropagated(t *testing.T) {
	srv := newTestServer(t, Config{})

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-123", resp.Header.Get(RequestIDHeader))
}

func TestLayout(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp := post(t, srv.URL+"/v1/layout", chainJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := positions(t, resp.Body)
	assert.Equal(t, lineage.Position{X: 0, Y: -90}, got["raw"])
	assert.Equal(t, lineage.Position{X: 300, Y: -90}, got["clean"])
}

func TestLayoutQueryParameters(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp := post(t, srv.URL+"/v1/layout?anchor=center&horizontal_spacing=150", chainJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := positions(t, resp.Body)
	assert.Equal(t, lineage.Position{X: 0, Y: 0}, got["raw"])
	assert.Equal(t, lineage.Position{X: 150, Y: 0}, got["clean"])
}

func TestLayoutErrors(t *testing.T) {
	srv := newTestServer(t, Config{})

	tests := []struct {
		name string
		path string
		body string
		code apperrors.Code
	}{
		{"malformed json", "/v1/layout", `{"nodes": [`, apperrors.ErrCodeInvalidInput},
		{"trailing data", "/v1/layout", `{"nodes":[]}{"nodes":[]}`, apperrors.ErrCodeInvalidInput},
		{"duplicate id", "/v1/layout", `{"nodes":[{"id":"a","type":"dataset"},{"id":"a","type":"dataset"}]}`, apperrors.ErrCodeInvalidGraph},
		{"unknown type", "/v1/layout", `{"nodes":[{"id":"a","type":"table"}]}`, apperrors.ErrCodeInvalidNodeType},
		{"bad spacing", "/v1/layout?vertical_spacing=wide", chainJSON, apperrors.ErrCodeInvalidInput},
		{"negative spacing", "/v1/layout?node_height=-4", chainJSON, apperrors.ErrCodeInvalidConfig},
		{"bad anchor", "/v1/layout?anchor=bottom", chainJSON, apperrors.ErrCodeInvalidConfig},
		{"bad bool", "/v1/layout?reverse_cycles=maybe", chainJSON, apperrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			e := decodeError(t, resp)
			assert.Equal(t, tt.code, e.Code)
			assert.NotEmpty(t, e.Message)
			assert.Equal(t, resp.Header.Get(RequestIDHeader), e.RequestID)
		})
	}
}

func TestLayoutAcceptsDanglingEdges(t *testing.T) {
	srv := newTestServer(t, Config{})

	body := `{"nodes":[{"id":"a","type":"dataset"}],"edges":[{"source":"a","target":"ghost"}]}`
	resp := post(t, srv.URL+"/v1/layout", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRenderDOT(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp := post(t, srv.URL+"/v1/render/dot?title=Trades", chainJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/vnd.graphviz", resp.Header.Get("Content-Type"))
	assert.Equal(t, "miss", resp.Header.Get(CacheHeader))

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "digraph lineage {")
	assert.Contains(t, string(body), `label="Trades"`)

	again := post(t, srv.URL+"/v1/render/dot?title=Trades", chainJSON)
	assert.Equal(t, "hit", again.Header.Get(CacheHeader))
}

func TestRenderHTML(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp := post(t, srv.URL+"/v1/render/html", chainJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))
}

func TestRenderUnknownFormat(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp := post(t, srv.URL+"/v1/render/gif", chainJSON)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.ErrCodeInvalidFormat, decodeError(t, resp).Code)
}

func TestLineageRoutesWithoutService(t *testing.T) {
	srv := newTestServer(t, Config{})

	for _, path := range []string{
		"/v1/lineage/datasets",
		"/v1/lineage/datasets/trades/layout",
		"/v1/lineage/runs/run-1/layout",
	} {
		resp := get(t, srv.URL+path)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
		assert.Equal(t, apperrors.ErrCodeUnavailable, decodeError(t, resp).Code, path)
	}
}

// lineageService fakes the lineage service: one dataset and one run.
func lineageService(t *testing.T) *client.Client {
	t.Helper()
	svc := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/lineage/datasets":
			_ = json.NewEncoder(w).Encode([]string{"trades"})
		case r.URL.Path == "/api/lineage" && r.URL.Query().Get("dataset") == "trades",
			r.URL.Path == "/api/lineage/run/run-1":
			_ = json.NewEncoder(w).Encode([]events.Event{{
				ID:        "e1",
				Dataset:   "trades",
				Operation: "load",
				Outputs:   map[string]any{"out": map[string]any{"dataset": "trades"}},
			}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(svc.Close)

	c, err := client.New(svc.URL, client.WithHTTPClient(svc.Client()), client.WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	return c
}

func newLineageServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, logger)
	runner.Client = lineageService(t)
	return newTestServer(t, Config{Runner: runner, Logger: logger})
}

func TestLineageDatasets(t *testing.T) {
	srv := newLineageServer(t)

	resp := get(t, srv.URL+"/v1/lineage/datasets")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var names []string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&names))
	assert.Equal(t, []string{"trades"}, names)
}

func TestLineageLayout(t *testing.T) {
	srv := newLineageServer(t)

	for _, path := range []string{
		"/v1/lineage/datasets/trades/layout",
		"/v1/lineage/runs/run-1/layout?refresh=true",
	} {
		resp := get(t, srv.URL+path)
		require.Equal(t, http.StatusOK, resp.StatusCode, path)

		got := positions(t, resp.Body)
		assert.Len(t, got, 2, path)
		assert.Equal(t, 0.0, got["load-e1"].X, path)
		assert.Equal(t, 300.0, got["dataset-trades"].X, path)
	}
}

func TestLineageLayoutFormat(t *testing.T) {
	srv := newLineageServer(t)

	resp := get(t, srv.URL+"/v1/lineage/datasets/trades/layout?format=dot")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"load-e1"`)
}

func TestLineageNotFound(t *testing.T) {
	srv := newLineageServer(t)

	resp := get(t, srv.URL+"/v1/lineage/runs/unknown/layout")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apperrors.ErrCodeNotFound, decodeError(t, resp).Code)
}

type streamReply struct {
	lineage.PositionedGraph
	Code    apperrors.Code `json:"code,omitempty"`
	Message string         `json:"message,omitempty"`
}

func TestStream(t *testing.T) {
	srv := newTestServer(t, Config{})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/layout/stream?anchor=center"

	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	messages := []string{chainJSON, `not json`, `{"nodes":[{"id":"x","type":"dataset"}]}`}
	for _, m := range messages {
		require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(m)))
	}

	var replies []streamReply
	for range messages {
		var r streamReply
		require.NoError(t, ws.ReadJSON(&r))
		replies = append(replies, r)
	}

	assert.Empty(t, replies[0].Code)
	assert.Len(t, replies[0].Nodes, 2)
	assert.Equal(t, apperrors.ErrCodeInvalidInput, replies[1].Code)
	require.Len(t, replies[2].Nodes, 1)
	assert.Equal(t, lineage.Position{X: 0, Y: 0}, replies[2].Nodes[0].Position)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewPrometheus(reg)
	observability.SetHTTPHooks(m)
	observability.SetPipelineHooks(m)
	defer observability.Reset()

	srv := newTestServer(t, Config{Metrics: reg})
	post(t, srv.URL+"/v1/layout", chainJSON)

	resp := get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `lineageflow_http_requests_total{method="POST",route="/v1/layout",status="200"} 1`)
	assert.Contains(t, string(body), `lineageflow_layout_total{outcome="ok"} 1`)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperrors.New(apperrors.ErrCodeInvalidGraph, "x"), http.StatusBadRequest},
		{apperrors.New(apperrors.ErrCodeInvalidFormat, "x"), http.StatusBadRequest},
		{apperrors.New(apperrors.ErrCodeNotFound, "x"), http.StatusNotFound},
		{apperrors.New(apperrors.ErrCodeUnavailable, "x"), http.StatusServiceUnavailable},
		{apperrors.New(apperrors.ErrCodeNetwork, "x"), http.StatusBadGateway},
		{apperrors.New(apperrors.ErrCodeTimeout, "x"), http.StatusBadGateway},
		{apperrors.New(apperrors.ErrCodeRateLimited, "x"), http.StatusTooManyRequests},
		{errors.New("boom"), http.StatusInternalServerError},
		{context.Canceled, 499},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "%v", tt.err)
	}
}
