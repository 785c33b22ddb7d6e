package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pingBackend is a fakeBackend with a configurable Ping result.
type pingBackend struct {
	*fakeBackend
	pingErr error
}

func (p pingBackend) Ping(context.Context) error { return p.pingErr }

func newTestServer(t *testing.T, backend Backend, store *ReportStore) (http.Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	client := NewModelClient(backend, WithMetrics(metrics))
	handler := NewServer(ServerDeps{
		Analyzer:       NewAnalyzer(client, nil, store),
		Metrics:        metrics,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:         zerolog.Nop(),
	})
	return handler, reg
}

func doRequest(h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	h, _ := newTestServer(t, &fakeBackend{}, nil)

	rec := doRequest(h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = doRequest(h, http.MethodGet, "/healthz", "", "X-Request-Id", "abc")
	assert.Equal(t, "abc", rec.Header().Get("X-Request-Id"))
}

func TestServer_Readyz(t *testing.T) {
	ready, _ := newTestServer(t, pingBackend{fakeBackend: &fakeBackend{}}, nil)
	assert.Equal(t, http.StatusOK, doRequest(ready, http.MethodGet, "/readyz", "").Code)

	down, _ := newTestServer(t, pingBackend{fakeBackend: &fakeBackend{}, pingErr: errors.New("refused")}, nil)
	rec := doRequest(down, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready", rec.Body.String())
}

func TestServer_Analyze(t *testing.T) {
	h, _ := newTestServer(t, &fakeBackend{reply: stageReplies}, nil)
	body := `{"title":"Go","transcript":` + quote(sampleTranscript) + `}`

	rec := doRequest(h, http.MethodPost, "/v1/analyze", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "Go", report.Title)
	assert.NotEmpty(t, report.ID)
	assert.True(t, strings.HasPrefix(report.Quiz, "## Quiz Questions"))

	rec = doRequest(h, http.MethodPost, "/v1/analyze", body, "Accept", "text/markdown")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# Go\n\n## Summary"))
}

func TestServer_AnalyzeBadRequests(t *testing.T) {
	h, _ := newTestServer(t, &fakeBackend{}, nil)

	rec := doRequest(h, http.MethodPost, "/v1/analyze", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON body")

	rec = doRequest(h, http.MethodPost, "/v1/analyze", `{"transcript":"   "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doRequest(h, http.MethodPost, "/v1/summary", `{"text":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestServer_StageRoutes(t *testing.T) {
	backend := &fakeBackend{reply: stageReplies}
	h, _ := newTestServer(t, backend, nil)

	tests := []struct {
		path   string
		text   string
		prefix string
	}{
		{"/v1/summary", sampleTranscript, "Goroutines and channels"},
		{"/v1/summary", "short", ShortTranscriptMessage},
		{"/v1/study-guide", "A summary long enough to use.", "## Study Guide\n\n- Practice"},
		{"/v1/topics", sampleTranscript, "## Recommended Topics"},
		{"/v1/quiz", strings.Repeat("guide text ", 10), "## Quiz Questions\n\nQ1."},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := doRequest(h, http.MethodPost, tt.path, `{"text":`+quote(tt.text)+`}`)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp textResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.True(t, strings.HasPrefix(resp.Result, tt.prefix), resp.Result)
		})
	}
}

func TestServer_KeyPoints(t *testing.T) {
	h, _ := newTestServer(t, &fakeBackend{reply: replyWith("first\nsecond")}, nil)

	rec := doRequest(h, http.MethodPost, "/v1/key-points", `{"text":"some transcript"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"first", "second"}, resp["points"])
}

func TestServer_Reports(t *testing.T) {
	disabled, _ := newTestServer(t, &fakeBackend{}, nil)
	rec := doRequest(disabled, http.MethodGet, "/v1/reports", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), ErrHistoryDisabled.Error())

	h, _ := newTestServer(t, &fakeBackend{reply: stageReplies}, openTestStore(t))

	rec = doRequest(h, http.MethodGet, "/v1/reports", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = doRequest(h, http.MethodPost, "/v1/analyze", `{"title":"Stored","transcript":`+quote(sampleTranscript)+`}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	rec = doRequest(h, http.MethodGet, "/v1/reports", "")
	var list []ReportSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, report.ID, list[0].ID)

	rec = doRequest(h, http.MethodGet, "/v1/reports/"+report.ID, "", "Accept", "text/markdown")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# Stored"))

	rec = doRequest(h, http.MethodGet, "/v1/reports/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_CacheAndMetrics(t *testing.T) {
	h, reg := newTestServer(t, &fakeBackend{reply: stageReplies}, nil)
	body := `{"text":` + quote(sampleTranscript) + `}`

	doRequest(h, http.MethodPost, "/v1/summary", body)
	doRequest(h, http.MethodPost, "/v1/summary", body)

	rec := doRequest(h, http.MethodGet, "/v1/cache", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats CacheStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Entries)
	assert.EqualValues(t, 1, stats.Hits)

	rec = doRequest(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "vidstudy_cache_hits_total 1")
	assert.Contains(t, rec.Body.String(), `path="/v1/summary"`)
	assert.InDelta(t, 1, counterValue(t, reg, "vidstudy_cache_misses_total"), 0)
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
