package internal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxRequestBody caps transcript uploads
const maxRequestBody = 8 << 20

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// ServerDeps holds the dependencies of the HTTP API
type ServerDeps struct {
	Analyzer       *Analyzer
	Metrics        *Metrics     // nil = no request metrics
	MetricsHandler http.Handler // nil = no /metrics route
	Logger         zerolog.Logger
}

type apiServer struct {
	deps ServerDeps
}

// NewServer creates an http.Handler with all routes and middleware wired
func NewServer(deps ServerDeps) http.Handler {
	s := &apiServer{deps: deps}

	r := chi.NewRouter()
	r.Use(s.recovery)
	r.Use(s.requestID)
	r.Use(s.logging)
	if deps.Metrics != nil {
		r.Use(s.metrics)
	}

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/summary", s.handleStage(func(ctx context.Context, a *Analyzer, text string) string {
			return a.Summarizer().Summarize(ctx, text)
		}))
		r.Post("/key-points", s.handleKeyPoints)
		r.Post("/study-guide", s.handleStage(func(ctx context.Context, a *Analyzer, text string) string {
			return a.StudyGuides().CreateGuide(ctx, text)
		}))
		r.Post("/topics", s.handleStage(func(ctx context.Context, a *Analyzer, text string) string {
			return a.Topics().Recommend(ctx, text)
		}))
		r.Post("/quiz", s.handleStage(func(ctx context.Context, a *Analyzer, text string) string {
			return a.Quizzes().Generate(ctx, text)
		}))
		r.Get("/reports", s.handleListReports)
		r.Get("/reports/{id}", s.handleGetReport)
		r.Get("/cache", s.handleCacheStats)
	})

	return r
}

// recovery catches panics and returns 500
func (s *apiServer) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.deps.Logger.Error().
					Interface("panic", rec).
					Str("path", r.URL.Path).
					Msg("panic recovered")
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestID adds a UUID v7 request ID to the context and response header
func (s *apiServer) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.Must(uuid.NewV7()).String()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logging logs each request with method, path, status and duration
func (s *apiServer) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		id, _ := r.Context().Value(requestIDKey{}).(string)
		s.deps.Logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("request_id", id).
			Msg("request")
	})
}

// metrics records request count and duration by route pattern
func (s *apiServer) metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		pattern := routePattern(r)
		s.deps.Metrics.RequestsTotal.WithLabelValues(r.Method, pattern, strconv.Itoa(sw.status)).Inc()
		s.deps.Metrics.RequestDuration.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
	})
}

// routePattern returns the chi route pattern for bounded cardinality
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx != nil && rctx.RoutePattern() != "" {
		return rctx.RoutePattern()
	}
	return r.URL.Path
}

// statusWriter captures the first status code written
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wroteHeader = true
	return sw.ResponseWriter.Write(b)
}

func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

func (s *apiServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *apiServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain")
	if err := s.deps.Analyzer.client.Backend().Ping(ctx); err != nil {
		s.deps.Logger.Warn().Err(err).Msg("backend not ready")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

type analyzeRequest struct {
	Title      string `json:"title"`
	Transcript string `json:"transcript"`
}

type textRequest struct {
	Text string `json:"text"`
}

type textResponse struct {
	Result string `json:"result"`
}

func (s *apiServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	report, err := s.deps.Analyzer.Analyze(r.Context(), req.Title, req.Transcript, nil)
	if errors.Is(err, ErrEmptyTranscript) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeReport(w, r, report)
}

func (s *apiServer) handleStage(run func(context.Context, *Analyzer, string) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req textRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			writeError(w, http.StatusUnprocessableEntity, "text is empty")
			return
		}
		writeJSON(w, http.StatusOK, textResponse{Result: run(r.Context(), s.deps.Analyzer, req.Text)})
	}
}

func (s *apiServer) handleKeyPoints(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusUnprocessableEntity, "text is empty")
		return
	}
	points := s.deps.Analyzer.Summarizer().KeyPoints(r.Context(), req.Text)
	writeJSON(w, http.StatusOK, map[string][]string{"points": points})
}

func (s *apiServer) handleListReports(w http.ResponseWriter, r *http.Request) {
	store := s.deps.Analyzer.Store()
	if store == nil {
		writeError(w, http.StatusNotFound, ErrHistoryDisabled.Error())
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	reports, err := store.List(r.Context(), limit)
	if err != nil {
		s.deps.Logger.Error().Err(err).Msg("listing reports")
		writeError(w, http.StatusInternalServerError, "listing reports failed")
		return
	}
	if reports == nil {
		reports = []ReportSummary{}
	}
	writeJSON(w, http.StatusOK, reports)
}

func (s *apiServer) handleGetReport(w http.ResponseWriter, r *http.Request) {
	store := s.deps.Analyzer.Store()
	if store == nil {
		writeError(w, http.StatusNotFound, ErrHistoryDisabled.Error())
		return
	}

	report, err := store.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrReportNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.deps.Logger.Error().Err(err).Msg("loading report")
		writeError(w, http.StatusInternalServerError, "loading report failed")
		return
	}
	writeReport(w, r, report)
}

func (s *apiServer) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Analyzer.client.CacheStats())
}

// decodeJSON reads a size-limited JSON body, writing 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// writeReport honours Accept: text/markdown, defaulting to JSON
func writeReport(w http.ResponseWriter, r *http.Request, report *Report) {
	if strings.Contains(r.Header.Get("Accept"), "text/markdown") {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(report.Markdown()))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
