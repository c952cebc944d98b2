package geography

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/RobertDurfee/Gerrymandering/internal/feature"
	"github.com/RobertDurfee/Gerrymandering/internal/logger"
	"github.com/RobertDurfee/Gerrymandering/internal/metrics"
	"github.com/RobertDurfee/Gerrymandering/internal/query"
)

const contentTypeGeoJSON = "application/geo+json"

// Executor runs one compiled statement and returns its rows.
type Executor interface {
	Query(ctx context.Context, stmt query.Statement) ([]feature.Row, error)
}

// Pinger reports whether the backing database answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Builder compiles a request into a statement. It must not touch the database.
type Builder func(r *http.Request) (query.Statement, error)

// Handler serves get and list requests over an injected executor.
type Handler struct {
	Exec    Executor
	Timeout time.Duration
}

// Get serves a single feature, or 404 when no row matches.
func (h *Handler) Get(resource string, build Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, ok := h.run(w, r, resource, "get", build)
		if !ok {
			return
		}
		f, err := feature.Single(rows)
		if errors.Is(err, feature.ErrNotFound) {
			metrics.RequestsTotal.WithLabelValues(resource, "get", "not_found").Inc()
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
			return
		}
		if err != nil {
			h.internal(w, r, resource, "get", err)
			return
		}
		metrics.RequestsTotal.WithLabelValues(resource, "get", "ok").Inc()
		writeGeoJSON(w, f)
	}
}

// List serves a feature collection, empty when no row matches.
func (h *Handler) List(resource string, build Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, ok := h.run(w, r, resource, "list", build)
		if !ok {
			return
		}
		fc, err := feature.Collection(rows)
		if err != nil {
			h.internal(w, r, resource, "list", err)
			return
		}
		metrics.RequestsTotal.WithLabelValues(resource, "list", "ok").Inc()
		metrics.FeaturesReturned.WithLabelValues(resource).Observe(float64(len(fc.Features)))
		writeGeoJSON(w, fc)
	}
}

// run builds and executes the statement for r. It writes the error response
// itself and reports false when the request is already answered.
func (h *Handler) run(w http.ResponseWriter, r *http.Request, resource, op string, build Builder) ([]feature.Row, bool) {
	log := logger.FromContext(r.Context())

	stmt, err := build(r)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues(resource, op, "bad_request").Inc()
		if !errors.Is(err, query.ErrInvalidRequest) {
			log.Warn("unclassified build error", "resource", resource, "err", err)
		}
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return nil, false
	}
	log.Debug("query", "resource", resource, "sql", stmt.SQL, "args", stmt.Args)

	ctx := r.Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	start := time.Now()
	rows, err := h.Exec.Query(ctx, stmt)
	elapsed := time.Since(start)
	metrics.ObserveQuery(resource, elapsed)
	addServerTiming(w, [2]string{"db", strconv.FormatFloat(float64(elapsed.Microseconds())/1000, 'f', 1, 64)})

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			metrics.RequestsTotal.WithLabelValues(resource, op, "timeout").Inc()
			log.Error("query timed out", "resource", resource, "timeout", h.Timeout, "err", err)
			writeError(w, http.StatusInternalServerError, "DEADLINE_EXCEEDED", "Query timed out")
			return nil, false
		}
		h.internal(w, r, resource, op, err)
		return nil, false
	}
	return rows, true
}

func (h *Handler) internal(w http.ResponseWriter, r *http.Request, resource, op string, err error) {
	metrics.RequestsTotal.WithLabelValues(resource, op, "error").Inc()
	logger.FromContext(r.Context()).Error("request failed", "resource", resource, "op", op, "err", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
}

// Health answers 200 when p can reach the database within timeout.
func Health(p Pinger, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		w.Header().Set("Content-Type", "application/json")
		if err := p.Ping(ctx); err != nil {
			logger.FromContext(r.Context()).Error("health check failed", "err", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func writeError(w http.ResponseWriter, code int, status, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(errorBody{Error: errorDetail{Code: code, Message: message, Status: status}})
}

func writeGeoJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", contentTypeGeoJSON)
	json.NewEncoder(w).Encode(v)
}

func addServerTiming(w http.ResponseWriter, kv ...[2]string) {
	// kv: [][2]string{{"db","12.3"}}
	for _, p := range kv {
		w.Header().Add("Server-Timing", fmt.Sprintf("%s;dur=%s", p[0], p[1]))
	}
}
