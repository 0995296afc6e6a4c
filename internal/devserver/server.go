// Package devserver is an in-memory implementation of the smartlp backend
// API. It backs the devserver command and the client, panel and TUI tests.
package devserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/skykid17/smartlp-sub005/internal/core/logging"
	"github.com/skykid17/smartlp-sub005/internal/core/record"
	"github.com/skykid17/smartlp-sub005/pkg/kv"
)

// Route names used by call counters and failure injection.
const (
	RouteEntries   = "entries"
	RouteRules     = "rules"
	RouteConfig    = "config"
	RouteDelete    = "delete"
	RouteFindMatch = "find_match"
)

// Options configures a Server.
type Options struct {
	// Token, when set, is required as a bearer token on /api routes.
	Token string
	// Latency is added to every /api request.
	Latency time.Duration
}

// Server serves a Dataset over HTTP.
type Server struct {
	data  *Dataset
	opts  Options
	log   zerolog.Logger
	calls *kv.Store[string, int]
	fails *kv.Store[string, int]
	last  *kv.Store[string, []record.ID]
}

// New creates a server over data.
func New(data *Dataset, opts Options) *Server {
	return &Server{
		data:  data,
		opts:  opts,
		log:   logging.Component("devserver"),
		calls: kv.New[string, int](),
		fails: kv.New[string, int](),
		last:  kv.New[string, []record.ID](),
	}
}

// Data returns the served dataset.
func (s *Server) Data() *Dataset { return s.data }

// Calls returns how many requests hit route.
func (s *Server) Calls(route string) int {
	n, _ := s.calls.Get(route)
	return n
}

// LastConfigIDs returns the ids of the most recent configuration request.
func (s *Server) LastConfigIDs() []record.ID {
	ids, _ := s.last.Get(RouteConfig)
	return ids
}

// FailNext makes the next request to route fail with status.
func (s *Server) FailNext(route string, status int) {
	s.fails.Set(route, status)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.requestID)
	r.Use(s.accessLog)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.auth)
		r.Use(s.latency)

		r.With(s.track(RouteEntries)).Get("/entries", s.handleEntries)
		r.With(s.track(RouteConfig)).Post("/entries/config", s.handleConfig)
		r.With(s.track(RouteDelete)).Delete("/entries/{id}", s.handleDeleteEntry)
		r.With(s.track(RouteRules)).Get("/rules", s.handleRules)
		r.With(s.track(RouteDelete)).Delete("/rule/{id}", s.handleDeleteRule)
		r.With(s.track(RouteFindMatch)).Post("/find_match", s.handleFindMatch)
	})

	return r
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.QueryEntries(parseQuery(r)))
}

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.QueryRules(parseQuery(r)))
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []record.ID `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.last.Set(RouteConfig, req.IDs)
	writeJSON(w, http.StatusOK, map[string]any{"results": s.data.Config(req.IDs)})
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if !s.data.DeleteEntry(record.ID(chi.URLParam(r, "id"))) {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	if !s.data.DeleteRule(record.ID(chi.URLParam(r, "id"))) {
		writeError(w, http.StatusNotFound, "rule not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFindMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text  string `json:"text"`
		Regex string `json:"regex"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	spans, err := FindMatch(req.Text, req.Regex)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	// The backend reports spans keyed by name.
	byName := make(map[string]record.MatchSpan, len(spans))
	for _, sp := range spans {
		byName[sp.Name] = sp
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": byName})
}

func parseQuery(r *http.Request) record.Query {
	v := r.URL.Query()
	q := record.Query{Search: v.Get("search"), Filters: map[string]string{}}
	q.Page, _ = strconv.Atoi(v.Get("page"))
	q.PageSize, _ = strconv.Atoi(v.Get("per_page"))
	for _, key := range []string{"index", "source_type", "status"} {
		if val := v.Get(key); val != "" {
			q.Filters[key] = val
		}
	}
	return q
}

func (s *Server) track(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.calls.Update(route, func(n int, _ bool) int { return n + 1 })

			if status, ok := s.fails.Get(route); ok {
				s.fails.Delete(route)
				writeError(w, status, "injected failure")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.Debug().
			Ctx(r.Context()).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Token != "" {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token != s.opts.Token {
				writeError(w, http.StatusUnauthorized, "invalid or missing token")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Latency > 0 {
			select {
			case <-time.After(s.opts.Latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
