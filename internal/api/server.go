// Package api provides the HTTP API for querying and editing a hex grid.
// GET endpoints are public (read-only).
// POST and DELETE endpoints require a bearer token.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/talgya/hexgrid/internal/hexgrid"
	"github.com/talgya/hexgrid/internal/persistence"
)

// maxRangeCells bounds the rectangle a single range request may cover.
const maxRangeCells = 10000

// maxRangeBound bounds each corner coordinate of a range request.
const maxRangeBound = 1 << 30

// Snapshotter persists the grid. *persistence.DB satisfies it.
type Snapshotter interface {
	SaveGrid(g *hexgrid.Grid, layout string) (persistence.Snapshot, error)
}

// Server serves a grid over HTTP.
type Server struct {
	Grid      *hexgrid.Grid
	DB        Snapshotter // Optional; snapshot endpoint is disabled when nil
	Layout    string      // Layout name recorded with snapshots
	Port      int
	AdminKey  string // Bearer token for mutating endpoints. Empty = mutations disabled.
	RateLimit int    // Range requests per IP per minute. 0 = unlimited.

	router  chi.Router
	ranges  *rangeCache
	limiter *RateLimiter
}

// Handler builds the router. It is safe to call more than once; the
// router is only built the first time.
func (s *Server) Handler() (http.Handler, error) {
	if s.router != nil {
		return s.router, nil
	}
	ranges, err := newRangeCache()
	if err != nil {
		return nil, fmt.Errorf("range cache: %w", err)
	}
	s.ranges = ranges

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(10 * time.Second))
	r.Use(requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/hexes", s.handleHexes)
		r.Get("/hex/{key}", s.handleHex)
		r.Get("/hex/{key}/neighbors", s.handleNeighbors)
		r.Get("/pixel", s.handlePixel)

		r.Group(func(r chi.Router) {
			if s.RateLimit > 0 {
				s.limiter = NewRateLimiter(s.RateLimit, time.Minute)
				r.Use(s.limiter.Middleware)
			}
			r.Get("/range/axial", s.handleAxialRange)
			r.Get("/range/offset", s.handleOffsetRange)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.adminOnly)
			r.Post("/hex/{key}", s.handleAddHex)
			r.Delete("/hex/{key}", s.handleRemoveHex)
			r.Post("/satellite/clear", s.handleClearSatellite)
			r.Post("/snapshot", s.handleSnapshot)
		})
	})

	s.router = r
	return r, nil
}

// Start begins serving the HTTP API in a goroutine. The returned server
// can be shut down by the caller.
func (s *Server) Start() (*http.Server, error) {
	handler, err := s.Handler()
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", srv.Addr, "admin_auth", s.AdminKey != "", "rate_limit", s.RateLimit)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv, nil
}

// Close releases the cache and the rate limiter.
func (s *Server) Close() {
	if s.ranges != nil {
		s.ranges.close()
	}
	if s.limiter != nil {
		s.limiter.Close()
	}
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires bearer token auth.
func (s *Server) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no admin key set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
