// Package gateway serves arenas over HTTP and streams their combat events
// over websockets.
package gateway

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/udisondev/delve/internal/config"
	"github.com/udisondev/delve/internal/game/session"
	"github.com/udisondev/delve/internal/sim"
	"github.com/udisondev/delve/internal/telemetry"
)

// Server is the arena HTTP/websocket server.
type Server struct {
	cfg     config.Gateway
	reg     sim.Registry
	scIDs   func() []string
	session session.Config
	arenas  *Arenas
	tracer  trace.Tracer

	// base is the parent context of every arena; cancelled on shutdown.
	base   context.Context
	cancel context.CancelFunc
}

// ScenarioLister is implemented by *data.Registry.
type ScenarioLister interface {
	sim.Registry
	ScenarioIDs() []string
}

// New creates a Server.
func New(cfg config.Gateway, reg ScenarioLister, sessionCfg session.Config) *Server {
	base, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:     cfg,
		reg:     reg,
		scIDs:   reg.ScenarioIDs,
		session: sessionCfg,
		arenas:  newArenas(),
		tracer:  telemetry.Tracer(),
		base:    base,
		cancel:  cancel,
	}
}

// Router returns the HTTP routes of the server.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.traceMiddleware)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/scenarios", s.handleScenarios).Methods(http.MethodGet)
	api.HandleFunc("/arenas", s.handleListArenas).Methods(http.MethodGet)
	api.HandleFunc("/arenas", s.handleCreateArena).Methods(http.MethodPost)
	api.HandleFunc("/arenas/{id}", s.handleGetArena).Methods(http.MethodGet)
	api.HandleFunc("/arenas/{id}", s.handleStopArena).Methods(http.MethodDelete)
	api.HandleFunc("/arenas/{id}/start", s.handleStartArena).Methods(http.MethodPost)
	api.HandleFunc("/arenas/{id}/ws", s.handleStream).Methods(http.MethodGet)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("arena gateway listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.cancel()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	s.cancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down gateway: %w", err)
	}
	slog.Info("arena gateway stopped")
	return nil
}

// Close stops every arena.
func (s *Server) Close() {
	s.cancel()
	for _, a := range s.arenas.all() {
		a.stop()
	}
}

func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				name = tmpl
			}
		}
		ctx, span := s.tracer.Start(r.Context(), r.Method+" "+name, trace.WithAttributes(
			semconv.HTTPRequestMethodKey.String(r.Method),
			semconv.URLPath(r.URL.Path),
		))
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(semconv.HTTPResponseStatusCode(rec.status))
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

// Hijack lets the websocket upgrader take over the connection.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScenarios(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.scIDs())
}

type createArenaRequest struct {
	Scenario string  `json:"scenario"`
	Seed     *uint64 `json:"seed,omitempty"`
	// Start runs the arena immediately instead of waiting for /start.
	Start bool `json:"start"`
}

func (s *Server) handleCreateArena(w http.ResponseWriter, r *http.Request) {
	var req createArenaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}
	sc := s.reg.Scenario(req.Scenario)
	if sc == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %q", sim.ErrUnknownScenario, req.Scenario))
		return
	}
	seed := uint64(time.Now().UnixNano())
	if req.Seed != nil {
		seed = *req.Seed
	}

	a := s.arenas.add(sc, seed, NewHub(s.cfg.SendQueue, s.cfg.WriteTimeout))
	slog.Info("arena created", "arena", a.view.ID, "scenario", sc.ID, "seed", seed)

	if req.Start {
		if err := a.start(s.base, s.reg, s.session, s.cfg.TickInterval, s.cfg.MaxTurns); err != nil {
			writeError(w, http.StatusConflict, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, a.View())
}

func (s *Server) handleListArenas(w http.ResponseWriter, _ *http.Request) {
	arenas := s.arenas.all()
	views := make([]ArenaView, 0, len(arenas))
	for _, a := range arenas {
		v := a.View()
		v.Units = nil
		views = append(views, v)
	}
	sort.Slice(views, func(i, j int) bool {
		ni, _ := strconv.Atoi(views[i].ID[1:])
		nj, _ := strconv.Atoi(views[j].ID[1:])
		return ni < nj
	})
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) arena(w http.ResponseWriter, r *http.Request) (*Arena, bool) {
	a, err := s.arenas.get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return nil, false
	}
	return a, true
}

func (s *Server) handleGetArena(w http.ResponseWriter, r *http.Request) {
	if a, ok := s.arena(w, r); ok {
		writeJSON(w, http.StatusOK, a.View())
	}
}

func (s *Server) handleStartArena(w http.ResponseWriter, r *http.Request) {
	a, ok := s.arena(w, r)
	if !ok {
		return
	}
	if err := a.start(s.base, s.reg, s.session, s.cfg.TickInterval, s.cfg.MaxTurns); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusAccepted, a.View())
}

func (s *Server) handleStopArena(w http.ResponseWriter, r *http.Request) {
	a, ok := s.arena(w, r)
	if !ok {
		return
	}
	a.stop()
	<-a.Done()
	writeJSON(w, http.StatusOK, a.View())
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if a, ok := s.arena(w, r); ok {
		a.Hub().Serve(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
