// Package docs serves a browsable view of the declaration index over HTTP.
// It reads from the SQLite index written by the index command; run that
// first or the pages will be empty.
package docs

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/hvlabs/apibind/internal/state"
)

// Config configures the docs server.
type Config struct {
	Store  state.Store
	Port   int
	Logger *slog.Logger
}

// Server serves the declaration index.
type Server struct {
	store  state.Store
	port   int
	logger *slog.Logger
	tmpl   *template.Template
}

// NewServer creates a docs server.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		store:  cfg.Store,
		port:   cfg.Port,
		logger: logger,
		tmpl:   template.Must(template.New("index").Parse(indexTemplate)),
	}
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting docs server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down docs server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/", s.handleIndex)
	r.Route("/api", func(r chi.Router) {
		r.Get("/interfaces", s.handleInterfaces)
		r.Get("/interfaces/{name}/operations", s.handleOperations)
		r.Get("/bindings", s.handleBindings)
		r.Get("/runs/latest", s.handleLastRun)
	})

	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ifaces, err := s.store.Interfaces()
	if err != nil {
		s.serverError(w, err)
		return
	}
	bindings, err := s.store.Bindings()
	if err != nil {
		s.serverError(w, err)
		return
	}
	lastRun, err := s.store.LastRun()
	if err != nil {
		s.serverError(w, err)
		return
	}

	bound := make(map[string][]*state.IndexedBinding)
	for _, b := range bindings {
		bound[b.Interface] = append(bound[b.Interface], b)
	}

	type ifaceView struct {
		*state.IndexedInterface
		Operations []*state.IndexedOperation
		Bindings   []*state.IndexedBinding
	}
	views := make([]ifaceView, 0, len(ifaces))
	for _, iface := range ifaces {
		ops, err := s.store.Operations(iface.Name)
		if err != nil {
			s.serverError(w, err)
			return
		}
		views = append(views, ifaceView{
			IndexedInterface: iface,
			Operations:       ops,
			Bindings:         bound[iface.Name],
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, map[string]any{
		"Interfaces": views,
		"LastRun":    lastRun,
	}); err != nil {
		s.logger.Error("rendering index", "error", err)
	}
}

func (s *Server) handleInterfaces(w http.ResponseWriter, r *http.Request) {
	ifaces, err := s.store.Interfaces()
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.writeJSON(w, ifaces)
}

func (s *Server) handleOperations(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	ops, err := s.store.Operations(name)
	if err != nil {
		s.serverError(w, err)
		return
	}
	if len(ops) == 0 {
		http.Error(w, "interface not found", http.StatusNotFound)
		return
	}
	s.writeJSON(w, ops)
}

func (s *Server) handleBindings(w http.ResponseWriter, r *http.Request) {
	bindings, err := s.store.Bindings()
	if err != nil {
		s.serverError(w, err)
		return
	}
	s.writeJSON(w, bindings)
}

func (s *Server) handleLastRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.LastRun()
	if err != nil {
		s.serverError(w, err)
		return
	}
	if run == nil {
		http.Error(w, "no runs indexed", http.StatusNotFound)
		return
	}
	s.writeJSON(w, run)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
