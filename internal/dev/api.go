package dev

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/errors"
	"github.com/ulmzr/svelte-esbuild-devserver/internal/gen"
	"github.com/ulmzr/svelte-esbuild-devserver/pkg/router"
)

// APIOptions configures the inspection API.
type APIOptions struct {
	Generator  *gen.Generator
	Controller *Controller
	Hub        *Hub

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	Logger *slog.Logger
}

// API serves the dev-time inspection endpoints:
//
//	GET /_autoroute/routes          current route table
//	GET /_autoroute/resolve?path=/x resolution of a pathname
//	GET /_autoroute/status          controller state and counts
//	GET /_autoroute/ws              regeneration notices
//	GET /_autoroute/client.js       browser client for the notices
//	POST /_autoroute/diagnostics    compiler diagnostics from the bundler
//	GET /metrics                    Prometheus metrics
type API struct {
	opts APIOptions

	mu      sync.Mutex
	matcher *router.Matcher
	version uint64
}

// NewAPI creates the API.
func NewAPI(opts APIOptions) *API {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &API{opts: opts}
}

// Handler returns the HTTP handler.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route("/_autoroute", func(r chi.Router) {
		r.Get("/routes", a.handleRoutes)
		r.Get("/resolve", a.handleResolve)
		r.Get("/status", a.handleStatus)
		r.Get("/client.js", a.handleClient)
		r.Post("/diagnostics", a.handleDiagnostics)
		if a.opts.Hub != nil {
			r.Get("/ws", a.opts.Hub.HandleWebSocket)
		}
	})
	if a.opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(a.opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// currentMatcher returns a matcher for the generator's current table,
// rebuilding it when the table changed.
func (a *API) currentMatcher() *router.Matcher {
	a.mu.Lock()
	defer a.mu.Unlock()

	v := a.opts.Generator.Version()
	if a.matcher == nil || v != a.version {
		a.matcher = router.NewMatcher(a.opts.Generator.Table())
		a.version = v
	}
	return a.matcher
}

func (a *API) handleRoutes(w http.ResponseWriter, r *http.Request) {
	table := a.opts.Generator.Table()
	if table == nil {
		table = router.Table{}
	}
	a.writeJSON(w, http.StatusOK, table)
}

type resolveResponse struct {
	Path   string            `json:"path"`
	Route  string            `json:"route"`
	Page   string            `json:"page"`
	Import string            `json:"import,omitempty"`
	Params map[string]string `json:"params"`
}

func (a *API) handleResolve(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query().Get("path")
	if p == "" {
		a.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing path parameter"})
		return
	}

	m, ok := a.currentMatcher().Match(p)
	if !ok {
		a.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found", "path": p})
		return
	}

	params := m.Params
	if params == nil {
		params = map[string]string{}
	}
	a.writeJSON(w, http.StatusOK, resolveResponse{
		Path:   p,
		Route:  m.Route.Path,
		Page:   m.Route.Page,
		Import: m.Route.Import,
		Params: params,
	})
}

type statusResponse struct {
	State   string `json:"state"`
	Routes  int    `json:"routes"`
	Clients int    `json:"clients"`
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		State:  StateScanning.String(),
		Routes: len(a.opts.Generator.Table()),
	}
	if a.opts.Controller != nil {
		resp.State = a.opts.Controller.State().String()
	}
	if a.opts.Hub != nil {
		resp.Clients = a.opts.Hub.ClientCount()
	}
	a.writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleClient(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.Write([]byte(ClientScript))
}

// diagnosticsRequest is posted by the bundler plugin when the component
// compiler rejects a file.
type diagnosticsRequest struct {
	File        string              `json:"file"`
	Source      string              `json:"source"`
	Diagnostics []errors.Diagnostic `json:"diagnostics"`
}

type diagnosticsResponse struct {
	Errors []*errors.CompileError `json:"errors"`
}

// handleDiagnostics converts compiler diagnostics into bundler messages and
// relays them to connected browsers.
func (a *API) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	var req diagnosticsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<20)).Decode(&req); err != nil {
		a.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.File == "" {
		a.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing file"})
		return
	}

	resp := diagnosticsResponse{Errors: make([]*errors.CompileError, 0, len(req.Diagnostics))}
	for _, d := range req.Diagnostics {
		ce := errors.FromDiagnostic(req.Source, req.File, d)
		resp.Errors = append(resp.Errors, ce)

		e := ce.AsError()
		a.opts.Logger.Error("compile error", "path", req.File, "code", e.Code, "error", ce.Error())
		if a.opts.Hub != nil {
			a.opts.Hub.Notify(Message{Type: MessageError, Path: req.File, Error: ce.Error()})
		}
	}
	a.writeJSON(w, http.StatusOK, resp)
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.opts.Logger.Debug("write response failed", "error", err)
	}
}
