package dev

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sourcegraph/conc"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/config"
	"github.com/ulmzr/svelte-esbuild-devserver/internal/errors"
	"github.com/ulmzr/svelte-esbuild-devserver/internal/gen"
)

const shutdownTimeout = 5 * time.Second

// ServerOptions configures the development server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Logger receives server and regeneration logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Registry collects the regeneration metrics served on /metrics.
	// Defaults to a fresh registry.
	Registry *prometheus.Registry

	// FS is the project filesystem. Defaults to the OS filesystem rooted at
	// the project directory.
	FS billy.Filesystem
}

// Server runs the regeneration loop: an initial full generation, the file
// watcher feeding the controller, and the inspection API.
type Server struct {
	config     *config.Config
	logger     *slog.Logger
	gen        *gen.Generator
	controller *Controller
	watcher    *Watcher
	hub        *Hub
	metrics    *Metrics
	api        *API
	eventCh    chan Event

	mu         sync.Mutex
	running    bool
	cancel     context.CancelFunc
	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a new development server.
func NewServer(options ServerOptions) *Server {
	cfg := options.Config
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := options.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	fs := options.FS
	if fs == nil {
		fs = osfs.New(cfg.Dir())
	}

	g := gen.New(fs, gen.Options{
		Layout:       cfg.Layout(),
		RoutesFile:   cfg.RoutesFile(),
		ManifestFile: cfg.ManifestFile(),
		Logger:       logger,
	})

	metrics := NewMetrics(MetricsConfig{Registry: registry})

	hub := NewHub(logger)
	hub.OnClientsChange(metrics.SetClients)

	controller := NewController(ControllerOptions{
		Generator: g,
		Logger:    logger,
		Metrics:   metrics,
		Notifier:  hub,
	})

	watcher := NewWatcher(WatcherConfig{
		Root:     cfg.Dir(),
		Paths:    CollectWatchPaths(cfg),
		Ignore:   cfg.Dev.Ignore,
		Interval: cfg.PollInterval(),
	})

	api := NewAPI(APIOptions{
		Generator:  g,
		Controller: controller,
		Hub:        hub,
		Gatherer:   registry,
		Logger:     logger,
	})

	return &Server{
		config:     cfg,
		logger:     logger,
		gen:        g,
		controller: controller,
		watcher:    watcher,
		hub:        hub,
		metrics:    metrics,
		api:        api,
	}
}

// Generator returns the server's generator.
func (s *Server) Generator() *gen.Generator { return s.gen }

// Controller returns the server's controller.
func (s *Server) Controller() *Controller { return s.controller }

// Addr returns the inspection API's listen address once Start has bound it.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start generates every artifact, then watches the project and serves the
// inspection API until ctx is done or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	start := time.Now()
	results, err := s.gen.All(ctx)
	s.logGenerate(results, err, time.Since(start))

	ln, err := net.Listen("tcp", s.config.DevAddress())
	if err != nil {
		s.Stop()
		s.shutdown()
		return errors.New("E503").
			WithDetail("Could not listen on " + s.config.DevAddress()).
			WithSuggestion("Set dev.port or AUTOROUTE_PORT to a free port").
			Wrap(err)
	}
	s.mu.Lock()
	s.listener = ln
	s.httpServer = &http.Server{Handler: s.api.Handler()}
	srv := s.httpServer
	s.mu.Unlock()

	s.eventCh = make(chan Event, 64)
	s.watcher.OnEvent(func(ev Event) {
		// Initial scan events are dropped before queueing.
		if s.controller.State() != StateActive {
			s.controller.Handle(ctx, ev)
			return
		}
		select {
		case s.eventCh <- ev:
		case <-ctx.Done():
		}
	})
	s.watcher.OnReady(s.controller.Ready)

	s.logger.Info("inspection API listening", "url", "http://"+ln.Addr().String())

	var serveErr error
	var wg conc.WaitGroup
	wg.Go(func() {
		if err := s.watcher.Start(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
			s.logger.Error("watcher stopped", "error", err)
		}
	})
	wg.Go(func() {
		s.processEvents(ctx)
	})
	wg.Go(func() {
		if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serveErr = err
			s.Stop()
		}
	})

	<-ctx.Done()
	s.shutdown()
	wg.Wait()
	return serveErr
}

// Stop stops the development server. Start returns once everything has
// shut down.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Server) shutdown() {
	s.mu.Lock()
	srv := s.httpServer
	s.running = false
	s.mu.Unlock()

	s.watcher.Stop()
	s.hub.Close()

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Debug("http shutdown", "error", err)
		}
	}
}

// processEvents feeds watcher events to the controller one at a time.
func (s *Server) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.eventCh:
			if err := s.controller.Handle(ctx, ev); err != nil {
				s.logger.Debug("event handled with errors", "op", ev.Op.String(), "path", ev.Path, "error", err)
			}
		}
	}
}

func (s *Server) logGenerate(results []gen.Result, err error, took time.Duration) {
	written, created := 0, 0
	for _, r := range results {
		written += len(r.Written)
		created += len(r.Created)
	}
	s.logger.Info("generated",
		"written", written,
		"created", created,
		"routes", len(s.gen.Table()),
		"took", took.Round(time.Millisecond),
	)
	s.metrics.setRoutes(len(s.gen.Table()))

	for _, e := range unjoin(err) {
		code := "unknown"
		var coded *errors.Error
		if stderrors.As(e, &coded) {
			code = coded.Code
		}
		s.metrics.failure(code)
		s.logger.Error("generation failed", "code", code, "error", e)
	}
}

func unjoin(err error) []error {
	if err == nil {
		return nil
	}
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
