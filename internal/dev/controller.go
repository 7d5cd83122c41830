package dev

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/convention"
	"github.com/ulmzr/svelte-esbuild-devserver/internal/errors"
	"github.com/ulmzr/svelte-esbuild-devserver/internal/gen"
)

// TracerName is the name of the tracer controller spans are recorded under.
const TracerName = "github.com/ulmzr/svelte-esbuild-devserver/internal/dev"

// State is the lifecycle state of a Controller.
type State int32

const (
	// StateScanning drops events; the watcher is still reporting the tree
	// as it found it.
	StateScanning State = iota

	// StateActive handles events.
	StateActive
)

func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	Generator *gen.Generator
	Logger    *slog.Logger
	Metrics   *Metrics
	Tracer    trace.Tracer
	Notifier  Notifier
}

// Controller maps filesystem events to the synthesizers they affect and runs
// them, one event at a time.
type Controller struct {
	gen      *gen.Generator
	layout   convention.Layout
	logger   *slog.Logger
	metrics  *Metrics
	tracer   trace.Tracer
	notifier Notifier

	state atomic.Int32
	mu    sync.Mutex
}

// NewController creates a controller in the Scanning state.
func NewController(opts ControllerOptions) *Controller {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(TracerName)
	}
	c := &Controller{
		gen:      opts.Generator,
		layout:   opts.Generator.Layout(),
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		tracer:   opts.Tracer,
		notifier: opts.Notifier,
	}
	c.metrics.setActive(false)
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Ready moves the controller from Scanning to Active. Later calls do
// nothing.
func (c *Controller) Ready() {
	if c.state.CompareAndSwap(int32(StateScanning), int32(StateActive)) {
		c.logger.Info("initial scan complete, watching for changes")
		c.metrics.setActive(true)
	}
}

// job is one synthesizer run.
type job struct {
	kind gen.Kind
	dir  string
}

// Handle processes one event. Events received while Scanning are dropped.
// Failures and panics are logged, counted and reported to the notifier;
// the returned error is informational and Handle never panics.
func (c *Controller) Handle(ctx context.Context, ev Event) (err error) {
	if c.State() != StateActive {
		c.metrics.event(ev.Op, "dropped")
		c.logger.Debug("event dropped during initial scan", "op", ev.Op.String(), "path", ev.Path)
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, span := c.tracer.Start(ctx, "autoroute.event",
		trace.WithAttributes(
			attribute.String("autoroute.op", ev.Op.String()),
			attribute.String("autoroute.path", ev.Path),
		),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic handling %s %s: %v", ev.Op, ev.Path, r)
			c.logger.Error("regeneration panicked", "op", ev.Op.String(), "path", ev.Path, "error", err)
			c.metrics.failure("panic")
			c.notify(Message{Type: MessageError, Path: ev.Path, Error: err.Error()})
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	jobs := c.plan(ev)
	if len(jobs) == 0 {
		c.metrics.event(ev.Op, "ignored")
		return nil
	}
	c.metrics.event(ev.Op, "handled")

	var errs []error
	for _, j := range jobs {
		if err := c.run(ctx, j); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// plan returns the synthesizer runs an event calls for. Content changes
// never alter generated output; only additions and removals do.
func (c *Controller) plan(ev Event) []job {
	cp := c.layout.Describe(ev.Path, ev.Op.IsDir())
	pages := c.layout.RootDir(convention.RootPages)

	if ev.Op == OpChange && cp.Category != convention.Directory {
		return nil
	}

	switch cp.Category {
	case convention.ComponentModule:
		return []job{{kind: gen.KindBarrel, dir: cp.Dir}}

	case convention.PageVariant:
		return []job{{kind: gen.KindGroup, dir: cp.Dir}}

	case convention.PageComponent:
		if ev.Op == OpAdd && c.layout.IsDispatcher(cp) {
			return []job{{kind: gen.KindGroup, dir: cp.Dir}, {kind: gen.KindRoutes}}
		}
		return []job{{kind: gen.KindRoutes}}

	case convention.Directory:
		var jobs []job
		switch cp.Root {
		case convention.RootComponents, convention.RootModules:
			if ev.Op == OpAddDir {
				jobs = append(jobs, job{kind: gen.KindBarrel, dir: cp.Path})
			}
			if cp.Rel == "" {
				// A shared root appeared or vanished: the pages root
				// re-exports only the roots that exist.
				jobs = append(jobs, job{kind: gen.KindScope, dir: pages})
			}
		case convention.RootPages:
			if ev.Op == OpAddDir {
				jobs = append(jobs, job{kind: gen.KindScope, dir: cp.Path})
			}
			jobs = append(jobs, job{kind: gen.KindRoutes})
		}
		return jobs
	}
	return nil
}

func (c *Controller) run(ctx context.Context, j job) error {
	start := time.Now()

	var (
		res gen.Result
		err error
	)
	switch j.kind {
	case gen.KindBarrel:
		res, err = c.gen.SynthesizeBarrel(ctx, j.dir)
	case gen.KindScope:
		res, err = c.gen.SynthesizeScope(ctx, j.dir)
	case gen.KindGroup:
		res, err = c.gen.SynthesizePageGroup(ctx, j.dir)
	case gen.KindRoutes:
		res, err = c.gen.SynthesizeRoutes(ctx)
	default:
		return fmt.Errorf("unknown synthesizer %q", j.kind)
	}
	c.metrics.regeneration(string(j.kind), time.Since(start), len(res.Written)+len(res.Created))

	if err != nil {
		return c.fail(j, err)
	}

	if j.kind == gen.KindRoutes {
		c.metrics.setRoutes(len(c.gen.Table()))
	}
	if res.Changed() {
		c.logger.Info("regenerated",
			"kind", string(j.kind),
			"dir", j.dir,
			"written", res.Written,
			"created", res.Created,
		)
		c.notify(Message{Type: messageType(j.kind), Path: c.notifyPath(j)})
	}

	// A new dispatcher is a new route.
	if j.kind == gen.KindGroup && len(res.Created) > 0 {
		return c.run(ctx, job{kind: gen.KindRoutes})
	}
	return nil
}

// fail logs err and reports it, except for transient filesystem errors
// which mean there is nothing left to regenerate.
func (c *Controller) fail(j job, err error) error {
	if errors.IsTransient(err) {
		c.logger.Debug("nothing to regenerate", "kind", string(j.kind), "dir", j.dir, "error", err)
		return nil
	}

	code := ""
	path := c.notifyPath(j)
	var e *errors.Error
	if stderrors.As(err, &e) {
		code = e.Code
		if e.Path != "" {
			path = e.Path
		}
	}

	c.logger.Error("regeneration failed",
		"kind", string(j.kind),
		"dir", j.dir,
		"code", code,
		"error", err,
	)
	c.metrics.failure(code)
	c.notify(Message{Type: MessageError, Path: path, Error: err.Error()})
	return err
}

func (c *Controller) notifyPath(j job) string {
	if j.kind == gen.KindRoutes {
		return c.gen.RoutesFile()
	}
	return j.dir
}

func (c *Controller) notify(msg Message) {
	if c.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("notifier panicked", "error", r)
		}
	}()
	c.notifier.Notify(msg)
}

func messageType(k gen.Kind) MessageType {
	switch k {
	case gen.KindBarrel:
		return MessageBarrel
	case gen.KindScope:
		return MessageScope
	case gen.KindGroup:
		return MessageGroup
	default:
		return MessageRoutes
	}
}
