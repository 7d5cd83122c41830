package gen

import (
	"context"
	stderrors "errors"
	"log/slog"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	billy "github.com/go-git/go-billy/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/convention"
	"github.com/ulmzr/svelte-esbuild-devserver/internal/errors"
	"github.com/ulmzr/svelte-esbuild-devserver/internal/lister"
	"github.com/ulmzr/svelte-esbuild-devserver/pkg/router"
)

// Header is the first line of every generated module.
const Header = "// Code generated by autoroute. DO NOT EDIT."

// TracerName is the name of the tracer spans are recorded under.
const TracerName = "github.com/ulmzr/svelte-esbuild-devserver/internal/gen"

// Kind identifies a synthesizer.
type Kind string

const (
	KindBarrel Kind = "barrel"
	KindScope  Kind = "scope"
	KindGroup  Kind = "group"
	KindRoutes Kind = "routes"
)

// Result describes the effect of one synthesis.
type Result struct {
	Kind Kind

	// Dir is the directory synthesized; empty for the route table.
	Dir string

	// Written lists files whose content changed.
	Written []string

	// Created lists files created once and left to the user afterwards.
	Created []string
}

// Changed reports whether any file was written or created.
func (r Result) Changed() bool {
	return len(r.Written) > 0 || len(r.Created) > 0
}

func (r *Result) merge(o Result) {
	r.Written = append(r.Written, o.Written...)
	r.Created = append(r.Created, o.Created...)
}

// Options configures a Generator.
type Options struct {
	// Layout holds the convention roots and names.
	Layout convention.Layout

	// RoutesFile is the project-relative route table module.
	RoutesFile string

	// ManifestFile is the project-relative JSON manifest. Empty disables it.
	ManifestFile string

	// Logger receives generation events. Defaults to slog.Default().
	Logger *slog.Logger

	// Tracer records a span per synthesis. Defaults to the global provider.
	Tracer trace.Tracer
}

// Generator synthesizes generated modules on a filesystem rooted at the
// project directory.
type Generator struct {
	fs     billy.Filesystem
	layout convention.Layout
	lister *lister.Lister
	writer *Writer
	logger *slog.Logger
	tracer trace.Tracer

	routesFile   string
	manifestFile string

	mu      sync.RWMutex
	table   router.Table
	version uint64
}

// New creates a Generator.
func New(fs billy.Filesystem, opts Options) *Generator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(TracerName)
	}
	if opts.RoutesFile == "" {
		opts.RoutesFile = path.Join(path.Dir(convention.Clean(opts.Layout.Pages)), "routes.js")
	}
	return &Generator{
		fs:           fs,
		layout:       opts.Layout,
		lister:       lister.New(fs, opts.Layout),
		writer:       NewWriter(fs),
		logger:       opts.Logger,
		tracer:       opts.Tracer,
		routesFile:   convention.Clean(opts.RoutesFile),
		manifestFile: convention.Clean(opts.ManifestFile),
	}
}

// Layout returns the generator's layout.
func (g *Generator) Layout() convention.Layout {
	return g.layout
}

// Lister returns the lister the generator reads the tree with.
func (g *Generator) Lister() *lister.Lister {
	return g.lister
}

// RoutesFile returns the project-relative route table path.
func (g *Generator) RoutesFile() string {
	return g.routesFile
}

// Table returns the last route table successfully synthesized.
func (g *Generator) Table() router.Table {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append(router.Table(nil), g.table...)
}

// Version returns a counter bumped every time the route table changes.
func (g *Generator) Version() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.version
}

func (g *Generator) setTable(t router.Table) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.version > 0 && slices.Equal(g.table, t) {
		return
	}
	g.table = t
	g.version++
}

// All synthesizes every barrel, scope barrel and page group of the tree and
// then the route table. A failure in one part does not stop the others; all
// failures are returned joined.
func (g *Generator) All(ctx context.Context) ([]Result, error) {
	ctx, span := g.tracer.Start(ctx, "autoroute.gen.all")
	defer span.End()

	var (
		results []Result
		errs    []error
	)
	collect := func(r Result, err error) {
		if err != nil {
			errs = append(errs, err)
			return
		}
		if r.Changed() {
			results = append(results, r)
		}
	}

	for _, root := range []convention.Root{convention.RootComponents, convention.RootModules} {
		dirs, err := g.lister.Dirs(g.layout.RootDir(root))
		if err != nil {
			errs = append(errs, errors.New("E301").WithPath(g.layout.RootDir(root)).Wrap(err))
			continue
		}
		for _, dir := range dirs {
			collect(g.SynthesizeBarrel(ctx, dir))
		}
	}

	pages := g.layout.RootDir(convention.RootPages)
	dirs, err := g.lister.Dirs(pages)
	if err != nil {
		errs = append(errs, errors.New("E301").WithPath(pages).Wrap(err))
	}
	for _, dir := range dirs {
		group, err := g.IsPageGroup(dir)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if group {
			collect(g.SynthesizePageGroup(ctx, dir))
		} else {
			collect(g.SynthesizeScope(ctx, dir))
		}
	}

	collect(g.SynthesizeRoutes(ctx))

	err = stderrors.Join(errs...)
	endSpan(span, err)
	return results, err
}

// write writes a generated file and records it in r.
func (g *Generator) write(r *Result, name string, content []byte) error {
	changed, err := g.writer.Write(name, content)
	if err != nil {
		return errors.New("E302").WithPath(name).Wrap(err)
	}
	if changed {
		g.logger.Debug("wrote generated file", "path", name, "kind", string(r.Kind))
		r.Written = append(r.Written, name)
	}
	return nil
}

// create writes a file once and records it in r.
func (g *Generator) create(r *Result, name string, content []byte) error {
	created, err := g.writer.Create(name, content)
	if err != nil {
		return errors.New("E302").WithPath(name).Wrap(err)
	}
	if created {
		g.logger.Info("created", "path", name, "kind", string(r.Kind))
		r.Created = append(r.Created, name)
	}
	return nil
}

// checkRoot returns E202 unless dir lies under root.
func (g *Generator) checkRoot(dir string, roots ...convention.Root) error {
	got, _ := g.layout.RootOf(dir)
	for _, r := range roots {
		if got == r {
			return nil
		}
	}
	want := make([]string, len(roots))
	for i, r := range roots {
		want[i] = g.layout.RootDir(r)
	}
	return errors.New("E202").
		WithPath(dir).
		WithDetail("expected a directory under " + strings.Join(want, " or "))
}

func (g *Generator) startSpan(ctx context.Context, kind Kind, dir string) (context.Context, trace.Span) {
	return g.tracer.Start(ctx, "autoroute.gen."+string(kind),
		trace.WithAttributes(
			attribute.String("autoroute.kind", string(kind)),
			attribute.String("autoroute.dir", dir),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// relImport returns the import specifier of target as seen from fromDir.
func relImport(fromDir, target string) string {
	from := filepath.FromSlash(fromDir)
	if from == "" {
		from = "."
	}
	rel, err := filepath.Rel(from, filepath.FromSlash(target))
	if err != nil {
		return "./" + target
	}
	rel = filepath.ToSlash(rel)
	if rel != ".." && !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	return strconv.Quote(s)
}
