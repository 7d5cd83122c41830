package gen

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/convention"
	"github.com/ulmzr/svelte-esbuild-devserver/internal/errors"
	"github.com/ulmzr/svelte-esbuild-devserver/pkg/router"
)

// homePath is the pattern of the top-level Home page, served at "/".
const homePath = "/home"

// BuildRoutes derives the route table from every routable page below the
// pages root.
//
// Pages are collected depth-first, so a directory's own pages come before
// those of its subdirectories. The collection is reversed and then stably
// sorted by literal segment count, with parameterized patterns before static
// ones of the same count. A dispatcher's page parameter is optional, so
// "/config/:page" also matches "/config" and "/:page" also matches "/".
// A page that matches a pathname exactly lands after every dispatcher that
// could also claim it, and resolution picks the last match.
func (g *Generator) BuildRoutes() (router.Table, error) {
	pages := g.layout.RootDir(convention.RootPages)
	files, err := g.lister.Files(pages, true)
	if err != nil {
		return nil, errors.New("E301").WithPath(pages).Wrap(err)
	}

	var (
		table = router.Table{}
		used  = make(map[string]string)
	)
	for _, f := range files {
		if f.Category != convention.PageComponent {
			continue
		}

		r, err := g.route(f, used)
		if err != nil {
			return nil, err
		}
		used[r.Page] = f.Path
		table = append(table, r)
	}

	for i, j := 0, len(table)-1; i < j; i, j = i+1, j-1 {
		table[i], table[j] = table[j], table[i]
	}
	sort.SliceStable(table, func(i, j int) bool {
		di, dj := table[i].StaticDepth(), table[j].StaticDepth()
		if di != dj {
			return di < dj
		}
		return table[i].IsDynamic() && !table[j].IsDynamic()
	})
	return table, nil
}

// route builds the entry of one routable page. used maps identifiers taken
// so far to the file that took them.
func (g *Generator) route(f convention.Path, used map[string]string) (router.Route, error) {
	var dirs []string
	if d := path.Dir(f.Rel); d != "." {
		dirs = strings.Split(d, "/")
	}

	var chain strings.Builder
	for _, d := range dirs {
		chain.WriteString(convention.Pascal(d))
	}

	r := router.Route{Import: relImport(path.Dir(g.routesFile), f.Path)}
	name := convention.MangleComponent(f.Base)

	if g.layout.IsDispatcher(f) {
		r.Path = "/" + strings.ToLower(strings.Join(append(dirs, ":page"), "/"))
		if chain.Len() == 0 {
			chain.WriteString(convention.Pascal(path.Base(g.layout.RootDir(convention.RootPages))))
		}
		r.Page = chain.String() + name
	} else {
		r.Path = "/" + strings.ToLower(strings.TrimSuffix(f.Rel, g.layout.Extension))
		if r.Path == homePath {
			r.Path = "/"
		}
		r.Page = name
		if _, taken := used[r.Page]; taken && chain.Len() > 0 {
			r.Page = chain.String() + name
		}
	}

	if prev, taken := used[r.Page]; taken {
		return router.Route{}, errors.New("E203").
			WithPath(f.Path).
			WithDetail(r.Page + " is already bound to " + prev).
			WithSuggestion("Rename one of the two files")
	}
	return r, nil
}

// RenderRoutes returns the route table module source.
func RenderRoutes(t router.Table) []byte {
	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\n")
	for _, r := range t {
		sb.WriteString("import ")
		sb.WriteString(r.Page)
		sb.WriteString(" from ")
		sb.WriteString(jsString(r.Import))
		sb.WriteString(";\n")
	}

	sb.WriteString("\nexport default [\n")
	for _, r := range t {
		sb.WriteString("\t{ path: ")
		sb.WriteString(jsString(r.Path))
		sb.WriteString(", page: ")
		sb.WriteString(r.Page)
		sb.WriteString(" },\n")
	}
	sb.WriteString("];\n")
	return []byte(sb.String())
}

// SynthesizeRoutes rebuilds the route table module and its manifest. When
// the table cannot be built the files on disk are left untouched.
func (g *Generator) SynthesizeRoutes(ctx context.Context) (res Result, err error) {
	res = Result{Kind: KindRoutes}

	_, span := g.startSpan(ctx, KindRoutes, g.layout.RootDir(convention.RootPages))
	defer func() {
		endSpan(span, err)
		span.End()
	}()

	table, err := g.BuildRoutes()
	if err != nil {
		return res, err
	}

	if err := g.write(&res, g.routesFile, RenderRoutes(table)); err != nil {
		return res, err
	}
	if g.manifestFile != "" {
		data, err := table.MarshalIndent()
		if err != nil {
			return res, errors.Newf(errors.CategoryGenerate, "encode manifest: %v", err)
		}
		if err := g.write(&res, g.manifestFile, data); err != nil {
			return res, err
		}
	}

	g.setTable(table)
	return res, nil
}
