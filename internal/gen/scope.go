package gen

import (
	"context"
	"path"
	"strings"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/convention"
)

// ScopeSources returns the modules a pages directory's index re-exports.
// The pages root re-exports the component and module barrels that exist;
// every nested directory re-exports its parent.
func (g *Generator) ScopeSources(dir string) []string {
	dir = convention.Clean(dir)
	pages := g.layout.RootDir(convention.RootPages)
	if dir != pages {
		return []string{"../"}
	}

	var out []string
	for _, root := range []convention.Root{convention.RootComponents, convention.RootModules} {
		target := g.layout.RootDir(root)
		if g.lister.Exists(target) {
			out = append(out, relImport(pages, target))
		}
	}
	return out
}

// RenderScope returns the source of a scope barrel.
func RenderScope(sources []string) []byte {
	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\n")
	for _, s := range sources {
		sb.WriteString("export * from ")
		sb.WriteString(jsString(s))
		sb.WriteString(";\n")
	}
	return []byte(sb.String())
}

// SynthesizeScope regenerates the index module of a pages directory so that
// "./" resolves every shared component from anywhere below the pages root.
func (g *Generator) SynthesizeScope(ctx context.Context, dir string) (res Result, err error) {
	dir = convention.Clean(dir)
	res = Result{Kind: KindScope, Dir: dir}

	_, span := g.startSpan(ctx, KindScope, dir)
	defer func() {
		endSpan(span, err)
		span.End()
	}()

	if err := g.checkRoot(dir, convention.RootPages); err != nil {
		return res, err
	}
	if !g.lister.Exists(dir) {
		return res, nil
	}

	err = g.write(&res, path.Join(dir, g.layout.Barrel), RenderScope(g.ScopeSources(dir)))
	return res, err
}
