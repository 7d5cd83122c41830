package gen

import (
	"context"
	"path"
	"strings"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/convention"
	"github.com/ulmzr/svelte-esbuild-devserver/internal/errors"
)

// Export is one named re-export of a barrel.
type Export struct {
	// Name is the exported identifier.
	Name string

	// File is the base name of the re-exported module.
	File string
}

// Collision records two files mangling to the same identifier.
type Collision struct {
	Name    string
	Kept    string
	Dropped string
}

// Barrel is the index module of a components or modules directory.
type Barrel struct {
	Dir        string
	Exports    []Export
	Collisions []Collision
}

// BuildBarrel collects the exports of dir from its qualifying files, in
// file name order. When two files mangle to the same name the later one
// takes the earlier one's place.
func (g *Generator) BuildBarrel(dir string) (*Barrel, error) {
	dir = convention.Clean(dir)
	if err := g.checkRoot(dir, convention.RootComponents, convention.RootModules); err != nil {
		return nil, err
	}

	files, err := g.lister.Files(dir, false)
	if err != nil {
		return nil, errors.New("E301").WithPath(dir).Wrap(err)
	}

	b := &Barrel{Dir: dir}
	index := make(map[string]int)
	for _, f := range files {
		if f.Category != convention.ComponentModule {
			continue
		}
		name := convention.MangleComponent(f.Base)
		if i, ok := index[name]; ok {
			b.Collisions = append(b.Collisions, Collision{Name: name, Kept: f.Base, Dropped: b.Exports[i].File})
			b.Exports[i].File = f.Base
			continue
		}
		index[name] = len(b.Exports)
		b.Exports = append(b.Exports, Export{Name: name, File: f.Base})
	}
	return b, nil
}

// Render returns the module source.
func (b *Barrel) Render() []byte {
	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\n")
	for _, e := range b.Exports {
		sb.WriteString("export { default as ")
		sb.WriteString(e.Name)
		sb.WriteString(" } from ")
		sb.WriteString(jsString("./" + e.File))
		sb.WriteString(";\n")
	}
	return []byte(sb.String())
}

// SynthesizeBarrel regenerates the index module of a components or modules
// directory. A directory that no longer exists is skipped.
func (g *Generator) SynthesizeBarrel(ctx context.Context, dir string) (res Result, err error) {
	dir = convention.Clean(dir)
	res = Result{Kind: KindBarrel, Dir: dir}

	_, span := g.startSpan(ctx, KindBarrel, dir)
	defer func() {
		endSpan(span, err)
		span.End()
	}()

	if err := g.checkRoot(dir, convention.RootComponents, convention.RootModules); err != nil {
		return res, err
	}
	if !g.lister.Exists(dir) {
		return res, nil
	}

	b, err := g.BuildBarrel(dir)
	if err != nil {
		return res, err
	}
	for _, c := range b.Collisions {
		g.logger.Warn("export name collision",
			"code", "E201",
			"dir", dir,
			"name", c.Name,
			"kept", c.Kept,
			"dropped", c.Dropped,
		)
	}

	err = g.write(&res, path.Join(dir, g.layout.Barrel), b.Render())
	return res, err
}
