package gen

import (
	"context"
	"path"
	"strings"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/convention"
	"github.com/ulmzr/svelte-esbuild-devserver/internal/errors"
	"github.com/ulmzr/svelte-esbuild-devserver/internal/templates"
)

// Variant is one alternative body of a page group.
type Variant struct {
	// Key is the lookup key the dispatcher normalizes page parameters to.
	Key string

	// Name is the exported identifier.
	Name string

	// File is the base name of the variant file.
	File string
}

// PageGroup is a pages directory whose variants are selected at runtime by
// a page parameter.
type PageGroup struct {
	Dir        string
	Variants   []Variant
	Collisions []Collision

	// Fallback is the key rendered when no page parameter is given.
	Fallback string
}

// IsPageGroup reports whether dir holds at least one variant or a
// dispatcher.
func (g *Generator) IsPageGroup(dir string) (bool, error) {
	files, err := g.lister.Files(dir, false)
	if err != nil {
		return false, errors.New("E301").WithPath(dir).Wrap(err)
	}
	for _, f := range files {
		if f.Category == convention.PageVariant || g.layout.IsDispatcher(f) {
			return true, nil
		}
	}
	return false, nil
}

// BuildPageGroup collects the variants of dir in file name order.
func (g *Generator) BuildPageGroup(dir string) (*PageGroup, error) {
	dir = convention.Clean(dir)
	if err := g.checkRoot(dir, convention.RootPages); err != nil {
		return nil, err
	}

	files, err := g.lister.Files(dir, false)
	if err != nil {
		return nil, errors.New("E301").WithPath(dir).Wrap(err)
	}

	pg := &PageGroup{Dir: dir}
	index := make(map[string]int)
	for _, f := range files {
		if f.Category != convention.PageVariant {
			continue
		}
		v := Variant{
			Key:  convention.VariantKeyOf(f.Base),
			Name: convention.MangleVariant(f.Base),
			File: f.Base,
		}
		if i, ok := index[v.Name]; ok {
			pg.Collisions = append(pg.Collisions, Collision{Name: v.Name, Kept: f.Base, Dropped: pg.Variants[i].File})
			pg.Variants[i] = v
			continue
		}
		index[v.Name] = len(pg.Variants)
		pg.Variants = append(pg.Variants, v)
	}

	defaultKey := convention.VariantKey(g.layout.DefaultVariant)
	for _, v := range pg.Variants {
		if v.Key == defaultKey {
			pg.Fallback = v.Key
			break
		}
	}
	if pg.Fallback == "" && len(pg.Variants) > 0 {
		pg.Fallback = pg.Variants[0].Key
	}
	return pg, nil
}

// Keys returns the variant keys in order.
func (pg *PageGroup) Keys() []string {
	keys := make([]string, len(pg.Variants))
	for i, v := range pg.Variants {
		keys[i] = v.Key
	}
	return keys
}

// Render returns the variants barrel source: one named export per variant,
// the fallback key, and a default-exported map from key to component.
func (pg *PageGroup) Render() []byte {
	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\n")

	names := make([]string, len(pg.Variants))
	for i, v := range pg.Variants {
		names[i] = v.Name
		sb.WriteString("import ")
		sb.WriteString(v.Name)
		sb.WriteString(" from ")
		sb.WriteString(jsString("./" + v.File))
		sb.WriteString(";\n")
	}

	sb.WriteString("\nexport { ")
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString(" };\n\n")

	sb.WriteString("export const fallback = ")
	sb.WriteString(jsString(pg.Fallback))
	sb.WriteString(";\n\n")

	sb.WriteString("export default {\n")
	for _, v := range pg.Variants {
		sb.WriteString("\t")
		sb.WriteString(jsString(v.Key))
		sb.WriteString(": ")
		sb.WriteString(v.Name)
		sb.WriteString(",\n")
	}
	sb.WriteString("};\n")
	return []byte(sb.String())
}

// SynthesizePageGroup regenerates a page group: it materializes an empty
// default variant when the group has none, rewrites the variants barrel and
// the scope barrel, and creates the dispatcher scaffold if it is missing.
func (g *Generator) SynthesizePageGroup(ctx context.Context, dir string) (res Result, err error) {
	dir = convention.Clean(dir)
	res = Result{Kind: KindGroup, Dir: dir}

	ctx, span := g.startSpan(ctx, KindGroup, dir)
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

	pg, err := g.BuildPageGroup(dir)
	if err != nil {
		return res, err
	}
	if len(pg.Variants) == 0 {
		name := path.Join(dir, convention.VariantPrefix+g.layout.DefaultVariant+g.layout.Extension)
		if err := g.create(&res, name, nil); err != nil {
			return res, err
		}
		if pg, err = g.BuildPageGroup(dir); err != nil {
			return res, err
		}
	}
	for _, c := range pg.Collisions {
		g.logger.Warn("variant name collision",
			"code", "E201",
			"dir", dir,
			"name", c.Name,
			"kept", c.Kept,
			"dropped", c.Dropped,
		)
	}

	if err := g.write(&res, path.Join(dir, g.layout.VariantsBarrel), pg.Render()); err != nil {
		return res, err
	}

	scope, err := g.SynthesizeScope(ctx, dir)
	if err != nil {
		return res, err
	}
	res.merge(scope)

	dispatcher, err := templates.Dispatcher(templates.DispatcherData{
		VariantsBarrel: g.layout.VariantsBarrel,
		NotFound:       g.layout.NotFound,
	})
	if err != nil {
		return res, errors.Newf(errors.CategoryGenerate, "render dispatcher: %v", err)
	}
	err = g.create(&res, path.Join(dir, g.layout.Dispatcher+g.layout.Extension), dispatcher)
	return res, err
}
