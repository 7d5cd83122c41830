package gen

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"path"
	"strings"
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/convention"
	"github.com/ulmzr/svelte-esbuild-devserver/internal/errors"
	"github.com/ulmzr/svelte-esbuild-devserver/pkg/router"
)

// newProject creates a memory project holding files. Entries ending in "/"
// are created as empty directories.
func newProject(t *testing.T, files ...string) (billy.Filesystem, *Generator) {
	t.Helper()
	fs := memfs.New()
	for _, f := range files {
		if strings.HasSuffix(f, "/") {
			require.NoError(t, fs.MkdirAll(strings.TrimSuffix(f, "/"), 0o755))
			continue
		}
		writeFile(t, fs, f, "<h1>"+path.Base(f)+"</h1>\n")
	}
	g := New(fs, Options{
		Layout:       convention.DefaultLayout(),
		RoutesFile:   "src/routes.js",
		ManifestFile: "src/routes.json",
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return fs, g
}

func writeFile(t *testing.T, fs billy.Filesystem, name, content string) {
	t.Helper()
	require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
}

func readFile(t *testing.T, fs billy.Filesystem, name string) string {
	t.Helper()
	data, err := util.ReadFile(fs, name)
	require.NoError(t, err)
	return string(data)
}

func exists(fs billy.Filesystem, name string) bool {
	_, err := fs.Stat(name)
	return err == nil
}

func codeOf(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

func TestBarrelExportsEachQualifyingFile(t *testing.T) {
	fs, g := newProject(t,
		"src/components/Card.svelte",
		"src/components/Button.svelte",
		"src/components/helper.js",
		"src/components/lower.svelte",
		"src/components/.Hidden.svelte",
		"src/components/forms/Input.svelte",
	)

	res, err := g.SynthesizeBarrel(context.Background(), "src/components")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/components/index.js"}, res.Written)

	want := Header + "\n" +
		"export { default as Button } from \"./Button.svelte\";\n" +
		"export { default as Card } from \"./Card.svelte\";\n"
	assert.Equal(t, want, readFile(t, fs, "src/components/index.js"))
}

func TestBarrelCollisionLaterFileWins(t *testing.T) {
	_, g := newProject(t,
		"src/modules/Foo-Bar.svelte",
		"src/modules/Foo_Bar.svelte",
	)

	b, err := g.BuildBarrel("src/modules")
	require.NoError(t, err)
	require.Len(t, b.Exports, 1)
	assert.Equal(t, Export{Name: "Foo_Bar", File: "Foo_Bar.svelte"}, b.Exports[0])
	require.Len(t, b.Collisions, 1)
	assert.Equal(t, "Foo-Bar.svelte", b.Collisions[0].Dropped)
}

func TestSynthesizeBarrelIdempotent(t *testing.T) {
	_, g := newProject(t, "src/components/Button.svelte")
	ctx := context.Background()

	first, err := g.SynthesizeBarrel(ctx, "src/components")
	require.NoError(t, err)
	assert.True(t, first.Changed())

	second, err := g.SynthesizeBarrel(ctx, "src/components")
	require.NoError(t, err)
	assert.False(t, second.Changed())
}

func TestSynthesizeBarrelOutsideRoot(t *testing.T) {
	_, g := newProject(t, "src/pages/Home.svelte")

	_, err := g.SynthesizeBarrel(context.Background(), "src/pages")
	require.Error(t, err)
	assert.Equal(t, "E202", codeOf(err))
}

func TestSynthesizeBarrelVanishedDir(t *testing.T) {
	fs, g := newProject(t, "src/components/Button.svelte")

	res, err := g.SynthesizeBarrel(context.Background(), "src/components/gone")
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.False(t, exists(fs, "src/components/gone"))
}

func TestScopeBarrels(t *testing.T) {
	fs, g := newProject(t,
		"src/components/Button.svelte",
		"src/pages/Home.svelte",
		"src/pages/blog/Post.svelte",
	)
	ctx := context.Background()

	_, err := g.SynthesizeScope(ctx, "src/pages")
	require.NoError(t, err)
	assert.Equal(t, Header+"\nexport * from \"../components\";\n", readFile(t, fs, "src/pages/index.js"))

	_, err = g.SynthesizeScope(ctx, "src/pages/blog")
	require.NoError(t, err)
	assert.Equal(t, Header+"\nexport * from \"../\";\n", readFile(t, fs, "src/pages/blog/index.js"))

	// Once the modules root appears the pages root re-exports it too.
	require.NoError(t, fs.MkdirAll("src/modules", 0o755))
	res, err := g.SynthesizeScope(ctx, "src/pages")
	require.NoError(t, err)
	assert.True(t, res.Changed())
	assert.Equal(t, []string{"../components", "../modules"}, g.ScopeSources("src/pages"))
}

func TestPageGroupVariantsBarrel(t *testing.T) {
	fs, g := newProject(t,
		"src/pages/config/+system.svelte",
		"src/pages/config/+home.svelte",
		"src/pages/config/+user-prefs.svelte",
	)

	res, err := g.SynthesizePageGroup(context.Background(), "src/pages/config")
	require.NoError(t, err)
	assert.Contains(t, res.Written, "src/pages/config/pages.js")
	assert.Contains(t, res.Written, "src/pages/config/index.js")
	assert.Equal(t, []string{"src/pages/config/Index.svelte"}, res.Created)

	want := Header + "\n" +
		"import home from \"./+home.svelte\";\n" +
		"import system from \"./+system.svelte\";\n" +
		"import user_prefs from \"./+user-prefs.svelte\";\n" +
		"\n" +
		"export { home, system, user_prefs };\n" +
		"\n" +
		"export const fallback = \"home\";\n" +
		"\n" +
		"export default {\n" +
		"\t\"home\": home,\n" +
		"\t\"system\": system,\n" +
		"\t\"user_prefs\": user_prefs,\n" +
		"};\n"
	assert.Equal(t, want, readFile(t, fs, "src/pages/config/pages.js"))

	dispatcher := readFile(t, fs, "src/pages/config/Index.svelte")
	assert.Contains(t, dispatcher, `from "./pages.js"`)
	assert.Contains(t, dispatcher, `import { E404 } from "./";`)
}

func TestPageGroupFallbackIsFirstWithoutHome(t *testing.T) {
	_, g := newProject(t,
		"src/pages/docs/+b.svelte",
		"src/pages/docs/+a.svelte",
	)

	pg, err := g.BuildPageGroup("src/pages/docs")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, pg.Keys())
	assert.Equal(t, "a", pg.Fallback)
}

func TestPageGroupMaterializesDefaultVariant(t *testing.T) {
	fs, g := newProject(t, "src/pages/config/")

	res, err := g.SynthesizePageGroup(context.Background(), "src/pages/config")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/pages/config/+home.svelte", "src/pages/config/Index.svelte"}, res.Created)
	assert.Equal(t, "", readFile(t, fs, "src/pages/config/+home.svelte"))
	assert.Contains(t, readFile(t, fs, "src/pages/config/pages.js"), `export const fallback = "home";`)
}

func TestPageGroupKeepsUserDispatcher(t *testing.T) {
	fs, g := newProject(t, "src/pages/config/+home.svelte")
	writeFile(t, fs, "src/pages/config/Index.svelte", "<p>custom</p>\n")

	res, err := g.SynthesizePageGroup(context.Background(), "src/pages/config")
	require.NoError(t, err)
	assert.Empty(t, res.Created)
	assert.Equal(t, "<p>custom</p>\n", readFile(t, fs, "src/pages/config/Index.svelte"))
}

func TestPageGroupOnlyMaterializesWhenEmpty(t *testing.T) {
	fs, g := newProject(t, "src/pages/config/+system.svelte")

	_, err := g.SynthesizePageGroup(context.Background(), "src/pages/config")
	require.NoError(t, err)
	assert.False(t, exists(fs, "src/pages/config/+home.svelte"))
}

func TestBuildRoutesOrderingAndIdentifiers(t *testing.T) {
	_, g := newProject(t,
		"src/pages/Home.svelte",
		"src/pages/About.svelte",
		"src/pages/Contact.svelte",
		"src/pages/config/+home.svelte",
		"src/pages/config/+system.svelte",
		"src/pages/config/Index.svelte",
		"src/pages/team/About.svelte",
		"src/pages/lower.svelte",
	)

	table, err := g.BuildRoutes()
	require.NoError(t, err)

	want := router.Table{
		{Path: "/", Page: "Home", Import: "./pages/Home.svelte"},
		{Path: "/config/:page", Page: "ConfigIndex", Import: "./pages/config/Index.svelte"},
		{Path: "/contact", Page: "Contact", Import: "./pages/Contact.svelte"},
		{Path: "/about", Page: "About", Import: "./pages/About.svelte"},
		{Path: "/team/about", Page: "TeamAbout", Import: "./pages/team/About.svelte"},
	}
	assert.Equal(t, want, table)
}

func TestRoutesResolveThroughMatcher(t *testing.T) {
	_, g := newProject(t,
		"src/pages/Home.svelte",
		"src/pages/Contact.svelte",
		"src/pages/config/+system.svelte",
		"src/pages/config/Index.svelte",
	)

	table, err := g.BuildRoutes()
	require.NoError(t, err)
	m := router.NewMatcher(table)

	got, ok := m.Match("/config/system")
	require.True(t, ok)
	assert.Equal(t, "ConfigIndex", got.Page())
	assert.Equal(t, map[string]string{"page": "system"}, got.Params)

	got, ok = m.Match("/")
	require.True(t, ok)
	assert.Equal(t, "Home", got.Page())

	got, ok = m.Match("/contact")
	require.True(t, ok)
	assert.Equal(t, router.Route{Path: "/contact", Page: "Contact", Import: "./pages/Contact.svelte"}, got.Route)
}

func TestHomeBeatsRootDispatcher(t *testing.T) {
	_, g := newProject(t,
		"src/pages/Home.svelte",
		"src/pages/About.svelte",
		"src/pages/+home.svelte",
		"src/pages/+news.svelte",
		"src/pages/Index.svelte",
	)

	table, err := g.BuildRoutes()
	require.NoError(t, err)
	assert.Equal(t, []string{"PagesIndex", "Home", "About"}, table.Pages())

	m := router.NewMatcher(table)
	tests := []struct {
		path   string
		page   string
		params map[string]string
	}{
		{"/", "Home", nil},
		{"/about", "About", nil},
		{"/news", "PagesIndex", map[string]string{"page": "news"}},
	}
	for _, tt := range tests {
		got, ok := m.Match(tt.path)
		require.True(t, ok, tt.path)
		assert.Equal(t, tt.page, got.Page(), tt.path)
		assert.Equal(t, tt.params, got.Params, tt.path)
	}
}

func TestStaticPageBeatsDispatcherOfSameName(t *testing.T) {
	_, g := newProject(t,
		"src/pages/Config.svelte",
		"src/pages/config/+home.svelte",
		"src/pages/config/Index.svelte",
	)

	table, err := g.BuildRoutes()
	require.NoError(t, err)
	assert.Equal(t, []string{"ConfigIndex", "Config"}, table.Pages())

	m := router.NewMatcher(table)
	got, ok := m.Match("/config")
	require.True(t, ok)
	assert.Equal(t, "Config", got.Page())

	got, ok = m.Match("/config/system")
	require.True(t, ok)
	assert.Equal(t, "ConfigIndex", got.Page())
	assert.Equal(t, map[string]string{"page": "system"}, got.Params)
}

func TestRootDispatcherIdentifier(t *testing.T) {
	_, g := newProject(t, "src/pages/+home.svelte", "src/pages/Index.svelte")

	table, err := g.BuildRoutes()
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, router.Route{Path: "/:page", Page: "PagesIndex", Import: "./pages/Index.svelte"}, table[0])
}

func TestSynthesizeRoutesWritesModuleAndManifest(t *testing.T) {
	fs, g := newProject(t, "src/pages/Home.svelte", "src/pages/About.svelte")
	ctx := context.Background()

	res, err := g.SynthesizeRoutes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/routes.js", "src/routes.json"}, res.Written)

	want := Header + "\n" +
		"import Home from \"./pages/Home.svelte\";\n" +
		"import About from \"./pages/About.svelte\";\n" +
		"\n" +
		"export default [\n" +
		"\t{ path: \"/\", page: Home },\n" +
		"\t{ path: \"/about\", page: About },\n" +
		"];\n"
	assert.Equal(t, want, readFile(t, fs, "src/routes.js"))

	manifest, err := router.LoadTable(strings.NewReader(readFile(t, fs, "src/routes.json")))
	require.NoError(t, err)
	assert.Equal(t, g.Table(), manifest)

	again, err := g.SynthesizeRoutes(ctx)
	require.NoError(t, err)
	assert.False(t, again.Changed())
}

func TestRouteCollisionKeepsPreviousTable(t *testing.T) {
	fs, g := newProject(t,
		"src/pages/Home.svelte",
		"src/pages/config/+home.svelte",
		"src/pages/config/Index.svelte",
	)
	ctx := context.Background()

	_, err := g.SynthesizeRoutes(ctx)
	require.NoError(t, err)
	before := readFile(t, fs, "src/routes.js")
	table := g.Table()

	writeFile(t, fs, "src/pages/ConfigIndex.svelte", "<p>clash</p>\n")
	_, err = g.SynthesizeRoutes(ctx)
	require.Error(t, err)
	assert.Equal(t, "E203", codeOf(err))
	assert.True(t, errors.IsConfiguration(err))

	assert.Equal(t, before, readFile(t, fs, "src/routes.js"))
	assert.Equal(t, table, g.Table())
}

func TestStandaloneCollisionAfterQualifying(t *testing.T) {
	_, g := newProject(t,
		"src/pages/About.svelte",
		"src/pages/TeamAbout.svelte",
		"src/pages/team/About.svelte",
	)

	_, err := g.BuildRoutes()
	require.Error(t, err)
	assert.Equal(t, "E203", codeOf(err))
}

func TestAllGeneratesEverythingOnce(t *testing.T) {
	fs, g := newProject(t,
		"src/components/Button.svelte",
		"src/components/E404.svelte",
		"src/components/forms/Input.svelte",
		"src/modules/Store.svelte",
		"src/pages/Home.svelte",
		"src/pages/About.svelte",
		"src/pages/config/+home.svelte",
		"src/pages/config/+system.svelte",
		"src/pages/blog/Post.svelte",
	)
	ctx := context.Background()

	results, err := g.All(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, results)

	for _, p := range []string{
		"src/components/index.js",
		"src/components/forms/index.js",
		"src/modules/index.js",
		"src/pages/index.js",
		"src/pages/blog/index.js",
		"src/pages/config/index.js",
		"src/pages/config/pages.js",
		"src/pages/config/Index.svelte",
		"src/routes.js",
		"src/routes.json",
	} {
		assert.True(t, exists(fs, p), p)
	}

	table := g.Table()
	_, ok := table.Lookup("/config/:page")
	assert.True(t, ok, "dispatcher created during the pass must be routed")

	again, err := g.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestAllJoinsErrors(t *testing.T) {
	_, g := newProject(t,
		"src/components/Button.svelte",
		"src/pages/About.svelte",
		"src/pages/TeamAbout.svelte",
		"src/pages/team/About.svelte",
	)

	results, err := g.All(context.Background())
	require.Error(t, err)
	assert.Equal(t, "E203", codeOf(err))

	var barrel bool
	for _, r := range results {
		if r.Kind == KindBarrel {
			barrel = true
		}
	}
	assert.True(t, barrel, "barrels are still written when the route table fails")
}

func TestRelImport(t *testing.T) {
	assert.Equal(t, "../components", relImport("src/pages", "src/components"))
	assert.Equal(t, "./pages/Home.svelte", relImport("src", "src/pages/Home.svelte"))
	assert.Equal(t, "./src/pages/Home.svelte", relImport("", "src/pages/Home.svelte"))
}
