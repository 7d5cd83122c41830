package templates

import (
	"bytes"
	"path"
	"sort"
	"text/template"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/errors"
)

// Config contains project template variables.
type Config struct {
	// ProjectName is the npm package name.
	ProjectName string

	// Src is the source directory, relative to the project root.
	Src string

	// Port is the dev server port written to autoroute.json.
	Port int

	// NotFound is the name of the not-found component.
	NotFound string
}

// Template is a starter project.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files maps project-relative paths to template text.
	Files map[string]string
}

var templates = map[string]*Template{
	"minimal": minimalTemplate(),
	"groups":  groupsTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("E501").
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: minimal, groups")
	}
	return tmpl, nil
}

// List returns all template names, sorted.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paths returns the files the template creates, sorted.
func (t *Template) Paths(cfg Config) []string {
	cfg = cfg.withDefaults()
	out := make([]string, 0, len(t.Files))
	for rel := range t.Files {
		out = append(out, expandPath(rel, cfg))
	}
	sort.Strings(out)
	return out
}

// Create writes the template into fs, which is rooted at the project
// directory.
func (t *Template) Create(fs billy.Filesystem, cfg Config) error {
	cfg = cfg.withDefaults()

	for _, relPath := range sortedKeys(t.Files) {
		tmpl, err := template.New(relPath).Parse(t.Files[relPath])
		if err != nil {
			return errors.Newf(errors.CategoryCLI, "invalid template %s: %v", relPath, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, cfg); err != nil {
			return errors.Newf(errors.CategoryCLI, "template execute error %s: %v", relPath, err)
		}

		target := expandPath(relPath, cfg)
		if err := fs.MkdirAll(path.Dir(target), 0o755); err != nil {
			return errors.New("E302").WithPath(target).Wrap(err)
		}
		if err := util.WriteFile(fs, target, buf.Bytes(), 0o644); err != nil {
			return errors.New("E302").WithPath(target).Wrap(err)
		}
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.ProjectName == "" {
		c.ProjectName = "app"
	}
	if c.Src == "" {
		c.Src = "src"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.NotFound == "" {
		c.NotFound = "E404"
	}
	return c
}

// expandPath substitutes the source directory and not-found component name
// in a template file path.
func expandPath(rel string, cfg Config) string {
	var buf bytes.Buffer
	tmpl := template.Must(template.New("path").Parse(rel))
	if err := tmpl.Execute(&buf, cfg); err != nil {
		return rel
	}
	return buf.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "Home and about pages with a not-found component",
		Files: map[string]string{
			"autoroute.json":                           configJSON,
			"package.json":                             packageJSON,
			"public/index.html":                        indexHTML,
			"{{.Src}}/main.js":                         mainJS,
			"{{.Src}}/App.svelte":                      appSvelte,
			"{{.Src}}/components/{{.NotFound}}.svelte": notFoundSvelte,
			"{{.Src}}/modules/.gitkeep":                "",
			"{{.Src}}/pages/Home.svelte":               homeSvelte,
			"{{.Src}}/pages/About.svelte":              aboutSvelte,
		},
	}
}

func groupsTemplate() *Template {
	t := minimalTemplate()
	t.Name = "groups"
	t.Description = "Minimal plus a config page group with variants"
	t.Files["{{.Src}}/pages/config/+home.svelte"] = configHomeSvelte
	t.Files["{{.Src}}/pages/config/+system.svelte"] = configSystemSvelte
	return t
}

const configJSON = `{
  "src": "{{.Src}}",
  "dev": {
    "port": {{.Port}}
  }
}
`

const packageJSON = `{
  "name": "{{.ProjectName}}",
  "private": true,
  "type": "module",
  "scripts": {
    "dev": "autoroute dev",
    "routes": "autoroute gen"
  },
  "devDependencies": {
    "esbuild": "^0.19.0",
    "esbuild-svelte": "^0.8.0",
    "svelte": "^4.2.0"
  }
}
`

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="utf-8">
	<meta name="viewport" content="width=device-width,initial-scale=1">
	<title>{{.ProjectName}}</title>
	<script type="module" src="/build/main.js"></script>
</head>
<body></body>
</html>
`

const mainJS = `import App from "./App.svelte";

export default new App({ target: document.body });
`

const appSvelte = `<script>
	import { onMount } from "svelte";
	import routes from "./routes.js";
	import { {{.NotFound}} } from "./components";

	let page = null;
	let params = {};

	const compiled = routes.map((route) => {
		const names = [];
		const source = route.path === "/" ? "/" : route.path.replace(/\/:([^/]+)/g, (_, name) => {
			names.push(name);
			return "(?:/([^/]*))?";
		});
		return { ...route, names, re: new RegExp("^" + source + "/?$") };
	});

	function resolve(pathname) {
		for (let i = compiled.length - 1; i >= 0; i--) {
			const m = compiled[i].re.exec(pathname);
			if (!m) continue;
			params = {};
			compiled[i].names.forEach((name, j) => {
				if (m[j + 1] !== undefined) params[name] = decodeURIComponent(m[j + 1]);
			});
			page = compiled[i].page;
			return;
		}
		page = null;
	}

	function onClick(event) {
		const a = event.target.closest("a[href]");
		if (!a || a.target || a.hasAttribute("download") || event.button !== 0) return;
		if (event.metaKey || event.ctrlKey || event.shiftKey || event.altKey) return;
		const url = new URL(a.href, location.href);
		if (url.origin !== location.origin || (url.hash && url.pathname === location.pathname)) return;
		event.preventDefault();
		if (url.pathname !== location.pathname) {
			history.pushState({}, "", url);
			resolve(url.pathname);
		}
	}

	onMount(() => {
		const onPop = () => resolve(location.pathname);
		addEventListener("popstate", onPop);
		document.body.addEventListener("click", onClick);
		resolve(location.pathname);
		return () => {
			removeEventListener("popstate", onPop);
			document.body.removeEventListener("click", onClick);
		};
	});
</script>

{#if page}
	<svelte:component this={page} {params} />
{:else}
	<{{.NotFound}} />
{/if}
`

const notFoundSvelte = `<h1>Page not found</h1>
<p><a href="/">Back home</a></p>
`

const homeSvelte = `<h1>Home</h1>
<nav>
	<a href="/about">About</a>
</nav>
`

const aboutSvelte = `<h1>About</h1>
<p><a href="/">Home</a></p>
`

const configHomeSvelte = `<h2>Configuration</h2>
<p><a href="/config/system">System</a></p>
`

const configSystemSvelte = `<h2>System</h2>
<p><a href="/config">Back</a></p>
`
