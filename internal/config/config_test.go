package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/errors"
)

func codeOf(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Dev.Port != DefaultPort {
		t.Errorf("Dev.Port = %d, want %d", cfg.Dev.Port, DefaultPort)
	}
	if cfg.Dev.Host != DefaultHost {
		t.Errorf("Dev.Host = %q, want %q", cfg.Dev.Host, DefaultHost)
	}
	if cfg.Paths.Pages != "src/pages" {
		t.Errorf("Paths.Pages = %q, want %q", cfg.Paths.Pages, "src/pages")
	}
	if cfg.Conventions.Dispatcher != "Index" {
		t.Errorf("Conventions.Dispatcher = %q, want %q", cfg.Conventions.Dispatcher, "Index")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadWithoutConfigFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty", cfg.Path())
	}
	if cfg.RoutesFile() != "src/routes.js" {
		t.Errorf("RoutesFile() = %q", cfg.RoutesFile())
	}
	if cfg.ManifestFile() != "src/routes.json" {
		t.Errorf("ManifestFile() = %q", cfg.ManifestFile())
	}
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "autoroute.json", `{
  "src": "app",
  "manifest": "-",
  "conventions": {"dispatcher": "Main", "extension": "svelte"},
  "dev": {"port": 9000, "poll": "1s"}
}`},
		{"yaml", "autoroute.yaml", `src: app
manifest: "-"
conventions:
  dispatcher: Main
  extension: svelte
dev:
  port: 9000
  poll: 1s
`},
		{"toml", "autoroute.toml", `src = "app"
manifest = "-"

[conventions]
dispatcher = "Main"
extension = "svelte"

[dev]
port = 9000
poll = "1s"
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.file, tt.content)

			cfg, err := Load(dir)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if filepath.Base(cfg.Path()) != tt.file {
				t.Errorf("Path() = %q", cfg.Path())
			}
			if cfg.Paths.Pages != "app/pages" {
				t.Errorf("Paths.Pages = %q, want %q", cfg.Paths.Pages, "app/pages")
			}
			if cfg.Routes != "app/routes.js" {
				t.Errorf("Routes = %q, want %q", cfg.Routes, "app/routes.js")
			}
			if cfg.HasManifest() || cfg.ManifestFile() != "" {
				t.Error("manifest should be disabled")
			}
			if cfg.Conventions.Dispatcher != "Main" {
				t.Errorf("Dispatcher = %q", cfg.Conventions.Dispatcher)
			}
			if cfg.Conventions.Extension != ".svelte" {
				t.Errorf("Extension = %q, want %q", cfg.Conventions.Extension, ".svelte")
			}
			if cfg.Conventions.DefaultVariant != "home" {
				t.Errorf("DefaultVariant = %q", cfg.Conventions.DefaultVariant)
			}
			if cfg.Dev.Port != 9000 {
				t.Errorf("Dev.Port = %d", cfg.Dev.Port)
			}
			if cfg.PollInterval() != time.Second {
				t.Errorf("PollInterval() = %v", cfg.PollInterval())
			}
			if cfg.Dev.Host != DefaultHost {
				t.Errorf("Dev.Host = %q", cfg.Dev.Host)
			}
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "autoroute.json", `{"dev": `)

	_, err := Load(dir)
	if code := codeOf(err); code != "E102" {
		t.Errorf("code = %q, want E102 (err: %v)", code, err)
	}

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	if code := codeOf(err); code != "E101" {
		t.Errorf("code = %q, want E101", code)
	}
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, ".env", "AUTOROUTE_PORT=7000\nAUTOROUTE_POLL=50ms\n")
	t.Setenv("AUTOROUTE_HOST", "0.0.0.0")
	t.Setenv("AUTOROUTE_PORT", "")
	t.Setenv("AUTOROUTE_POLL", "")
	os.Unsetenv("AUTOROUTE_PORT")
	os.Unsetenv("AUTOROUTE_POLL")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Dev.Host != "0.0.0.0" {
		t.Errorf("Dev.Host = %q", cfg.Dev.Host)
	}
	if cfg.Dev.Port != 7000 {
		t.Errorf("Dev.Port = %d, want 7000", cfg.Dev.Port)
	}
	if cfg.PollInterval() != 50*time.Millisecond {
		t.Errorf("PollInterval() = %v", cfg.PollInterval())
	}
	if cfg.DevAddress() != "0.0.0.0:7000" {
		t.Errorf("DevAddress() = %q", cfg.DevAddress())
	}
}

func TestEnvOverrideInvalidPort(t *testing.T) {
	t.Setenv("AUTOROUTE_PORT", "eighty")

	_, err := Load(t.TempDir())
	if code := codeOf(err); code != "E103" {
		t.Errorf("code = %q, want E103", code)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"port", func(c *Config) { c.Dev.Port = 70000 }},
		{"poll", func(c *Config) { c.Dev.Poll = "soon" }},
		{"negative poll", func(c *Config) { c.Dev.Poll = "-1s" }},
		{"extension", func(c *Config) { c.Conventions.Extension = "." }},
		{"pages outside", func(c *Config) { c.Paths.Pages = "../elsewhere/pages" }},
		{"routes outside", func(c *Config) { c.Routes = "/etc/routes.js" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			cfg.SetDir(t.TempDir())
			tt.modify(cfg)
			if code := codeOf(cfg.Validate()); code != "E103" {
				t.Errorf("code = %q, want E103", code)
			}
		})
	}
}

func TestLayoutAndWatchRoots(t *testing.T) {
	dir := t.TempDir()
	cfg := New()
	cfg.SetDir(dir)
	cfg.Paths.Components = filepath.Join(dir, "lib", "ui")

	l := cfg.Layout()
	if l.Pages != "src/pages" {
		t.Errorf("Layout.Pages = %q", l.Pages)
	}
	if l.Components != "lib/ui" {
		t.Errorf("Layout.Components = %q, want %q", l.Components, "lib/ui")
	}

	roots := cfg.WatchRoots()
	want := []string{
		filepath.Join(dir, "lib", "ui"),
		filepath.Join(dir, "src", "modules"),
		filepath.Join(dir, "src", "pages"),
	}
	if len(roots) != len(want) {
		t.Fatalf("WatchRoots() = %v", roots)
	}
	for i := range want {
		if roots[i] != want[i] {
			t.Errorf("WatchRoots()[%d] = %q, want %q", i, roots[i], want[i])
		}
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "package.json", "{}")
	nested := filepath.Join(root, "src", "pages", "config")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	if got != root {
		t.Errorf("FindProjectRoot() = %q, want %q", got, root)
	}

	writeConfig(t, filepath.Join(root, "src"), "autoroute.toml", "")
	got, err = FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	if got != filepath.Join(root, "src") {
		t.Errorf("FindProjectRoot() = %q, want the directory holding autoroute.toml", got)
	}
}
