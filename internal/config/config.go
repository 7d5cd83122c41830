package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/convention"
	"github.com/ulmzr/svelte-esbuild-devserver/internal/errors"
)

const (
	// DefaultPort is the default inspection API port.
	DefaultPort = 8080

	// DefaultHost is the default inspection API host.
	DefaultHost = "localhost"

	// DefaultPoll is the default watcher polling interval.
	DefaultPoll = 250 * time.Millisecond

	// EnvFileName is the dotenv file loaded from the project root.
	EnvFileName = ".env"
)

// ConfigFileNames are the configuration files probed, in order.
var ConfigFileNames = []string{
	"autoroute.json",
	"autoroute.yaml",
	"autoroute.yml",
	"autoroute.toml",
}

// DefaultIgnore contains the watcher ignore patterns used when none are set.
var DefaultIgnore = []string{
	".*",
	"node_modules",
	"*.swp",
	"*.tmp",
	"*~",
}

// Config represents the complete autoroute configuration.
type Config struct {
	// Src is the source directory the generated route table lives in.
	Src string `json:"src,omitempty" yaml:"src,omitempty" toml:"src,omitempty"`

	// Paths contains the convention roots.
	Paths PathsConfig `json:"paths,omitempty" yaml:"paths,omitempty" toml:"paths,omitempty"`

	// Routes is the generated route table module.
	Routes string `json:"routes,omitempty" yaml:"routes,omitempty" toml:"routes,omitempty"`

	// Manifest is the generated JSON route manifest. "-" disables it.
	Manifest string `json:"manifest,omitempty" yaml:"manifest,omitempty" toml:"manifest,omitempty"`

	// Conventions contains naming conventions.
	Conventions ConventionsConfig `json:"conventions,omitempty" yaml:"conventions,omitempty" toml:"conventions,omitempty"`

	// Dev contains watch mode settings.
	Dev DevConfig `json:"dev,omitempty" yaml:"dev,omitempty" toml:"dev,omitempty"`

	// root is the project directory.
	root string

	// configPath stores the path where the config was loaded from.
	configPath string
}

// PathsConfig contains the convention roots, relative to the project.
type PathsConfig struct {
	Pages      string `json:"pages,omitempty" yaml:"pages,omitempty" toml:"pages,omitempty"`
	Components string `json:"components,omitempty" yaml:"components,omitempty" toml:"components,omitempty"`
	Modules    string `json:"modules,omitempty" yaml:"modules,omitempty" toml:"modules,omitempty"`
}

// ConventionsConfig contains file naming conventions.
type ConventionsConfig struct {
	// Extension is the component source extension.
	Extension string `json:"extension,omitempty" yaml:"extension,omitempty" toml:"extension,omitempty"`

	// Dispatcher is the page group dispatcher component name.
	Dispatcher string `json:"dispatcher,omitempty" yaml:"dispatcher,omitempty" toml:"dispatcher,omitempty"`

	// DefaultVariant is the variant rendered when no page is requested.
	DefaultVariant string `json:"defaultVariant,omitempty" yaml:"defaultVariant,omitempty" toml:"defaultVariant,omitempty"`

	// Barrel is the generated barrel module file name.
	Barrel string `json:"barrel,omitempty" yaml:"barrel,omitempty" toml:"barrel,omitempty"`

	// VariantsBarrel is the generated variants barrel file name.
	VariantsBarrel string `json:"variantsBarrel,omitempty" yaml:"variantsBarrel,omitempty" toml:"variantsBarrel,omitempty"`

	// NotFound is the component rendered when a variant is missing.
	NotFound string `json:"notFound,omitempty" yaml:"notFound,omitempty" toml:"notFound,omitempty"`
}

// DevConfig contains watch mode settings.
type DevConfig struct {
	// Host is the inspection API host.
	Host string `json:"host,omitempty" yaml:"host,omitempty" toml:"host,omitempty"`

	// Port is the inspection API port.
	Port int `json:"port,omitempty" yaml:"port,omitempty" toml:"port,omitempty"`

	// Poll is the watcher polling interval (e.g., "250ms").
	Poll string `json:"poll,omitempty" yaml:"poll,omitempty" toml:"poll,omitempty"`

	// Ignore contains patterns to ignore during watch.
	Ignore []string `json:"ignore,omitempty" yaml:"ignore,omitempty" toml:"ignore,omitempty"`

	// Verbose enables debug logging.
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty" toml:"verbose,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Src: "src",
		Paths: PathsConfig{
			Pages:      "src/pages",
			Components: "src/components",
			Modules:    "src/modules",
		},
		Routes:   "src/routes.js",
		Manifest: "src/routes.json",
		Conventions: ConventionsConfig{
			Extension:      convention.DefaultExtension,
			Dispatcher:     convention.DefaultDispatcher,
			DefaultVariant: convention.DefaultVariant,
			Barrel:         convention.DefaultBarrel,
			VariantsBarrel: convention.DefaultVariantsBarrel,
			NotFound:       convention.DefaultNotFound,
		},
		Dev: DevConfig{
			Host:   DefaultHost,
			Port:   DefaultPort,
			Poll:   DefaultPoll.String(),
			Ignore: append([]string(nil), DefaultIgnore...),
		},
	}
}

// Load reads configuration from the project directory. A directory without a
// configuration file yields the defaults.
func Load(dir string) (*Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.New("E102").Wrap(err)
	}

	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	cfg := New()
	cfg.root = dir
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// LoadFile reads configuration from the specified file path. The format is
// chosen by extension.
func LoadFile(path string) (*Config, error) {
	path, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.New("E102").Wrap(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E101").
				WithPath(path).
				WithSuggestion("Create autoroute.json or run without a configuration file")
		}
		return nil, errors.New("E102").WithPath(path).Wrap(err)
	}

	cfg := &Config{}
	if err := decode(path, data, cfg); err != nil {
		return nil, errors.New("E102").
			WithPath(path).
			WithDetail("Failed to parse " + filepath.Base(path)).
			Wrap(err)
	}

	cfg.configPath = path
	cfg.root = filepath.Dir(path)
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}

// applyEnv loads the project's .env file and applies AUTOROUTE_* overrides.
// Variables already present in the environment win over the .env file.
func (c *Config) applyEnv() error {
	envPath := filepath.Join(c.root, EnvFileName)
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return errors.New("E102").WithPath(envPath).Wrap(err)
		}
	}

	if v := os.Getenv("AUTOROUTE_HOST"); v != "" {
		c.Dev.Host = v
	}
	if v := os.Getenv("AUTOROUTE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("E103").WithDetail("AUTOROUTE_PORT is not a number: " + v)
		}
		c.Dev.Port = port
	}
	if v := os.Getenv("AUTOROUTE_POLL"); v != "" {
		c.Dev.Poll = v
	}
	return nil
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	d := New()

	if c.Src == "" {
		c.Src = d.Src
	}
	if c.Paths.Pages == "" {
		c.Paths.Pages = filepath.ToSlash(filepath.Join(c.Src, "pages"))
	}
	if c.Paths.Components == "" {
		c.Paths.Components = filepath.ToSlash(filepath.Join(c.Src, "components"))
	}
	if c.Paths.Modules == "" {
		c.Paths.Modules = filepath.ToSlash(filepath.Join(c.Src, "modules"))
	}
	if c.Routes == "" {
		c.Routes = filepath.ToSlash(filepath.Join(c.Src, "routes.js"))
	}
	if c.Manifest == "" {
		c.Manifest = filepath.ToSlash(filepath.Join(c.Src, "routes.json"))
	}

	cv := &c.Conventions
	if cv.Extension == "" {
		cv.Extension = d.Conventions.Extension
	}
	if !strings.HasPrefix(cv.Extension, ".") {
		cv.Extension = "." + cv.Extension
	}
	if cv.Dispatcher == "" {
		cv.Dispatcher = d.Conventions.Dispatcher
	}
	if cv.DefaultVariant == "" {
		cv.DefaultVariant = d.Conventions.DefaultVariant
	}
	if cv.Barrel == "" {
		cv.Barrel = d.Conventions.Barrel
	}
	if cv.VariantsBarrel == "" {
		cv.VariantsBarrel = d.Conventions.VariantsBarrel
	}
	if cv.NotFound == "" {
		cv.NotFound = d.Conventions.NotFound
	}

	if c.Dev.Host == "" {
		c.Dev.Host = DefaultHost
	}
	if c.Dev.Port == 0 {
		c.Dev.Port = DefaultPort
	}
	if c.Dev.Poll == "" {
		c.Dev.Poll = DefaultPoll.String()
	}
	if c.Dev.Ignore == nil {
		c.Dev.Ignore = append([]string(nil), DefaultIgnore...)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Dev.Port < 0 || c.Dev.Port > 65535 {
		return errors.New("E103").
			WithDetail("Port must be between 0 and 65535")
	}
	if c.Conventions.Extension == "." {
		return errors.New("E103").
			WithDetail("conventions.extension must not be empty")
	}
	if d, err := time.ParseDuration(c.Dev.Poll); err != nil || d <= 0 {
		return errors.New("E103").
			WithDetail("dev.poll must be a positive duration, got " + strconv.Quote(c.Dev.Poll))
	}
	for name, p := range map[string]string{
		"paths.pages":      c.Paths.Pages,
		"paths.components": c.Paths.Components,
		"paths.modules":    c.Paths.Modules,
		"routes":           c.Routes,
	} {
		if !c.inProject(p) {
			return errors.New("E103").
				WithDetail(name + " points outside the project: " + p).
				WithSuggestion("Use a path relative to the project root")
		}
	}
	return nil
}

func (c *Config) inProject(p string) bool {
	if filepath.IsAbs(p) {
		rel, err := filepath.Rel(c.Dir(), p)
		if err != nil {
			return false
		}
		p = rel
	}
	p = filepath.ToSlash(filepath.Clean(p))
	return p != ".." && !strings.HasPrefix(p, "../")
}

// Path returns the path where the config was loaded from, or "" when the
// defaults are in use.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the project directory.
func (c *Config) Dir() string {
	return c.root
}

// SetDir anchors the configuration at a project directory.
func (c *Config) SetDir(dir string) {
	c.root = dir
}

// PollInterval returns the parsed watcher polling interval.
func (c *Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Dev.Poll)
	if err != nil || d <= 0 {
		return DefaultPoll
	}
	return d
}

// DevAddress returns the address string for the inspection API.
func (c *Config) DevAddress() string {
	return c.Dev.Host + ":" + strconv.Itoa(c.Dev.Port)
}

// DevURL returns the full URL for the inspection API.
func (c *Config) DevURL() string {
	return "http://" + c.DevAddress()
}

// HasManifest reports whether the JSON route manifest is generated.
func (c *Config) HasManifest() bool {
	return c.Manifest != "-"
}

// Layout returns the convention layout with project-relative, forward-slash
// roots.
func (c *Config) Layout() convention.Layout {
	return convention.Layout{
		Pages:          relSlash(c.Dir(), c.Paths.Pages),
		Components:     relSlash(c.Dir(), c.Paths.Components),
		Modules:        relSlash(c.Dir(), c.Paths.Modules),
		Extension:      c.Conventions.Extension,
		Dispatcher:     c.Conventions.Dispatcher,
		DefaultVariant: c.Conventions.DefaultVariant,
		Barrel:         c.Conventions.Barrel,
		VariantsBarrel: c.Conventions.VariantsBarrel,
		NotFound:       c.Conventions.NotFound,
	}
}

// RoutesFile returns the project-relative route table path.
func (c *Config) RoutesFile() string {
	return relSlash(c.Dir(), c.Routes)
}

// ManifestFile returns the project-relative manifest path, or "" when
// disabled.
func (c *Config) ManifestFile() string {
	if !c.HasManifest() {
		return ""
	}
	return relSlash(c.Dir(), c.Manifest)
}

// WatchRoots returns the absolute directories the watcher observes.
func (c *Config) WatchRoots() []string {
	l := c.Layout()
	roots := []string{l.Components, l.Modules, l.Pages}
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		out = append(out, filepath.Join(c.Dir(), filepath.FromSlash(r)))
	}
	return out
}

func relSlash(root, p string) string {
	if filepath.IsAbs(p) {
		if rel, err := filepath.Rel(root, p); err == nil {
			p = rel
		}
	}
	p = filepath.ToSlash(filepath.Clean(p))
	return strings.TrimPrefix(p, "./")
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range ConfigFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root: the first
// directory holding a configuration file or a package.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "package.json")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E101").
				WithDetail("No autoroute configuration or package.json found in " + startDir + " or any parent directory").
				WithSuggestion("Run autoroute from the project root")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration for the project containing the
// current working directory, falling back to the working directory itself.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		root = wd
	}

	return Load(root)
}
