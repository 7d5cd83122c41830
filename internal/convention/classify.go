package convention

import (
	"path"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Defaults for Layout fields.
const (
	DefaultExtension      = ".svelte"
	DefaultDispatcher     = "Index"
	DefaultVariant        = "home"
	DefaultBarrel         = "index.js"
	DefaultVariantsBarrel = "pages.js"
	DefaultNotFound       = "E404"

	// VariantPrefix marks a page variant basename.
	VariantPrefix = "+"
)

// Category is the role a path plays in the convention.
type Category int

const (
	Ignored Category = iota
	PageVariant
	PageComponent
	ComponentModule
	Directory
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case PageVariant:
		return "page-variant"
	case PageComponent:
		return "page-component"
	case ComponentModule:
		return "component-module"
	case Directory:
		return "directory"
	default:
		return "ignored"
	}
}

// Root identifies which convention root a path lies under.
type Root int

const (
	RootNone Root = iota
	RootPages
	RootComponents
	RootModules
)

// String returns the root name.
func (r Root) String() string {
	switch r {
	case RootPages:
		return "pages"
	case RootComponents:
		return "components"
	case RootModules:
		return "modules"
	default:
		return "none"
	}
}

// Layout holds the convention roots and names. Roots are project-relative
// forward-slash paths.
type Layout struct {
	Pages          string
	Components     string
	Modules        string
	Extension      string
	Dispatcher     string
	DefaultVariant string
	Barrel         string
	VariantsBarrel string
	NotFound       string
}

// DefaultLayout returns the layout of a project using the defaults.
func DefaultLayout() Layout {
	return Layout{
		Pages:          "src/pages",
		Components:     "src/components",
		Modules:        "src/modules",
		Extension:      DefaultExtension,
		Dispatcher:     DefaultDispatcher,
		DefaultVariant: DefaultVariant,
		Barrel:         DefaultBarrel,
		VariantsBarrel: DefaultVariantsBarrel,
		NotFound:       DefaultNotFound,
	}
}

// Path is a project path annotated with its conventional role.
type Path struct {
	// Path is the project-relative, forward-slash path.
	Path string

	// Rel is the path relative to its convention root ("" for the root).
	Rel string

	// Base is the last element of Path.
	Base string

	// Dir is the project-relative parent directory.
	Dir string

	// Root is the convention root Path lies under.
	Root Root

	// Category is the inferred role.
	Category Category

	// IsDirectory is set for directories, including ignored ones.
	IsDirectory bool
}

// Clean normalizes p to a project-relative, forward-slash path.
func Clean(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	if p == "." {
		return ""
	}
	return p
}

// RootOf reports which convention root p lies under and p relative to it.
func (l Layout) RootOf(p string) (Root, string) {
	p = Clean(p)
	for _, c := range []struct {
		root Root
		dir  string
	}{
		{RootPages, l.Pages},
		{RootComponents, l.Components},
		{RootModules, l.Modules},
	} {
		dir := Clean(c.dir)
		if dir == "" {
			continue
		}
		if p == dir {
			return c.root, ""
		}
		if strings.HasPrefix(p, dir+"/") {
			return c.root, p[len(dir)+1:]
		}
	}
	return RootNone, ""
}

// RootDir returns the project-relative directory of root.
func (l Layout) RootDir(root Root) string {
	switch root {
	case RootPages:
		return Clean(l.Pages)
	case RootComponents:
		return Clean(l.Components)
	case RootModules:
		return Clean(l.Modules)
	default:
		return ""
	}
}

// Classify returns the category of p. It never fails.
func (l Layout) Classify(p string, isDir bool) Category {
	return l.Describe(p, isDir).Category
}

// Describe builds the annotated Path for p.
func (l Layout) Describe(p string, isDir bool) Path {
	p = Clean(p)
	root, rel := l.RootOf(p)
	cp := Path{
		Path: p,
		Rel:  rel,
		Base: path.Base(p),
		Dir:  Clean(path.Dir(p)),
		Root: root,

		IsDirectory: isDir,
	}
	cp.Category = l.categorize(cp, isDir)
	return cp
}

func (l Layout) categorize(cp Path, isDir bool) Category {
	if cp.Root == RootNone || cp.Path == "" {
		return Ignored
	}
	if cp.Rel != "" && hiddenSegment(cp.Rel) {
		return Ignored
	}
	if isDir {
		return Directory
	}
	if filepath.Ext(cp.Base) != l.Extension {
		return Ignored
	}

	name := strings.TrimSuffix(cp.Base, l.Extension)
	switch cp.Root {
	case RootPages:
		if strings.HasPrefix(name, VariantPrefix) {
			if len(name) == len(VariantPrefix) {
				return Ignored
			}
			return PageVariant
		}
		if startsUpper(name) {
			return PageComponent
		}
	case RootComponents, RootModules:
		if startsUpper(name) {
			return ComponentModule
		}
	}
	return Ignored
}

// IsDispatcher reports whether cp is a page group dispatcher.
func (l Layout) IsDispatcher(cp Path) bool {
	return cp.Category == PageComponent && cp.Base == l.Dispatcher+l.Extension
}

// IsGenerated reports whether base is a file the generator owns.
func (l Layout) IsGenerated(base string) bool {
	return base == l.Barrel || base == l.VariantsBarrel
}

func hiddenSegment(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsUpper(r)
}
