package router

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Route is one entry of a route table.
type Route struct {
	// Path is the URL pattern, e.g. "/config/:page".
	Path string `json:"path"`

	// Page is the identifier of the component bound to the pattern.
	Page string `json:"page"`

	// Import is the module path of the component, relative to the
	// route table file.
	Import string `json:"import,omitempty"`
}

// Params returns the parameter names of the pattern in order.
func (r Route) Params() []string {
	var names []string
	for _, seg := range splitPath(r.Path) {
		if isParam(seg) {
			names = append(names, seg[1:])
		}
	}
	return names
}

// Depth returns the number of segments in the pattern. "/" has depth 0.
func (r Route) Depth() int {
	return len(splitPath(r.Path))
}

// StaticDepth returns the number of literal segments in the pattern. A
// pathname must supply at least that many segments to match, since trailing
// parameters are optional.
func (r Route) StaticDepth() int {
	n := 0
	for _, seg := range splitPath(r.Path) {
		if !isParam(seg) {
			n++
		}
	}
	return n
}

// IsDynamic reports whether the pattern contains a parameter.
func (r Route) IsDynamic() bool {
	for _, seg := range splitPath(r.Path) {
		if isParam(seg) {
			return true
		}
	}
	return false
}

// Table is an ordered route table.
type Table []Route

// Lookup returns the entry with the given pattern.
func (t Table) Lookup(pattern string) (Route, bool) {
	for _, r := range t {
		if r.Path == pattern {
			return r, true
		}
	}
	return Route{}, false
}

// Pages returns the page identifiers in table order.
func (t Table) Pages() []string {
	out := make([]string, len(t))
	for i, r := range t {
		out[i] = r.Page
	}
	return out
}

// Validate checks that every pattern is absolute and that page identifiers
// are unique.
func (t Table) Validate() error {
	seen := make(map[string]string, len(t))
	for _, r := range t {
		if !strings.HasPrefix(r.Path, "/") {
			return fmt.Errorf("route %q: pattern must start with /", r.Path)
		}
		if r.Page == "" {
			return fmt.Errorf("route %q: missing page", r.Path)
		}
		if prev, ok := seen[r.Page]; ok {
			return fmt.Errorf("route %q: page %s already bound to %q", r.Path, r.Page, prev)
		}
		seen[r.Page] = r.Path
	}
	return nil
}

// MarshalIndent renders the table as the JSON manifest format.
func (t Table) MarshalIndent() ([]byte, error) {
	if t == nil {
		t = Table{}
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// LoadTable decodes a JSON route manifest.
func LoadTable(r io.Reader) (Table, error) {
	var t Table
	dec := json.NewDecoder(r)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode route table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTableFile reads a JSON route manifest from disk.
func LoadTableFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadTable(f)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func isParam(seg string) bool {
	return len(seg) > 1 && seg[0] == ':'
}
