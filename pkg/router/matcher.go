package router

import (
	"net/url"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of resolved pathnames a Matcher remembers.
const DefaultCacheSize = 256

// Match is the result of resolving a pathname.
type Match struct {
	// Route is the winning table entry.
	Route Route

	// Index is the position of Route in the table.
	Index int

	// Params maps parameter names to captured segments. Parameters with
	// no corresponding segment are absent.
	Params map[string]string
}

// Page returns the identifier of the matched component.
func (m Match) Page() string {
	return m.Route.Page
}

// compiledRoute is a table entry with its pattern compiled.
type compiledRoute struct {
	route Route
	re    *regexp.Regexp
	// groups holds, per capture group, the parameter names it binds.
	groups [][]string
}

// Matcher resolves pathnames against a route table. It is safe for
// concurrent use.
type Matcher struct {
	routes []compiledRoute
	cache  *lru.Cache[string, cachedMatch]
}

type cachedMatch struct {
	match Match
	ok    bool
}

// MatcherOption configures a Matcher.
type MatcherOption func(*matcherOptions)

type matcherOptions struct {
	cacheSize int
}

// WithCacheSize sets how many resolutions are cached. Zero disables caching.
func WithCacheSize(n int) MatcherOption {
	return func(o *matcherOptions) {
		o.cacheSize = n
	}
}

// NewMatcher compiles every pattern of the table.
func NewMatcher(t Table, opts ...MatcherOption) *Matcher {
	o := matcherOptions{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Matcher{routes: make([]compiledRoute, len(t))}
	for i, r := range t {
		m.routes[i] = compile(r)
	}
	if o.cacheSize > 0 {
		// lru.New only fails for a non-positive size.
		m.cache, _ = lru.New[string, cachedMatch](o.cacheSize)
	}
	return m
}

// Len returns the number of routes.
func (m *Matcher) Len() int {
	return len(m.routes)
}

// Table returns the routes in table order.
func (m *Matcher) Table() Table {
	t := make(Table, len(m.routes))
	for i, c := range m.routes {
		t[i] = c.route
	}
	return t
}

// Match resolves a pathname. When several entries match, the one that
// appears last in the table wins.
func (m *Matcher) Match(pathname string) (Match, bool) {
	pathname = normalizePathname(pathname)

	if m.cache != nil {
		if c, ok := m.cache.Get(pathname); ok {
			return c.match.clone(), c.ok
		}
	}

	match, ok := m.match(pathname)
	if m.cache != nil {
		m.cache.Add(pathname, cachedMatch{match: match, ok: ok})
	}
	return match.clone(), ok
}

func (m *Matcher) match(pathname string) (Match, bool) {
	for i := len(m.routes) - 1; i >= 0; i-- {
		c := m.routes[i]
		sub := c.re.FindStringSubmatch(pathname)
		if sub == nil {
			continue
		}
		return Match{Route: c.route, Index: i, Params: extractParams(c.groups, sub[1:])}, true
	}
	return Match{}, false
}

func (m Match) clone() Match {
	if m.Params == nil {
		return m
	}
	params := make(map[string]string, len(m.Params))
	for k, v := range m.Params {
		params[k] = v
	}
	m.Params = params
	return m
}

// compile turns a pattern into an anchored expression. Each run of
// consecutive parameters becomes one capture group whose slash separated
// segments are bound to the run's names positionally.
func compile(r Route) compiledRoute {
	segs := splitPath(r.Path)
	c := compiledRoute{route: r}

	var b strings.Builder
	b.WriteString("^")
	if len(segs) == 0 {
		b.WriteString("/")
	}

	for i := 0; i < len(segs); {
		if !isParam(segs[i]) {
			b.WriteString("/")
			b.WriteString(regexp.QuoteMeta(segs[i]))
			i++
			continue
		}

		var names []string
		for i < len(segs) && isParam(segs[i]) {
			names = append(names, segs[i][1:])
			i++
		}
		c.groups = append(c.groups, names)
		if i == len(segs) {
			b.WriteString(`((?:/.*)?)`)
		} else {
			b.WriteString(`((?:/[^/]*)*)`)
		}
	}
	b.WriteString("/?$")

	c.re = regexp.MustCompile(b.String())
	return c
}

// extractParams zips captured segments with parameter names. Surplus
// segments are dropped and missing ones leave their name absent.
func extractParams(groups [][]string, captures []string) map[string]string {
	if len(groups) == 0 {
		return nil
	}
	params := make(map[string]string)
	for g, names := range groups {
		if g >= len(captures) {
			break
		}
		capture := strings.TrimSuffix(captures[g], "/")
		if capture == "" {
			continue
		}
		values := strings.Split(strings.TrimPrefix(capture, "/"), "/")
		for j, name := range names {
			if j >= len(values) {
				break
			}
			params[name] = decodeSegment(values[j])
		}
	}
	return params
}

func decodeSegment(s string) string {
	if v, err := url.PathUnescape(s); err == nil {
		return v
	}
	return s
}

// normalizePathname strips query and fragment and guarantees a leading slash.
func normalizePathname(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
