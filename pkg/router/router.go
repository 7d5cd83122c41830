package router

import (
	"log/slog"
)

// Handler renders a resolved route.
type Handler func(m Match)

// NotFoundHandler is called when a pathname matches no route.
type NotFoundHandler func(pathname string)

// Option configures a Router.
type Option func(*Router)

// WithHandler sets the function invoked for every resolved route.
func WithHandler(h Handler) Option {
	return func(r *Router) {
		r.onMatch = h
	}
}

// WithNotFound sets the fallback invoked when nothing matches.
func WithNotFound(h NotFoundHandler) Option {
	return func(r *Router) {
		r.onNotFound = h
	}
}

// WithLogger sets the router's logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		r.logger = l
	}
}

// WithMatcher replaces the matcher built from the table.
func WithMatcher(m *Matcher) Option {
	return func(r *Router) {
		r.matcher = m
	}
}

// Router drives client-side navigation over a Window. It is not safe for
// concurrent use; like the DOM it is driven from a single event loop.
type Router struct {
	matcher    *Matcher
	win        Window
	onMatch    Handler
	onNotFound NotFoundHandler
	logger     *slog.Logger

	current   string
	resolved  bool
	listening bool
	removers  []func()
}

// New creates a router for the table bound to win.
func New(t Table, win Window, opts ...Option) *Router {
	r := &Router{win: win}
	for _, opt := range opts {
		opt(r)
	}
	if r.matcher == nil {
		r.matcher = NewMatcher(t)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Matcher returns the router's matcher.
func (r *Router) Matcher() *Matcher {
	return r.matcher
}

// Current returns the last resolved pathname.
func (r *Router) Current() string {
	return r.current
}

// Listening reports whether the router is bound to its window.
func (r *Router) Listening() bool {
	return r.listening
}

// Listen binds popstate and link-click handling and resolves the current
// location. Calling Listen on a listening router does nothing.
func (r *Router) Listen() {
	if r.listening {
		return
	}
	r.listening = true
	r.removers = append(r.removers,
		r.win.AddEventListener(EventPopState, r.handlePopState),
		r.win.AddEventListener(EventClick, r.HandleClick),
	)
	r.resolve(r.win.Pathname())
}

// Unlisten removes every handler bound by Listen. It is safe to call more
// than once.
func (r *Router) Unlisten() {
	for _, remove := range r.removers {
		remove()
	}
	r.removers = nil
	r.listening = false
}

// Navigate records path in history and resolves it. Navigating to the
// current pathname is a no-op.
func (r *Router) Navigate(path string, opts ...NavigateOption) {
	options := NavigateOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	req := NavigationRequest{Path: path, Options: options}
	target, err := req.BuildURL()
	if err != nil {
		r.logger.Warn("navigate: invalid path", "path", path, "error", err)
		return
	}
	if r.resolved && normalizePathname(target) == r.current {
		return
	}

	if options.Replace {
		r.win.ReplaceState(target)
	} else {
		r.win.PushState(target)
	}
	r.resolve(r.win.Pathname())
}

// Resolve resolves a pathname without touching history.
func (r *Router) Resolve(pathname string) (Match, bool) {
	return r.matcher.Match(pathname)
}

// HandleClick intercepts primary-button clicks on same-document links and
// turns them into history navigations.
func (r *Router) HandleClick(ev *Event) {
	if ev.DefaultPrevented() || ev.Button != 0 || ev.Modified || ev.Download {
		return
	}
	if ev.Target != "" && ev.Target != "_self" {
		return
	}
	target, ok := SameDocument(ev.Href, r.win.Origin()+r.win.Pathname())
	if !ok {
		return
	}
	ev.PreventDefault()
	r.Navigate(target)
}

func (r *Router) handlePopState(*Event) {
	r.resolve(r.win.Pathname())
}

// resolve dispatches pathname unless it is already current.
func (r *Router) resolve(pathname string) {
	pathname = normalizePathname(pathname)
	if r.resolved && pathname == r.current {
		return
	}
	r.current = pathname
	r.resolved = true

	m, ok := r.matcher.Match(pathname)
	if !ok {
		r.logger.Debug("route not found", "path", pathname)
		if r.onNotFound != nil {
			r.onNotFound(pathname)
		}
		return
	}

	r.logger.Debug("route matched", "path", pathname, "pattern", m.Route.Path, "page", m.Route.Page)
	if r.onMatch != nil {
		r.onMatch(m)
	}
}
