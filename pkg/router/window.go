package router

import "sync"

// Event names dispatched by a Window.
const (
	EventPopState = "popstate"
	EventClick    = "click"
)

// Event is a DOM event as seen by the router.
type Event struct {
	Type string

	// Href is the href of the anchor the click landed on, if any.
	Href string

	// Target is the anchor's target attribute.
	Target string

	// Download reports whether the anchor carries a download attribute.
	Download bool

	// Button is the mouse button; 0 is the primary button.
	Button int

	// Modified reports whether ctrl, meta, shift or alt was held.
	Modified bool

	prevented bool
}

// PreventDefault suppresses the browser's default handling.
func (e *Event) PreventDefault() {
	e.prevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.prevented
}

// Window is the slice of the browser window the router needs.
type Window interface {
	// Origin returns scheme://host[:port] of the document.
	Origin() string

	// Pathname returns the path of the current location.
	Pathname() string

	// PushState appends a history entry without reloading.
	PushState(url string)

	// ReplaceState overwrites the current history entry without reloading.
	ReplaceState(url string)

	// AddEventListener registers fn for the named event and returns a
	// function that removes it.
	AddEventListener(event string, fn func(*Event)) (remove func())
}

// MemoryWindow is an in-memory Window with a history stack.
type MemoryWindow struct {
	mu        sync.Mutex
	origin    string
	entries   []string
	index     int
	reloads   int
	nextID    int
	listeners map[string]map[int]func(*Event)
}

// NewMemoryWindow returns a window at the given origin showing url.
func NewMemoryWindow(origin, url string) *MemoryWindow {
	if url == "" {
		url = "/"
	}
	return &MemoryWindow{
		origin:    origin,
		entries:   []string{url},
		listeners: make(map[string]map[int]func(*Event)),
	}
}

func (w *MemoryWindow) Origin() string {
	return w.origin
}

func (w *MemoryWindow) Pathname() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return normalizePathname(w.entries[w.index])
}

// URL returns the current entry including query and fragment.
func (w *MemoryWindow) URL() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.entries[w.index]
}

func (w *MemoryWindow) PushState(url string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries[:w.index+1], url)
	w.index++
}

func (w *MemoryWindow) ReplaceState(url string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries[w.index] = url
}

func (w *MemoryWindow) AddEventListener(event string, fn func(*Event)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.listeners[event] == nil {
		w.listeners[event] = make(map[int]func(*Event))
	}
	id := w.nextID
	w.nextID++
	w.listeners[event][id] = fn

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.listeners[event], id)
	}
}

// Len returns the number of history entries.
func (w *MemoryWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// Reloads returns how many full document loads clicks have caused.
func (w *MemoryWindow) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Listeners returns the number of listeners registered for event.
func (w *MemoryWindow) Listeners(event string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.listeners[event])
}

// Back moves one entry back and dispatches popstate.
func (w *MemoryWindow) Back() bool {
	return w.Go(-1)
}

// Forward moves one entry forward and dispatches popstate.
func (w *MemoryWindow) Forward() bool {
	return w.Go(1)
}

// Go moves delta entries through history and dispatches popstate. It
// reports false when the target entry does not exist.
func (w *MemoryWindow) Go(delta int) bool {
	w.mu.Lock()
	target := w.index + delta
	if delta == 0 || target < 0 || target >= len(w.entries) {
		w.mu.Unlock()
		return false
	}
	w.index = target
	w.mu.Unlock()

	w.Dispatch(&Event{Type: EventPopState})
	return true
}

// Click simulates a primary-button click on an anchor. When no listener
// prevents the default, the window performs a full load of href.
func (w *MemoryWindow) Click(href string) *Event {
	ev := &Event{Type: EventClick, Href: href}
	w.Dispatch(ev)
	if !ev.DefaultPrevented() && href != "" {
		w.mu.Lock()
		w.entries = append(w.entries[:w.index+1], href)
		w.index++
		w.reloads++
		w.mu.Unlock()
	}
	return ev
}

// Dispatch delivers ev to the listeners of ev.Type.
func (w *MemoryWindow) Dispatch(ev *Event) {
	w.mu.Lock()
	fns := make([]func(*Event), 0, len(w.listeners[ev.Type]))
	for id := 0; id < w.nextID; id++ {
		if fn, ok := w.listeners[ev.Type][id]; ok {
			fns = append(fns, fn)
		}
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
