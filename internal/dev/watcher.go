package dev

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/config"
)

// Op is the kind of a filesystem event.
type Op int

const (
	OpAdd Op = iota
	OpChange
	OpRemove
	OpAddDir
	OpRemoveDir
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpChange:
		return "change"
	case OpRemove:
		return "remove"
	case OpAddDir:
		return "addDir"
	case OpRemoveDir:
		return "removeDir"
	default:
		return "unknown"
	}
}

// IsDir reports whether the event is about a directory.
func (o Op) IsDir() bool {
	return o == OpAddDir || o == OpRemoveDir
}

// Event is a filesystem event. Path is relative to the project root and
// uses forward slashes.
type Event struct {
	Op   Op
	Path string
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Root is the project directory event paths are relative to.
	Root string

	// Paths are the absolute directories to watch. Missing directories are
	// picked up once they appear.
	Paths []string

	// Ignore patterns to skip (globs or path segments).
	Ignore []string

	// Interval is the delay between two polls.
	Interval time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = config.DefaultIgnore

type entry struct {
	modTime time.Time
	size    int64
	dir     bool
}

// Watcher polls directories and reports additions, changes and removals.
//
// The first poll reports every existing entry as added and is followed by
// the ready callback, which marks the end of the initial scan.
type Watcher struct {
	config  WatcherConfig
	onEvent func(Event)
	onReady func()
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	entries map[string]entry
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval == 0 {
		config.Interval = 250 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}

	return &Watcher{
		config:  config,
		entries: make(map[string]entry),
	}
}

// OnEvent sets the callback for filesystem events. Events are delivered one
// at a time from the watcher's goroutine.
func (w *Watcher) OnEvent(fn func(Event)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onEvent = fn
}

// OnReady sets the callback invoked once the initial scan is complete.
func (w *Watcher) OnReady(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReady = fn
}

// Start scans the watched paths and then polls them until ctx is done or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.mu.Unlock()

	w.poll()

	w.mu.Lock()
	ready := w.onReady
	w.mu.Unlock()
	if ready != nil {
		ready()
	}

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			w.poll()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// poll compares the tree against the previous snapshot and reports the
// differences: removals deepest first, then additions and changes parents
// first.
func (w *Watcher) poll() {
	current := w.snapshot()

	w.mu.Lock()
	previous := w.entries
	w.entries = current
	callback := w.onEvent
	w.mu.Unlock()

	events := diff(previous, current)
	if callback == nil {
		return
	}
	for _, ev := range events {
		ev.Path = w.rel(ev.Path)
		callback(ev)
	}
}

// snapshot walks every watched path.
func (w *Watcher) snapshot() map[string]entry {
	out := make(map[string]entry)
	for _, root := range w.config.Paths {
		filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if p != root && w.shouldIgnore(p) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			out[p] = entry{modTime: info.ModTime(), size: info.Size(), dir: d.IsDir()}
			return nil
		})
	}
	return out
}

func diff(previous, current map[string]entry) []Event {
	var removed, present []string
	for p := range previous {
		if _, ok := current[p]; !ok {
			removed = append(removed, p)
		}
	}
	for p := range current {
		present = append(present, p)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(removed)))
	sort.Strings(present)

	var events []Event
	for _, p := range removed {
		events = append(events, Event{Op: removeOp(previous[p].dir), Path: p})
	}
	for _, p := range present {
		cur := current[p]
		prev, ok := previous[p]
		switch {
		case !ok:
			events = append(events, Event{Op: addOp(cur.dir), Path: p})
		case prev.dir != cur.dir:
			events = append(events,
				Event{Op: removeOp(prev.dir), Path: p},
				Event{Op: addOp(cur.dir), Path: p},
			)
		case !cur.dir && (!cur.modTime.Equal(prev.modTime) || cur.size != prev.size):
			events = append(events, Event{Op: OpChange, Path: p})
		}
	}
	return events
}

func addOp(dir bool) Op {
	if dir {
		return OpAddDir
	}
	return OpAdd
}

func removeOp(dir bool) Op {
	if dir {
		return OpRemoveDir
	}
	return OpRemove
}

// rel makes p relative to the project root with forward slashes.
func (w *Watcher) rel(p string) string {
	if w.config.Root == "" {
		return filepath.ToSlash(p)
	}
	r, err := filepath.Rel(w.config.Root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(r)
}

// shouldIgnore checks if a path should be ignored. Patterns are matched
// against the project-relative path.
func (w *Watcher) shouldIgnore(fullPath string) bool {
	normalized := w.rel(fullPath)
	name := path.Base(normalized)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		if name == pattern {
			return true
		}

		hasPathSep := strings.Contains(pattern, "/") || strings.Contains(pattern, "\\")
		hasGlob := strings.ContainsAny(pattern, "*?[")

		if hasGlob {
			if hasPathSep {
				if matched, _ := path.Match(filepath.ToSlash(pattern), normalized); matched {
					return true
				}
			} else if matched, _ := path.Match(pattern, name); matched {
				return true
			}
			continue
		}

		if hasPathSep {
			if pathMatchesSegments(normalized, filepath.ToSlash(pattern)) {
				return true
			}
			continue
		}

		if pathHasSegment(normalized, pattern) {
			return true
		}
	}

	return false
}

func pathHasSegment(p, segment string) bool {
	for _, part := range splitPathSegments(p) {
		if part == segment {
			return true
		}
	}
	return false
}

func pathMatchesSegments(p, pattern string) bool {
	pathParts := splitPathSegments(p)
	patternParts := splitPathSegments(pattern)
	if len(patternParts) == 0 || len(patternParts) > len(pathParts) {
		return false
	}

	for i := 0; i <= len(pathParts)-len(patternParts); i++ {
		match := true
		for j := range patternParts {
			if pathParts[i+j] != patternParts[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func splitPathSegments(p string) []string {
	if p == "" {
		return nil
	}
	parts := strings.Split(p, "/")
	result := parts[:0]
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	return result
}
