package dev

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	mu     sync.Mutex
	events []Event
	ready  bool
}

func (l *eventLog) add(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) setReady() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ready = true
}

func (l *eventLog) isReady() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready
}

func (l *eventLog) has(want Event) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ev := range l.events {
		if ev == want {
			return true
		}
	}
	return false
}

func (l *eventLog) snapshot() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}

func startWatcher(t *testing.T, root string, paths ...string) *eventLog {
	t.Helper()
	w := NewWatcher(WatcherConfig{
		Root:     root,
		Paths:    paths,
		Interval: 20 * time.Millisecond,
	})
	log := &eventLog{}
	w.OnEvent(log.add)
	w.OnReady(log.setReady)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		assert.False(t, w.IsRunning())
	})

	require.Eventually(t, log.isReady, 2*time.Second, 5*time.Millisecond)
	return log
}

func writeTestFile(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(name), 0o755))
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
}

func TestWatcherInitialScan(t *testing.T) {
	root := t.TempDir()
	components := filepath.Join(root, "src", "components")
	writeTestFile(t, filepath.Join(components, "Card.svelte"), "<p/>")
	writeTestFile(t, filepath.Join(components, ".Hidden.svelte"), "<p/>")
	writeTestFile(t, filepath.Join(components, "node_modules", "Dep.svelte"), "<p/>")

	log := startWatcher(t, root, components)

	assert.Equal(t, []Event{
		{Op: OpAddDir, Path: "src/components"},
		{Op: OpAdd, Path: "src/components/Card.svelte"},
	}, log.snapshot())
}

func TestWatcherReportsChanges(t *testing.T) {
	root := t.TempDir()
	components := filepath.Join(root, "src", "components")
	card := filepath.Join(components, "Card.svelte")
	writeTestFile(t, card, "<p/>")

	log := startWatcher(t, root, components)

	writeTestFile(t, filepath.Join(components, "Button.svelte"), "<button/>")
	require.Eventually(t, func() bool {
		return log.has(Event{Op: OpAdd, Path: "src/components/Button.svelte"})
	}, 2*time.Second, 10*time.Millisecond)

	writeTestFile(t, card, "<p>changed</p>")
	require.Eventually(t, func() bool {
		return log.has(Event{Op: OpChange, Path: "src/components/Card.svelte"})
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(card))
	require.Eventually(t, func() bool {
		return log.has(Event{Op: OpRemove, Path: "src/components/Card.svelte"})
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Mkdir(filepath.Join(components, "forms"), 0o755))
	require.Eventually(t, func() bool {
		return log.has(Event{Op: OpAddDir, Path: "src/components/forms"})
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(components, "forms")))
	require.Eventually(t, func() bool {
		return log.has(Event{Op: OpRemoveDir, Path: "src/components/forms"})
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcherPicksUpMissingRoot(t *testing.T) {
	root := t.TempDir()
	modules := filepath.Join(root, "src", "modules")

	log := startWatcher(t, root, modules)
	assert.Empty(t, log.snapshot())

	writeTestFile(t, filepath.Join(modules, "Api.svelte"), "<script/>")
	require.Eventually(t, func() bool {
		return log.has(Event{Op: OpAdd, Path: "src/modules/Api.svelte"})
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, log.has(Event{Op: OpAddDir, Path: "src/modules"}))
}

func TestWatcherStop(t *testing.T) {
	w := NewWatcher(WatcherConfig{Paths: []string{t.TempDir()}, Interval: 10 * time.Millisecond})
	assert.False(t, w.IsRunning())

	done := make(chan error, 1)
	go func() { done <- w.Start(context.Background()) }()
	require.Eventually(t, w.IsRunning, time.Second, 5*time.Millisecond)

	w.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
	assert.False(t, w.IsRunning())
}

func TestDiffOrdering(t *testing.T) {
	now := time.Now()
	file := func(size int64) entry { return entry{modTime: now, size: size} }
	dir := entry{modTime: now, dir: true}

	previous := map[string]entry{
		"/p/a":       dir,
		"/p/a/b":     dir,
		"/p/a/b/X":   file(1),
		"/p/Y":       file(1),
		"/p/Z":       file(1),
		"/p/swap":    file(1),
		"/p/touched": dir,
	}
	current := map[string]entry{
		"/p/Y":       file(2),
		"/p/Z":       file(1),
		"/p/c":       dir,
		"/p/c/W":     file(1),
		"/p/swap":    dir,
		"/p/touched": {modTime: now.Add(time.Second), dir: true},
	}

	assert.Equal(t, []Event{
		{Op: OpRemove, Path: "/p/a/b/X"},
		{Op: OpRemoveDir, Path: "/p/a/b"},
		{Op: OpRemoveDir, Path: "/p/a"},
		{Op: OpChange, Path: "/p/Y"},
		{Op: OpAddDir, Path: "/p/c"},
		{Op: OpAdd, Path: "/p/c/W"},
		{Op: OpRemove, Path: "/p/swap"},
		{Op: OpAddDir, Path: "/p/swap"},
	}, diff(previous, current))
}

func TestShouldIgnore(t *testing.T) {
	w := NewWatcher(WatcherConfig{
		Root:   "/project",
		Ignore: []string{".*", "node_modules", "*.tmp", "src/pages/drafts"},
	})

	tests := []struct {
		path string
		want bool
	}{
		{"/project/src/components/Card.svelte", false},
		{"/project/src/components/.autoroute-123", true},
		{"/project/src/components/node_modules/x/Y.svelte", true},
		{"/project/src/pages/About.svelte.tmp", true},
		{"/project/src/pages/drafts/Post.svelte", true},
		{"/project/src/pages/draftsman/Post.svelte", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, w.shouldIgnore(tt.path))
		})
	}
}

func TestCollectWatchPathsDedups(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.Modules = cfg.Paths.Components

	paths := CollectWatchPaths(cfg)
	assert.Equal(t, []string{
		filepath.Join(cfg.Dir(), "src", "components"),
		filepath.Join(cfg.Dir(), "src", "pages"),
	}, paths)
}
