package lister

import (
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/convention"
)

func newFS(t *testing.T, files ...string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	for _, f := range files {
		require.NoError(t, util.WriteFile(fs, f, nil, 0o644))
	}
	return fs
}

func paths(ps []convention.Path) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Path)
	}
	return out
}

func TestListNonRecursive(t *testing.T) {
	fs := newFS(t,
		"src/pages/Home.svelte",
		"src/pages/About.svelte",
		"src/pages/config/Index.svelte",
	)
	l := New(fs, convention.DefaultLayout())

	got, err := l.List("src/pages", false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"src/pages/About.svelte",
		"src/pages/Home.svelte",
		"src/pages/config",
	}, paths(got))
	assert.Equal(t, convention.Directory, got[2].Category)
	assert.True(t, got[2].IsDirectory)
}

func TestListRecursiveOwnFilesFirst(t *testing.T) {
	fs := newFS(t,
		"src/pages/a/Zed.svelte",
		"src/pages/a/b/Deep.svelte",
		"src/pages/a/+home.svelte",
		"src/pages/Home.svelte",
		"src/pages/z/Last.svelte",
		"src/pages/About.svelte",
	)
	l := New(fs, convention.DefaultLayout())

	got, err := l.List("src/pages", true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"src/pages/About.svelte",
		"src/pages/Home.svelte",
		"src/pages/a",
		"src/pages/a/+home.svelte",
		"src/pages/a/Zed.svelte",
		"src/pages/a/b",
		"src/pages/a/b/Deep.svelte",
		"src/pages/z",
		"src/pages/z/Last.svelte",
	}, paths(got))

	again, err := l.List("src/pages", true)
	require.NoError(t, err)
	assert.Equal(t, got, again, "listing must be stable")
}

func TestListMissingDirectory(t *testing.T) {
	l := New(memfs.New(), convention.DefaultLayout())

	got, err := l.List("src/pages/gone", true)
	assert.NoError(t, err)
	assert.Empty(t, got)

	dirs, err := l.Dirs("src/pages/gone")
	assert.NoError(t, err)
	assert.Empty(t, dirs)
}

func TestFilesAndDirs(t *testing.T) {
	fs := newFS(t,
		"src/components/Button.svelte",
		"src/components/forms/Input.svelte",
		"src/components/index.js",
	)
	require.NoError(t, fs.MkdirAll("src/components/empty", 0o755))
	l := New(fs, convention.DefaultLayout())

	files, err := l.Files("src/components", true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"src/components/Button.svelte",
		"src/components/index.js",
		"src/components/forms/Input.svelte",
	}, paths(files))
	assert.Equal(t, convention.ComponentModule, files[0].Category)
	assert.Equal(t, convention.Ignored, files[1].Category)

	dirs, err := l.Dirs("src/components")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"src/components",
		"src/components/empty",
		"src/components/forms",
	}, dirs)

	assert.True(t, l.Exists("src/components/forms"))
	assert.False(t, l.Exists("src/components/Button.svelte"))
}
