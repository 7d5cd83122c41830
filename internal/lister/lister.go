// Package lister enumerates convention paths on a billy filesystem in a
// stable order.
package lister

import (
	stderrors "errors"
	"fmt"
	"os"
	"path"
	"sort"

	billy "github.com/go-git/go-billy/v5"

	"github.com/ulmzr/svelte-esbuild-devserver/internal/convention"
)

// Lister lists directories of a project filesystem rooted at the project
// directory.
type Lister struct {
	fs     billy.Filesystem
	layout convention.Layout
}

// New creates a Lister.
func New(fs billy.Filesystem, layout convention.Layout) *Lister {
	return &Lister{fs: fs, layout: layout}
}

// List returns the entries of dir sorted by name. With recursive set, the
// listing is depth-first: a directory's own files come first, followed by
// each subdirectory entry and its contents in name order.
//
// A missing dir yields an empty listing and no error; directories may vanish
// while a regeneration is in flight.
func (l *Lister) List(dir string, recursive bool) ([]convention.Path, error) {
	dir = convention.Clean(dir)
	out, err := l.list(dir, recursive, nil)
	if err != nil && isNotExist(err) {
		return nil, nil
	}
	return out, err
}

// Files is List restricted to regular files.
func (l *Lister) Files(dir string, recursive bool) ([]convention.Path, error) {
	all, err := l.List(dir, recursive)
	if err != nil {
		return nil, err
	}
	files := all[:0]
	for _, p := range all {
		if !p.IsDirectory {
			files = append(files, p)
		}
	}
	return files, nil
}

// Dirs returns dir itself followed by every directory below it, depth-first.
// A missing dir yields nothing.
func (l *Lister) Dirs(dir string) ([]string, error) {
	dir = convention.Clean(dir)
	if !l.Exists(dir) {
		return nil, nil
	}
	all, err := l.List(dir, true)
	if err != nil {
		return nil, err
	}
	dirs := []string{dir}
	for _, p := range all {
		if p.IsDirectory {
			dirs = append(dirs, p.Path)
		}
	}
	return dirs, nil
}

// Exists reports whether dir exists and is a directory.
func (l *Lister) Exists(dir string) bool {
	fi, err := l.fs.Stat(fsPath(convention.Clean(dir)))
	return err == nil && fi.IsDir()
}

func (l *Lister) list(dir string, recursive bool, out []convention.Path) ([]convention.Path, error) {
	infos, err := l.fs.ReadDir(fsPath(dir))
	if err != nil {
		return out, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	var subdirs []convention.Path
	for _, fi := range infos {
		cp := l.layout.Describe(path.Join(dir, fi.Name()), fi.IsDir())
		if fi.IsDir() {
			if recursive {
				subdirs = append(subdirs, cp)
				continue
			}
		}
		out = append(out, cp)
	}

	for _, sub := range subdirs {
		out = append(out, sub)
		out, err = l.list(sub.Path, true, out)
		if err != nil {
			if isNotExist(err) {
				continue
			}
			return out, err
		}
	}
	return out, nil
}

func fsPath(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

func isNotExist(err error) bool {
	return stderrors.Is(err, os.ErrNotExist)
}
