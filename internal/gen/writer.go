package gen

import (
	"bytes"
	"io"
	"os"
	"path"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Writer writes generated files onto a billy filesystem.
type Writer struct {
	fs billy.Filesystem
}

// NewWriter creates a Writer.
func NewWriter(fs billy.Filesystem) *Writer {
	return &Writer{fs: fs}
}

// Write replaces name with content unless it already holds exactly content.
// The file is written to a hidden temporary sibling and renamed into place.
// It reports whether the file changed.
func (w *Writer) Write(name string, content []byte) (bool, error) {
	if old, err := util.ReadFile(w.fs, name); err == nil && bytes.Equal(old, content) {
		return false, nil
	}

	dir := path.Dir(name)
	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return false, err
	}

	tmp, err := w.fs.TempFile(dir, ".autoroute-")
	if err != nil {
		return false, err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		w.fs.Remove(tmpName)
		return false, err
	}
	if err := tmp.Close(); err != nil {
		w.fs.Remove(tmpName)
		return false, err
	}
	if ch, ok := w.fs.(billy.Change); ok {
		ch.Chmod(tmpName, 0o644)
	}
	if err := w.fs.Rename(tmpName, name); err != nil {
		w.fs.Remove(tmpName)
		return false, err
	}
	return true, nil
}

// Create writes name only if it does not exist yet. It reports whether the
// file was created.
func (w *Writer) Create(name string, content []byte) (bool, error) {
	if _, err := w.fs.Stat(name); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	if err := w.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return false, err
	}
	f, err := w.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, err
	}
	_, werr := io.Copy(f, bytes.NewReader(content))
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return false, werr
	}
	return true, nil
}

// Read returns the content of name.
func (w *Writer) Read(name string) ([]byte, error) {
	return util.ReadFile(w.fs, name)
}
